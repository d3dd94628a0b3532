package orchestrator

import (
	"context"
	"fmt"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
)

// pollRound queries every in-flight job once, waiting PollDelay between jobs,
// and drops the jobs that reached a terminal state. If ctx ends mid-round the
// unchecked jobs stay in flight.
func (r *run) pollRound(ctx context.Context) error {
	jobs := r.inFlight
	remaining := make([]*InFlightJob, 0, len(jobs))
	for i, job := range jobs {
		if i > 0 {
			if err := sleepCtx(ctx, r.cfg.PollDelay); err != nil {
				r.inFlight = append(remaining, jobs[i:]...)
				return err
			}
		}
		if !r.check(ctx, job) {
			remaining = append(remaining, job)
		}
	}
	r.inFlight = remaining
	return nil
}

// check applies the transition rules to one job and reports whether it left
// the in-flight set. Rules, in priority order: completed (or progress 100),
// failed (or negative progress), poll budget exhausted, and finally a run of
// consecutive status query errors.
func (r *run) check(ctx context.Context, job *InFlightJob) bool {
	status, err := r.gen.Status(ctx, job.JobID)
	job.Polls++

	if err == nil {
		job.StatusErrors = 0
		switch {
		case status.Completed():
			r.complete(ctx, job, status)
			return true
		case status.Failed():
			r.resolve(ctx, r.errorOutcome(job.Item, job.JobID, MsgGenerationFailed, fmt.Errorf("state %q progress %d", status.State, status.Progress)))
			return true
		}
	}

	if job.Polls >= r.cfg.MaxPolls {
		r.resolve(ctx, r.errorOutcome(job.Item, job.JobID, MsgTimeout, fmt.Errorf("no terminal status after %d polls", job.Polls)))
		return true
	}

	if err != nil {
		job.StatusErrors++
		if job.StatusErrors >= r.cfg.MaxStatusErrors {
			r.resolve(ctx, r.errorOutcome(job.Item, job.JobID, MsgStatusCheckFailed, err))
			return true
		}
		r.logger.Warn().Err(err).
			Str("job_id", job.JobID).
			Int("consecutive_errors", job.StatusErrors).
			Msg("orchestrator: status check failed")
	}
	return false
}

// complete persists the first result URL of a finished job.
func (r *run) complete(ctx context.Context, job *InFlightJob, status domain.JobStatus) {
	if len(status.ResultURLs) == 0 {
		r.resolve(ctx, r.errorOutcome(job.Item, job.JobID, MsgProcessingFailed, domain.ErrNoResult))
		return
	}
	url, err := r.persister.Persist(ctx, job.Item.RecordID, job.Item.Variation, status.ResultURLs[0])
	if err != nil {
		r.logger.Error().Err(err).
			Str("job_id", job.JobID).
			Str("record_id", job.Item.RecordID).
			Msg("orchestrator: result processing failed")
		r.resolve(ctx, r.errorOutcome(job.Item, job.JobID, MsgProcessingFailed, err))
		return
	}
	r.resolve(ctx, Outcome{
		RecordID:  job.Item.RecordID,
		Variation: job.Item.Variation,
		Status:    OutcomeSuccess,
		URL:       url,
		JobID:     job.JobID,
		At:        r.now(),
	})
}
