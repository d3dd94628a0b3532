package orchestrator

import (
	"context"
	"strings"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
)

// fill moves items from the head of the backlog into the in-flight set while
// it is below the concurrency cap, waiting SubmitDelay between submissions.
// A submission that errors or yields no job id resolves the item as an error
// immediately; it is not retried.
func (r *run) fill(ctx context.Context) error {
	submitted := 0
	for len(r.inFlight) < r.cfg.Concurrency && len(r.backlog) > 0 {
		if submitted > 0 {
			if err := sleepCtx(ctx, r.cfg.SubmitDelay); err != nil {
				return err
			}
		}
		item := r.backlog[0]
		r.backlog = r.backlog[1:]
		submitted++
		r.submit(ctx, item)
	}
	return ctx.Err()
}

func (r *run) submit(ctx context.Context, item WorkItem) {
	req := domain.SubmitRequest{
		Prompt:            item.Prompt,
		ReferenceImageURL: item.ReferenceURL,
		Width:             item.Width,
		Height:            item.Height,
		StyleID:           item.StyleID,
	}
	if item.ReferenceURL != "" {
		data, err := r.builder.Reference(ctx, item.ReferenceURL)
		if err != nil {
			r.logger.Debug().Err(err).Str("record_id", item.RecordID).Msg("orchestrator: submitting without reference bytes")
		}
		req.ReferenceImage = data
	}

	jobID, err := r.gen.Submit(ctx, req)
	jobID = strings.TrimSpace(jobID)
	if err == nil && jobID == "" {
		err = domain.ErrNoJobID
	}
	if err != nil {
		r.logger.Warn().Err(err).
			Str("record_id", item.RecordID).
			Int("variation", item.Variation).
			Msg("orchestrator: submission failed")
		r.resolve(ctx, r.errorOutcome(item, "", MsgSubmissionFailed, err))
		return
	}

	job := &InFlightJob{Item: item, JobID: jobID, CreatedAt: r.now()}
	r.inFlight = append(r.inFlight, job)
	if n := len(r.inFlight); n > r.report.PeakInFlight {
		r.report.PeakInFlight = n
	}
	r.logger.Debug().
		Str("record_id", item.RecordID).
		Int("variation", item.Variation).
		Str("job_id", jobID).
		Int("in_flight", len(r.inFlight)).
		Msg("orchestrator: job submitted")
	r.emit(Event{Type: EventItemSubmitted, RecordID: item.RecordID, Variation: item.Variation, Data: map[string]any{"job_id": jobID}})
}
