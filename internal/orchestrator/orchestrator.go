// Package orchestrator runs batch image generation: it expands records into
// work items, keeps a bounded number of jobs in flight at the generation
// service, polls them to a terminal state and publishes each record once all
// of its variations have resolved.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/sink"
)

// ErrInvalidRequest wraps run request validation failures.
var ErrInvalidRequest = errors.New("invalid run request")

// ResultPersister stores a generated result and returns its durable URL.
type ResultPersister interface {
	Persist(ctx context.Context, recordID string, variation int, sourceURL string) (string, error)
}

// BoardPublisher resolves the run's board and lays out completed records.
type BoardPublisher interface {
	ResolveBoard(ctx context.Context, boardID, boardName string) (string, error)
	Publish(ctx context.Context, boardID string, set sink.RecordSet) error
}

// Deps are the collaborators of an Orchestrator. Publisher is optional.
type Deps struct {
	Records   domain.RecordStore
	Generator domain.GenerationService
	Fetcher   sink.Fetcher
	Persister ResultPersister
	Publisher BoardPublisher
	Logger    *infra.Logger
	Now       func() time.Time
}

type Orchestrator struct {
	cfg      Config
	deps     Deps
	logger   infra.Logger
	validate *validator.Validate
}

func New(cfg Config, deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Records == nil:
		return nil, errors.New("orchestrator: record store is required")
	case deps.Generator == nil:
		return nil, errors.New("orchestrator: generation service is required")
	case deps.Fetcher == nil:
		return nil, errors.New("orchestrator: fetcher is required")
	case deps.Persister == nil:
		return nil, errors.New("orchestrator: result persister is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{
		cfg:      cfg.normalize(),
		deps:     deps,
		logger:   infra.LoggerOrNop(deps.Logger),
		validate: validator.New(),
	}, nil
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Run executes one batch to completion and returns its report. Only request
// validation, the record query and context cancellation produce an error;
// per-item and per-record failures are reported in the Report. On
// cancellation the partial report is returned together with the context
// error.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest, events EventSink) (*Report, error) {
	if events == nil {
		events = Discard
	}
	if err := o.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	cfg := o.cfg
	if req.Variations > 0 {
		cfg.Variations = req.Variations
	}

	records, err := o.deps.Records.Query(ctx, domain.RecordFilter{
		PromptField: req.PromptField,
		RecordIDs:   req.RecordIDs,
		Limit:       req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: query records: %w", err)
	}

	r := o.newRun(cfg, events)
	r.logger.Info().
		Int("records", len(records)).
		Int("variations", cfg.Variations).
		Int("concurrency", cfg.Concurrency).
		Bool("match_aspect", req.MatchAspect).
		Msg("orchestrator: run started")
	r.emit(Event{Type: EventRunStarted, Data: map[string]any{"records": len(records), "variations": cfg.Variations}})

	r.boardID = o.resolveBoard(ctx, r, req)
	r.report.BoardID = r.boardID

	items := r.builder.Build(ctx, records, BuildOptions{Variations: cfg.Variations, MatchAspect: req.MatchAspect}, r.agg)
	r.report.Records = len(records)
	r.report.Items = len(items)
	r.backlog = items
	for _, item := range items {
		r.emit(Event{Type: EventItemQueued, RecordID: item.RecordID, Variation: item.Variation, Data: item})
	}

	runErr := r.loop(ctx)
	if runErr != nil {
		r.report.Cancelled = true
		r.logger.Warn().Err(runErr).
			Int("backlog", len(r.backlog)).
			Int("in_flight", len(r.inFlight)).
			Msg("orchestrator: run interrupted")
	}

	r.report.FinishedAt = o.deps.Now()
	r.logger.Info().
		Int("success", r.report.SuccessCount).
		Int("errors", r.report.ErrorCount).
		Int("published", r.report.PublishedCount).
		Int("publish_errors", r.report.PublishErrorCount).
		Dur("elapsed", r.report.FinishedAt.Sub(r.report.StartedAt)).
		Msg("orchestrator: run finished")
	r.emit(Event{Type: EventRunFinished, Data: r.report})
	return r.report, runErr
}

// resolveBoard never fails the run: any problem disables publishing.
func (o *Orchestrator) resolveBoard(ctx context.Context, r *run, req RunRequest) string {
	if o.deps.Publisher == nil || (req.BoardID == "" && req.BoardName == "") {
		return ""
	}
	id, err := o.deps.Publisher.ResolveBoard(ctx, req.BoardID, req.BoardName)
	if err != nil {
		if !errors.Is(err, domain.ErrBoardDisabled) {
			r.logger.Error().Err(err).Msg("orchestrator: board resolution failed, publishing disabled")
		}
		return ""
	}
	r.logger.Info().Str("board_id", id).Msg("orchestrator: publishing to board")
	return id
}

// run is the state of one batch. It is driven by a single goroutine.
type run struct {
	id        string
	cfg       Config
	events    EventSink
	logger    infra.Logger
	now       func() time.Time
	gen       domain.GenerationService
	records   domain.RecordStore
	persister ResultPersister
	publisher BoardPublisher
	builder   *Builder
	agg       *Aggregator

	boardID  string
	backlog  []WorkItem
	inFlight []*InFlightJob
	report   *Report
}

func (o *Orchestrator) newRun(cfg Config, events EventSink) *run {
	id := uuid.NewString()
	logger := o.logger.With().Str("run_id", id).Logger()
	return &run{
		id:        id,
		cfg:       cfg,
		events:    events,
		logger:    logger,
		now:       o.deps.Now,
		gen:       o.deps.Generator,
		records:   o.deps.Records,
		persister: o.deps.Persister,
		publisher: o.deps.Publisher,
		builder:   NewBuilder(o.deps.Fetcher, &logger),
		agg:       NewAggregator(),
		report:    &Report{RunID: id, StartedAt: o.deps.Now(), Outcomes: []Outcome{}},
	}
}

// loop alternates fill and polling rounds until backlog and in-flight set
// are both empty.
func (r *run) loop(ctx context.Context) error {
	for {
		if err := r.fill(ctx); err != nil {
			return err
		}
		if len(r.backlog) == 0 && len(r.inFlight) == 0 {
			return nil
		}
		if err := sleepCtx(ctx, r.cfg.PollInterval); err != nil {
			return err
		}
		if err := r.pollRound(ctx); err != nil {
			return err
		}
	}
}

// resolve records an outcome and, when it completes its record, runs the
// record bookkeeping and publish.
func (r *run) resolve(ctx context.Context, o Outcome) {
	r.report.addOutcome(o)
	r.emit(Event{Type: EventItemOutcome, RecordID: o.RecordID, Variation: o.Variation, Message: o.Error, Data: o})

	c, done := r.agg.Record(o)
	if !done {
		return
	}
	r.finishRecord(ctx, c)
}

func (r *run) finishRecord(ctx context.Context, c Completion) {
	status := c.Status()
	r.emit(Event{Type: EventRecordCompleted, RecordID: c.RecordID, Message: string(status), Data: map[string]any{
		"total":     c.Total,
		"succeeded": len(c.Variations),
		"failed":    c.Failed,
	}})

	if _, err := r.records.Patch(ctx, c.RecordID, domain.RecordPatch{GenerationStatus: status, GeneratedURLs: c.URLs()}); err != nil {
		r.report.PatchErrorCount++
		r.logger.Error().Err(err).Str("record_id", c.RecordID).Msg("orchestrator: record patch failed")
	}

	if r.boardID == "" || r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, r.boardID, c.RecordSet()); err != nil {
		r.report.PublishErrorCount++
		r.logger.Error().Err(err).Str("record_id", c.RecordID).Msg("orchestrator: publish failed")
		r.emit(Event{Type: EventRecordPublishFailed, RecordID: c.RecordID, Message: err.Error()})
		return
	}
	r.report.PublishedCount++
	r.emit(Event{Type: EventRecordPublished, RecordID: c.RecordID, Data: map[string]any{"board_id": r.boardID, "variations": len(c.Variations)}})
}

func (r *run) errorOutcome(item WorkItem, jobID, msg string, cause error) Outcome {
	o := Outcome{
		RecordID:  item.RecordID,
		Variation: item.Variation,
		Status:    OutcomeError,
		Error:     msg,
		JobID:     jobID,
		At:        r.now(),
	}
	if cause != nil {
		o.Detail = cause.Error()
	}
	return o
}

func (r *run) emit(e Event) {
	e.RunID = r.id
	if e.At.IsZero() {
		e.At = r.now()
	}
	r.events.Emit(e)
}
