package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/fetch"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/sink"
)

type fakeRecords struct {
	mu       sync.Mutex
	records  []domain.Record
	queryErr error
	patchErr error
	filters  []domain.RecordFilter
	patches  map[string]domain.RecordPatch
}

func (f *fakeRecords) Query(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.records, nil
}

func (f *fakeRecords) Patch(ctx context.Context, recordID string, patch domain.RecordPatch) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patches == nil {
		f.patches = make(map[string]domain.RecordPatch)
	}
	f.patches[recordID] = patch
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	return &domain.Record{ID: recordID, GenerationStatus: string(patch.GenerationStatus)}, nil
}

// statusScript decides the status of the n-th job (1-based, submission order)
// on its poll-th status query (1-based).
type statusScript func(job, poll int) (domain.JobStatus, error)

func completeAfter(polls int) statusScript {
	return func(job, poll int) (domain.JobStatus, error) {
		if poll >= polls {
			return domain.JobStatus{State: domain.JobStateCompleted, Progress: 100, ResultURLs: []string{fmt.Sprintf("https://gen/out/%d.png", job)}}, nil
		}
		return domain.JobStatus{State: domain.JobStateRunning, Progress: poll * 10}, nil
	}
}

type fakeGenerator struct {
	mu sync.Mutex

	script statusScript
	// submitErr is consulted per submission (1-based); a nil error with
	// emptyID set returns an empty job id.
	submitErr func(n int) (err error, emptyID bool)

	submitted   []domain.SubmitRequest
	submittedAt []time.Time
	polls       map[string]int
	jobNumber   map[string]int
	statusCalls int
	active      map[string]bool
	maxActive   int
}

func newFakeGenerator(script statusScript) *fakeGenerator {
	return &fakeGenerator{
		script:    script,
		polls:     make(map[string]int),
		jobNumber: make(map[string]int),
		active:    make(map[string]bool),
	}
}

func (g *fakeGenerator) Submit(ctx context.Context, req domain.SubmitRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitted = append(g.submitted, req)
	g.submittedAt = append(g.submittedAt, time.Now())
	n := len(g.submitted)
	if g.submitErr != nil {
		if err, empty := g.submitErr(n); err != nil {
			return "", err
		} else if empty {
			return "  ", nil
		}
	}
	id := fmt.Sprintf("job-%d", n)
	g.jobNumber[id] = n
	g.active[id] = true
	if len(g.active) > g.maxActive {
		g.maxActive = len(g.active)
	}
	return id, nil
}

func (g *fakeGenerator) Status(ctx context.Context, jobID string) (domain.JobStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	g.polls[jobID]++
	status, err := g.script(g.jobNumber[jobID], g.polls[jobID])
	if err == nil && (status.Completed() || status.Failed()) {
		delete(g.active, jobID)
	}
	return status, err
}

func (g *fakeGenerator) submissions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.submitted)
}

type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	calls map[string]int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	if data, ok := f.data[url]; ok {
		return &fetch.Result{URL: url, Data: data, StatusCode: 200}, nil
	}
	return nil, &fetch.Error{URL: url, Message: "HTTP status 404", StatusCode: 404}
}

type fakePersister struct {
	mu   sync.Mutex
	fail map[string]bool
}

func (p *fakePersister) Persist(ctx context.Context, recordID string, variation int, sourceURL string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[fmt.Sprintf("%s/%d", recordID, variation)] {
		return "", errors.New("store unavailable")
	}
	return fmt.Sprintf("https://store/%s/v%02d.png", recordID, variation), nil
}

type fakePublisher struct {
	mu         sync.Mutex
	resolveErr error
	failFor    map[string]bool
	published  []sink.RecordSet
	boards     []string
}

func (p *fakePublisher) ResolveBoard(ctx context.Context, boardID, boardName string) (string, error) {
	if p.resolveErr != nil {
		return "", p.resolveErr
	}
	if boardID != "" {
		return boardID, nil
	}
	return "created-" + boardName, nil
}

func (p *fakePublisher) Publish(ctx context.Context, boardID string, set sink.RecordSet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.boards = append(p.boards, boardID)
	if p.failFor[set.RecordID] {
		return errors.New("board unavailable")
	}
	p.published = append(p.published, set)
	return nil
}

func testRecords(n int) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{
			ID:                fmt.Sprintf("rec-%d", i+1),
			Position:          i,
			Prompt:            fmt.Sprintf("prompt %d", i+1),
			ReferenceImageURL: fmt.Sprintf("https://cdn/ref-%d.png", i+1),
		}
	}
	return out
}

// fastConfig keeps every delay at zero so runs finish immediately.
func fastConfig(concurrency, maxPolls int) Config {
	return Config{
		Concurrency:     concurrency,
		MaxPolls:        maxPolls,
		Variations:      1,
		MaxStatusErrors: 3,
	}
}

type harness struct {
	records   *fakeRecords
	gen       *fakeGenerator
	fetcher   *fakeFetcher
	persister *fakePersister
	publisher *fakePublisher
	events    *Collector
	orch      *Orchestrator
}

func newHarness(cfg Config, records []domain.Record, script statusScript) (*harness, error) {
	h := &harness{
		records:   &fakeRecords{records: records},
		gen:       newFakeGenerator(script),
		fetcher:   &fakeFetcher{data: map[string][]byte{}},
		persister: &fakePersister{fail: map[string]bool{}},
		publisher: &fakePublisher{failFor: map[string]bool{}},
		events:    &Collector{},
	}
	orch, err := New(cfg, Deps{
		Records:   h.records,
		Generator: h.gen,
		Fetcher:   h.fetcher,
		Persister: h.persister,
		Publisher: h.publisher,
	})
	if err != nil {
		return nil, err
	}
	h.orch = orch
	return h, nil
}
