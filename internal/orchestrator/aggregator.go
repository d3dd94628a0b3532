package orchestrator

import (
	"sort"
	"sync"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/sink"
)

// recordProgress is the per-record fan-in state.
type recordProgress struct {
	ordinal      int
	prompt       string
	referenceURL string
	total        int
	urls         map[int]string
	resolved     map[int]struct{}
	published    bool
}

// Completion is the snapshot handed out when a record's last variation
// resolves.
type Completion struct {
	RecordID     string
	Ordinal      int
	Prompt       string
	ReferenceURL string
	Total        int
	Failed       int
	// Variations holds the successful variations in ascending order.
	Variations []sink.Variation
}

// Status maps the completion onto the terminal record status.
func (c Completion) Status() domain.RecordStatus {
	switch {
	case len(c.Variations) == 0:
		return domain.RecordStatusFailed
	case len(c.Variations) < c.Total:
		return domain.RecordStatusPartial
	default:
		return domain.RecordStatusCompleted
	}
}

// URLs returns the durable URLs in variation order.
func (c Completion) URLs() []string {
	out := make([]string, 0, len(c.Variations))
	for _, v := range c.Variations {
		out = append(out, v.URL)
	}
	return out
}

// RecordSet converts the completion into the publish payload.
func (c Completion) RecordSet() sink.RecordSet {
	return sink.RecordSet{
		RecordID:     c.RecordID,
		Ordinal:      c.Ordinal,
		Prompt:       c.Prompt,
		ReferenceURL: c.ReferenceURL,
		Variations:   c.Variations,
	}
}

// Aggregator groups outcomes by record and releases each record's completion
// exactly once. Safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	records map[string]*recordProgress
}

func NewAggregator() *Aggregator {
	return &Aggregator{records: make(map[string]*recordProgress)}
}

// Register declares a record and the number of variations it expects. It must
// be called before any of the record's items is scheduled. Registering a
// record twice keeps the first registration.
func (a *Aggregator) Register(rec domain.Record, ordinal, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.records[rec.ID]; ok {
		return
	}
	a.records[rec.ID] = &recordProgress{
		ordinal:      ordinal,
		prompt:       rec.Prompt,
		referenceURL: rec.ReferenceImageURL,
		total:        total,
		urls:         make(map[int]string),
		resolved:     make(map[int]struct{}),
	}
}

// Record applies an outcome. The second return value is true for exactly one
// call per record: the one that resolves its last outstanding variation.
// Duplicate outcomes for a variation and outcomes for unknown records are
// ignored.
func (a *Aggregator) Record(o Outcome) (Completion, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.records[o.RecordID]
	if !ok {
		return Completion{}, false
	}
	if _, dup := p.resolved[o.Variation]; dup {
		return Completion{}, false
	}
	p.resolved[o.Variation] = struct{}{}
	if o.Succeeded() {
		p.urls[o.Variation] = o.URL
	}

	if len(p.resolved) < p.total || p.published {
		return Completion{}, false
	}
	p.published = true
	return p.snapshot(o.RecordID), true
}

// Pending returns the ids of records that have not completed yet.
func (a *Aggregator) Pending() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for id, p := range a.records {
		if !p.published {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (p *recordProgress) snapshot(recordID string) Completion {
	variations := make([]sink.Variation, 0, len(p.urls))
	for n, url := range p.urls {
		variations = append(variations, sink.Variation{Number: n, URL: url})
	}
	sort.Slice(variations, func(i, j int) bool { return variations[i].Number < variations[j].Number })
	return Completion{
		RecordID:     recordID,
		Ordinal:      p.ordinal,
		Prompt:       p.prompt,
		ReferenceURL: p.referenceURL,
		Total:        p.total,
		Failed:       len(p.resolved) - len(p.urls),
		Variations:   variations,
	}
}
