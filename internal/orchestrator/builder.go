package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/imagegen"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/sink"
)

// BuildOptions controls item expansion.
type BuildOptions struct {
	Variations  int
	MatchAspect bool
}

// Builder expands records into work items. It keeps a per-run cache of
// reference image bytes so a reference is downloaded at most once, whether
// for aspect matching or for submission.
type Builder struct {
	fetcher sink.Fetcher
	logger  infra.Logger

	mu   sync.Mutex
	refs map[string]reference
}

type reference struct {
	data []byte
	err  error
}

func NewBuilder(fetcher sink.Fetcher, logger *infra.Logger) *Builder {
	return &Builder{
		fetcher: fetcher,
		logger:  infra.LoggerOrNop(logger),
		refs:    make(map[string]reference),
	}
}

// Build returns Variations items per record, in record order, with variation
// numbers 1..N. Each record is registered with agg before its items are
// returned. Reference fetch or sniff failures fall back to the default canvas.
func (b *Builder) Build(ctx context.Context, records []domain.Record, opts BuildOptions, agg *Aggregator) []WorkItem {
	n := opts.Variations
	if n < 1 {
		n = 1
	}
	items := make([]WorkItem, 0, n*len(records))
	for ordinal, rec := range records {
		canvas := imagegen.DefaultCanvas
		if opts.MatchAspect {
			canvas = b.canvasFor(ctx, rec)
		}
		if agg != nil {
			agg.Register(rec, ordinal, n)
		}
		for v := 1; v <= n; v++ {
			items = append(items, WorkItem{
				RecordID:     rec.ID,
				Ordinal:      ordinal,
				Variation:    v,
				Prompt:       rec.Prompt,
				ReferenceURL: rec.ReferenceImageURL,
				StyleID:      rec.StyleID,
				Width:        canvas.Width,
				Height:       canvas.Height,
			})
		}
	}
	return items
}

func (b *Builder) canvasFor(ctx context.Context, rec domain.Record) imagegen.Canvas {
	if strings.TrimSpace(rec.ReferenceImageURL) == "" {
		return imagegen.DefaultCanvas
	}
	data, err := b.Reference(ctx, rec.ReferenceImageURL)
	if err != nil {
		b.logger.Warn().Err(err).Str("record_id", rec.ID).Msg("orchestrator: reference fetch failed, using default canvas")
		return imagegen.DefaultCanvas
	}
	canvas, ok := imagegen.CanvasFor(data)
	if !ok {
		b.logger.Warn().Str("record_id", rec.ID).Msg("orchestrator: reference dimensions unknown, using default canvas")
		return imagegen.DefaultCanvas
	}
	b.logger.Debug().
		Str("record_id", rec.ID).
		Str("canvas", canvas.Name).
		Msg("orchestrator: canvas matched to reference")
	return canvas
}

// Reference returns the bytes behind url, downloading them on first use.
// Failures are remembered too, except for cancellation.
func (b *Builder) Reference(ctx context.Context, url string) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil
	}
	b.mu.Lock()
	ref, ok := b.refs[url]
	b.mu.Unlock()
	if ok {
		return ref.data, ref.err
	}

	res, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() == nil {
			b.store(url, reference{err: err})
		}
		return nil, err
	}
	b.store(url, reference{data: res.Data})
	return res.Data, nil
}

func (b *Builder) store(url string, ref reference) {
	b.mu.Lock()
	b.refs[url] = ref
	b.mu.Unlock()
}
