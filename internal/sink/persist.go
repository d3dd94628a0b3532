// Package sink holds the result side of a run: persisting generated images to
// durable storage and laying finished records out on a board.
package sink

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/fetch"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/imagegen"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

// Fetcher downloads a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Persister copies generated results from the generation service into the
// object store.
type Persister struct {
	fetcher Fetcher
	store   domain.ObjectStore
	logger  infra.Logger
	now     func() time.Time
}

func NewPersister(fetcher Fetcher, store domain.ObjectStore, logger *infra.Logger) *Persister {
	return &Persister{
		fetcher: fetcher,
		store:   store,
		logger:  infra.LoggerOrNop(logger),
		now:     time.Now,
	}
}

// Persist downloads sourceURL and stores it under a key derived from the
// record, the variation and the current time. It returns the durable URL.
func (p *Persister) Persist(ctx context.Context, recordID string, variation int, sourceURL string) (string, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return "", domain.ErrNoResult
	}
	res, err := p.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("sink: download result: %w", err)
	}
	if len(res.Data) == 0 {
		return "", errors.New("sink: empty result payload")
	}
	mime := imagegen.Format(res.Data)
	if mime == "" {
		mime = normalizeMIME(res.ContentType)
	}
	key := ensureExtension(StorageKey(recordID, variation, p.now(), mime), mime, sourceURL)
	url, err := p.store.Put(ctx, res.Data, key, mime)
	if err != nil {
		return "", fmt.Errorf("sink: store result: %w", err)
	}
	p.logger.Debug().
		Str("record_id", recordID).
		Int("variation", variation).
		Str("key", key).
		Int("bytes", len(res.Data)).
		Msg("sink: result persisted")
	return url, nil
}

// StorageKey is generated/<record-id>/v<NN>-<unix-millis><ext>.
func StorageKey(recordID string, variation int, at time.Time, mime string) string {
	if variation < 1 {
		variation = 1
	}
	return fmt.Sprintf("generated/%s/v%02d-%d%s", safeSegment(recordID), variation, at.UnixMilli(), extensionForMIME(mime))
}

// ensureExtension falls back to the extension of the source URL when the
// content type did not yield one.
func ensureExtension(key, mime, sourceURL string) string {
	if path.Ext(key) != "" {
		return key
	}
	if ext := extensionForMIME(mime); ext != "" {
		return key + ext
	}
	src := sourceURL
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	switch ext := strings.ToLower(path.Ext(src)); ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return key + ext
	default:
		return key + ".bin"
	}
}

func extensionForMIME(mime string) string {
	switch normalizeMIME(mime) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// safeSegment keeps record ids usable as a single path segment.
func safeSegment(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '#', '%':
			return '_'
		}
		return r
	}, strings.ReplaceAll(id, "..", "_"))
}
