package sink

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

// Variation is one successful, persisted variation of a record.
type Variation struct {
	Number int
	URL    string
}

// RecordSet is everything published for one record.
type RecordSet struct {
	RecordID     string
	Ordinal      int
	Prompt       string
	ReferenceURL string
	Variations   []Variation
}

// Publisher lays out finished records on a board.
type Publisher struct {
	boards domain.BoardService
	layout Layout
	logger infra.Logger
}

// NewPublisher returns a Publisher. A nil board service yields a publisher
// whose ResolveBoard always reports publishing as disabled.
func NewPublisher(boards domain.BoardService, layout Layout, logger *infra.Logger) *Publisher {
	return &Publisher{boards: boards, layout: layout, logger: infra.LoggerOrNop(logger)}
}

// Layout returns the geometry in use.
func (p *Publisher) Layout() Layout {
	return p.layout
}

// ResolveBoard picks the board for a run: an explicit id is looked up, a name
// creates a new board. With neither, domain.ErrBoardDisabled is returned.
func (p *Publisher) ResolveBoard(ctx context.Context, boardID, boardName string) (string, error) {
	if p == nil || p.boards == nil {
		return "", domain.ErrBoardDisabled
	}
	boardID = strings.TrimSpace(boardID)
	boardName = strings.TrimSpace(boardName)
	switch {
	case boardID != "":
		id, err := p.boards.GetBoard(ctx, boardID)
		if err != nil {
			return "", fmt.Errorf("sink: get board %s: %w", boardID, err)
		}
		return id, nil
	case boardName != "":
		id, err := p.boards.CreateBoard(ctx, boardName)
		if err != nil {
			return "", fmt.Errorf("sink: create board %q: %w", boardName, err)
		}
		return id, nil
	default:
		return "", domain.ErrBoardDisabled
	}
}

// Publish places the reference image, the prompt label and the successful
// variations in ascending variation order on one row. The first failing call
// aborts the record.
func (p *Publisher) Publish(ctx context.Context, boardID string, set RecordSet) error {
	if p == nil || p.boards == nil {
		return domain.ErrBoardDisabled
	}
	if boardID == "" {
		return errors.New("sink: board id is required")
	}
	l := p.layout

	if set.ReferenceURL != "" {
		label := set.RecordID + " reference"
		if err := p.boards.UploadImage(ctx, boardID, set.ReferenceURL, l.ReferencePosition(set.Ordinal), label, l.ImageWidth); err != nil {
			return fmt.Errorf("sink: upload reference for %s: %w", set.RecordID, err)
		}
	}

	if err := p.boards.CreateTextLabel(ctx, boardID, l.TruncatePrompt(set.Prompt), l.TextPosition(set.Ordinal), l.TextWidth); err != nil {
		return fmt.Errorf("sink: prompt label for %s: %w", set.RecordID, err)
	}

	variations := make([]Variation, len(set.Variations))
	copy(variations, set.Variations)
	sort.Slice(variations, func(i, j int) bool { return variations[i].Number < variations[j].Number })

	for k, v := range variations {
		label := fmt.Sprintf("%s v%d", set.RecordID, v.Number)
		if err := p.boards.UploadImage(ctx, boardID, v.URL, l.VariationPosition(set.Ordinal, k), label, l.ImageWidth); err != nil {
			return fmt.Errorf("sink: upload %s: %w", label, err)
		}
	}

	p.logger.Info().
		Str("board_id", boardID).
		Str("record_id", set.RecordID).
		Int("variations", len(variations)).
		Msg("sink: record published")
	return nil
}
