package sink

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
)

// Layout is the board geometry for one published row per record.
type Layout struct {
	StartX         float64 `yaml:"start_x" json:"start_x"`
	StartY         float64 `yaml:"start_y" json:"start_y"`
	ImageWidth     float64 `yaml:"image_width" json:"image_width"`
	TextWidth      float64 `yaml:"text_width" json:"text_width"`
	Gap            float64 `yaml:"gap" json:"gap"`
	RowHeight      float64 `yaml:"row_height" json:"row_height"`
	PromptMaxRunes int     `yaml:"prompt_max_runes" json:"prompt_max_runes"`
}

// DefaultLayout returns the geometry used when no layout file is configured.
func DefaultLayout() Layout {
	return Layout{
		StartX:         0,
		StartY:         0,
		ImageWidth:     400,
		TextWidth:      600,
		Gap:            50,
		RowHeight:      700,
		PromptMaxRunes: 300,
	}
}

// LoadLayout reads a YAML layout file. Keys missing from the file keep their
// default values. An empty path returns DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	path = strings.TrimSpace(path)
	if path == "" {
		return layout, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return layout, fmt.Errorf("sink: read layout: %w", err)
	}
	if err := yaml.Unmarshal(raw, &layout); err != nil {
		return layout, fmt.Errorf("sink: parse layout %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return layout, fmt.Errorf("sink: layout %s: %w", path, err)
	}
	return layout, nil
}

// Validate rejects geometry that would stack items on top of each other.
func (l Layout) Validate() error {
	switch {
	case l.ImageWidth <= 0:
		return errors.New("image_width must be positive")
	case l.TextWidth <= 0:
		return errors.New("text_width must be positive")
	case l.Gap < 0:
		return errors.New("gap must not be negative")
	case l.RowHeight <= 0:
		return errors.New("row_height must be positive")
	case l.PromptMaxRunes <= 0:
		return errors.New("prompt_max_runes must be positive")
	}
	return nil
}

func (l Layout) rowY(ordinal int) float64 {
	return l.StartY + float64(ordinal)*l.RowHeight
}

// ReferencePosition is the slot of the reference image in a row.
func (l Layout) ReferencePosition(ordinal int) domain.Position {
	return domain.Position{X: l.StartX, Y: l.rowY(ordinal)}
}

// TextPosition is the slot of the prompt label in a row.
func (l Layout) TextPosition(ordinal int) domain.Position {
	return domain.Position{X: l.StartX + l.ImageWidth + l.Gap, Y: l.rowY(ordinal)}
}

// VariationPosition is the slot of the k-th published variation (0-based in
// ascending variation order) in a row.
func (l Layout) VariationPosition(ordinal, k int) domain.Position {
	x := l.StartX + l.ImageWidth + l.Gap + l.TextWidth + l.Gap + float64(k)*(l.ImageWidth+l.Gap)
	return domain.Position{X: x, Y: l.rowY(ordinal)}
}

// TruncatePrompt normalizes the prompt to NFC and cuts it to PromptMaxRunes
// runes, appending an ellipsis when something was dropped.
func (l Layout) TruncatePrompt(prompt string) string {
	prompt = strings.TrimSpace(norm.NFC.String(prompt))
	limit := l.PromptMaxRunes
	if limit <= 0 || utf8.RuneCountInString(prompt) <= limit {
		return prompt
	}
	runes := []rune(prompt)
	return strings.TrimRightFunc(string(runes[:limit]), isSpace) + "…"
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
