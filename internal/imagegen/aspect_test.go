package imagegen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCanvas(t *testing.T) {
	cases := []struct {
		name   string
		width  int
		height int
		want   Canvas
	}{
		{"reference 1200x1800", 1200, 1800, CanvasPortrait},
		{"square", 500, 500, CanvasSquare},
		{"wide", 3000, 1000, CanvasLandscape},
		{"tall", 1000, 4000, CanvasPortrait},
		{"3:2", 1536, 1024, CanvasLandscape},
		{"zero width", 0, 100, DefaultCanvas},
		{"negative height", 100, -1, DefaultCanvas},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchCanvas(tc.width, tc.height))
		})
	}
}

// bruteForce is the reference implementation: scan the catalog in order and
// keep the first entry with the minimal difference.
func bruteForce(width, height int) Canvas {
	ratio := float64(width) / float64(height)
	diffs := make([]float64, len(catalog))
	minDiff := math.Inf(1)
	for i, c := range catalog {
		diffs[i] = math.Abs(ratio - c.Ratio())
		if diffs[i] < minDiff {
			minDiff = diffs[i]
		}
	}
	for i, d := range diffs {
		if d == minDiff {
			return catalog[i]
		}
	}
	return DefaultCanvas
}

func TestMatchCanvasExhaustive(t *testing.T) {
	for w := 1; w <= 300; w += 1 {
		for h := 1; h <= 300; h += 3 {
			got := MatchCanvas(w, h)
			want := bruteForce(w, h)
			if got != want {
				t.Fatalf("MatchCanvas(%d, %d) = %v, want %v", w, h, got, want)
			}
		}
	}
}

func TestMatchCanvasTieBreak(t *testing.T) {
	// 1.25 sits exactly between square (1.0) and landscape (1.5).
	assert.Equal(t, CanvasSquare, MatchCanvas(5, 4))
}

func TestCanvasFor(t *testing.T) {
	c, ok := CanvasFor(progressiveJPEG(1200, 1800))
	assert.True(t, ok)
	assert.Equal(t, CanvasPortrait, c)

	c, ok = CanvasFor([]byte("not an image"))
	assert.False(t, ok)
	assert.Equal(t, DefaultCanvas, c)

	assert.Equal(t, []Canvas{CanvasSquare, CanvasPortrait, CanvasLandscape}, Catalog())
}
