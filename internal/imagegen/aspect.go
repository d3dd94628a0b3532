package imagegen

import (
	"fmt"
	"math"
)

// Canvas is an output size supported by the generation service.
type Canvas struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Ratio returns width / height.
func (c Canvas) Ratio() float64 {
	if c.Height == 0 {
		return 0
	}
	return float64(c.Width) / float64(c.Height)
}

func (c Canvas) String() string {
	return fmt.Sprintf("%s %dx%d", c.Name, c.Width, c.Height)
}

var (
	CanvasSquare    = Canvas{Name: "square", Width: 1024, Height: 1024}
	CanvasPortrait  = Canvas{Name: "portrait", Width: 1024, Height: 1536}
	CanvasLandscape = Canvas{Name: "landscape", Width: 1536, Height: 1024}

	// DefaultCanvas is used whenever the reference size cannot be detected.
	DefaultCanvas = CanvasSquare
)

// catalog order matters: ties resolve to the earlier entry.
var catalog = []Canvas{CanvasSquare, CanvasPortrait, CanvasLandscape}

// Catalog returns a copy of the supported canvases in match order.
func Catalog() []Canvas {
	out := make([]Canvas, len(catalog))
	copy(out, catalog)
	return out
}

// MatchCanvas picks the catalog canvas whose ratio is closest to width/height.
// Non-positive dimensions yield DefaultCanvas.
func MatchCanvas(width, height int) Canvas {
	if width <= 0 || height <= 0 {
		return DefaultCanvas
	}
	ratio := float64(width) / float64(height)
	best := catalog[0]
	bestDiff := math.Abs(ratio - best.Ratio())
	for _, c := range catalog[1:] {
		if diff := math.Abs(ratio - c.Ratio()); diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	return best
}

// CanvasFor sniffs the image buffer and matches its aspect ratio. ok is false
// when the dimensions could not be read and DefaultCanvas was returned.
func CanvasFor(data []byte) (Canvas, bool) {
	w, h, ok := Dimensions(data)
	if !ok || w <= 0 || h <= 0 {
		return DefaultCanvas, false
	}
	return MatchCanvas(w, h), true
}
