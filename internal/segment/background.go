package segment

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// NearWhiteLightness is the minimum CIE L* (0-100) of a border that still
// counts as a near-white background.
const NearWhiteLightness = 90.0

// BackgroundResult describes the colour of the image border.
type BackgroundResult struct {
	// Hex is the mean border colour as "#rrggbb".
	Hex string `json:"hex"`

	// Lightness is the CIE L* of the mean border colour, 0 (black) to 100 (white).
	Lightness float64 `json:"lightness"`

	// NearWhite is true when Lightness is at least NearWhiteLightness.
	NearWhite bool `json:"near_white"`

	// SampledPixels is the number of border pixels averaged.
	SampledPixels int `json:"sampled_pixels"`
}

// BackgroundReport averages the outermost ring of pixels of img.
//
// The annotation heuristic assumes the object sits on a near-white
// background; the border is where that background is most reliably visible.
func BackgroundReport(img image.Image) *BackgroundResult {
	bounds := img.Bounds()

	var r, g, b float64
	n := 0
	add := func(x, y int) {
		c, _ := colorful.MakeColor(img.At(x, y))
		r += c.R
		g += c.G
		b += c.B
		n++
	}

	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		add(x, bounds.Min.Y)
		if bounds.Dy() > 1 {
			add(x, bounds.Max.Y-1)
		}
	}
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		add(bounds.Min.X, y)
		if bounds.Dx() > 1 {
			add(bounds.Max.X-1, y)
		}
	}

	if n == 0 {
		return &BackgroundResult{}
	}

	mean := colorful.Color{R: r / float64(n), G: g / float64(n), B: b / float64(n)}
	l, _, _ := mean.Lab()
	lightness := l * 100

	return &BackgroundResult{
		Hex:           mean.Clamped().Hex(),
		Lightness:     lightness,
		NearWhite:     lightness >= NearWhiteLightness,
		SampledPixels: n,
	}
}
