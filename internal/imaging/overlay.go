package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/ironsheep/voc-autolabel/internal/detection"
)

// DefaultBoxColor is used by DrawBox when no colour is given.
const DefaultBoxColor = "#FF0000"

// DrawBox renders the outline of box onto a copy of img. The outline is
// thickness pixels wide (at least 1) and drawn inside the box, so the
// annotated columns and rows are always painted.
func DrawBox(img image.Image, box detection.Box, colorHex string, thickness int) (*PreviewResult, error) {
	bounds := img.Bounds()
	if err := box.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, fmt.Errorf("invalid box: %w", err)
	}
	if colorHex == "" {
		colorHex = DefaultBoxColor
	}
	boxColor, err := parseHexColor(colorHex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", colorHex, err)
	}
	if thickness < 1 {
		thickness = 1
	}

	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	src := image.NewUniform(boxColor)
	outer := image.Rect(box.XMin, box.YMin, box.XMax+1, box.YMax+1)
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+thickness), // top
		image.Rect(outer.Min.X, outer.Max.Y-thickness, outer.Max.X, outer.Max.Y), // bottom
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+thickness, outer.Max.Y), // left
		image.Rect(outer.Max.X-thickness, outer.Min.Y, outer.Max.X, outer.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(result, e.Intersect(outer), src, image.Point{}, draw.Over)
	}

	return encodePreview(result)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	// color.RGBA is alpha-premultiplied.
	if a != 255 {
		r = uint8(uint16(r) * uint16(a) / 255)
		g = uint8(uint16(g) * uint16(a) / 255)
		b = uint8(uint16(b) * uint16(a) / 255)
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
