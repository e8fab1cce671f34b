package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/voc-autolabel/internal/detection"
)

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodePreview(t *testing.T, res *PreviewResult) image.Image {
	t.Helper()
	if res.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", res.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func rgb8(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestCropBox_Inclusive(t *testing.T) {
	img := solidImage(100, 80, color.White)
	img.Set(10, 20, color.Black)
	img.Set(29, 39, color.Black)

	res, err := CropBox(img, detection.Box{XMin: 10, YMin: 20, XMax: 29, YMax: 39}, 1.0)
	if err != nil {
		t.Fatalf("CropBox failed: %v", err)
	}
	if res.Width != 20 || res.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 20x20", res.Width, res.Height)
	}

	out := decodePreview(t, res)
	if r, _, _ := rgb8(out.At(0, 0)); r != 0 {
		t.Errorf("top-left corner not included: r=%d", r)
	}
	if r, _, _ := rgb8(out.At(19, 19)); r != 0 {
		t.Errorf("bottom-right corner not included: r=%d", r)
	}
}

func TestCropBox_Scale(t *testing.T) {
	img := solidImage(100, 100, color.RGBA{255, 0, 0, 255})
	box := detection.Box{XMin: 0, YMin: 0, XMax: 49, YMax: 49}

	tests := []struct {
		scale float64
		want  int
	}{
		{0, 50},
		{1.0, 50},
		{2.0, 100},
		{0.5, 25},
	}
	for _, tt := range tests {
		res, err := CropBox(img, box, tt.scale)
		if err != nil {
			t.Fatalf("CropBox(scale=%v) failed: %v", tt.scale, err)
		}
		if res.Width != tt.want || res.Height != tt.want {
			t.Errorf("scale %v: got %dx%d, want %dx%d", tt.scale, res.Width, res.Height, tt.want, tt.want)
		}
	}
}

func TestCropBox_Invalid(t *testing.T) {
	img := solidImage(100, 100, color.White)

	tests := []struct {
		name  string
		box   detection.Box
		scale float64
	}{
		{"x out of bounds", detection.Box{XMin: 0, YMin: 0, XMax: 100, YMax: 50}, 1},
		{"negative", detection.Box{XMin: -1, YMin: 0, XMax: 50, YMax: 50}, 1},
		{"degenerate", detection.Box{XMin: 5, YMin: 5, XMax: 5, YMax: 50}, 1},
		{"negative scale", detection.Box{XMin: 0, YMin: 0, XMax: 50, YMax: 50}, -1},
		{"scale to nothing", detection.Box{XMin: 0, YMin: 0, XMax: 1, YMax: 1}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropBox(img, tt.box, tt.scale); err == nil {
				t.Error("CropBox should fail")
			}
		})
	}
}

func TestDrawBox(t *testing.T) {
	img := solidImage(40, 30, color.Black)
	box := detection.Box{XMin: 5, YMin: 6, XMax: 20, YMax: 25}

	res, err := DrawBox(img, box, "#00FF00", 1)
	if err != nil {
		t.Fatalf("DrawBox failed: %v", err)
	}
	if res.Width != 40 || res.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", res.Width, res.Height)
	}

	out := decodePreview(t, res)
	onEdge := []image.Point{{5, 6}, {20, 6}, {5, 25}, {20, 25}, {12, 6}, {12, 25}, {5, 15}, {20, 15}}
	for _, p := range onEdge {
		if r, g, b := rgb8(out.At(p.X, p.Y)); r != 0 || g != 255 || b != 0 {
			t.Errorf("edge pixel %v: got (%d,%d,%d), want green", p, r, g, b)
		}
	}
	offEdge := []image.Point{{12, 15}, {4, 6}, {21, 6}, {12, 26}, {0, 0}}
	for _, p := range offEdge {
		if r, g, b := rgb8(out.At(p.X, p.Y)); r != 0 || g != 0 || b != 0 {
			t.Errorf("pixel %v changed: got (%d,%d,%d), want black", p, r, g, b)
		}
	}

	// The source image is not modified.
	if r, g, b := rgb8(img.At(5, 6)); r != 0 || g != 0 || b != 0 {
		t.Error("DrawBox modified its input")
	}
}

func TestDrawBox_DefaultsAndThickness(t *testing.T) {
	img := solidImage(40, 40, color.White)
	box := detection.Box{XMin: 10, YMin: 10, XMax: 30, YMax: 30}

	res, err := DrawBox(img, box, "", 3)
	if err != nil {
		t.Fatalf("DrawBox failed: %v", err)
	}
	out := decodePreview(t, res)

	if r, g, b := rgb8(out.At(12, 20)); r != 255 || g != 0 || b != 0 {
		t.Errorf("thick edge pixel: got (%d,%d,%d), want red", r, g, b)
	}
	if r, g, b := rgb8(out.At(13, 20)); r != 255 || g != 255 || b != 255 {
		t.Errorf("interior pixel: got (%d,%d,%d), want white", r, g, b)
	}
}

func TestDrawBox_Invalid(t *testing.T) {
	img := solidImage(10, 10, color.White)

	if _, err := DrawBox(img, detection.Box{XMin: 0, YMin: 0, XMax: 10, YMax: 5}, "", 1); err == nil {
		t.Error("DrawBox should fail for a box outside the image")
	}
	if _, err := DrawBox(img, detection.Box{XMin: 0, YMin: 0, XMax: 5, YMax: 5}, "#GGHHII", 1); err == nil {
		t.Error("DrawBox should fail for an invalid colour")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00FF00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FFFF", color.RGBA{0, 0, 255, 255}, false},
		{"#FFFFFF00", color.RGBA{0, 0, 0, 0}, false},
		{"", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#ZZZZZZ", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := parseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
