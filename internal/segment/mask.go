package segment

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// Mask is a binary foreground mask with the same dimensions as its source
// image. Pix holds one byte per pixel in row-major order; 1 marks foreground.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-background mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At reports whether (x, y) is foreground. Coordinates outside the mask are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks (x, y) as foreground or background.
func (m *Mask) Set(x, y int, fg bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	var v uint8
	if fg {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Image renders the mask as a grayscale image, foreground white (255).
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// MaskPreviewResult contains a mask encoded as base64 PNG.
type MaskPreviewResult struct {
	// Width of the mask in pixels (same as the source image).
	Width int `json:"width"`

	// Height of the mask in pixels (same as the source image).
	Height int `json:"height"`

	// ForegroundPixels is the number of pixels classified as foreground.
	ForegroundPixels int `json:"foreground_pixels"`

	// ImageBase64 is the mask encoded as base64 PNG, foreground in white.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// MaskPreview encodes the mask for display.
func MaskPreview(m *Mask) (*MaskPreviewResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode mask image: %w", err)
	}

	return &MaskPreviewResult{
		Width:            m.Width,
		Height:           m.Height,
		ForegroundPixels: m.Count(),
		ImageBase64:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:         "image/png",
	}, nil
}
