package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/voc-autolabel/internal/detection"
)

// PreviewResult contains a rendered preview image
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropBox extracts the pixels inside box, bounds included, optionally
// rescaled. A scale of 0 or 1 keeps the original size.
func CropBox(img image.Image, box detection.Box, scale float64) (*PreviewResult, error) {
	bounds := img.Bounds()
	if err := box.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, fmt.Errorf("invalid crop box: %w", err)
	}
	if scale < 0 {
		return nil, fmt.Errorf("invalid scale %.2f: must not be negative", scale)
	}

	rect := image.Rect(box.XMin, box.YMin, box.XMax+1, box.YMax+1).Add(bounds.Min)
	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.2f shrinks the crop to nothing", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return encodePreview(cropped)
}

func encodePreview(img image.Image) (*PreviewResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview image: %w", err)
	}

	return &PreviewResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
