package segment

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// grayRamp builds a 256x1 image whose pixel x has gray value x.
func grayRamp() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 256, 1))
	for x := 0; x < 256; x++ {
		img.SetGray(x, 0, color.Gray{Y: uint8(x)})
	}
	return img
}

func TestThreshold_ExactBoundary(t *testing.T) {
	mask := Threshold(grayRamp(), DefaultThreshold)

	require.Equal(t, 256, mask.Width)
	require.Equal(t, 1, mask.Height)
	for x := 0; x < 256; x++ {
		if x <= 240 {
			require.Truef(t, mask.At(x, 0), "gray %d should be foreground", x)
		} else {
			require.Falsef(t, mask.At(x, 0), "gray %d should be background", x)
		}
	}
	require.Equal(t, 241, mask.Count())
}

func TestSegment_RGBGrayLevels(t *testing.T) {
	// Neutral RGB pixels have luma equal to their channel value.
	img := image.NewRGBA(image.Rect(0, 0, 256, 2))
	for x := 0; x < 256; x++ {
		v := uint8(x)
		img.Set(x, 0, color.RGBA{v, v, v, 255})
		img.Set(x, 1, color.RGBA{v, v, v, 255})
	}

	mask := Segment(img, DefaultThreshold)
	for y := 0; y < 2; y++ {
		for x := 0; x < 256; x++ {
			require.Equal(t, x <= 240, mask.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestSegment_LumaWeights(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})     // luma 76
	img.Set(1, 0, color.RGBA{255, 255, 0, 255})   // luma 226
	img.Set(2, 0, color.RGBA{255, 255, 255, 255}) // luma 255

	gray := Grayscale(img)
	require.InDelta(t, 76, int(gray.GrayAt(0, 0).Y), 1)
	require.InDelta(t, 226, int(gray.GrayAt(1, 0).Y), 1)
	require.Equal(t, uint8(255), gray.GrayAt(2, 0).Y)

	mask := Threshold(gray, DefaultThreshold)
	require.True(t, mask.At(0, 0))
	require.True(t, mask.At(1, 0))
	require.False(t, mask.At(2, 0))
}

func TestSegment_DimensionsMatchSource(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 37, 19))
	mask := Segment(img, DefaultThreshold)
	require.Equal(t, 37, mask.Width)
	require.Equal(t, 19, mask.Height)
	require.Len(t, mask.Pix, 37*19)
}

func TestThreshold_ExtremeLevels(t *testing.T) {
	ramp := grayRamp()

	require.Equal(t, 1, Threshold(ramp, 0).Count())
	require.Equal(t, 256, Threshold(ramp, 255).Count())
}

func TestMask_OutOfBoundsIsBackground(t *testing.T) {
	mask := NewMask(2, 2)
	mask.Set(0, 0, true)
	mask.Set(5, 5, true)

	require.True(t, mask.At(0, 0))
	require.False(t, mask.At(-1, 0))
	require.False(t, mask.At(2, 0))
	require.False(t, mask.At(0, 2))
	require.Equal(t, 1, mask.Count())

	mask.Set(0, 0, false)
	require.Equal(t, 0, mask.Count())
}

func TestMaskPreview(t *testing.T) {
	mask := NewMask(4, 3)
	mask.Set(1, 1, true)
	mask.Set(2, 1, true)

	preview, err := MaskPreview(mask)
	require.NoError(t, err)
	require.Equal(t, 4, preview.Width)
	require.Equal(t, 3, preview.Height)
	require.Equal(t, 2, preview.ForegroundPixels)
	require.Equal(t, "image/png", preview.MimeType)

	raw, err := base64.StdEncoding.DecodeString(preview.ImageBase64)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	img := mask.Image()
	require.Equal(t, uint8(255), img.GrayAt(1, 1).Y)
	require.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
}

func TestSegment_LumaRoundingAtCutoff(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{240, 240, 240, 255})
	img.Set(1, 0, color.RGBA{241, 241, 241, 255})
	img.Set(2, 0, color.RGBA{241, 240, 240, 255}) // luma 240.299 rounds to 240
	img.Set(3, 0, color.RGBA{242, 240, 240, 255}) // luma 240.598 rounds to 241

	gray := Grayscale(img)
	require.Equal(t, []uint8{240, 241, 240, 241}, gray.Pix)

	mask := Segment(img, DefaultThreshold)
	require.Equal(t, []uint8{1, 0, 1, 0}, mask.Pix)
}
