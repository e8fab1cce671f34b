package segment

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// DefaultThreshold is the gray level at or below which a pixel is foreground.
const DefaultThreshold uint8 = 240

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale converts img to single-channel 8-bit luma using BT.601 weights.
// The result is anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	// bild writes the rounded luma into all three colour channels of an RGBA.
	rgba := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	bounds := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		for x := range dst {
			dst[x] = src[4*x]
		}
	}
	return gray
}

// Threshold binarizes a grayscale image: a pixel is foreground iff its value
// is less than or equal to threshold.
func Threshold(gray *image.Gray, threshold uint8) *Mask {
	bounds := gray.Bounds()
	mask := NewMask(bounds.Dx(), bounds.Dy())

	for y := 0; y < mask.Height; y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+mask.Width]
		dst := mask.Pix[y*mask.Width : (y+1)*mask.Width]
		for x, v := range src {
			if v <= threshold {
				dst[x] = 1
			}
		}
	}

	return mask
}

// Segment produces the foreground mask of img in one step.
func Segment(img image.Image, threshold uint8) *Mask {
	return Threshold(Grayscale(img), threshold)
}
