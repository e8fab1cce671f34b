//go:build gocv
// +build gocv

package detection

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ironsheep/voc-autolabel/internal/segment"
)

// GoCVTracer extracts external contours with OpenCV's findContours.
//
// OpenCV's RetrievalExternal drops foreground islands that sit inside a hole
// of a larger region. Such islands can never win SelectLargest, so the
// selected box is the same as with MooreTracer.
type GoCVTracer struct{}

func newGoCVTracer() (Tracer, error) {
	return GoCVTracer{}, nil
}

// Trace implements Tracer.
func (GoCVTracer) Trace(mask *segment.Mask) ([]Contour, error) {
	data := make([]byte, len(mask.Pix))
	for i, v := range mask.Pix {
		if v != 0 {
			data[i] = 255
		}
	}

	mat, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build mask matrix: %w", err)
	}
	defer mat.Close()

	found := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pts := found.At(i).ToPoints()
		c := make(Contour, len(pts))
		for j, p := range pts {
			c[j] = Point{X: p.X, Y: p.Y}
		}
		contours = append(contours, c)
	}

	// OpenCV enumerates bottom-up; restore raster order.
	return SortRaster(contours), nil
}
