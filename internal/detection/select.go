package detection

import (
	"fmt"
)

// NoForegroundError reports that segmentation produced no region that could
// be annotated: either there were no contours at all, or every region was
// degenerate (a single pixel, or a one-pixel-wide line).
type NoForegroundError struct {
	// Regions is the number of contours that were considered.
	Regions int
}

func (e *NoForegroundError) Error() string {
	if e.Regions == 0 {
		return "no foreground regions found"
	}
	return fmt.Sprintf("no foreground region with non-zero extent (%d degenerate)", e.Regions)
}

// Selection is the outcome of SelectLargest.
type Selection struct {
	// Box is the bounding box of the winning contour.
	Box Box `json:"box"`

	// Index is the position of the winning contour in the input slice.
	Index int `json:"index"`

	// Candidates is the number of non-degenerate contours considered.
	Candidates int `json:"candidates"`
}

// SelectLargest returns the bounding box of the contour whose bounding
// rectangle has the largest area.
//
// Ties go to the contour that comes first in contours, so the result depends
// only on the enumeration order, never on map iteration or floating point.
// Degenerate boxes are skipped. An empty or all-degenerate input fails with
// *NoForegroundError; no fallback box is ever produced.
func SelectLargest(contours []Contour, width, height int) (*Selection, error) {
	best := -1
	var bestBox Box
	candidates := 0

	for i, c := range contours {
		if len(c) == 0 {
			continue
		}
		box := BoundsOf(c)
		if box.Degenerate() {
			continue
		}
		candidates++
		if best < 0 || box.Area() > bestBox.Area() {
			best = i
			bestBox = box
		}
	}

	if best < 0 {
		return nil, &NoForegroundError{Regions: len(contours)}
	}
	if err := bestBox.Validate(width, height); err != nil {
		return nil, fmt.Errorf("selected contour %d: %w", best, err)
	}

	return &Selection{Box: bestBox, Index: best, Candidates: candidates}, nil
}
