package detection

import (
	"fmt"
)

// Box is an axis-aligned bounding box in inclusive pixel coordinates:
// XMax and YMax are the right-most column and bottom-most row that belong
// to the region.
type Box struct {
	XMin int `json:"xmin"`
	YMin int `json:"ymin"`
	XMax int `json:"xmax"`
	YMax int `json:"ymax"`
}

// Width returns XMax - XMin.
func (b Box) Width() int { return b.XMax - b.XMin }

// Height returns YMax - YMin.
func (b Box) Height() int { return b.YMax - b.YMin }

// Area returns (XMax-XMin) * (YMax-YMin).
func (b Box) Area() int { return b.Width() * b.Height() }

// Degenerate reports whether the box has zero width or height.
func (b Box) Degenerate() bool {
	return b.XMin >= b.XMax || b.YMin >= b.YMax
}

// Validate checks xmin < xmax, ymin < ymax and that all four coordinates lie
// inside a width x height image.
func (b Box) Validate(width, height int) error {
	if b.Degenerate() {
		return fmt.Errorf("degenerate box (%d,%d)-(%d,%d)", b.XMin, b.YMin, b.XMax, b.YMax)
	}
	if b.XMin < 0 || b.YMin < 0 || b.XMax >= width || b.YMax >= height {
		return fmt.Errorf("box (%d,%d)-(%d,%d) outside image bounds %dx%d",
			b.XMin, b.YMin, b.XMax, b.YMax, width, height)
	}
	return nil
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.XMin, b.YMin, b.XMax, b.YMax)
}

// BoundsOf returns the smallest box enclosing every point of c.
// c must not be empty.
func BoundsOf(c Contour) Box {
	box := Box{XMin: c[0].X, YMin: c[0].Y, XMax: c[0].X, YMax: c[0].Y}
	for _, p := range c[1:] {
		if p.X < box.XMin {
			box.XMin = p.X
		}
		if p.X > box.XMax {
			box.XMax = p.X
		}
		if p.Y < box.YMin {
			box.YMin = p.Y
		}
		if p.Y > box.YMax {
			box.YMax = p.Y
		}
	}
	return box
}
