package detection

import (
	"fmt"
	"sort"

	"github.com/ironsheep/voc-autolabel/internal/segment"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

func (p Point) add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Contour is the closed outer boundary of one 8-connected foreground region,
// listed in tracing order. Consecutive points are 8-adjacent and the last
// point is adjacent to the first.
type Contour []Point

// Tracer extracts one contour per connected foreground component of a mask.
//
// Implementations must return contours in raster order of each component's
// top-most, left-most pixel so that downstream tie-breaking is stable.
type Tracer interface {
	Trace(mask *segment.Mask) ([]Contour, error)
}

// NewTracer returns the tracer registered under name: "trace" (the default,
// pure Go) or "gocv" (requires building with the gocv tag).
func NewTracer(name string) (Tracer, error) {
	switch name {
	case "", "trace":
		return MooreTracer{}, nil
	case "gocv":
		return newGoCVTracer()
	default:
		return nil, fmt.Errorf("unknown contour backend: %s", name)
	}
}

// neighbors lists the 8 neighbour offsets clockwise (y grows downward),
// starting west.
var neighbors = [8]Point{
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
}

// MooreTracer finds external boundaries with Moore-neighbour tracing.
//
// The mask is scanned in raster order. The first unvisited foreground pixel
// of a component is necessarily its top-most, left-most pixel; its boundary
// is traced clockwise from there, then the whole component is flood-filled
// as visited so that neither its interior nor the edges of its holes start a
// new contour. Foreground islands lying inside a hole are components of their
// own and get their own contour.
type MooreTracer struct{}

// Trace implements Tracer.
func (MooreTracer) Trace(mask *segment.Mask) ([]Contour, error) {
	width, height := mask.Width, mask.Height
	if len(mask.Pix) != width*height {
		return nil, fmt.Errorf("mask buffer has %d pixels, want %dx%d", len(mask.Pix), width, height)
	}

	visited := make([]bool, width*height)
	contours := make([]Contour, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if mask.Pix[i] == 0 || visited[i] {
				continue
			}
			contours = append(contours, traceBoundary(mask, Point{X: x, Y: y}))
			floodFill(mask, visited, x, y)
		}
	}

	return contours, nil
}

// traceBoundary walks the outer boundary of the component whose top-most,
// left-most pixel is start. Tracing stops when the walk is back at start and
// about to repeat its first move.
func traceBoundary(mask *segment.Mask, start Point) Contour {
	// Everything west of and above start is background, so the search may
	// begin as if we had entered start from the west.
	second, from, ok := nextBoundaryPixel(mask, start, 0)
	if !ok {
		return Contour{start}
	}

	contour := Contour{start}
	cur := second
	limit := 4*mask.Width*mask.Height + 8

	for steps := 0; steps < limit; steps++ {
		next, nextFrom, _ := nextBoundaryPixel(mask, cur, from)
		if cur == start && next == second {
			break
		}
		contour = append(contour, cur)
		cur, from = next, nextFrom
	}

	return contour
}

// nextBoundaryPixel searches the neighbours of c clockwise, starting just
// after direction from (which points at a background pixel). It returns the
// first foreground neighbour and the direction, seen from that neighbour, of
// the background pixel examined just before it.
func nextBoundaryPixel(mask *segment.Mask, c Point, from int) (Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (from + i) % 8
		p := c.add(neighbors[d])
		if mask.At(p.X, p.Y) {
			back := c.add(neighbors[(d+7)%8])
			return p, directionTo(p, back), true
		}
	}
	return c, from, false
}

// directionTo returns the index in neighbors of the offset from p to q.
// p and q must be 8-adjacent.
func directionTo(p, q Point) int {
	delta := Point{X: q.X - p.X, Y: q.Y - p.Y}
	for i, n := range neighbors {
		if n == delta {
			return i
		}
	}
	return 0
}

// floodFill marks every pixel 8-connected to (startX, startY) as visited.
//
// Uses an explicit stack rather than recursion so large blobs cannot
// overflow the goroutine stack.
func floodFill(mask *segment.Mask, visited []bool, startX, startY int) {
	width := mask.Width
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !mask.At(p.X, p.Y) {
			continue
		}
		i := p.Y*width + p.X
		if visited[i] {
			continue
		}
		visited[i] = true

		for _, n := range neighbors {
			q := p.add(n)
			if mask.At(q.X, q.Y) && !visited[q.Y*width+q.X] {
				stack = append(stack, q)
			}
		}
	}
}

// rasterKey returns the top-most, left-most point of c.
func rasterKey(c Contour) Point {
	key := c[0]
	for _, p := range c[1:] {
		if p.Y < key.Y || (p.Y == key.Y && p.X < key.X) {
			key = p
		}
	}
	return key
}

// SortRaster orders contours by their top-most, left-most point. Empty
// contours are dropped.
func SortRaster(contours []Contour) []Contour {
	out := make([]Contour, 0, len(contours))
	for _, c := range contours {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := rasterKey(out[i]), rasterKey(out[j])
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}
