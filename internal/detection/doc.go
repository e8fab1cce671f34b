// Package detection finds foreground regions in a binary mask and picks the
// one to annotate.
//
// # Contours
//
// A Tracer turns a segment.Mask into one Contour per maximal 8-connected
// foreground component. Only the outer boundary of each component is
// reported; holes never produce contours of their own. The default
// MooreTracer is pure Go. Building with the gocv tag enables GoCVTracer,
// which delegates to OpenCV's findContours.
//
// Contours are always enumerated in raster order of their top-most,
// left-most pixel. This order is the tie-breaker for box selection.
//
// # Coordinate System
//
// All coordinates are 0-based pixel indices with (0,0) at the top-left,
// X increasing rightward and Y increasing downward. Box coordinates are
// inclusive on both ends, so every corner of a Box lies inside the image.
//
// # Selection
//
// SelectLargest computes each contour's bounding box, discards degenerate
// boxes (zero width or height) and returns the one with the largest area.
// The heuristic assumes a single object per image; when several objects are
// present only the largest is annotated.
package detection
