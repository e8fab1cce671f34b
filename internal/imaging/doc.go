// Package imaging decodes image files into rasters ready for segmentation
// and renders preview images for inspection.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward. Boxes passed to CropBox and DrawBox
// are inclusive on all four sides, the same convention used in annotation
// documents.
//
// # Normalisation
//
// Load applies JPEG EXIF orientation, moves the pixel origin to (0,0) and
// composites images with transparency onto white. Callers downstream never
// see alpha.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. A RasterImage is immutable once
// loaded, and the preview functions only read from their input.
package imaging
