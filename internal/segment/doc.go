// Package segment separates a single dark object from a near-white background.
//
// Segmentation is a fixed-threshold binarization of the BT.601 luma of each
// pixel. A pixel is foreground when its gray value is at or below the
// threshold, so the default threshold of 240 classifies everything except
// near-white pixels as part of the object.
//
// The package also offers two diagnostics that never affect the mask itself:
// a PNG preview of the mask and a border-colour report telling whether the
// background looks near-white at all.
package segment
