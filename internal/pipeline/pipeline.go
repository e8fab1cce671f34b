// Package pipeline turns an image of a single object on a light background
// into a PASCAL VOC annotation document.
//
// Each invocation runs Loader, Segmenter, Contour Extractor, Box Selector and
// Writer in sequence and shares no mutable state with other invocations, so
// RunBatch can process images in parallel.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ironsheep/voc-autolabel/internal/detection"
	"github.com/ironsheep/voc-autolabel/internal/imaging"
	"github.com/ironsheep/voc-autolabel/internal/segment"
	"github.com/ironsheep/voc-autolabel/internal/voc"
)

// ErrEmptyLabel is returned when an annotation is requested without a label.
var ErrEmptyLabel = errors.New("label must not be empty")

// Config holds the per-run parameters of the pipeline.
type Config struct {
	// Threshold is the gray level at or below which a pixel is foreground.
	Threshold uint8

	// Label is used by jobs that do not carry their own label.
	Label string

	// Tracer extracts contours. Nil selects detection.MooreTracer.
	Tracer detection.Tracer

	// Logger receives stage diagnostics. Nil selects slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the default threshold and tracer.
func DefaultConfig() Config {
	return Config{
		Threshold: segment.DefaultThreshold,
		Tracer:    detection.MooreTracer{},
	}
}

// Annotator runs the annotation pipeline. It is safe for concurrent use.
type Annotator struct {
	threshold uint8
	label     string
	tracer    detection.Tracer
	log       *slog.Logger
}

// New creates an Annotator from cfg.
func New(cfg Config) *Annotator {
	a := &Annotator{
		threshold: cfg.Threshold,
		label:     cfg.Label,
		tracer:    cfg.Tracer,
		log:       cfg.Logger,
	}
	if a.tracer == nil {
		a.tracer = detection.MooreTracer{}
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	return a
}

// Threshold returns the foreground cutoff in use.
func (a *Annotator) Threshold() uint8 {
	return a.threshold
}

// WithThreshold returns a copy of a that segments with threshold t.
func (a *Annotator) WithThreshold(t uint8) *Annotator {
	cp := *a
	cp.threshold = t
	return &cp
}

// Outcome describes a successful annotation.
type Outcome struct {
	// Annotation is the record that was (or would be) written.
	Annotation *voc.Annotation `json:"-"`

	// Box is the selected bounding box.
	Box detection.Box `json:"box"`

	// Regions is the number of foreground contours found.
	Regions int `json:"regions"`

	// ForegroundPixels is the number of pixels classified as foreground.
	ForegroundPixels int `json:"foreground_pixels"`

	// Background is the border colour report of the source image.
	Background *segment.BackgroundResult `json:"background"`
}

// Annotate runs segmentation, contour extraction and box selection on an
// already loaded image and builds the annotation record without writing it.
func (a *Annotator) Annotate(img *imaging.RasterImage, label string) (*Outcome, error) {
	if label == "" {
		label = a.label
	}
	if label == "" {
		return nil, ErrEmptyLabel
	}

	bg := segment.BackgroundReport(img.Pixels)
	if !bg.NearWhite {
		a.log.Warn("background is not near-white, box may cover the whole frame",
			"path", img.Path, "background", bg.Hex, "lightness", bg.Lightness)
	}

	mask := segment.Segment(img.Pixels, a.threshold)

	contours, err := a.tracer.Trace(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to extract contours: %w", err)
	}
	contours = detection.SortRaster(contours)

	sel, err := detection.SelectLargest(contours, img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	a.log.Debug("selected region",
		"path", img.Path,
		"threshold", a.threshold,
		"contours", len(contours),
		"candidates", sel.Candidates,
		"box", sel.Box.String())

	return &Outcome{
		Annotation:       voc.New(img, sel.Box, label),
		Box:              sel.Box,
		Regions:          len(contours),
		ForegroundPixels: mask.Count(),
		Background:       bg,
	}, nil
}

// GenerateAnnotation annotates the image at imagePath with label and writes
// the document to outputPath.
//
// It fails with *imaging.DecodeError, *detection.NoForegroundError or
// *voc.WriteError. Nothing is written unless every stage succeeded.
func (a *Annotator) GenerateAnnotation(imagePath, outputPath, label string) (*Outcome, error) {
	img, err := imaging.Load(imagePath)
	if err != nil {
		return nil, err
	}

	out, err := a.Annotate(img, label)
	if err != nil {
		return nil, err
	}

	if err := voc.WriteFile(outputPath, out.Annotation); err != nil {
		return nil, err
	}

	a.log.Debug("annotation written", "path", imagePath, "output", outputPath)
	return out, nil
}
