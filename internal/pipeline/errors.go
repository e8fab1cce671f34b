package pipeline

import (
	"context"
	"errors"

	"github.com/ironsheep/voc-autolabel/internal/detection"
	"github.com/ironsheep/voc-autolabel/internal/imaging"
	"github.com/ironsheep/voc-autolabel/internal/voc"
)

// Error kinds reported by Kind.
const (
	KindImageDecode  = "image_decode"
	KindNoForeground = "no_foreground"
	KindWrite        = "write"
	KindInvalid      = "invalid"
	KindCanceled     = "canceled"
	KindInternal     = "internal"
)

// Kind classifies an error returned by the pipeline. It returns "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var decodeErr *imaging.DecodeError
	var noFgErr *detection.NoForegroundError
	var writeErr *voc.WriteError

	switch {
	case errors.As(err, &decodeErr):
		return KindImageDecode
	case errors.As(err, &noFgErr):
		return KindNoForeground
	case errors.As(err, &writeErr):
		return KindWrite
	case errors.Is(err, ErrEmptyLabel):
		return KindInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
