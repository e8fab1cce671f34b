//go:build !gocv
// +build !gocv

package detection

import "errors"

func newGoCVTracer() (Tracer, error) {
	return nil, errors.New("gocv build tag is not enabled")
}
