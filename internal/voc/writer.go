package voc

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteError reports that an annotation document could not be stored.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write annotation %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// WriteFile serializes a and stores it at path, replacing any existing file.
//
// The document is written to a temporary file in the destination directory
// and renamed into place, so readers see either the previous file or the
// complete new one. Every failure is returned as a *WriteError and leaves no
// temporary file behind.
func WriteFile(path string, a *Annotation) error {
	data, err := Marshal(a)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return &WriteError{Path: path, Err: fmt.Errorf("%s is not a directory", dir)}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ReadFile loads and parses the annotation document at path.
func ReadFile(path string) (*Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation: %w", err)
	}
	return Unmarshal(data)
}
