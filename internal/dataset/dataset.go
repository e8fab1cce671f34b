// Package dataset arranges annotated images into training and test folders.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AnnotationName returns the annotation file name paired with an image file
// name: the extension is replaced by ".xml".
func AnnotationName(imageName string) string {
	return strings.TrimSuffix(imageName, filepath.Ext(imageName)) + ".xml"
}

// ErrSameFile is returned when a source and destination resolve to the same
// file. Copying would truncate the source.
var ErrSameFile = errors.New("source and destination are the same file")

// CopyResult reports what CopyPairs did.
type CopyResult struct {
	// Copied lists the image names whose pair was copied, in input order.
	Copied []string `json:"copied"`

	// Files is the total number of files written (two per pair).
	Files int `json:"files"`
}

// CopyPairs copies each image in files, together with its annotation
// document, from srcDir to dstDir. Existing destination files are replaced.
//
// Processing stops at the first missing or unreadable file; pairs copied
// before that point are kept and listed in the result. Copying a directory
// onto itself fails with ErrSameFile before anything is written.
func CopyPairs(files []string, srcDir, dstDir string) (*CopyResult, error) {
	info, err := os.Stat(dstDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access destination: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("destination %s is not a directory", dstDir)
	}
	if srcInfo, err := os.Stat(srcDir); err == nil && os.SameFile(srcInfo, info) {
		return nil, fmt.Errorf("copy %s to %s: %w", srcDir, dstDir, ErrSameFile)
	}

	res := &CopyResult{Copied: make([]string, 0, len(files))}
	for _, name := range files {
		for _, f := range []string{name, AnnotationName(name)} {
			if err := copyFile(filepath.Join(srcDir, f), filepath.Join(dstDir, f)); err != nil {
				return res, err
			}
			res.Files++
		}
		res.Copied = append(res.Copied, name)
	}
	return res, nil
}

// copyFile writes src to a temporary file next to dst and renames it into
// place, so dst is never left truncated.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return fmt.Errorf("copy %s to %s: %w", src, dst, ErrSameFile)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(srcInfo.Mode().Perm()); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}

// Split divides files into a training and a test list. The input is sorted
// first and round(len(files) * testRatio) files, spread evenly through the
// sorted order, go to the test list, so the split is the same on every run.
//
// testRatio must be in [0, 1). A ratio of 0 puts everything in train.
func Split(files []string, testRatio float64) (train, test []string, err error) {
	if testRatio < 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio %.2f outside [0, 1)", testRatio)
	}

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	n := len(sorted)
	want := int(math.Round(float64(n) * testRatio))
	train = make([]string, 0, n-want)
	test = make([]string, 0, want)
	for i, f := range sorted {
		// File i goes to test when the running quota want*(i+1)/n steps up.
		if want*(i+1)/n > want*i/n {
			test = append(test, f)
		} else {
			train = append(train, f)
		}
	}
	return train, test, nil
}
