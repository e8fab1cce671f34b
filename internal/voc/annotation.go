package voc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/voc-autolabel/internal/detection"
	"github.com/ironsheep/voc-autolabel/internal/imaging"
)

const (
	// UnknownDatabase is the fixed value of source/database.
	UnknownDatabase = "Unknown"

	// PoseUnspecified is the fixed pose of generated objects.
	PoseUnspecified = "Unspecified"
)

// Flag is a VOC boolean, serialized as "0" or "1".
type Flag bool

// MarshalText implements encoding.TextMarshaler.
func (f Flag) MarshalText() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It also accepts the
// "true"/"false" spelling some tools emit.
func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.TrimSpace(string(text)) {
	case "0", "false", "":
		*f = false
	case "1", "true":
		*f = true
	default:
		return fmt.Errorf("invalid flag value %q", text)
	}
	return nil
}

// Annotation is the root <annotation> element.
type Annotation struct {
	XMLName   xml.Name `xml:"annotation" json:"-"`
	Folder    string   `xml:"folder" json:"folder"`
	Filename  string   `xml:"filename" json:"filename"`
	Path      string   `xml:"path" json:"path"`
	Source    Source   `xml:"source" json:"source"`
	Size      Size     `xml:"size" json:"size"`
	Segmented Flag     `xml:"segmented" json:"segmented"`
	Objects   []Object `xml:"object" json:"objects"`
}

// Source is the <source> element.
type Source struct {
	Database string `xml:"database" json:"database"`
}

// Size is the <size> element.
type Size struct {
	Width  int `xml:"width" json:"width"`
	Height int `xml:"height" json:"height"`
	Depth  int `xml:"depth" json:"depth"`
}

// Object is one labelled <object>.
type Object struct {
	Name      string `xml:"name" json:"name"`
	Pose      string `xml:"pose" json:"pose"`
	Truncated Flag   `xml:"truncated" json:"truncated"`
	Difficult Flag   `xml:"difficult" json:"difficult"`
	BndBox    BndBox `xml:"bndbox" json:"bndbox"`
}

// BndBox is the <bndbox> element.
type BndBox struct {
	XMin int `xml:"xmin" json:"xmin"`
	YMin int `xml:"ymin" json:"ymin"`
	XMax int `xml:"xmax" json:"xmax"`
	YMax int `xml:"ymax" json:"ymax"`
}

// Box converts the element back to a detection.Box.
func (b BndBox) Box() detection.Box {
	return detection.Box{XMin: b.XMin, YMin: b.YMin, XMax: b.XMax, YMax: b.YMax}
}

// New builds the annotation record for img with a single labelled box.
//
// folder is the name of the image's parent directory, filename its base name
// and path the image path exactly as it was given to the loader.
func New(img *imaging.RasterImage, box detection.Box, label string) *Annotation {
	return &Annotation{
		Folder:   folderOf(img.Path),
		Filename: filepath.Base(img.Path),
		Path:     img.Path,
		Source:   Source{Database: UnknownDatabase},
		Size: Size{
			Width:  img.Width,
			Height: img.Height,
			Depth:  img.Channels,
		},
		Objects: []Object{
			{
				Name: label,
				Pose: PoseUnspecified,
				BndBox: BndBox{
					XMin: box.XMin,
					YMin: box.YMin,
					XMax: box.XMax,
					YMax: box.YMax,
				},
			},
		},
	}
}

// folderOf returns the base name of the parent directory of path, or "" when
// path has no directory component.
func folderOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == filepath.Dir(dir) {
		return ""
	}
	return filepath.Base(dir)
}

// Marshal serializes a to its document form.
func Marshal(a *Annotation) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(a); err != nil {
		return nil, fmt.Errorf("failed to encode annotation: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode annotation: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal parses a document produced by Marshal or by other VOC tools.
func Unmarshal(data []byte) (*Annotation, error) {
	var a Annotation
	if err := xml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse annotation: %w", err)
	}
	if a.XMLName.Local != "annotation" {
		return nil, fmt.Errorf("unexpected root element <%s>", a.XMLName.Local)
	}
	return &a, nil
}

// Check verifies that every object box is non-degenerate and inside the
// declared image size.
func (a *Annotation) Check() error {
	for i, o := range a.Objects {
		if err := o.BndBox.Box().Validate(a.Size.Width, a.Size.Height); err != nil {
			return fmt.Errorf("object %d (%s): %w", i, o.Name, err)
		}
	}
	return nil
}

// OutputPath returns the annotation path for imagePath: the image's extension
// is replaced by ".xml". When outDir is non-empty the file is placed there
// instead of next to the image.
func OutputPath(imagePath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath)) + ".xml"
	if outDir == "" {
		return filepath.Join(filepath.Dir(imagePath), base)
	}
	return filepath.Join(outDir, base)
}
