package voc

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/voc-autolabel/internal/detection"
	"github.com/ironsheep/voc-autolabel/internal/imaging"
)

func testRaster(path string, width, height, channels int) *imaging.RasterImage {
	return &imaging.RasterImage{
		Path:     path,
		Width:    width,
		Height:   height,
		Channels: channels,
		Pixels:   image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

const wantDocument = `<annotation>
  <folder>collected</folder>
  <filename>biscuit01.jpg</filename>
  <path>images/collected/biscuit01.jpg</path>
  <source>
    <database>Unknown</database>
  </source>
  <size>
    <width>640</width>
    <height>480</height>
    <depth>3</depth>
  </size>
  <segmented>0</segmented>
  <object>
    <name>biscuit</name>
    <pose>Unspecified</pose>
    <truncated>0</truncated>
    <difficult>0</difficult>
    <bndbox>
      <xmin>112</xmin>
      <ymin>80</ymin>
      <xmax>530</xmax>
      <ymax>401</ymax>
    </bndbox>
  </object>
</annotation>
`

func TestMarshal_Schema(t *testing.T) {
	img := testRaster("images/collected/biscuit01.jpg", 640, 480, 3)
	a := New(img, detection.Box{XMin: 112, YMin: 80, XMax: 530, YMax: 401}, "biscuit")

	data, err := Marshal(a)
	require.NoError(t, err)
	require.Equal(t, wantDocument, string(data))
}

func TestMarshal_EscapesLabel(t *testing.T) {
	img := testRaster("dir/a.png", 10, 10, 3)
	a := New(img, detection.Box{XMin: 1, YMin: 1, XMax: 5, YMax: 5}, "salt & <pepper>")

	data, err := Marshal(a)
	require.NoError(t, err)
	require.Contains(t, string(data), "<name>salt &amp; &lt;pepper&gt;</name>")

	back, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, "salt & <pepper>", back.Objects[0].Name)
}

func TestRoundTrip(t *testing.T) {
	img := testRaster("/data/set/img.png", 200, 100, 1)
	box := detection.Box{XMin: 10, YMin: 20, XMax: 150, YMax: 90}

	data, err := Marshal(New(img, box, "cup"))
	require.NoError(t, err)

	a, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, "set", a.Folder)
	require.Equal(t, "img.png", a.Filename)
	require.Equal(t, "/data/set/img.png", a.Path)
	require.Equal(t, Size{Width: 200, Height: 100, Depth: 1}, a.Size)
	require.Equal(t, Flag(false), a.Segmented)
	require.Len(t, a.Objects, 1)
	require.Equal(t, box, a.Objects[0].BndBox.Box())
	require.Equal(t, PoseUnspecified, a.Objects[0].Pose)
	require.NoError(t, a.Check())
}

func TestUnmarshal_Rejects(t *testing.T) {
	_, err := Unmarshal([]byte("<notannotation></notannotation>"))
	require.Error(t, err)

	_, err = Unmarshal([]byte("<annotation><size>"))
	require.Error(t, err)

	_, err = Unmarshal([]byte("<annotation><segmented>maybe</segmented></annotation>"))
	require.Error(t, err)
}

func TestFlag_UnmarshalText(t *testing.T) {
	var f Flag
	require.NoError(t, f.UnmarshalText([]byte("1")))
	require.True(t, bool(f))
	require.NoError(t, f.UnmarshalText([]byte("false")))
	require.False(t, bool(f))
	require.NoError(t, f.UnmarshalText([]byte(" true ")))
	require.True(t, bool(f))
	require.Error(t, f.UnmarshalText([]byte("2")))
}

func TestCheck_OutOfBounds(t *testing.T) {
	a := New(testRaster("a/b.png", 10, 10, 3), detection.Box{XMin: 0, YMin: 0, XMax: 10, YMax: 5}, "x")
	require.Error(t, a.Check())
}

func TestFolderOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"images/collected/a.jpg", "collected"},
		{"/abs/dir/a.jpg", "dir"},
		{"a.jpg", ""},
		{"./a.jpg", ""},
		{"/a.jpg", ""},
		{"../up/a.jpg", "up"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, folderOf(tt.path))
		})
	}
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, filepath.Join("images", "a.xml"), OutputPath("images/a.jpg", ""))
	require.Equal(t, filepath.Join("out", "a.b.xml"), OutputPath("images/a.b.png", "out"))
	require.Equal(t, "noext.xml", OutputPath("noext", ""))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.xml")
	a := New(testRaster("imgs/a.png", 50, 40, 3), detection.Box{XMin: 1, YMin: 2, XMax: 30, YMax: 20}, "obj")

	require.NoError(t, WriteFile(out, a))

	back, err := ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, a.Objects, back.Objects)
	require.Equal(t, a.Size, back.Size)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFile_Overwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a.xml")
	require.NoError(t, os.WriteFile(out, []byte("stale content that is longer than nothing"), 0o644))

	a := New(testRaster("imgs/a.png", 50, 40, 3), detection.Box{XMin: 1, YMin: 2, XMax: 30, YMax: 20}, "obj")
	require.NoError(t, WriteFile(out, a))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	want, err := Marshal(a)
	require.NoError(t, err)
	require.Equal(t, want, data)
}

func TestWriteFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	a := New(testRaster("imgs/a.png", 50, 40, 3), detection.Box{XMin: 1, YMin: 2, XMax: 30, YMax: 20}, "obj")

	first := filepath.Join(dir, "first.xml")
	second := filepath.Join(dir, "second.xml")
	require.NoError(t, WriteFile(first, a))
	require.NoError(t, WriteFile(second, a))

	b1, err := os.ReadFile(first)
	require.NoError(t, err)
	b2, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "a.xml")
	a := New(testRaster("imgs/a.png", 50, 40, 3), detection.Box{XMin: 1, YMin: 2, XMax: 30, YMax: 20}, "obj")

	err := WriteFile(out, a)
	require.Error(t, err)

	var we *WriteError
	require.True(t, errors.As(err, &we))
	require.Equal(t, out, we.Path)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteFile_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))

	a := New(testRaster("imgs/a.png", 50, 40, 3), detection.Box{XMin: 1, YMin: 2, XMax: 30, YMax: 20}, "obj")
	err := WriteFile(filepath.Join(parent, "a.xml"), a)

	var we *WriteError
	require.True(t, errors.As(err, &we))
	require.True(t, strings.Contains(err.Error(), "not a directory"))
}

func TestWriteFile_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "taken.xml")
	require.NoError(t, os.Mkdir(target, 0o755))
	// Keep the directory non-empty so rename cannot replace it.
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

	a := New(testRaster("imgs/a.png", 50, 40, 3), detection.Box{XMin: 1, YMin: 2, XMax: 30, YMax: 20}, "obj")
	err := WriteFile(target, a)

	var we *WriteError
	require.True(t, errors.As(err, &we))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file must be removed after a failed rename")
}
