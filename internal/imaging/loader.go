package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// SupportedExtensions lists the lower-case file extensions the loader accepts
// when scanning directories. Load itself sniffs the content and does not
// look at the extension.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// IsSupported reports whether path has one of the SupportedExtensions.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DecodeError reports that an image path is missing or its bytes are not a
// supported raster format.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RasterImage is a decoded image ready for segmentation.
//
// The pixel data always starts at (0,0) and is fully opaque: sources with an
// alpha channel are composited onto white, so transparent areas read as
// background. A RasterImage is never modified after Load returns.
type RasterImage struct {
	// Path is the path exactly as passed to Load.
	Path string

	// Width is the image width in pixels.
	Width int

	// Height is the image height in pixels.
	Height int

	// Channels is the colour depth reported in annotations. Every source is
	// treated as three-channel colour, so it is always 3.
	Channels int

	// Pixels holds the decoded pixel data.
	Pixels image.Image
}

// Load reads and decodes the image at path.
//
// JPEG EXIF orientation is applied so that pixel coordinates match what an
// image viewer displays. Any failure, including a missing file, is returned
// as a *DecodeError.
func Load(path string) (*RasterImage, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("image has no pixels")}
	}

	return FromImage(path, img), nil
}

// FromImage wraps an in-memory image as a RasterImage with the given path.
// It applies the same normalisation as Load.
func FromImage(path string, img image.Image) *RasterImage {
	bounds := img.Bounds()
	return &RasterImage{
		Path:     path,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: 3,
		Pixels:   flatten(img),
	}
}

// flatten returns img unchanged when it is opaque and anchored at the
// origin, otherwise an opaque copy composited onto white.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() && bounds.Min == (image.Point{}) {
		return img
	}
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(canvas, imaging.Clone(img), image.Pt(0, 0), 1.0)
}

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The annotation server uses it for its inspection and preview tools, where
// the same image is typically examined several times in a row. The annotation
// pipeline itself always loads fresh.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/image.png") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*RasterImage
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*RasterImage),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
// Failed loads are not cached.
func (c *ImageCache) Load(path string) (*RasterImage, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*RasterImage)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// The server evicts after writing an annotation so that a file replaced on
// disk is reloaded on the next call.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Depth is the channel count written to annotations (always 3).
	Depth int `json:"depth"`

	// Format is the detected image format from the file extension, or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
//
// The format is determined by file extension:
//   - ".png" -> "png"
//   - ".jpg", ".jpeg" -> "jpeg"
//   - ".gif" -> "gif"
//   - ".bmp" -> "bmp"
//   - ".tif", ".tiff" -> "tiff"
//   - ".webp" -> "webp"
//   - Other extensions -> "unknown"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	case ".webp":
		format = "webp"
	}

	return &ImageInfo{
		Width:         img.Width,
		Height:        img.Height,
		Depth:         img.Channels,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	return &DimensionsResult{
		Width:  img.Width,
		Height: img.Height,
	}, nil
}
