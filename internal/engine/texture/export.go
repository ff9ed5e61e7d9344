package texture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// Export formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case FormatPNG, "":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return nil
}

// Exporter writes timestamped atlas snapshots to a directory.
type Exporter struct {
	outputDir string
	prefix    string
	format    string
	now       func() time.Time
}

// NewExporter creates an exporter. An empty format means PNG.
func NewExporter(outputDir, prefix, format string) *Exporter {
	if format == "" {
		format = FormatPNG
	}
	return &Exporter{
		outputDir: outputDir,
		prefix:    prefix,
		format:    strings.ToLower(format),
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory.
func (e *Exporter) SetOutputDir(dir string) {
	e.outputDir = dir
}

// GenerateFilename returns the path the next Save would write to.
func (e *Exporter) GenerateFilename() string {
	timestamp := e.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.%s", e.prefix, timestamp, e.format)
	if e.outputDir != "" {
		filename = filepath.Join(e.outputDir, filename)
	}
	return filename
}

// Save writes img to a fresh timestamped file and returns its path.
func (e *Exporter) Save(img image.Image) (string, error) {
	return e.SaveAs(img, e.GenerateFilename())
}

// SaveAs writes img to filename, creating parent directories. The format
// follows the file extension, falling back to the exporter's format.
func (e *Exporter) SaveAs(img image.Image, filename string) (string, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if format != FormatPNG && format != FormatWebP {
		format = e.format
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, img, format); err != nil {
		return "", err
	}
	return filename, nil
}

// FromBottomUp builds an image from tightly packed RGBA rows stored bottom
// row first, the layout glReadPixels returns.
func FromBottomUp(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}
