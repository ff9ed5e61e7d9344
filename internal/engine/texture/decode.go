// Package texture decodes base skin images and encodes finished atlases.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Texture errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyImage        = errors.New("image has no pixels")
)

// decoders maps sniffed types to their decoder. Formats are dispatched
// explicitly since TGA registers no magic with the image package.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"png":  png.Decode,
	"webp": webp.Decode,
	"bmp":  bmp.Decode,
	"tga":  tga.Decode,
}

// Sniff returns the image type of data, using name's extension for
// formats without a magic number (TGA).
func Sniff(data []byte, name string) (string, error) {
	kind, err := filetype.Match(data)
	matched := err == nil && kind != filetype.Unknown
	if matched && kind.Extension != "tga" && decoders[kind.Extension] != nil {
		return kind.Extension, nil
	}
	if strings.EqualFold(path.Ext(name), ".tga") {
		return "tga", nil
	}
	if matched {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Decode decodes an encoded image into an RGBA buffer with origin (0,0).
func Decode(data []byte, name string) (*image.RGBA, error) {
	format, err := Sniff(data, name)
	if err != nil {
		return nil, err
	}

	img, err := decoders[format](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", name, format, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, name)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to a zero-origin RGBA copy. RGBA inputs that
// already start at (0,0) are returned as is.
func ToRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
