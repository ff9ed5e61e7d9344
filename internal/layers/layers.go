// Package layers holds the paint layer stack and its composite.
//
// Layer 0 is the base skin and the last layer is the brush overlay. All
// layers always share the atlas size.
package layers

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/fcolor"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// Stack errors.
var (
	ErrLayerIndex  = errors.New("layer index out of range")
	ErrInvalidSize = errors.New("invalid layer size")
)

// BlendMode selects how a layer is merged onto the layers below it.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendColorBurn
	BlendMultiply
	BlendDarken
)

// String returns the config name of the mode.
func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendColorBurn:
		return "color-burn"
	case BlendMultiply:
		return "multiply"
	case BlendDarken:
		return "darken"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// ParseBlendMode parses a config name. Unknown names yield BlendColorBurn.
func ParseBlendMode(s string) BlendMode {
	switch s {
	case "normal":
		return BlendNormal
	case "multiply":
		return BlendMultiply
	case "darken":
		return BlendDarken
	default:
		return BlendColorBurn
	}
}

// Layer is one pixel surface of the stack.
type Layer struct {
	Name   string
	Image  *image.RGBA
	Blend  BlendMode
	Hidden bool
}

// Stack is an ordered set of equally sized layers.
type Stack struct {
	layers    []*Layer
	width     int
	height    int
	out       *image.RGBA
	listeners []func(*image.RGBA)
	log       *zap.Logger
}

// New creates a stack with a blank base layer and a brush overlay that
// uses the given blend mode.
func New(width, height int, overlay BlendMode, log *zap.Logger) (*Stack, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if log == nil {
		log = zap.NewNop()
	}
	rect := image.Rect(0, 0, width, height)
	s := &Stack{
		width:  width,
		height: height,
		log:    log,
		layers: []*Layer{
			{Name: "base", Image: image.NewRGBA(rect), Blend: BlendNormal},
			{Name: "brush", Image: image.NewRGBA(rect), Blend: overlay},
		},
		out: image.NewRGBA(rect),
	}
	return s, nil
}

// Size returns the atlas size shared by every layer.
func (s *Stack) Size() (width, height int) {
	return s.width, s.height
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layer returns the i-th layer.
func (s *Stack) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(s.layers) {
		return nil, fmt.Errorf("%w: %d", ErrLayerIndex, i)
	}
	return s.layers[i], nil
}

// BrushLayer returns the index of the brush overlay.
func (s *Stack) BrushLayer() int { return len(s.layers) - 1 }

// Base returns the base layer image.
func (s *Stack) Base() *image.RGBA { return s.layers[0].Image }

// Image returns the most recent composite.
func (s *Stack) Image() *image.RGBA { return s.out }

// OnRepaint registers fn to run after every composite.
func (s *Stack) OnRepaint(fn func(*image.RGBA)) {
	s.listeners = append(s.listeners, fn)
}

// Resize replaces every layer with a blank surface of the new size.
func (s *Stack) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	rect := image.Rect(0, 0, width, height)
	for _, l := range s.layers {
		l.Image = image.NewRGBA(rect)
	}
	s.out = image.NewRGBA(rect)
	s.width, s.height = width, height
	s.log.Debug("layers resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// SetBase replaces the base layer with img, scaling it to the atlas size
// with nearest-neighbour sampling when the sizes differ.
func (s *Stack) SetBase(img image.Image) {
	dst := s.layers[0].Image
	clear(dst.Pix)
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() == s.width && b.Dy() == s.height {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return
	}
	s.log.Warn("base image size differs from atlas, scaling",
		zap.Int("imageWidth", b.Dx()), zap.Int("imageHeight", b.Dy()),
		zap.Int("atlasWidth", s.width), zap.Int("atlasHeight", s.height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
}

// InBounds reports whether (x, y) is an atlas pixel.
func (s *Stack) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.width && y < s.height
}

// SetPixel writes one pixel of one layer. Out-of-atlas pixels are ignored.
func (s *Stack) SetPixel(layer, x, y int, c color.Color) error {
	l, err := s.Layer(layer)
	if err != nil {
		return err
	}
	if s.InBounds(x, y) {
		l.Image.Set(x, y, c)
	}
	return nil
}

// ClearLayer makes every pixel of a layer transparent.
func (s *Stack) ClearLayer(layer int) error {
	l, err := s.Layer(layer)
	if err != nil {
		return err
	}
	clear(l.Image.Pix)
	return nil
}

// AddLayer inserts a blank layer directly below the brush overlay and
// returns its index.
func (s *Stack) AddLayer(name string, mode BlendMode) int {
	l := &Layer{
		Name:  name,
		Image: image.NewRGBA(image.Rect(0, 0, s.width, s.height)),
		Blend: mode,
	}
	at := s.BrushLayer()
	s.layers = slices.Insert(s.layers, at, l)
	return at
}

// Composite merges all visible layers bottom to top. The base layer is
// copied as is; each layer above is blended by its mode. Repaint listeners
// run with the result.
func (s *Stack) Composite() *image.RGBA {
	out := s.merge(len(s.layers))
	s.out = out

	for _, fn := range s.listeners {
		fn(out)
	}
	return out
}

// Flatten merges the visible layers below the brush overlay into a new
// image. It leaves the last composite alone and does not notify
// listeners, so the hover dot never reaches saved files.
func (s *Stack) Flatten() *image.RGBA {
	return s.merge(s.BrushLayer())
}

// merge blends layers [0, end) into a copy of the base layer.
func (s *Stack) merge(end int) *image.RGBA {
	out := clone.AsRGBA(s.layers[0].Image)
	for _, l := range s.layers[1:end] {
		if l.Hidden {
			continue
		}
		out = blendLayer(out, l)
	}
	return out
}

func blendLayer(bg *image.RGBA, l *Layer) *image.RGBA {
	switch l.Blend {
	case BlendColorBurn:
		return blend.Blend(bg, l.Image, separable(colorBurn))
	case BlendMultiply:
		return blend.Blend(bg, l.Image, separable(func(b, s float64) float64 { return b * s }))
	case BlendDarken:
		return blend.Blend(bg, l.Image, separable(math.Min))
	default:
		draw.Draw(bg, bg.Bounds(), l.Image, image.Point{}, draw.Over)
		return bg
	}
}

// separable lifts a per-channel blend function into a source-over
// composite where the blended colour is weighted by the backdrop alpha.
// A transparent backdrop shows the source colour unchanged. Both inputs
// and the result are alpha-premultiplied.
func separable(fn func(b, s float64) float64) func(bg, fg fcolor.RGBAF64) fcolor.RGBAF64 {
	return func(bg, fg fcolor.RGBAF64) fcolor.RGBAF64 {
		ab, as := bg.A, fg.A
		if as == 0 {
			return bg
		}
		mix := func(pb, ps float64) float64 {
			cs := ps / as
			var cb float64
			if ab > 0 {
				cb = pb / ab
			}
			src := (1-ab)*cs + ab*fn(cb, cs)
			return as*src + (1-as)*pb
		}
		return fcolor.RGBAF64{
			R: mix(bg.R, fg.R),
			G: mix(bg.G, fg.G),
			B: mix(bg.B, fg.B),
			A: as + ab*(1-as),
		}
	}
}

func colorBurn(b, s float64) float64 {
	switch {
	case b >= 1:
		return 1
	case s <= 0:
		return 0
	default:
		return 1 - math.Min(1, (1-b)/s)
	}
}
