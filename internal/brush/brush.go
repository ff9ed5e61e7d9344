// Package brush merges the preview and model pointers into one brush
// position and drives paint writes into the layer stack.
package brush

import (
	"image/color"

	"go.uber.org/zap"

	"github.com/Faultbox/mibu/internal/layers"
	"github.com/Faultbox/mibu/internal/uvmap"
	"github.com/Faultbox/mibu/pkg/geometry"
)

// DefaultColor is the brush colour used when none is configured.
var DefaultColor = color.RGBA{R: 255, A: 255}

// Pixel is an atlas pixel coordinate.
type Pixel struct {
	X, Y int
}

// Source identifies which pointer produced the active pixel.
type Source int

const (
	SourceNone Source = iota
	SourcePreview
	SourceModel
)

// Coordinator owns the brush state. It is not safe for concurrent use;
// every call is expected on the event loop.
type Coordinator struct {
	stack    *layers.Stack
	color    color.RGBA
	preview  *Pixel
	model    *Pixel
	painting bool
	log      *zap.Logger
}

// New creates a coordinator painting into stack.
func New(stack *layers.Stack, c color.RGBA, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{stack: stack, color: c, log: log}
}

// Color returns the brush colour.
func (c *Coordinator) Color() color.RGBA { return c.color }

// SetColor changes the brush colour and redraws the overlay.
func (c *Coordinator) SetColor(col color.RGBA) {
	c.color = col
	c.update(SourceNone)
}

// Active returns the brush pixel: the preview pointer if set, otherwise the
// model pointer, otherwise nothing.
func (c *Coordinator) Active() (Pixel, bool) {
	p, src := c.active()
	if src == SourceNone {
		return Pixel{}, false
	}
	return *p, true
}

// ActiveSource reports which pointer currently drives the brush.
func (c *Coordinator) ActiveSource() Source {
	_, src := c.active()
	return src
}

func (c *Coordinator) active() (*Pixel, Source) {
	switch {
	case c.preview != nil:
		return c.preview, SourcePreview
	case c.model != nil:
		return c.model, SourceModel
	default:
		return nil, SourceNone
	}
}

// Painting reports whether a stroke is in progress.
func (c *Coordinator) Painting() bool { return c.painting }

// SetPreview moves the preview pointer. A pixel outside the atlas clears it.
func (c *Coordinator) SetPreview(x, y int) {
	c.preview = c.clip(x, y)
	c.update(SourcePreview)
}

// ClearPreview removes the preview pointer.
func (c *Coordinator) ClearPreview() {
	c.preview = nil
	c.update(SourceNone)
}

// SetModel moves the model pointer. A pixel outside the atlas clears it.
func (c *Coordinator) SetModel(x, y int) {
	c.model = c.clip(x, y)
	c.update(SourceModel)
}

// ClearModel removes the model pointer.
func (c *Coordinator) ClearModel() {
	c.model = nil
	c.update(SourceNone)
}

// SetPainting starts or stops a stroke. A stroke only starts while a
// brush pixel is active; the return value is the resulting state.
func (c *Coordinator) SetPainting(on bool) bool {
	_, src := c.active()
	c.painting = on && src != SourceNone
	if on && !c.painting {
		c.log.Debug("stroke ignored, no active pixel")
	}
	return c.painting
}

// Draw stamps the active pixel into the base layer.
func (c *Coordinator) Draw() bool {
	p, src := c.active()
	if src == SourceNone {
		return false
	}
	c.stamp(*p)
	c.stack.Composite()
	return true
}

// OverCube reports whether the active pixel lies in the cube's footprint.
func (c *Coordinator) OverCube(cube geometry.Cube) bool {
	p, src := c.active()
	if src == SourceNone {
		return false
	}
	return uvmap.OverCube(cube, p.X, p.Y)
}

func (c *Coordinator) clip(x, y int) *Pixel {
	if !c.stack.InBounds(x, y) {
		return nil
	}
	return &Pixel{X: x, Y: y}
}

func (c *Coordinator) stamp(p Pixel) {
	if err := c.stack.SetPixel(0, p.X, p.Y, c.color); err != nil {
		c.log.Error("base layer write failed", zap.Error(err))
	}
}

// update redraws the overlay dot and composites. The stroke continues
// only when moved names the pointer that drives the brush, so colour
// changes and falling back to the other pointer paint nothing.
func (c *Coordinator) update(moved Source) {
	overlay := c.stack.BrushLayer()
	if err := c.stack.ClearLayer(overlay); err != nil {
		c.log.Error("clearing brush layer", zap.Error(err))
		return
	}

	p, src := c.active()
	if src == SourceNone {
		c.painting = false
	} else {
		if err := c.stack.SetPixel(overlay, p.X, p.Y, c.color); err != nil {
			c.log.Error("brush layer write failed", zap.Error(err))
		}
		if c.painting && src == moved {
			c.stamp(*p)
		}
	}
	c.stack.Composite()
}
