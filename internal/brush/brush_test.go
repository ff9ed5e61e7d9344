package brush

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mibu/internal/layers"
	"github.com/Faultbox/mibu/pkg/geometry"
)

var blue = color.RGBA{B: 255, A: 255}

func setup(t *testing.T) (*Coordinator, *layers.Stack) {
	t.Helper()
	stack, err := layers.New(64, 64, layers.BlendNormal, nil)
	require.NoError(t, err)
	return New(stack, blue, nil), stack
}

func overlayPixels(t *testing.T, stack *layers.Stack) []Pixel {
	t.Helper()
	l, err := stack.Layer(stack.BrushLayer())
	require.NoError(t, err)
	return opaque(l.Image)
}

func opaque(img *image.RGBA) []Pixel {
	var out []Pixel
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				out = append(out, Pixel{x, y})
			}
		}
	}
	return out
}

func TestActive_Priority(t *testing.T) {
	c, _ := setup(t)

	_, ok := c.Active()
	assert.False(t, ok, "nothing set")
	assert.Equal(t, SourceNone, c.ActiveSource())

	c.SetModel(5, 6)
	p, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, Pixel{5, 6}, p)
	assert.Equal(t, SourceModel, c.ActiveSource())

	c.SetPreview(20, 30)
	p, _ = c.Active()
	assert.Equal(t, Pixel{20, 30}, p, "preview wins over model")
	assert.Equal(t, SourcePreview, c.ActiveSource())

	c.ClearPreview()
	p, _ = c.Active()
	assert.Equal(t, Pixel{5, 6}, p, "falls back to model")

	c.ClearModel()
	_, ok = c.Active()
	assert.False(t, ok)
}

func TestOverlay_SingleDot(t *testing.T) {
	c, stack := setup(t)

	c.SetModel(1, 1)
	c.SetModel(2, 2)
	assert.Equal(t, []Pixel{{2, 2}}, overlayPixels(t, stack), "dot moves, does not accumulate")
	assert.Equal(t, blue, stack.Image().RGBAAt(2, 2), "composite refreshed")

	c.SetPreview(9, 9)
	assert.Equal(t, []Pixel{{9, 9}}, overlayPixels(t, stack))

	c.ClearPreview()
	c.ClearModel()
	assert.Empty(t, overlayPixels(t, stack))
	assert.Empty(t, opaque(stack.Base()), "hovering never paints the base")
}

func TestOutOfAtlas_ClearsSource(t *testing.T) {
	c, stack := setup(t)
	c.SetModel(3, 3)
	c.SetModel(64, 3)
	_, ok := c.Active()
	assert.False(t, ok)

	c.SetPreview(-1, 0)
	_, ok = c.Active()
	assert.False(t, ok)
	assert.Empty(t, overlayPixels(t, stack))
}

func TestStroke(t *testing.T) {
	c, stack := setup(t)

	// no active pixel: painting cannot start
	assert.False(t, c.SetPainting(true))

	c.SetModel(10, 10)
	require.True(t, c.SetPainting(true))
	assert.Empty(t, opaque(stack.Base()), "starting a stroke writes nothing")

	c.SetModel(11, 10)
	assert.Equal(t, []Pixel{{11, 10}}, opaque(stack.Base()))
	assert.Equal(t, blue, stack.Base().RGBAAt(11, 10))

	c.SetPreview(12, 12)
	assert.Equal(t, []Pixel{{11, 10}, {12, 12}}, opaque(stack.Base()))

	// losing the pointer ends the stroke
	c.ClearPreview()
	c.ClearModel()
	assert.False(t, c.Painting())
	c.SetModel(20, 20)
	assert.Len(t, opaque(stack.Base()), 2)

	c.SetPainting(true)
	c.SetPainting(false)
	c.SetModel(21, 20)
	assert.Len(t, opaque(stack.Base()), 2, "stopped stroke writes nothing")
}

func TestStroke_OnlyMovesPaint(t *testing.T) {
	c, stack := setup(t)

	c.SetModel(30, 30)
	c.SetPreview(5, 5)
	require.True(t, c.SetPainting(true))

	c.SetColor(DefaultColor)
	assert.Empty(t, opaque(stack.Base()), "colour change paints nothing")

	// the model pointer takes over without moving
	c.ClearPreview()
	assert.Equal(t, SourceModel, c.ActiveSource())
	assert.True(t, c.Painting())
	assert.Empty(t, opaque(stack.Base()))

	// a hidden pointer moving does not paint
	c.SetPreview(6, 6)
	c.SetModel(31, 30)
	assert.Equal(t, []Pixel{{6, 6}}, opaque(stack.Base()))

	c.ClearPreview()
	c.SetModel(32, 30)
	assert.Equal(t, []Pixel{{6, 6}, {32, 30}}, opaque(stack.Base()))
	assert.Equal(t, DefaultColor, stack.Base().RGBAAt(32, 30))
}

func TestDraw(t *testing.T) {
	c, stack := setup(t)
	assert.False(t, c.Draw())

	c.SetPreview(4, 7)
	require.True(t, c.Draw())
	assert.Equal(t, []Pixel{{4, 7}}, opaque(stack.Base()))
	assert.False(t, c.Painting(), "a single stamp is not a stroke")
}

func TestSetColor(t *testing.T) {
	c, stack := setup(t)
	c.SetModel(0, 0)
	c.SetColor(DefaultColor)
	assert.Equal(t, DefaultColor, c.Color())

	l, _ := stack.Layer(stack.BrushLayer())
	assert.Equal(t, DefaultColor, l.Image.RGBAAt(0, 0))
}

func TestOverCube(t *testing.T) {
	c, _ := setup(t)
	head := geometry.Cube{Size: geometry.Vec3{8, 8, 8}}

	assert.False(t, c.OverCube(head), "no active pixel")

	c.SetModel(10, 2)
	assert.True(t, c.OverCube(head))

	c.SetPreview(40, 40)
	assert.False(t, c.OverCube(head), "preview pointer takes precedence")
}
