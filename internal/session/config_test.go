package session

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mibu/internal/config"
	"github.com/Faultbox/mibu/internal/layers"
	"github.com/Faultbox/mibu/internal/state"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Brush.Color = "#00ff00"
	cfg.Brush.Overlay = "multiply"
	cfg.View.ShowLayers = false
	cfg.Export.Format = "webp"

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, opts.BrushColor)
	assert.Equal(t, layers.BlendMultiply, opts.Overlay)
	assert.True(t, opts.SkipLayers)
	assert.Equal(t, "webp", opts.ExportFormat)
	assert.Equal(t, cfg.View.TransitionTime, opts.ViewDuration)

	cfg.Brush.Color = "teal"
	_, err = OptionsFromConfig(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidColor)
}

func TestIsModelFile(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"steve", false},
		{"cube", false},
		{"cube.geo.json", true},
		{"models/cube", true},
		{filepath.Join("a", "b"), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsModelFile(tt.ref), tt.ref)
	}
}

func TestOpen(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.Open("cube"))
	assert.Equal(t, state.SourceCatalog, s.Model().Source().Kind)

	path := filepath.Join(t.TempDir(), "small.geo.json")
	require.NoError(t, os.WriteFile(path, []byte(smallModel), 0o644))
	require.NoError(t, s.Open(path))
	assert.Equal(t, state.SourceFile, s.Model().Source().Kind)

	w, h := s.Layers().Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, h)
}
