package state

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mibu/internal/assets"
	"github.com/Faultbox/mibu/internal/bones"
	"github.com/Faultbox/mibu/pkg/geometry"
)

const cubeModel = `{
  "format_version": "1.12.0",
  "minecraft:geometry": [{
    "description": {"identifier": "geometry.cube", "texture_width": 64, "texture_height": 32},
    "bones": [
      {"name": "root", "pivot": [0, 0, 0]},
      {"name": "box", "parent": "root", "pivot": [0, 0, 0],
       "cubes": [{"origin": [0, 0, 0], "size": [8, 8, 8], "uv": [0, 0]}]}
    ]
  }]
}`

const danglingModel = `{
  "minecraft:geometry": [{
    "description": {"identifier": "geometry.bad", "texture_width": 64, "texture_height": 64},
    "bones": [{"name": "arm", "parent": "body"}]
  }]
}`

func newState(t *testing.T) *Model {
	t.Helper()
	am := assets.NewManager(nil)
	am.AddSource(fstest.MapFS{
		"models/cube.geo.json": {Data: []byte(cubeModel)},
		"models/bad.geo.json":  {Data: []byte(danglingModel)},
	})
	return New(am, nil)
}

func TestLoadCatalog(t *testing.T) {
	m := newState(t)
	assert.False(t, m.Loaded())

	var calls int
	m.OnLoad(func(g *geometry.Geometry, f *bones.Forest) {
		calls++
		assert.Equal(t, "geometry.cube", g.Description.Identifier)
		assert.Equal(t, 2, f.Len())
	})

	require.NoError(t, m.LoadCatalog("cube"))
	assert.Equal(t, 1, calls)
	assert.True(t, m.Loaded())
	assert.Equal(t, Source{Kind: SourceCatalog, Name: "cube"}, m.Source())

	w, h := m.TextureSize()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
}

func TestLoadFailureKeepsPreviousModel(t *testing.T) {
	m := newState(t)
	require.NoError(t, m.LoadCatalog("cube"))
	before := m.Geometry()

	var calls int
	m.OnLoad(func(*geometry.Geometry, *bones.Forest) { calls++ })

	tests := []struct {
		name string
		load func() error
		want error
	}{
		{"dangling parent", func() error { return m.LoadCatalog("bad") }, bones.ErrUnknownParent},
		{"missing catalog entry", func() error { return m.LoadCatalog("nope") }, assets.ErrNotFound},
		{"malformed json", func() error { return m.LoadBytes([]byte(`{"minecraft:geometry": [`), "drop") }, nil},
		{"missing description", func() error {
			return m.LoadBytes([]byte(`{"minecraft:geometry": [{"bones": []}]}`), "drop")
		}, geometry.ErrMissingField},
		{"image content", func() error {
			return m.LoadBytes([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), "skin.png")
		}, ErrNotGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.load()
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Same(t, before, m.Geometry())
			assert.Equal(t, "cube", m.Source().Name)
		})
	}
	assert.Zero(t, calls)
}

func TestLoadFileAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.geo.json")
	require.NoError(t, os.WriteFile(path, []byte(cubeModel), 0o644))

	m := New(nil, nil)
	assert.ErrorIs(t, m.Reload(), ErrNoModel)

	require.NoError(t, m.LoadFile(path))
	assert.Equal(t, SourceFile, m.Source().Kind)
	assert.Equal(t, 1, m.Geometry().CubeCount())

	g := &geometry.Geometry{
		Description: geometry.Description{Identifier: "geometry.cube", TextureWidth: 64, TextureHeight: 32},
		Bones: []geometry.Bone{{
			Name:  "box",
			Cubes: []geometry.Cube{{Size: geometry.Vec3{1, 1, 1}}, {Size: geometry.Vec3{2, 2, 2}}},
		}},
	}
	data, err := geometry.Marshal(g, "1.12.0")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.NoError(t, m.Reload())
	assert.Equal(t, 2, m.Geometry().CubeCount())

	assert.Error(t, m.LoadFile(filepath.Join(dir, "missing.geo.json")))
	assert.Equal(t, 2, m.Geometry().CubeCount())
}

func TestLoadCatalogWithoutAssets(t *testing.T) {
	m := New(nil, nil)
	assert.ErrorIs(t, m.LoadCatalog("steve"), assets.ErrNotFound)
}

func TestBuiltinCatalog(t *testing.T) {
	am := assets.NewManager(nil)
	am.AddSource(assets.Builtin())
	m := New(am, nil)

	for _, name := range am.Models() {
		require.NoError(t, m.LoadCatalog(name), name)
	}
	require.NoError(t, m.LoadCatalog(assets.DefaultModel()))
	_, ok := m.Forest().Lookup("head")
	assert.True(t, ok)
}
