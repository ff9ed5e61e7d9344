// Package state holds the active model geometry and its bone forest.
//
// Every load replaces the model wholesale. A failed load leaves the
// previous model in place; listeners only hear about successful swaps.
package state

import (
	"errors"
	"fmt"
	"os"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/Faultbox/mibu/internal/assets"
	"github.com/Faultbox/mibu/internal/bones"
	"github.com/Faultbox/mibu/pkg/geometry"
)

// Model state errors.
var (
	ErrNotGeometry = errors.New("content is not a geometry file")
	ErrNoModel     = errors.New("no model loaded")
)

// SourceKind tells where the active model came from.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceCatalog
	SourceFile
	SourceBytes
)

// Source identifies the content behind the active model.
type Source struct {
	Kind SourceKind
	Name string // catalog name or file path
}

// Listener is notified after a model has been installed.
type Listener func(g *geometry.Geometry, forest *bones.Forest)

// Model is the loaded model and its derived hierarchy.
type Model struct {
	assets *assets.Manager
	log    *zap.Logger

	geometry  *geometry.Geometry
	forest    *bones.Forest
	source    Source
	listeners []Listener
}

// New creates an empty model state resolving catalog names through am.
func New(am *assets.Manager, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{assets: am, log: log}
}

// OnLoad registers fn to run after every successful load.
func (m *Model) OnLoad(fn Listener) {
	m.listeners = append(m.listeners, fn)
}

// Geometry returns the active geometry, or nil before the first load.
func (m *Model) Geometry() *geometry.Geometry { return m.geometry }

// Forest returns the bone forest of the active geometry.
func (m *Model) Forest() *bones.Forest { return m.forest }

// Source returns where the active model was loaded from.
func (m *Model) Source() Source { return m.source }

// Loaded reports whether a model is active.
func (m *Model) Loaded() bool { return m.geometry != nil }

// TextureSize returns the atlas size the active model declares.
func (m *Model) TextureSize() (w, h int) {
	if m.geometry == nil {
		return 0, 0
	}
	return m.geometry.Description.TextureWidth, m.geometry.Description.TextureHeight
}

// LoadCatalog loads a named model through the asset manager.
func (m *Model) LoadCatalog(name string) error {
	if m.assets == nil {
		return fmt.Errorf("loading model %q: %w", name, assets.ErrNotFound)
	}
	data, err := m.assets.LoadModel(name)
	if err != nil {
		m.log.Error("model fetch failed", zap.String("model", name), zap.Error(err))
		return fmt.Errorf("loading model %q: %w", name, err)
	}
	return m.install(data, Source{Kind: SourceCatalog, Name: name})
}

// LoadFile loads a model file from disk.
func (m *Model) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		m.log.Error("model read failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("reading model file: %w", err)
	}
	return m.install(data, Source{Kind: SourceFile, Name: path})
}

// LoadBytes loads user-supplied geometry JSON. name is only used for logs.
func (m *Model) LoadBytes(data []byte, name string) error {
	return m.install(data, Source{Kind: SourceBytes, Name: name})
}

// Reload re-reads the active model from its source. Catalog entries are
// dropped from the asset cache first.
func (m *Model) Reload() error {
	switch m.source.Kind {
	case SourceCatalog:
		m.assets.Invalidate(assets.ModelPath(m.source.Name))
		return m.LoadCatalog(m.source.Name)
	case SourceFile:
		return m.LoadFile(m.source.Name)
	}
	return ErrNoModel
}

func (m *Model) install(data []byte, src Source) error {
	g, forest, err := decode(data)
	if err != nil {
		m.log.Error("model load failed",
			zap.String("source", src.Name),
			zap.Error(err))
		return err
	}

	m.geometry = g
	m.forest = forest
	m.source = src
	m.log.Info("model loaded",
		zap.String("source", src.Name),
		zap.String("identifier", g.Description.Identifier),
		zap.Int("bones", forest.Len()),
		zap.Int("cubes", g.CubeCount()),
		zap.Int("texture_width", g.Description.TextureWidth),
		zap.Int("texture_height", g.Description.TextureHeight))

	for _, fn := range m.listeners {
		fn(g, forest)
	}
	return nil
}

// decode parses and validates geometry content without touching state.
func decode(data []byte) (*geometry.Geometry, *bones.Forest, error) {
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotGeometry, kind.MIME.Value)
	}
	g, err := geometry.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing model: %w", err)
	}
	forest, err := bones.Build(g.Bones)
	if err != nil {
		return nil, nil, fmt.Errorf("building bone hierarchy: %w", err)
	}
	return g, forest, nil
}
