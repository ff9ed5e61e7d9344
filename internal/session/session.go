// Package session wires the model state, paint layers, brush and pickers
// into one painting session driven by pointer events.
//
// A Session is not safe for concurrent use. Hosts call it from their event
// loop and hand in results of background work (file watches) through that
// loop.
package session

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/mibu/internal/assets"
	"github.com/Faultbox/mibu/internal/bones"
	"github.com/Faultbox/mibu/internal/brush"
	"github.com/Faultbox/mibu/internal/engine/camera"
	"github.com/Faultbox/mibu/internal/engine/model"
	"github.com/Faultbox/mibu/internal/engine/picking"
	"github.com/Faultbox/mibu/internal/engine/texture"
	"github.com/Faultbox/mibu/internal/layers"
	"github.com/Faultbox/mibu/internal/state"
	"github.com/Faultbox/mibu/pkg/geometry"
	"github.com/Faultbox/mibu/pkg/math"
)

// Options configures a session.
type Options struct {
	// Texture is the base image catalog name. Empty uses the model name
	// for catalog models and leaves the base blank otherwise.
	Texture string

	BrushColor color.RGBA
	Overlay    layers.BlendMode

	ExportDir    string
	ExportFormat string

	// ViewDuration is the view preset transition time in seconds.
	ViewDuration float32

	// SkipLayers leaves inflated overlay cubes out of the scene.
	SkipLayers bool
}

// DefaultOptions returns options with a red brush and colour-burn overlay.
func DefaultOptions() Options {
	return Options{
		BrushColor:   brush.DefaultColor,
		Overlay:      layers.BlendColorBurn,
		ExportFormat: texture.FormatPNG,
		ViewDuration: 0.4,
	}
}

// Session is one painting session.
type Session struct {
	opts   Options
	log    *zap.Logger
	assets *assets.Manager

	model    *state.Model
	stack    *layers.Stack
	brush    *brush.Coordinator
	picker   *picking.Picker
	exporter *texture.Exporter

	orbit   *camera.OrbitCamera
	preview *camera.PreviewCamera
	rotator *camera.Rotator

	modelW, modelH float32

	mesh         *model.Mesh
	meshDirty    bool
	framed       *model.Bounds
	outline      Outline
	outlineDirty bool

	revision uint64
}

// New creates a session. Models resolve through am, which may be nil for
// sessions that only load files or bytes.
func New(am *assets.Manager, opts Options, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	stack, err := layers.New(64, 64, opts.Overlay, log.Named("layers"))
	if err != nil {
		return nil, fmt.Errorf("creating layer stack: %w", err)
	}

	s := &Session{
		opts:     opts,
		log:      log,
		assets:   am,
		model:    state.New(am, log.Named("model")),
		stack:    stack,
		brush:    brush.New(stack, opts.BrushColor, log.Named("brush")),
		picker:   picking.NewPicker(),
		exporter: texture.NewExporter(opts.ExportDir, "skin", opts.ExportFormat),
		orbit:    camera.NewOrbitCamera(),
		preview:  camera.NewPreviewCamera(512, 512, 64, 64),
		rotator:  camera.NewRotator(opts.ViewDuration),
		modelW:   512,
		modelH:   512,
	}

	s.model.OnLoad(s.onModelLoaded)
	s.stack.OnRepaint(func(*image.RGBA) { s.revision++ })
	return s, nil
}

// Model returns the model state.
func (s *Session) Model() *state.Model { return s.model }

// Layers returns the paint layer stack.
func (s *Session) Layers() *layers.Stack { return s.stack }

// Brush returns the brush coordinator.
func (s *Session) Brush() *brush.Coordinator { return s.brush }

// Orbit returns the model view camera.
func (s *Session) Orbit() *camera.OrbitCamera { return s.orbit }

// Preview returns the preview camera.
func (s *Session) Preview() *camera.PreviewCamera { return s.preview }

// Atlas returns the current composite.
func (s *Session) Atlas() *image.RGBA { return s.stack.Image() }

// Revision increases on every composite, so renderers know when to
// re-upload the atlas.
func (s *Session) Revision() uint64 { return s.revision }

// LoadCatalog loads a bundled or catalog-directory model by name.
func (s *Session) LoadCatalog(name string) error { return s.model.LoadCatalog(name) }

// LoadFile loads a model file from disk.
func (s *Session) LoadFile(path string) error { return s.model.LoadFile(path) }

// LoadBytes loads dropped or piped geometry JSON.
func (s *Session) LoadBytes(data []byte, name string) error { return s.model.LoadBytes(data, name) }

// Reload re-reads the active model from its source.
func (s *Session) Reload() error { return s.model.Reload() }

// onModelLoaded resets everything derived from the previous model.
func (s *Session) onModelLoaded(g *geometry.Geometry, _ *bones.Forest) {
	tw, th := g.Description.TextureWidth, g.Description.TextureHeight

	s.brush.SetPainting(false)
	if err := s.stack.Resize(tw, th); err != nil {
		s.log.Error("resizing layers", zap.Error(err))
	}
	s.loadBaseTexture()

	s.meshDirty = true
	s.outlineDirty = true
	s.preview.SetTexture(tw, th)

	// a reload with the same extents keeps the user's orbit
	if m := s.Mesh(); m != nil && (s.framed == nil || !m.Bounds.ApproxEqual(*s.framed, 1e-4)) {
		s.orbit.FitModel(m.Bounds.Min, m.Bounds.Max)
		framed := m.Bounds
		s.framed = &framed
	}

	// clearing the pointers redraws the overlay and composites
	s.brush.ClearPreview()
	s.brush.ClearModel()
}

// baseTextureName resolves the base image for the active model.
func (s *Session) baseTextureName() string {
	if s.opts.Texture != "" {
		return s.opts.Texture
	}
	if src := s.model.Source(); src.Kind == state.SourceCatalog {
		return src.Name
	}
	return ""
}

// loadBaseTexture fills the base layer. Failures leave it blank.
func (s *Session) loadBaseTexture() {
	name := s.baseTextureName()
	if name == "" || s.assets == nil {
		return
	}
	data, path, err := s.assets.LoadTexture(name)
	if err != nil {
		s.log.Warn("base texture unavailable, starting blank", zap.String("texture", name), zap.Error(err))
		return
	}
	img, err := texture.Decode(data, path)
	if err != nil {
		s.log.Warn("base texture unreadable, starting blank", zap.String("path", path), zap.Error(err))
		return
	}
	s.stack.SetBase(img)
}

// SetBaseImage replaces the base layer with an encoded image.
func (s *Session) SetBaseImage(data []byte, name string) error {
	img, err := texture.Decode(data, name)
	if err != nil {
		return err
	}
	s.stack.SetBase(img)
	s.stack.Composite()
	return nil
}

// SetBaseFile replaces the base layer with an image file from disk.
func (s *Session) SetBaseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading base image: %w", err)
	}
	return s.SetBaseImage(data, path)
}

// Mesh returns the scene mesh, rebuilding it after a model change.
func (s *Session) Mesh() *model.Mesh {
	if s.meshDirty {
		s.mesh = model.BuildMesh(s.model.Geometry(), s.model.Forest(), model.BuildOptions{SkipLayers: s.opts.SkipLayers})
		s.meshDirty = false
	}
	return s.mesh
}

// ModelMatrix returns the view-preset rotation about the model centre.
func (s *Session) ModelMatrix() math.Mat4 {
	m := s.Mesh()
	if m == nil {
		return math.Identity()
	}
	return s.rotator.Matrix(m.Bounds.Center().Array())
}

// SetView turns the model towards a preset view.
func (s *Session) SetView(v camera.View) {
	s.rotator.SetView(v)
}

// View returns the current view preset.
func (s *Session) View() camera.View { return s.rotator.View() }

// Update advances animations by dt seconds. Returns true when the scene
// needs redrawing.
func (s *Session) Update(dt float32) bool {
	return s.rotator.Update(dt)
}

// Export writes the composite to a timestamped file in the export
// directory, or to path when given.
func (s *Session) Export(path string) (string, error) {
	atlas := s.stack.Flatten()
	if path == "" {
		return s.exporter.Save(atlas)
	}
	return s.exporter.SaveAs(atlas, path)
}

// ExportGLB writes the textured scene mesh as binary glTF.
func (s *Session) ExportGLB(w io.Writer) error {
	return model.ExportGLB(w, s.Mesh(), s.stack.Flatten())
}

// ExportModel writes the textured scene mesh as a .glb file next to the
// atlas exports, or to path when given.
func (s *Session) ExportModel(path string) (string, error) {
	if path == "" {
		gen := s.exporter.GenerateFilename()
		path = strings.TrimSuffix(gen, filepath.Ext(gen)) + ".glb"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := s.ExportGLB(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	s.log.Info("model exported", zap.String("path", path))
	return path, nil
}
