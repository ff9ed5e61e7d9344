// Package viewer runs the interactive painter: an SDL2 window with the 3D
// model on the left and the flat atlas preview on the right.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/mibu/internal/assets"
	"github.com/Faultbox/mibu/internal/config"
	"github.com/Faultbox/mibu/internal/engine/camera"
	"github.com/Faultbox/mibu/internal/engine/input"
	"github.com/Faultbox/mibu/internal/engine/renderer"
	"github.com/Faultbox/mibu/internal/engine/texture"
	"github.com/Faultbox/mibu/internal/engine/window"
	"github.com/Faultbox/mibu/internal/session"
	"github.com/Faultbox/mibu/internal/state"
	"github.com/Faultbox/mibu/internal/viewer/layout"
)

const title = "mibu"

var (
	modelBackground   = [3]float32{0.16, 0.17, 0.2}
	previewBackground = [3]float32{0.11, 0.11, 0.13}

	gridColor    = [4]float32{1, 1, 1, 0.08}
	outlineColor = [4]float32{1, 1, 1, 0.35}
	hoverColor   = [4]float32{1, 0.85, 0.2, 1}
	hoverFill    = [4]float32{1, 0.85, 0.2, 0.15}
	betweenColor = [4]float32{1, 0.85, 0.2, 0.5}
	innerColor   = [4]float32{1, 1, 1, 0.15}
)

// viewKeys maps number keys to view presets.
var viewKeys = map[sdl.Scancode]camera.View{
	sdl.SCANCODE_1: camera.ViewFront,
	sdl.SCANCODE_2: camera.ViewBack,
	sdl.SCANCODE_3: camera.ViewLeft,
	sdl.SCANCODE_4: camera.ViewRight,
	sdl.SCANCODE_5: camera.ViewUp,
	sdl.SCANCODE_6: camera.ViewDown,
}

// Viewer is the interactive painter window.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	session *session.Session
	watcher *assets.Watcher

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	layout   layout.Layout

	screenshots *texture.Exporter
	screenshot  bool

	running  bool
	dragging uint8
	dragPane layout.Pane
	showGrid bool
	scratch  []float32
}

// New opens the window and prepares the renderer. The session must already
// hold a model or the panes stay empty until one is dropped in.
func New(cfg *config.Config, sess *session.Session, log *zap.Logger) (*Viewer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Viewer{
		cfg:      cfg,
		log:      log,
		session:  sess,
		input:    input.New(),
		layout:   layout.New(cfg.Window.Width, cfg.Window.Height),
		showGrid: cfg.View.ShowGrid,

		screenshots: texture.NewExporter(cfg.Export.Dir, "screenshot", texture.FormatPNG),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, log.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the GL context the window created
	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(dw, dh, log.Named("renderer"))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if cfg.Assets.Watch {
		v.watcher, err = assets.NewWatcher(log.Named("watch"))
		if err != nil {
			log.Warn("file watching disabled", zap.Error(err))
		} else {
			v.watchSource()
		}
	}

	w, h := v.window.GetSize()
	v.resize(w, h)
	v.updateTitle()
	return v, nil
}

// Run drives the event loop until the window closes.
func (v *Viewer) Run() error {
	v.running = true

	var frameLimit time.Duration
	if v.cfg.Window.FPSLimit > 0 {
		frameLimit = time.Second / time.Duration(v.cfg.Window.FPSLimit)
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		for _, event := range v.input.Events() {
			v.handle(event)
		}

		// 2. Model file changes
		v.pollWatcher()

		// 3. Animations
		v.session.Update(dt)

		// 4. Render and present
		v.render()
		if v.screenshot {
			v.saveScreenshot()
			v.screenshot = false
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dtMs", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
		if frameLimit > 0 {
			if spare := frameLimit - time.Since(now); spare > 0 {
				time.Sleep(spare)
			}
		}
	}
	return nil
}

// Close releases the window and GPU resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			v.log.Warn("closing watcher", zap.Error(err))
		}
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) resize(width, height int) {
	v.layout.Resize(width, height)
	dw, dh := v.window.DrawableSize()
	v.renderer.Resize(dw, dh)

	m, p := v.layout.Model(), v.layout.Preview()
	v.session.SetModelViewport(float32(m.W), float32(m.H))
	v.session.SetPreviewViewport(float32(p.W), float32(p.H))
}

func (v *Viewer) handle(e input.Event) {
	switch e.Type {
	case input.EventWindowResize:
		v.resize(e.Width, e.Height)

	case input.EventWindowLeave:
		v.session.LeaveModel()
		v.session.LeavePreview()

	case input.EventKeyDown:
		v.handleKey(e)

	case input.EventMouseMove:
		v.handleMove(e)

	case input.EventMouseDown:
		switch e.Button {
		case input.ButtonLeft:
			v.session.PointerDown()
		case input.ButtonRight, input.ButtonMiddle:
			if v.dragging == 0 && !v.session.Painting() {
				v.dragging = e.Button
				v.dragPane = v.layout.PaneAt(e.MouseX, e.MouseY)
			}
		}

	case input.EventMouseUp:
		if e.Button == input.ButtonLeft {
			v.session.PointerUp()
		}
		if e.Button == v.dragging {
			v.dragging = 0
		}

	case input.EventMouseWheel:
		switch v.layout.PaneAt(e.MouseX, e.MouseY) {
		case layout.PaneModel:
			v.session.Orbit().HandleZoom(e.WheelY)
		case layout.PanePreview:
			x, y := v.layout.Local(layout.PanePreview, e.MouseX, e.MouseY)
			v.session.Preview().HandleZoom(e.WheelY, x, y)
			v.handleMove(e)
		}

	case input.EventDropFile:
		v.openFile(e.Path)
	}
}

func (v *Viewer) handleMove(e input.Event) {
	if v.dragging != 0 {
		switch v.dragPane {
		case layout.PaneModel:
			v.session.Orbit().HandleDrag(float32(e.RelX), float32(e.RelY))
		case layout.PanePreview:
			v.session.Preview().HandlePan(float32(e.RelX), float32(e.RelY))
		}
	}

	pane := v.layout.PaneAt(e.MouseX, e.MouseY)
	x, y := v.layout.Local(pane, e.MouseX, e.MouseY)
	switch pane {
	case layout.PaneModel:
		v.session.LeavePreview()
		v.session.PointerModel(x, y)
	case layout.PanePreview:
		v.session.LeaveModel()
		v.session.PointerPreview(x, y)
	default:
		v.session.LeaveModel()
		v.session.LeavePreview()
	}
}

func (v *Viewer) handleKey(e input.Event) {
	if view, ok := viewKeys[e.Key]; ok {
		v.session.SetView(view)
		return
	}

	switch e.Key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_TAB:
		v.layout.ShowPreview = !v.layout.ShowPreview
		w, h := v.window.GetSize()
		v.resize(w, h)
	case sdl.SCANCODE_G:
		if e.Ctrl {
			v.exportModel()
			return
		}
		v.showGrid = !v.showGrid
	case sdl.SCANCODE_S:
		if e.Ctrl {
			v.exportAtlas()
		}
	case sdl.SCANCODE_F12:
		v.screenshot = true
	case sdl.SCANCODE_R:
		if err := v.session.Reload(); err != nil {
			v.log.Error("reload failed", zap.Error(err))
		}
	case sdl.SCANCODE_C:
		if err := v.session.Layers().ClearLayer(0); err != nil {
			v.log.Error("clearing base layer", zap.Error(err))
		}
		v.session.Layers().Composite()
	}
}

func (v *Viewer) exportAtlas() {
	path, err := v.session.Export("")
	if err != nil {
		v.log.Error("export failed", zap.Error(err))
		return
	}
	v.log.Info("atlas exported", zap.String("path", path))
}

func (v *Viewer) exportModel() {
	if _, err := v.session.ExportModel(""); err != nil {
		v.log.Error("model export failed", zap.Error(err))
	}
}

// saveScreenshot writes the frame just rendered, before it is swapped out.
func (v *Viewer) saveScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	img, err := texture.FromBottomUp(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	path, err := v.screenshots.Save(img)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// openFile loads a dropped model file or base image.
func (v *Viewer) openFile(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := v.session.LoadFile(path); err != nil {
			v.log.Error("loading model", zap.String("path", path), zap.Error(err))
			return
		}
		v.watchSource()
		v.updateTitle()
		return
	}

	if err := v.session.SetBaseFile(path); err != nil {
		v.log.Error("loading base image", zap.String("path", path), zap.Error(err))
	}
}

// watchSource follows the active model file, if it came from disk.
func (v *Viewer) watchSource() {
	if v.watcher == nil {
		return
	}
	src := v.session.Model().Source()
	if src.Kind != state.SourceFile {
		return
	}
	if err := v.watcher.Add(src.Name); err != nil {
		v.log.Warn("cannot watch model file", zap.String("path", src.Name), zap.Error(err))
	}
}

func (v *Viewer) pollWatcher() {
	if v.watcher == nil {
		return
	}
	select {
	case path := <-v.watcher.Changes():
		src := v.session.Model().Source()
		if src.Kind != state.SourceFile {
			return
		}
		abs, err := filepath.Abs(src.Name)
		if err != nil || abs != path {
			return
		}
		v.log.Info("model file changed, reloading", zap.String("path", path))
		if err := v.session.Reload(); err != nil {
			if errors.Is(err, state.ErrNoModel) {
				return
			}
			v.log.Error("reload failed", zap.Error(err))
		}
	default:
	}
}

func (v *Viewer) updateTitle() {
	src := v.session.Model().Source()
	if src.Name == "" {
		v.window.SetTitle(title)
		return
	}
	v.window.SetTitle(fmt.Sprintf("%s - %s", title, filepath.Base(src.Name)))
}

func (v *Viewer) render() {
	v.renderer.Begin()
	v.renderer.UploadAtlas(v.session.Atlas(), v.session.Revision())

	ww, wh := v.window.GetSize()
	dw, dh := v.window.DrawableSize()
	sx, sy := float32(dw)/float32(max(ww, 1)), float32(dh)/float32(max(wh, 1))

	hovered := v.session.Hovered()

	m := v.layout.Model().Scale(sx, sy)
	v.renderer.Pane(renderer.Rect(m), modelBackground)
	v.renderModel(hovered)

	if v.layout.ShowPreview {
		p := v.layout.Preview().Scale(sx, sy)
		v.renderer.Pane(renderer.Rect(p), previewBackground)
		v.renderPreview(hovered)
	}
}

func (v *Viewer) renderModel(hovered []session.Hover) {
	mesh := v.session.Mesh()
	if mesh == nil {
		return
	}
	vp := v.session.ModelViewProjection()
	modelMat := v.session.ModelMatrix()

	v.renderer.DepthTest(true)
	v.renderer.DrawModel(mesh, vp, modelMat)

	v.renderer.DepthTest(false)
	for _, h := range hovered {
		if h.Mesh == nil {
			continue
		}
		mvp := vp.Mul(modelMat).Mul(h.Mesh.Matrix)
		if v.showGrid {
			v.scratch = layout.MeshVertices(v.scratch[:0], h.Inner)
			v.renderer.DrawLines(v.scratch, mvp, innerColor)
		}
		v.scratch = layout.MeshVertices(v.scratch[:0], h.Edges)
		v.renderer.DrawLines(v.scratch, mvp, hoverColor)
	}
	v.renderer.DepthTest(true)
}

func (v *Viewer) renderPreview(hovered []session.Hover) {
	vp := v.session.Preview().ViewProjection()

	v.renderer.DepthTest(false)
	v.renderer.DrawPreview(vp)

	outline := v.session.Outline()
	if v.showGrid && v.session.Preview().Zoom >= gridMinZoom(v.session) {
		v.scratch = layout.PreviewVertices(v.scratch[:0], outline.Grid, 0)
		v.renderer.DrawLines(v.scratch, vp, gridColor)
	}
	v.scratch = layout.PreviewVertices(v.scratch[:0], outline.Points, 0)
	v.renderer.DrawLines(v.scratch, vp, outlineColor)

	for _, h := range hovered {
		v.scratch = layout.PlaneVertices(v.scratch[:0], h.Planes, 0)
		v.renderer.DrawTriangles(v.scratch, vp, hoverFill)
		v.scratch = layout.PreviewVertices(v.scratch[:0], h.Between, 0)
		v.renderer.DrawLines(v.scratch, vp, betweenColor)
		v.scratch = layout.PreviewVertices(v.scratch[:0], h.Outline, 0)
		v.renderer.DrawLines(v.scratch, vp, hoverColor)
	}
	v.renderer.DepthTest(true)
}

// gridMinZoom hides the pixel grid until a pixel spans a few screen
// pixels, where the lines would otherwise cover the atlas.
func gridMinZoom(s *session.Session) float32 {
	w, h := s.Layers().Size()
	return 4 * float32(max(w, h))
}
