// Package renderer draws the painter's two panes with OpenGL: the textured
// cube model and the flat atlas preview, plus their line overlays.
//
// IMPORTANT: New must be called after the OpenGL context is created, and
// every method must run on the thread that owns it.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/mibu/internal/engine/model"
	"github.com/Faultbox/mibu/internal/engine/renderer/shaders"
	"github.com/Faultbox/mibu/internal/engine/shader"
	"github.com/Faultbox/mibu/pkg/math"
)

// Rect is a pane in framebuffer pixels with a top-left origin.
type Rect struct {
	X, Y, W, H int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	log    *zap.Logger
	width  int
	height int

	meshProg *shader.Program
	lineProg *shader.Program

	atlas atlasTexture
	model gpuMesh
	quad  gpuMesh
	lines lineBuffer

	// LightDir is the direction light travels in model space.
	LightDir [3]float32
}

type atlasTexture struct {
	id       uint32
	width    int
	height   int
	revision uint64
	valid    bool
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	src           *model.Mesh
}

type lineBuffer struct {
	vao, vbo uint32
	capacity int
}

// New initialises OpenGL and creates the shader programs and static buffers.
func New(width, height int, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		log:      log,
		width:    width,
		height:   height,
		LightDir: [3]float32{-0.4, -1, -0.6},
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.SCISSOR_TEST)

	var err error
	if r.meshProg, err = shader.New(shaders.MeshVertexShader, shaders.MeshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	if r.lineProg, err = shader.New(shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.meshProg.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	gl.GenTextures(1, &r.atlas.id)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	r.createQuad()
	r.createLineBuffer()

	log.Debug("renderer ready",
		zap.Uint32("meshProgram", r.meshProg.ID),
		zap.Uint32("lineProgram", r.lineProg.ID),
	)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.model.delete()
	r.quad.delete()
	if r.lines.vao != 0 {
		gl.DeleteVertexArrays(1, &r.lines.vao)
		gl.DeleteBuffers(1, &r.lines.vbo)
	}
	if r.atlas.id != 0 {
		gl.DeleteTextures(1, &r.atlas.id)
	}
	r.meshProg.Delete()
	r.lineProg.Delete()
}

// Resize handles framebuffer resize.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Scissor(0, 0, int32(r.width), int32(r.height))
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.ClearColor(0.08, 0.08, 0.1, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Pane restricts drawing to rect and clears it with bg.
func (r *Renderer) Pane(rect Rect, bg [3]float32) {
	// GL counts rows from the bottom
	y := int32(r.height - rect.Y - rect.H)
	gl.Viewport(int32(rect.X), y, int32(rect.W), int32(rect.H))
	gl.Scissor(int32(rect.X), y, int32(rect.W), int32(rect.H))
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// UploadAtlas copies the composite to the GPU when its revision changed.
func (r *Renderer) UploadAtlas(img *image.RGBA, revision uint64) {
	if img == nil || len(img.Pix) == 0 {
		return
	}
	if r.atlas.valid && r.atlas.revision == revision {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	gl.BindTexture(gl.TEXTURE_2D, r.atlas.id)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	if w != r.atlas.width || h != r.atlas.height || !r.atlas.valid {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
		r.atlas.width, r.atlas.height = w, h
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	r.atlas.revision = revision
	r.atlas.valid = true
}

// DrawModel draws every cube of m textured with the atlas. The vertex
// buffers are rebuilt when m is a different mesh than last frame.
func (r *Renderer) DrawModel(m *model.Mesh, viewProj, modelMat math.Mat4) {
	if m == nil || !r.atlas.valid {
		return
	}
	if r.model.src != m {
		r.uploadMesh(m)
	}

	r.meshProg.Use()
	r.meshProg.SetMat4("uMVP", viewProj.Mul(modelMat))
	r.meshProg.SetMat4("uModel", modelMat)
	r.meshProg.SetVec3("uLightDir", r.LightDir)
	gl.Uniform1f(r.meshProg.Uniform("uShade"), 1)
	r.bindAtlas()

	// both sides are drawn so the inside of overlay cubes shows
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(r.model.vao)
	gl.DrawElements(gl.TRIANGLES, r.model.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// DrawPreview draws the flat atlas quad spanning [-0.5, 0.5] at z = 0.
func (r *Renderer) DrawPreview(viewProj math.Mat4) {
	if !r.atlas.valid {
		return
	}
	r.meshProg.Use()
	r.meshProg.SetMat4("uMVP", viewProj)
	r.meshProg.SetMat4("uModel", math.Identity())
	gl.Uniform1f(r.meshProg.Uniform("uShade"), 0)
	r.bindAtlas()

	gl.BindVertexArray(r.quad.vao)
	gl.DrawElements(gl.TRIANGLES, r.quad.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// DrawLines draws xyz vertex triples as GL_LINES.
func (r *Renderer) DrawLines(verts []float32, mvp math.Mat4, color [4]float32) {
	r.drawFlat(gl.LINES, verts, mvp, color)
}

// DrawTriangles draws xyz vertex triples as flat filled triangles.
func (r *Renderer) DrawTriangles(verts []float32, mvp math.Mat4, color [4]float32) {
	r.drawFlat(gl.TRIANGLES, verts, mvp, color)
}

// ReadPixels returns the default framebuffer as RGBA rows, bottom row
// first.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	pixels = make([]byte, r.width*r.height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, r.width, r.height
}

// DepthTest toggles depth testing for overlays drawn on top of a pane.
func (r *Renderer) DepthTest(on bool) {
	if on {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (r *Renderer) drawFlat(mode uint32, verts []float32, mvp math.Mat4, color [4]float32) {
	if len(verts) < 3 {
		return
	}
	r.lineProg.Use()
	r.lineProg.SetMat4("uMVP", mvp)
	r.lineProg.SetVec4("uColor", color)

	gl.BindVertexArray(r.lines.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lines.vbo)
	if len(verts) > r.lines.capacity {
		// grow geometrically so hover changes rarely reallocate
		r.lines.capacity = max(len(verts), 2*r.lines.capacity)
		gl.BufferData(gl.ARRAY_BUFFER, r.lines.capacity*4, nil, gl.DYNAMIC_DRAW)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, unsafe.Pointer(&verts[0]))
	gl.DrawArrays(mode, 0, int32(len(verts)/3))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (r *Renderer) bindAtlas() {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas.id)
	r.meshProg.SetInt("uAtlas", 0)
}

func (r *Renderer) uploadMesh(m *model.Mesh) {
	r.model.delete()
	verts, indices := m.Flatten()
	r.model = newGPUMesh(verts, indices)
	r.model.src = m
	r.log.Debug("model uploaded",
		zap.Int("cubes", len(m.Cubes)),
		zap.Int("vertices", len(verts)),
	)
}

func (r *Renderer) createQuad() {
	verts := []model.Vertex{
		{Position: [3]float32{-0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}},
	}
	r.quad = newGPUMesh(verts, model.BoxIndices[:6])
}

func (r *Renderer) createLineBuffer() {
	gl.GenVertexArrays(1, &r.lines.vao)
	gl.BindVertexArray(r.lines.vao)
	gl.GenBuffers(1, &r.lines.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lines.vbo)

	r.lines.capacity = 4096
	gl.BufferData(gl.ARRAY_BUFFER, r.lines.capacity*4, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func newGPUMesh(verts []model.Vertex, indices []uint32) gpuMesh {
	var m gpuMesh
	stride := int32(unsafe.Sizeof(model.Vertex{}))

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*int(stride), unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	// Position, normal, texcoord
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	m.count = int32(len(indices))
	return m
}

func (m *gpuMesh) delete() {
	if m.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	*m = gpuMesh{}
}
