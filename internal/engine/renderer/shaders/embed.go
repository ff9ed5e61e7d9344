// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms textured cube vertices.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader samples the atlas with a fixed directional shade.
//
//go:embed mesh.frag
var MeshFragmentShader string

// LineVertexShader transforms untextured overlay geometry.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader fills overlay geometry with a flat colour.
//
//go:embed line.frag
var LineFragmentShader string
