package model

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrEmptyMesh is returned when exporting a mesh without cubes.
var ErrEmptyMesh = errors.New("mesh has no cubes")

// BuildDocument converts the mesh into a glTF document with the atlas
// embedded as its only texture. Every cube becomes a named node.
func BuildDocument(m *Mesh, atlas image.Image) (*gltf.Document, error) {
	if m == nil || len(m.Cubes) == 0 {
		return nil, ErrEmptyMesh
	}

	doc := gltf.NewDocument()

	var buf bytes.Buffer
	if err := png.Encode(&buf, atlas); err != nil {
		return nil, fmt.Errorf("encoding atlas: %w", err)
	}
	img, err := modeler.WriteImage(doc, "atlas", "image/png", &buf)
	if err != nil {
		return nil, fmt.Errorf("embedding atlas: %w", err)
	}

	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		MagFilter: gltf.MagNearest,
		MinFilter: gltf.MinNearest,
	})
	doc.Textures = append(doc.Textures, &gltf.Texture{
		Sampler: gltf.Index(0),
		Source:  gltf.Index(img),
	})
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "skin",
		AlphaMode:   gltf.AlphaMask,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
			MetallicFactor:   gltf.Float(0),
		},
	})

	indices := make([]uint16, len(BoxIndices))
	for i, idx := range BoxIndices {
		indices[i] = uint16(idx)
	}

	for i := range m.Cubes {
		c := &m.Cubes[i]
		positions := make([][3]float32, len(c.Vertices))
		normals := make([][3]float32, len(c.Vertices))
		uvs := make([][2]float32, len(c.Vertices))
		for j, v := range c.Vertices {
			positions[j] = v.Position
			normals[j] = v.Normal
			// glTF texture space starts at the top-left corner
			uvs[j] = [2]float32{v.TexCoord[0], 1 - v.TexCoord[1]}
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: c.Name,
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
				Attributes: gltf.PrimitiveAttributes{
					gltf.POSITION:   modeler.WritePosition(doc, positions),
					gltf.NORMAL:     modeler.WriteNormal(doc, normals),
					gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
				},
				Material: gltf.Index(0),
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: c.Name,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

// ExportGLB writes the mesh and atlas as a binary glTF file.
func ExportGLB(w io.Writer, m *Mesh, atlas image.Image) error {
	doc, err := BuildDocument(m, atlas)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding glb: %w", err)
	}
	return nil
}
