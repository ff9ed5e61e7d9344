// Package geometry parses Bedrock-style ".geo.json" model files.
//
// Only box-UV cubes are supported: every cube carries a single uv origin and
// its six faces are unwrapped around it.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Geometry format errors.
var (
	ErrNoGeometry         = errors.New("geometry file has no minecraft:geometry entries")
	ErrInvalidTextureSize = errors.New("invalid texture size")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidCubeSize    = errors.New("invalid cube size")
)

// Vec3 is an XYZ triple in model units.
type Vec3 [3]float32

// File is the top-level JSON envelope.
type File struct {
	FormatVersion string     `json:"format_version"`
	Geometries    []Geometry `json:"minecraft:geometry"`
}

// Description holds the geometry identifier and atlas size.
type Description struct {
	Identifier          string  `json:"identifier"`
	TextureWidth        int     `json:"texture_width"`
	TextureHeight       int     `json:"texture_height"`
	VisibleBoundsWidth  float32 `json:"visible_bounds_width,omitempty"`
	VisibleBoundsHeight float32 `json:"visible_bounds_height,omitempty"`
	VisibleBoundsOffset *Vec3   `json:"visible_bounds_offset,omitempty"`
}

// Geometry is one model: a description plus a flat list of bones.
type Geometry struct {
	Description Description `json:"description"`
	Bones       []Bone      `json:"bones"`
}

// Bone is a named node with an optional parent reference by name.
type Bone struct {
	Name     string `json:"name"`
	Parent   string `json:"parent,omitempty"`
	Pivot    Vec3   `json:"pivot"`
	Rotation *Vec3  `json:"rotation,omitempty"` // degrees
	Mirror   bool   `json:"mirror,omitempty"`
	Cubes    []Cube `json:"cubes,omitempty"`
}

// Cube is an axis-aligned box in model space.
type Cube struct {
	Origin   Vec3       `json:"origin"`
	Size     Vec3       `json:"size"`
	UV       [2]float32 `json:"uv"`
	Inflate  float32    `json:"inflate,omitempty"`
	Mirror   *bool      `json:"mirror,omitempty"` // nil inherits the bone's mirror
	Pivot    *Vec3      `json:"pivot,omitempty"`
	Rotation *Vec3      `json:"rotation,omitempty"`
}

// Width returns the X extent.
func (c Cube) Width() float32 { return c.Size[0] }

// Height returns the Y extent.
func (c Cube) Height() float32 { return c.Size[1] }

// Depth returns the Z extent.
func (c Cube) Depth() float32 { return c.Size[2] }

// IsMirrored resolves the cube's mirror flag against its bone's.
func (c Cube) IsMirrored(bone *Bone) bool {
	if c.Mirror != nil {
		return *c.Mirror
	}
	return bone != nil && bone.Mirror
}

// rawCube mirrors Cube with pointers on required fields so that absent keys
// can be told apart from zero values.
type rawCube struct {
	Origin   *Vec3       `json:"origin"`
	Size     *Vec3       `json:"size"`
	UV       *[2]float32 `json:"uv"`
	Inflate  float32     `json:"inflate"`
	Mirror   *bool       `json:"mirror"`
	Pivot    *Vec3       `json:"pivot"`
	Rotation *Vec3       `json:"rotation"`
}

type rawBone struct {
	Name     *string   `json:"name"`
	Parent   string    `json:"parent"`
	Pivot    *Vec3     `json:"pivot"`
	Rotation *Vec3     `json:"rotation"`
	Mirror   bool      `json:"mirror"`
	Cubes    []rawCube `json:"cubes"`
}

type rawGeometry struct {
	Description *Description `json:"description"`
	Bones       []rawBone    `json:"bones"`
}

type rawFile struct {
	FormatVersion string        `json:"format_version"`
	Geometries    []rawGeometry `json:"minecraft:geometry"`
}

// ParseFile decodes and validates a complete geometry file.
func ParseFile(data []byte) (*File, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding geometry json: %w", err)
	}
	if len(raw.Geometries) == 0 {
		return nil, ErrNoGeometry
	}

	f := &File{FormatVersion: raw.FormatVersion}
	for i, rg := range raw.Geometries {
		g, err := rg.convert()
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		f.Geometries = append(f.Geometries, *g)
	}
	return f, nil
}

// Parse decodes a geometry file and returns its first geometry.
func Parse(data []byte) (*Geometry, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return &f.Geometries[0], nil
}

// Load reads and parses a geometry file from disk.
func Load(path string) (*Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading geometry file: %w", err)
	}
	return Parse(data)
}

func (rg rawGeometry) convert() (*Geometry, error) {
	if rg.Description == nil {
		return nil, fmt.Errorf("%w: description", ErrMissingField)
	}
	d := *rg.Description
	if d.TextureWidth <= 0 || d.TextureHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, d.TextureWidth, d.TextureHeight)
	}

	g := &Geometry{Description: d, Bones: make([]Bone, 0, len(rg.Bones))}
	for i, rb := range rg.Bones {
		if rb.Name == nil || *rb.Name == "" {
			return nil, fmt.Errorf("bone %d: %w: name", i, ErrMissingField)
		}
		b := Bone{
			Name:     *rb.Name,
			Parent:   rb.Parent,
			Rotation: rb.Rotation,
			Mirror:   rb.Mirror,
		}
		if rb.Pivot != nil {
			b.Pivot = *rb.Pivot
		}
		for j, rc := range rb.Cubes {
			c, err := rc.convert()
			if err != nil {
				return nil, fmt.Errorf("bone %q cube %d: %w", b.Name, j, err)
			}
			b.Cubes = append(b.Cubes, c)
		}
		g.Bones = append(g.Bones, b)
	}
	return g, nil
}

func (rc rawCube) convert() (Cube, error) {
	switch {
	case rc.Origin == nil:
		return Cube{}, fmt.Errorf("%w: origin", ErrMissingField)
	case rc.Size == nil:
		return Cube{}, fmt.Errorf("%w: size", ErrMissingField)
	case rc.UV == nil:
		return Cube{}, fmt.Errorf("%w: uv", ErrMissingField)
	}
	for _, s := range rc.Size {
		if s < 0 {
			return Cube{}, fmt.Errorf("%w: %v", ErrInvalidCubeSize, *rc.Size)
		}
	}
	return Cube{
		Origin:   *rc.Origin,
		Size:     *rc.Size,
		UV:       *rc.UV,
		Inflate:  rc.Inflate,
		Mirror:   rc.Mirror,
		Pivot:    rc.Pivot,
		Rotation: rc.Rotation,
	}, nil
}

// CubeCount returns the total number of cubes across all bones.
func (g *Geometry) CubeCount() int {
	n := 0
	for i := range g.Bones {
		n += len(g.Bones[i].Cubes)
	}
	return n
}

// Bone returns the bone with the given name, or nil.
func (g *Geometry) Bone(name string) *Bone {
	for i := range g.Bones {
		if g.Bones[i].Name == name {
			return &g.Bones[i]
		}
	}
	return nil
}

// Marshal encodes the geometry inside a file envelope.
func Marshal(g *Geometry, formatVersion string) ([]byte, error) {
	return json.MarshalIndent(File{FormatVersion: formatVersion, Geometries: []Geometry{*g}}, "", "  ")
}
