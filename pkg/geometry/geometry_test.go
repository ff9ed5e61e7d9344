package geometry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const steveJSON = `{
  "format_version": "1.12.0",
  "minecraft:geometry": [
    {
      "description": {
        "identifier": "geometry.steve",
        "texture_width": 64,
        "texture_height": 64
      },
      "bones": [
        {"name": "body", "pivot": [0, 24, 0], "cubes": [
          {"origin": [-4, 12, -2], "size": [8, 12, 4], "uv": [16, 16]}
        ]},
        {"name": "head", "parent": "body", "pivot": [0, 24, 0], "cubes": [
          {"origin": [-4, 24, -4], "size": [8, 8, 8], "uv": [0, 0]},
          {"origin": [-4, 24, -4], "size": [8, 8, 8], "uv": [32, 0], "inflate": 0.5}
        ]},
        {"name": "leftArm", "parent": "body", "pivot": [5, 22, 0], "rotation": [0, 0, 10], "mirror": true, "cubes": [
          {"origin": [4, 12, -2], "size": [4, 12, 4], "uv": [40, 16], "mirror": false}
        ]}
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(steveJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if g.Description.Identifier != "geometry.steve" {
		t.Errorf("identifier = %q", g.Description.Identifier)
	}
	if g.Description.TextureWidth != 64 || g.Description.TextureHeight != 64 {
		t.Errorf("texture size = %dx%d", g.Description.TextureWidth, g.Description.TextureHeight)
	}
	if len(g.Bones) != 3 {
		t.Fatalf("expected 3 bones, got %d", len(g.Bones))
	}
	if g.CubeCount() != 4 {
		t.Errorf("CubeCount = %d, want 4", g.CubeCount())
	}

	head := g.Bone("head")
	if head == nil {
		t.Fatal("head bone not found")
	}
	if head.Parent != "body" {
		t.Errorf("head parent = %q", head.Parent)
	}
	if head.Cubes[1].Inflate != 0.5 {
		t.Errorf("head layer inflate = %v", head.Cubes[1].Inflate)
	}

	arm := g.Bone("leftArm")
	if arm.Rotation == nil || arm.Rotation[2] != 10 {
		t.Errorf("leftArm rotation = %v", arm.Rotation)
	}
	if g.Bone("missing") != nil {
		t.Error("expected nil for unknown bone")
	}
}

func TestCube_IsMirrored(t *testing.T) {
	yes, no := true, false
	mirrored := &Bone{Mirror: true}
	plain := &Bone{}

	tests := []struct {
		name string
		cube Cube
		bone *Bone
		want bool
	}{
		{"inherits mirrored bone", Cube{}, mirrored, true},
		{"inherits plain bone", Cube{}, plain, false},
		{"explicit false overrides bone", Cube{Mirror: &no}, mirrored, false},
		{"explicit true overrides bone", Cube{Mirror: &yes}, plain, true},
		{"nil bone", Cube{}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cube.IsMirrored(tt.bone); got != tt.want {
				t.Errorf("IsMirrored() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "no geometries",
			data:    `{"format_version": "1.12.0", "minecraft:geometry": []}`,
			wantErr: ErrNoGeometry,
		},
		{
			name:    "missing description",
			data:    `{"minecraft:geometry": [{"bones": []}]}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "zero texture width",
			data:    `{"minecraft:geometry": [{"description": {"texture_width": 0, "texture_height": 64}}]}`,
			wantErr: ErrInvalidTextureSize,
		},
		{
			name:    "bone without name",
			data:    `{"minecraft:geometry": [{"description": {"texture_width": 64, "texture_height": 64}, "bones": [{"pivot": [0,0,0]}]}]}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "cube without uv",
			data:    `{"minecraft:geometry": [{"description": {"texture_width": 64, "texture_height": 64}, "bones": [{"name": "a", "cubes": [{"origin": [0,0,0], "size": [1,1,1]}]}]}]}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "negative size",
			data:    `{"minecraft:geometry": [{"description": {"texture_width": 64, "texture_height": 64}, "bones": [{"name": "a", "cubes": [{"origin": [0,0,0], "size": [1,-1,1], "uv": [0,0]}]}]}]}`,
			wantErr: ErrInvalidCubeSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"minecraft:geometry": [`)); err == nil {
		t.Error("expected error for truncated json")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	g, err := Parse([]byte(steveJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(g, "1.12.0")
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "steve.geo.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again.CubeCount() != g.CubeCount() {
		t.Errorf("cube count changed: %d != %d", again.CubeCount(), g.CubeCount())
	}
	if again.Bones[2].Cubes[0].Mirror == nil || *again.Bones[2].Cubes[0].Mirror {
		t.Error("explicit cube mirror=false lost in round trip")
	}
}
