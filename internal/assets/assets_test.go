package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestManager_LoadPriority(t *testing.T) {
	m := NewManager(nil)
	m.AddSource(fstest.MapFS{
		"models/a.geo.json": {Data: []byte("base")},
		"models/b.geo.json": {Data: []byte("only-base")},
	})
	m.AddSource(fstest.MapFS{
		"models/a.geo.json": {Data: []byte("override")},
	})

	tests := []struct {
		name string
		want string
	}{
		{"a", "override"},
		{"b", "only-base"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := m.LoadModel(tt.name)
			if err != nil {
				t.Fatalf("LoadModel(%q) failed: %v", tt.name, err)
			}
			if string(data) != tt.want {
				t.Errorf("LoadModel(%q) = %q, want %q", tt.name, data, tt.want)
			}
		})
	}

	if _, err := m.LoadModel("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_Cache(t *testing.T) {
	m := NewManager(nil)
	m.AddSource(fstest.MapFS{"textures/x.png": {Data: []byte{1}}})

	for i := 0; i < 3; i++ {
		if _, err := m.Load("textures/x.png"); err != nil {
			t.Fatal(err)
		}
	}
	hits, misses := m.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 2, 1", hits, misses)
	}

	m.Invalidate("textures/x.png")
	if _, err := m.Load("textures/x.png"); err != nil {
		t.Fatal(err)
	}
	if _, misses = m.Stats(); misses != 2 {
		t.Errorf("expected a miss after Invalidate, got %d misses", misses)
	}

	m.Close()
	if _, err := m.Load("textures/x.png"); err == nil {
		t.Error("expected error after Close")
	}
}

func TestManager_LoadTexture(t *testing.T) {
	m := NewManager(nil)
	m.AddSource(fstest.MapFS{
		"textures/skin.webp": {Data: []byte("webp")},
		"textures/skin.tga":  {Data: []byte("tga")},
		"textures/raw.bmp":   {Data: []byte("bmp")},
	})

	data, p, err := m.LoadTexture("skin")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "webp" || p != "textures/skin.webp" {
		t.Errorf("LoadTexture(skin) = %q from %s", data, p)
	}

	data, _, err = m.LoadTexture("raw.bmp")
	if err != nil || string(data) != "bmp" {
		t.Errorf("LoadTexture(raw.bmp) = %q, %v", data, err)
	}

	if _, _, err := m.LoadTexture("none"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_AddDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ModelDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ModelDir, "local.geo.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil)
	m.AddSource(Builtin())
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir failed: %v", err)
	}
	if err := m.AddDir(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error for missing dir")
	}

	models := m.Models()
	want := []string{"block", "local", "steve"}
	if len(models) != len(want) {
		t.Fatalf("Models() = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("Models()[%d] = %q, want %q", i, models[i], want[i])
		}
	}
}

func TestBuiltin(t *testing.T) {
	m := NewManager(nil)
	m.AddSource(Builtin())

	if _, err := m.LoadModel(DefaultModel()); err != nil {
		t.Errorf("default model missing from builtin catalog: %v", err)
	}
	if _, _, err := m.LoadTexture(DefaultModel()); err != nil {
		t.Errorf("default texture missing from builtin catalog: %v", err)
	}
}

func TestNewCatalog(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ModelDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ModelDir, "steve"+ModelSuffix), []byte("custom"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewCatalog([]string{filepath.Join(dir, "missing"), dir}, nil)

	data, err := m.LoadModel("steve")
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if string(data) != "custom" {
		t.Errorf("catalog dir should shadow the bundled model, got %q", data)
	}
	if _, err := m.LoadModel("block"); err != nil {
		t.Errorf("bundled model not reachable: %v", err)
	}
}
