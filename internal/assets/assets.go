// Package assets resolves model and texture files from layered sources.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrNotFound is returned when no source holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Catalog layout inside every source.
const (
	ModelDir     = "models"
	TextureDir   = "textures"
	ModelSuffix  = ".geo.json"
	defaultModel = "steve"
)

// TextureExtensions are tried in order when resolving a texture by name.
var TextureExtensions = []string{".png", ".webp", ".tga", ".bmp"}

//go:embed catalog
var builtin embed.FS

// Builtin returns the catalog bundled with the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "catalog")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	return sub
}

// DefaultModel is the catalog entry loaded at startup.
func DefaultModel() string { return defaultModel }

// Manager handles asset lookup across sources.
// Sources are searched in reverse order (last added = highest priority).
type Manager struct {
	sources []fs.FS
	cache   *Cache
	log     *zap.Logger
	mu      sync.RWMutex
}

// NewManager creates a manager with no sources. A nil logger disables logging.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache: NewCache(),
		log:   log,
	}
}

// NewCatalog returns a manager over the bundled catalog with dirs layered
// on top, later dirs first. Missing dirs are logged and skipped.
func NewCatalog(dirs []string, log *zap.Logger) *Manager {
	m := NewManager(log)
	m.AddSource(Builtin())
	for _, dir := range dirs {
		if err := m.AddDir(dir); err != nil {
			m.log.Warn("skipping catalog dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	return m
}

// AddSource adds a filesystem to search.
func (m *Manager) AddSource(src fs.FS) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
}

// AddDir adds a directory on disk as a source.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening asset dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset path %s is not a directory", dir)
	}
	m.AddSource(os.DirFS(dir))
	m.log.Debug("asset dir added", zap.String("dir", dir))
	return nil
}

// Load reads a file from the sources.
func (m *Manager) Load(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(m.sources[i], name)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			m.log.Warn("asset read failed", zap.String("path", name), zap.Error(err))
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ModelPath returns the catalog path of a model name.
func ModelPath(name string) string {
	return path.Join(ModelDir, name+ModelSuffix)
}

// LoadModel returns the geometry JSON of a catalog model.
func (m *Manager) LoadModel(name string) ([]byte, error) {
	return m.Load(ModelPath(name))
}

// LoadTexture returns the encoded base image for a catalog texture and the
// path it was found at.
func (m *Manager) LoadTexture(name string) ([]byte, string, error) {
	if ext := path.Ext(name); ext != "" {
		p := path.Join(TextureDir, name)
		data, err := m.Load(p)
		return data, p, err
	}
	for _, ext := range TextureExtensions {
		p := path.Join(TextureDir, name+ext)
		if data, err := m.Load(p); err == nil {
			return data, p, nil
		}
	}
	return nil, "", fmt.Errorf("%w: texture %s", ErrNotFound, name)
}

// Models lists the catalog model names across all sources, sorted.
func (m *Manager) Models() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, src := range m.sources {
		matches, err := fs.Glob(src, path.Join(ModelDir, "*"+ModelSuffix))
		if err != nil {
			continue
		}
		for _, p := range matches {
			seen[strings.TrimSuffix(path.Base(p), ModelSuffix)] = true
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invalidate drops a cached file so the next Load reads it again.
func (m *Manager) Invalidate(name string) {
	m.cache.Delete(name)
}

// Close drops all sources and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = nil
	m.cache.Clear()
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}
