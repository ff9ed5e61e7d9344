package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/mibu/internal/config"
	"github.com/Faultbox/mibu/internal/layers"
)

// OptionsFromConfig builds session options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	c, err := cfg.Brush.RGBA()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Texture:      cfg.Assets.Texture,
		BrushColor:   c,
		Overlay:      layers.ParseBlendMode(cfg.Brush.Overlay),
		ExportDir:    cfg.Export.Dir,
		ExportFormat: cfg.Export.Format,
		ViewDuration: cfg.View.TransitionTime,
		SkipLayers:   !cfg.View.ShowLayers,
	}, nil
}

// IsModelFile reports whether ref names a model file on disk rather than a
// catalog entry.
func IsModelFile(ref string) bool {
	if strings.HasSuffix(strings.ToLower(ref), ".json") || strings.ContainsRune(ref, filepath.Separator) || strings.ContainsRune(ref, '/') {
		return true
	}
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}

// Open loads ref as a model file when it looks like a path and as a
// catalog name otherwise.
func (s *Session) Open(ref string) error {
	if IsModelFile(ref) {
		return s.LoadFile(ref)
	}
	return s.LoadCatalog(ref)
}
