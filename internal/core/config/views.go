package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

var defaultExtensions = model.AllowedExtensions{
	Audio: []string{"mp3", "ogg", "wav", "m4a"},
	Image: []string{"jpg", "jpeg", "png", "webp"},
	Video: []string{"mov", "mp4", "avi", "mkv"},
}

type viewsFile struct {
	Extensions *model.AllowedExtensions    `yaml:"extensions"`
	Views      map[string]model.ViewConfig `yaml:"views"`
}

// LoadViews reads per-table view configs. A missing file yields no views.
func LoadViews(path string) (map[string]model.ViewConfig, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]model.ViewConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read views file %q: %w", path, err)
	}
	return ParseViews(b)
}

// ParseViews decodes a views document. Tables without their own extension
// lists inherit the document-level lists, or the built-in defaults.
func ParseViews(b []byte) (map[string]model.ViewConfig, error) {
	var doc viewsFile
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	exts := defaultExtensions
	if doc.Extensions != nil {
		exts = *doc.Extensions
	}

	out := make(map[string]model.ViewConfig, len(doc.Views))
	for table, vc := range doc.Views {
		table = strings.TrimSpace(table)
		if table == "" {
			return nil, errors.New("parse views: empty table name")
		}
		if len(vc.Extensions.All()) == 0 {
			vc.Extensions = exts
		}
		out[table] = vc
	}
	return out, nil
}
