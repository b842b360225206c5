package geojson

import (
	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

// Merge concatenates collections in order. Feature ids are hashes of source
// ids and may collide across unrelated rows, so every feature is kept.
func Merge(parts ...model.FeatureCollection) model.FeatureCollection {
	n := 0
	for _, p := range parts {
		n += len(p.Features)
	}
	out := model.NewFeatureCollection(n)
	for _, p := range parts {
		out.Features = append(out.Features, p.Features...)
	}
	return out
}
