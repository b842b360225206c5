// Package geojson builds GeoJSON feature collections from raw rows.
package geojson

import (
	"strings"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/geo"
)

const (
	FilterColorKey = "filter-color"
	DefaultIDField = "_id"
)

type Options struct {
	IDField              string
	IncludeProperties    []string
	IncludeAllProperties bool
	FilterColumn         string
	// nil means HashedIDs
	IDs IDStrategy
}

// Build converts rows into a FeatureCollection. Rows without a geometry type
// or a parseable, non-empty coordinate payload are skipped.
func Build(rows []model.Row, opts Options) model.FeatureCollection {
	idField := opts.IDField
	if idField == "" {
		idField = DefaultIDField
	}
	ids := opts.IDs
	if ids == nil {
		ids = HashedIDs{}
	}
	colors := newColorMap()

	fc := model.NewFeatureCollection(len(rows))
	for _, row := range rows {
		typ, _ := row["g__type"].(string)
		if strings.TrimSpace(typ) == "" {
			continue
		}
		coords, ok := geo.ParseCoordinates(row["g__coordinates"])
		if !ok {
			continue
		}

		raw := row[idField]
		f := model.Feature{
			Type:       "Feature",
			ID:         ids.FeatureID(raw, row),
			Geometry:   model.Geometry{Type: typ, Coordinates: coords},
			Properties: map[string]any{},
		}
		if raw != nil {
			f.Properties[idField] = raw
		}

		if opts.IncludeAllProperties {
			for k, v := range row {
				if strings.HasPrefix(k, "g__") {
					continue
				}
				setIfPresent(f.Properties, k, v)
			}
		} else {
			for _, k := range opts.IncludeProperties {
				setIfPresent(f.Properties, k, row[k])
			}
		}

		if opts.FilterColumn != "" {
			fv := row[opts.FilterColumn]
			f.Properties[FilterColorKey] = colors.colorFor(propString(fv))
			setIfPresent(f.Properties, opts.FilterColumn, fv)
		}

		fc.Features = append(fc.Features, f)
	}
	return fc
}

// empty values are left out so map style coalesce falls through to defaults
func setIfPresent(props map[string]any, k string, v any) {
	if v == nil {
		return
	}
	if s, ok := v.(string); ok && s == "" {
		return
	}
	props[k] = v
}

func propString(v any) string {
	return rawIDString(v)
}
