package stats

import (
	"fmt"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/geo"
)

// CellDensity counts features per H3 cell of their centroid. Features without
// a usable centroid are skipped.
func CellDensity(fc model.FeatureCollection, res int) (map[string]int, error) {
	if res < 0 || res > 15 {
		return nil, fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	out := map[string]int{}
	for _, f := range fc.Features {
		lat, lng, ok := geo.CentroidOf(f.Geometry.Coordinates)
		if !ok || lat < -90 || lat > 90 {
			continue
		}
		cell, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lng}, res)
		if err != nil {
			continue
		}
		out[cell.String()]++
	}
	return out, nil
}
