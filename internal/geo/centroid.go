package geo

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// CalculateCentroid returns "lat, lng" with six decimals for a Point,
// LineString, Polygon or MultiPolygon coordinate payload, or "" when the
// payload cannot be read. Polygon holes are averaged with the outer ring.
func CalculateCentroid(coordsJSON string) string {
	var coords any
	if err := json.Unmarshal([]byte(coordsJSON), &coords); err != nil {
		slog.Warn("centroid: unparseable coordinates", "err", err)
		return ""
	}
	lat, lng, ok := CentroidOf(coords)
	if !ok {
		slog.Warn("centroid: unrecognized coordinate shape", "coordinates", truncate(coordsJSON, 120))
		return ""
	}
	return FormatLatLng(lat, lng)
}

// FormatLatLng renders a centroid the way CalculateCentroid does.
func FormatLatLng(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// CentroidOf averages every position of an already decoded payload.
func CentroidOf(coords any) (lat, lng float64, ok bool) {
	var pts [][2]float64
	switch depth(coords) {
	case 1:
		p, good := position(coords)
		if !good {
			return 0, 0, false
		}
		return p[1], p[0], true
	case 2:
		pts, ok = positions(coords)
	case 3:
		pts, ok = flattenPositions(coords, 1)
	case 4:
		pts, ok = flattenPositions(coords, 2)
	default:
		return 0, 0, false
	}
	if !ok || len(pts) == 0 {
		return 0, 0, false
	}
	var sumLat, sumLng float64
	for _, p := range pts {
		sumLng += p[0]
		sumLat += p[1]
	}
	n := float64(len(pts))
	return sumLat / n, sumLng / n, true
}

// nesting depth measured along the first element
func depth(v any) int {
	d := 0
	for {
		a, ok := v.([]any)
		if !ok {
			return d
		}
		d++
		if len(a) == 0 {
			return d
		}
		v = a[0]
	}
}

func position(v any) ([2]float64, bool) {
	a, ok := v.([]any)
	if !ok || len(a) != 2 {
		return [2]float64{}, false
	}
	x, okx := a[0].(float64)
	y, oky := a[1].(float64)
	if !okx || !oky {
		return [2]float64{}, false
	}
	return [2]float64{x, y}, true
}

func positions(v any) ([][2]float64, bool) {
	a, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([][2]float64, 0, len(a))
	for _, it := range a {
		p, ok := position(it)
		if !ok {
			return nil, false
		}
		out = append(out, p)
	}
	return out, true
}

// descends `levels` array levels before reading position lists
func flattenPositions(v any, levels int) ([][2]float64, bool) {
	if levels == 0 {
		return positions(v)
	}
	a, ok := v.([]any)
	if !ok {
		return nil, false
	}
	var out [][2]float64
	for _, it := range a {
		ps, ok := flattenPositions(it, levels-1)
		if !ok {
			return nil, false
		}
		out = append(out, ps...)
	}
	return out, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
