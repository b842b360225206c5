// Package geo validates coordinate payloads and computes centroids.
package geo

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

var geoTypes = map[string]struct{}{
	"LineString":      {},
	"MultiLineString": {},
	"Point":           {},
	"Polygon":         {},
	"MultiPolygon":    {},
}

// IsValidCoordinate reports whether n is a finite number in [-180,180].
// Both axes share this bound, so a latitude of 120 is accepted.
func IsValidCoordinate(n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return n >= -180 && n <= 180
}

// HasValidCoordinates checks every column whose name contains "coordinates"
// and returns true on the first one holding an even-length list of valid
// numbers after flattening one level.
func HasValidCoordinates(row model.Row) bool {
	for _, k := range coordinateKeys(row) {
		if validFlatPairs(row[k]) {
			return true
		}
	}
	return false
}

// sorted for a stable "first key wins" order
func coordinateKeys(row model.Row) []string {
	var out []string
	for k := range row {
		if strings.Contains(strings.ToLower(k), "coordinates") {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func validFlatPairs(v any) bool {
	var items []any
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			var parsed []any
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				return false
			}
			items = parsed
		} else {
			for p := range strings.SplitSeq(s, ",") {
				items = append(items, strings.TrimSpace(p))
			}
		}
	case []any:
		items = t
	default:
		return false
	}

	flat := make([]any, 0, len(items))
	for _, it := range items {
		if inner, ok := it.([]any); ok {
			flat = append(flat, inner...)
			continue
		}
		flat = append(flat, it)
	}
	if len(flat) == 0 || len(flat)%2 != 0 {
		return false
	}
	for _, x := range flat {
		n, ok := toNumber(x)
		if !ok || !IsValidCoordinate(n) {
			return false
		}
	}
	return true
}

// IsValidGeoRow requires an id, a known geometry type and coordinates
// shaped for that type.
func IsValidGeoRow(row model.Row) bool {
	if row == nil {
		return false
	}
	if id, ok := row["_id"]; !ok || id == nil || strings.TrimSpace(toString(id)) == "" {
		return false
	}
	typ, _ := row["g__type"].(string)
	if _, ok := geoTypes[typ]; !ok {
		return false
	}
	coords, ok := ParseCoordinates(row["g__coordinates"])
	if !ok {
		return false
	}

	switch typ {
	case "Point":
		return isPair(coords)
	case "LineString":
		return isPairList(coords)
	case "MultiLineString":
		return isPairList(coords) || isListOf(coords, isPairList)
	case "Polygon":
		return isListOf(coords, isPairList)
	case "MultiPolygon":
		return isListOf(coords, isPairList) || isListOf(coords, func(v any) bool {
			return isListOf(v, isPairList)
		})
	}
	return false
}

// ParseCoordinates accepts a JSON string or an already decoded nested slice
// and returns the decoded payload when it is a non-empty array.
func ParseCoordinates(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, false
		}
		var out []any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, false
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		return t, true
	default:
		return nil, false
	}
}

func isPair(v any) bool {
	a, ok := v.([]any)
	if !ok || len(a) != 2 {
		return false
	}
	for _, x := range a {
		n, ok := x.(float64)
		if !ok || !IsValidCoordinate(n) {
			return false
		}
	}
	return true
}

func isPairList(v any) bool {
	return isListOf(v, isPair)
}

func isListOf(v any, pred func(any) bool) bool {
	a, ok := v.([]any)
	if !ok || len(a) == 0 {
		return false
	}
	for _, x := range a {
		if !pred(x) {
			return false
		}
	}
	return true
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
