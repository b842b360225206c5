package geojson

import (
	"regexp"
	"strconv"

	"github.com/spaolacci/murmur3"
)

// IDStrategy turns a row's raw id into the feature id. Map feature-state
// (hover/select) needs numeric ids that stay the same across builds.
type IDStrategy interface {
	FeatureID(raw any, row map[string]any) any
}

// HashedIDs hashes the raw id string with MurmurHash3 (x86, 32-bit, seed 0).
type HashedIDs struct{}

func (HashedIDs) FeatureID(raw any, _ map[string]any) any {
	s := rawIDString(raw)
	if s == "" {
		return nil
	}
	return int64(murmur3.Sum32([]byte(s)))
}

// MapeoIDs folds hex document ids into 32 bits; other ids are hashed.
type MapeoIDs struct{}

var hexID = regexp.MustCompile(`^[0-9a-fA-F]+$`)

func (MapeoIDs) FeatureID(raw any, row map[string]any) any {
	s := rawIDString(raw)
	if s == "" {
		return nil
	}
	if !hexID.MatchString(s) {
		return HashedIDs{}.FeatureID(raw, row)
	}
	return int64(foldHex(s))
}

// ExplicitIDs delegates to a caller supplied function.
type ExplicitIDs func(row map[string]any) any

func (f ExplicitIDs) FeatureID(_ any, row map[string]any) any {
	return f(row)
}

// xor of 8-digit chunks taken from the right
func foldHex(s string) uint32 {
	var acc uint32
	for end := len(s); end > 0; end -= 8 {
		start := max(end-8, 0)
		v, err := strconv.ParseUint(s[start:end], 16, 32)
		if err != nil {
			continue
		}
		acc ^= uint32(v)
	}
	return acc
}

func rawIDString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
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
