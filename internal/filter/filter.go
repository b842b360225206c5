// Package filter drops unwanted columns and rows before rendering.
package filter

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/geo"
)

// FilterUnwantedKeys projects every row onto the retained column set. With a
// mapping, exclusion is matched against the original column name and the SQL
// column is kept; otherwise the keys of the first row are used.
func FilterUnwantedKeys(rows []model.Row, mapping []model.ColumnMapping, unwantedColumns, unwantedSubstrings string) []model.Row {
	cols := splitCSV(unwantedColumns)
	subs := splitCSV(unwantedSubstrings)

	unwanted := func(name string) bool {
		if _, ok := cols[name]; ok {
			return true
		}
		for s := range subs {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}

	var retained []string
	switch {
	case mapping != nil:
		for _, m := range mapping {
			if !unwanted(m.Original) {
				retained = append(retained, m.SQL)
			}
		}
	case len(rows) > 0:
		for k := range rows[0] {
			if !unwanted(k) {
				retained = append(retained, k)
			}
		}
	default:
		return []model.Row{}
	}

	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		fr := make(model.Row, len(retained))
		for _, c := range retained {
			if v, ok := r[c]; ok {
				fr[c] = v
			}
		}
		out = append(out, fr)
	}
	return out
}

// FilterOutUnwantedValues drops rows whose value in column is listed in
// valuesCSV. With either argument empty the input slice is returned as is.
func FilterOutUnwantedValues(rows []model.Row, column, valuesCSV string) []model.Row {
	if column == "" || valuesCSV == "" {
		return rows
	}
	blacklist := splitCSV(valuesCSV)
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if _, drop := blacklist[valueString(r[column])]; drop {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterGeoData keeps rows with at least one valid coordinate column.
func FilterGeoData(rows []model.Row) []model.Row {
	if rows == nil {
		slog.Warn("filter geo data: expected a slice of rows, got nil")
		return []model.Row{}
	}
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if geo.HasValidCoordinates(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterDataByExtension keeps rows referencing at least one allowed media
// file. Only mediaColumn is inspected when set, otherwise every value.
func FilterDataByExtension(rows []model.Row, allowed model.AllowedExtensions, mediaColumn string) []model.Row {
	exts := allowed.All()
	for i, e := range exts {
		exts[i] = strings.ToLower(e)
	}

	matches := func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		s = strings.ToLower(s)
		for _, e := range exts {
			if e != "" && strings.Contains(s, e) {
				return true
			}
		}
		return false
	}

	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		keep := false
		if mediaColumn != "" {
			keep = matches(r[mediaColumn])
		} else {
			for _, v := range r {
				if matches(v) {
					keep = true
					break
				}
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// DistinctValues lists the distinct non-empty values of column in first-seen order.
func DistinctValues(rows []model.Row, column string) []string {
	out := []string{}
	if column == "" {
		return out
	}
	seen := make(map[string]struct{})
	for _, r := range rows {
		s := valueString(r[column])
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// parse "a, b,,c" into a set, ignoring blanks
func splitCSV(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out[p] = struct{}{}
	}
	return out
}

func valueString(v any) string {
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
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
