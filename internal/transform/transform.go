// Package transform turns raw survey columns and values into display form.
//
// Transforms are not idempotent: apply them once to raw data.
package transform

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

var pseudoList = regexp.MustCompile(`^\[.*\]$`)

// TransformSurveyDataKey maps a raw column name to its display name.
// The icon column is returned untouched.
func TransformSurveyDataKey(key, iconColumn string) string {
	if iconColumn != "" && key == iconColumn {
		return key
	}

	out := key
	if rest, ok := strings.CutPrefix(out, "g__"); ok {
		out = "geo" + rest
	}
	out = strings.TrimPrefix(out, "p__")
	out = strings.ReplaceAll(out, "_", " ")

	lower := strings.ToLower(out)
	switch {
	case lower == "today":
		out = "dataCollectedOn"
	case strings.Contains(lower, "categoryid"):
		out = "category"
	}
	return strings.TrimLeftFunc(out, unicode.IsSpace)
}

// TransformSurveyDataValue formats a raw value for display. Coordinates and
// icon references pass through unchanged; non-string values are returned as is.
func TransformSurveyDataValue(key string, value any, iconColumn string) any {
	if value == nil {
		return nil
	}
	if key == "g__coordinates" || (iconColumn != "" && key == iconColumn) {
		return value
	}
	s, ok := value.(string)
	if !ok {
		return value
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, ";", ", ")
	s = capitalizeFirst(s)
	if strings.Contains(strings.ToLower(key), "category") {
		s = strings.ReplaceAll(s, "-", " ")
	}

	if pseudoList.MatchString(s) {
		inner := s[1 : len(s)-1]
		parts := strings.Split(inner, ", ")
		for i, p := range parts {
			parts[i] = strings.ReplaceAll(p, "'", "")
		}
		s = strings.Join(parts, ", ")
	}
	return s
}

// TransformRecord transforms one row. Keys whose value is nil are omitted.
// When several raw keys map to the same display key, the lexically smallest
// raw key with a non-nil value wins.
func TransformRecord(row model.Row, iconColumn string) model.DataEntry {
	out := make(model.DataEntry, len(row))
	for _, k := range slices.Sorted(maps.Keys(row)) {
		tv := TransformSurveyDataValue(k, row[k], iconColumn)
		if tv == nil {
			continue
		}
		dk := TransformSurveyDataKey(k, iconColumn)
		if _, taken := out[dk]; taken {
			continue
		}
		out[dk] = tv
	}
	return out
}

// TransformSurveyData transforms every row independently.
func TransformSurveyData(rows []model.Row, iconColumn string) []model.DataEntry {
	out := make([]model.DataEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, TransformRecord(r, iconColumn))
	}
	return out
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
