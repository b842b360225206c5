// Package csvexport renders display entries as CSV downloads.
package csvexport

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

var controlEscaper = strings.NewReplacer(
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeCSVValue renders one cell. Control characters are written as escape
// sequences so a record stays on one line; quotes are doubled and values with
// a comma or quote are wrapped in quotes.
func EscapeCSVValue(v any) string {
	s := controlEscaper.Replace(cellString(v))
	needsQuotes := strings.ContainsAny(s, `,"`)
	s = strings.ReplaceAll(s, `"`, `""`)
	if needsQuotes {
		return `"` + s + `"`
	}
	return s
}

// Columns returns the union of keys in first-seen order. Keys within one
// entry are visited in sorted order so the header is stable.
func Columns(entries []model.DataEntry) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, e := range entries {
		for _, k := range sortedKeys(e) {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// ConvertToCSV renders entries with a header row.
func ConvertToCSV(entries []model.DataEntry) string {
	var b strings.Builder
	_ = Write(&b, entries)
	return b.String()
}

// Write streams entries as CSV to w.
func Write(w io.Writer, entries []model.DataEntry) error {
	cols := Columns(entries)
	if len(cols) == 0 {
		return nil
	}
	if err := writeLine(w, cols, func(c string) string { return EscapeCSVValue(c) }); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeLine(w, cols, func(c string) string { return EscapeCSVValue(e[c]) }); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, cols []string, cell func(string) string) error {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = cell(c)
	}
	if _, err := io.WriteString(w, strings.Join(parts, ",")+"\n"); err != nil {
		return fmt.Errorf("write csv line: %w", err)
	}
	return nil
}

func cellString(v any) string {
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
		return fmt.Sprint(t)
	}
}

func sortedKeys(e model.DataEntry) []string {
	return slices.Sorted(maps.Keys(e))
}
