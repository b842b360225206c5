package stats

import (
	"strings"
	"time"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

// layouts recognized as dates when scanning row values
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// PrepareMapStatistics counts features and finds the span of date-like values.
// DateRange stays empty when no value parses as a date.
func PrepareMapStatistics(rows []model.Row) model.MapStatistics {
	st := model.MapStatistics{TotalFeatures: len(rows)}

	var minT, maxT time.Time
	found := false
	for _, r := range rows {
		for _, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			t, ok := parseDate(s)
			if !ok {
				continue
			}
			if !found || t.Before(minT) {
				minT = t
			}
			if !found || t.After(maxT) {
				maxT = t
			}
			found = true
		}
	}
	if found {
		st.DateRange = shortDate(minT) + " to " + shortDate(maxT)
	}
	return st
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	// length bounds of the accepted layouts
	if len(s) < 8 || len(s) > 40 {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func shortDate(t time.Time) string {
	return t.Format("1/2/2006")
}
