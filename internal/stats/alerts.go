// Package stats derives dashboard summaries from alert and survey rows.
package stats

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/geo"
	"github.com/mohammed-shakir/geodata-explorer/internal/geojson"
)

// Alert and metadata column names.
const (
	ColMonthDetected  = "month_detec"
	ColYearDetected   = "year_detec"
	ColDateStart      = "date_start_t0"
	ColDateEnd        = "date_end_t1"
	ColAreaHectares   = "area_alert_ha"
	ColAlertType      = "alert_type"
	ColAlertID        = "alert_id"
	ColTerritoryName  = "territory_name"
	ColSatDetect      = "sat_detect_prefix"
	ColSatViz         = "sat_viz_prefix"
	MetaTerritory     = "territory"
	MetaTypeAlert     = "type_alert"
	MetaDataSource    = "data_source"
	EarlierDateOption = "Earlier"
)

var satelliteLabels = map[string]string{
	"S1": "Sentinel-1",
	"S2": "Sentinel-2",
	"L7": "Landsat 7",
	"L8": "Landsat 8",
	"L9": "Landsat 9",
	"WV": "WorldView",
	"PL": "Planet",
	"PS": "PlanetScope",
}

// AlertData splits alerts into the latest detection month and everything before it.
type AlertData struct {
	MostRecentAlerts model.FeatureCollection `json:"mostRecentAlerts"`
	PreviousAlerts   model.FeatureCollection `json:"previousAlerts"`
}

type monthYear struct {
	year, month int
}

func (m monthYear) key() int { return m.year*100 + m.month }
func (m monthYear) padded() string { return fmt.Sprintf("%02d-%04d", m.month, m.year) }
func (m monthYear) compact() string { return fmt.Sprintf("%04d%02d", m.year, m.month) }
func (m monthYear) before(o monthYear) bool { return m.key() < o.key() }

func detectionMonth(row model.Row) (monthYear, bool) {
	m, okm := intValue(row[ColMonthDetected])
	y, oky := intValue(row[ColYearDetected])
	if !okm || !oky || m < 1 || m > 12 || y <= 0 {
		return monthYear{}, false
	}
	return monthYear{year: y, month: m}, true
}

// PrepareAlertData partitions alerts by detection month and enriches each one
// with display fields. Alerts without a detection month are dropped.
func PrepareAlertData(rows []model.Row, metadata []model.Row) AlertData {
	var latest monthYear
	months := make([]monthYear, len(rows))
	valid := make([]bool, len(rows))
	for i, r := range rows {
		my, ok := detectionMonth(r)
		if !ok {
			slog.Debug("alert without detection month", "id", r["_id"])
			continue
		}
		months[i], valid[i] = my, true
		if latest.before(my) {
			latest = my
		}
	}

	var recent, previous []model.Row
	for i, r := range rows {
		if !valid[i] {
			continue
		}
		enriched := enrichAlert(r, months[i], metadata)
		if months[i] == latest {
			recent = append(recent, enriched)
		} else {
			previous = append(previous, enriched)
		}
	}

	opts := geojson.Options{IncludeAllProperties: true}
	return AlertData{
		MostRecentAlerts: geojson.Build(recent, opts),
		PreviousAlerts:   geojson.Build(previous, opts),
	}
}

func enrichAlert(r model.Row, my monthYear, metadata []model.Row) model.Row {
	out := model.Row{
		"_id":            r["_id"],
		"g__type":        r["g__type"],
		"g__coordinates": r["g__coordinates"],
		"monthDetected":  my.padded(),
		"YYYYMM":         my.compact(),
	}
	alertID := r[ColAlertID]
	if alertID == nil {
		alertID = r["_id"]
	}
	out["alertID"] = alertID
	out["alertType"] = r[ColAlertType]
	out["territory"] = r[ColTerritoryName]
	out["alertDetectionRange"] = detectionRange(r[ColDateStart], r[ColDateEnd])
	out["satelliteUsedForDetection"] = satelliteLabel(r[ColSatDetect])
	out["satelliteUsedForVisualization"] = satelliteLabel(r[ColSatViz])
	out["dataProvider"] = dataProvider(metadata, stringValue(r[ColAlertType]))
	if ha, ok := floatValue(r[ColAreaHectares]); ok {
		out["alertAreaHectares"] = round2(ha)
	}

	if typ, _ := r["g__type"].(string); typ != "" && typ != "Point" {
		if s, ok := r["g__coordinates"].(string); ok {
			out["geographicCentroid"] = geo.CalculateCentroid(s)
		} else if lat, lng, ok := geo.CentroidOf(r["g__coordinates"]); ok {
			out["geographicCentroid"] = geo.FormatLatLng(lat, lng)
		}
	}
	return out
}

// PrepareAlertsStatistics summarizes alert rows for the dashboard header and
// date-range picker.
func PrepareAlertsStatistics(rows []model.Row, metadata []model.Row) model.AlertsStatistics {
	st := model.AlertsStatistics{
		TypeOfAlerts:   []string{},
		DataProviders:  []string{},
		AllDates:       []string{},
		AlertsTotal:    len(rows),
		AlertsPerMonth: map[string]int{},
	}

	st.Territory = capitalizeFirst(firstNonEmpty(metadata, MetaTerritory))
	if st.Territory == "" {
		st.Territory = capitalizeFirst(firstNonEmpty(rows, ColTerritoryName))
	}
	st.TypeOfAlerts = distinct(metadata, MetaTypeAlert)
	if len(st.TypeOfAlerts) == 0 {
		st.TypeOfAlerts = distinct(rows, ColAlertType)
	}
	st.DataProviders = distinct(metadata, MetaDataSource)

	seen := map[monthYear]struct{}{}
	var months []monthYear
	hectares := map[string]float64{}
	haFound := false
	var haTotal float64
	for _, r := range rows {
		my, ok := detectionMonth(r)
		if !ok {
			continue
		}
		label := my.padded()
		st.AlertsPerMonth[label]++
		if _, dup := seen[my]; !dup {
			seen[my] = struct{}{}
			months = append(months, my)
		}
		if ha, ok := floatValue(r[ColAreaHectares]); ok {
			haFound = true
			hectares[label] += ha
			haTotal += ha
		}
	}

	slices.SortFunc(months, func(a, b monthYear) int { return a.key() - b.key() })
	for _, m := range months {
		st.AllDates = append(st.AllDates, m.padded())
	}
	if len(months) > 0 {
		earliest, recent := months[0], months[len(months)-1]
		st.EarliestAlertsDate = earliest.padded()
		st.RecentAlertsDate = recent.padded()
		st.RecentAlertsNumber = st.AlertsPerMonth[st.RecentAlertsDate]
		st.AlertDetectionRange = st.EarliestAlertsDate + " to " + st.RecentAlertsDate
		st.TwelveMonthsBefore = twelveMonthsBefore(recent)
	}

	if haFound {
		total := fmt.Sprintf("%.2f", haTotal)
		st.HectaresTotal = &total
		for k, v := range hectares {
			hectares[k] = round2(v)
		}
		st.HectaresPerMonth = hectares
	}
	return st
}

// month is intentionally not zero padded, e.g. "3-2023"
func twelveMonthsBefore(m monthYear) string {
	t := time.Date(m.year, time.Month(m.month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -12, 0)
	return fmt.Sprintf("%d-%d", int(t.Month()), t.Year())
}

// DateOptions lists the date-range picker entries: every date from
// twelveMonthsBefore onwards, preceded by a single "Earlier" entry when older
// dates exist.
func DateOptions(st model.AlertsStatistics) []string {
	out := []string{}
	boundary, ok := parseMonthYear(st.TwelveMonthsBefore)
	hasEarlier := false
	for _, d := range st.AllDates {
		my, good := parseMonthYear(d)
		if ok && good && my.before(boundary) {
			hasEarlier = true
			continue
		}
		out = append(out, d)
	}
	if hasEarlier {
		out = append([]string{EarlierDateOption}, out...)
	}
	return out
}

// accepts both "03-2024" and "3-2024"
func parseMonthYear(s string) (monthYear, bool) {
	mStr, yStr, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		return monthYear{}, false
	}
	m, err1 := strconv.Atoi(mStr)
	y, err2 := strconv.Atoi(yStr)
	if err1 != nil || err2 != nil || m < 1 || m > 12 {
		return monthYear{}, false
	}
	return monthYear{year: y, month: m}, true
}

func detectionRange(start, end any) string {
	s := formatDetectionDate(stringValue(start))
	e := formatDetectionDate(stringValue(end))
	switch {
	case s != "" && e != "":
		return s + " to " + e
	case s != "":
		return s
	default:
		return e
	}
}

var detectionDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "02-01-2006"}

func formatDetectionDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, l := range detectionDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format("02-01-2006")
		}
	}
	return s
}

func satelliteLabel(v any) string {
	s := strings.TrimSpace(stringValue(v))
	if label, ok := satelliteLabels[strings.ToUpper(s)]; ok {
		return label
	}
	return s
}

func dataProvider(metadata []model.Row, alertType string) string {
	for _, m := range metadata {
		if alertType != "" && stringValue(m[MetaTypeAlert]) == alertType {
			if s := stringValue(m[MetaDataSource]); s != "" {
				return s
			}
		}
	}
	return firstNonEmpty(metadata, MetaDataSource)
}

func distinct(rows []model.Row, col string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, r := range rows {
		s := stringValue(r[col])
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

func firstNonEmpty(rows []model.Row, col string) string {
	for _, r := range rows {
		if s := stringValue(r[col]); s != "" {
			return s
		}
	}
	return ""
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func stringValue(v any) string {
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

func intValue(v any) (int, bool) {
	f, ok := floatValue(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
