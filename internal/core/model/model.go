// Package model defines core domain types shared across the service.
package model

// Row is a raw database record keyed by column name. Values are string,
// float64, int64 or nil.
type Row map[string]any

// DataEntry is a display-ready record produced by the transformer.
type DataEntry map[string]any

// ColumnMapping pairs a column's original survey name with its SQL name.
type ColumnMapping struct {
	Original string `json:"original_column" yaml:"original_column"`
	SQL      string `json:"sql_column" yaml:"sql_column"`
}

type AllowedExtensions struct {
	Audio []string `json:"audio" yaml:"audio"`
	Image []string `json:"image" yaml:"image"`
	Video []string `json:"video" yaml:"video"`
}

// All returns every extension across categories.
func (a AllowedExtensions) All() []string {
	out := make([]string, 0, len(a.Audio)+len(a.Image)+len(a.Video))
	out = append(out, a.Audio...)
	out = append(out, a.Image...)
	out = append(out, a.Video...)
	return out
}

type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection whose features marshal as [].
func NewFeatureCollection(capacity int) FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, capacity)}
}

type AlertsStatistics struct {
	Territory           string             `json:"territory"`
	TypeOfAlerts        []string           `json:"typeOfAlerts"`
	DataProviders       []string           `json:"dataProviders"`
	AlertDetectionRange string             `json:"alertDetectionRange"`
	AllDates            []string           `json:"allDates"`
	EarliestAlertsDate  string             `json:"earliestAlertsDate"`
	RecentAlertsDate    string             `json:"recentAlertsDate"`
	RecentAlertsNumber  int                `json:"recentAlertsNumber"`
	AlertsTotal         int                `json:"alertsTotal"`
	AlertsPerMonth      map[string]int     `json:"alertsPerMonth"`
	HectaresTotal       *string            `json:"hectaresTotal"`
	HectaresPerMonth    map[string]float64 `json:"hectaresPerMonth"`
	TwelveMonthsBefore  string             `json:"twelveMonthsBefore"`
}

type MapStatistics struct {
	TotalFeatures int    `json:"totalFeatures"`
	DateRange     string `json:"dateRange,omitempty"`
}

// ViewConfig is the per-table configuration driving the view pipeline.
type ViewConfig struct {
	FrontEndFilterColumn      string            `yaml:"FRONT_END_FILTER_COLUMN"`
	UnwantedColumns           string            `yaml:"UNWANTED_COLUMNS"`
	UnwantedSubstrings        string            `yaml:"UNWANTED_SUBSTRINGS"`
	FilterByColumn            string            `yaml:"FILTER_BY_COLUMN"`
	FilterOutValuesFromColumn string            `yaml:"FILTER_OUT_VALUES_FROM_COLUMN"`
	ColorColumn               string            `yaml:"COLOR_COLUMN"`
	IconColumn                string            `yaml:"ICON_COLUMN"`
	MediaColumn               string            `yaml:"MEDIA_COLUMN"`
	IDField                   string            `yaml:"ID_FIELD"`
	MapeoTable                string            `yaml:"MAPEO_TABLE"`
	MapeoCategoryIDs          string            `yaml:"MAPEO_CATEGORY_IDS"`
	AlertMetadataTable        string            `yaml:"ALERT_METADATA_TABLE"`
	IsAlerts                  bool              `yaml:"IS_ALERTS"`
	IsMapeo                   bool              `yaml:"IS_MAPEO"`
	Extensions                AllowedExtensions `yaml:"EXTENSIONS"`
}
