package views

import (
	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/stats"
)

type Kind string

const (
	KindMap     Kind = "map"
	KindGallery Kind = "gallery"
	KindAlerts  Kind = "alerts"
	KindCSV     Kind = "csv"
)

type MapPayload struct {
	Data          model.FeatureCollection `json:"data"`
	TotalFeatures int                     `json:"totalFeatures"`
	Statistics    model.MapStatistics     `json:"statistics"`
	FilterColumn  string                  `json:"filterColumn,omitempty"`
	FilterValues  []string                `json:"filterValues,omitempty"`
	Density       map[string]int          `json:"density,omitempty"`
}

type GalleryPayload struct {
	Data         []model.DataEntry       `json:"data"`
	TotalEntries int                     `json:"totalEntries"`
	FilterColumn string                  `json:"filterColumn,omitempty"`
	FilterValues []string                `json:"filterValues,omitempty"`
	Extensions   model.AllowedExtensions `json:"allowedFileExtensions"`
	MediaColumn  string                  `json:"mediaColumn,omitempty"`
}

type AlertsPayload struct {
	stats.AlertData
	Statistics  model.AlertsStatistics   `json:"statistics"`
	DateOptions []string                 `json:"dateOptions"`
	MapeoData   *model.FeatureCollection `json:"mapeoData,omitempty"`
}
