package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/observability"
	"github.com/mohammed-shakir/geodata-explorer/internal/csvexport"
	"github.com/mohammed-shakir/geodata-explorer/internal/filter"
	"github.com/mohammed-shakir/geodata-explorer/internal/geojson"
	"github.com/mohammed-shakir/geodata-explorer/internal/repository"
	"github.com/mohammed-shakir/geodata-explorer/internal/stats"
	"github.com/mohammed-shakir/geodata-explorer/internal/transform"
)

// MapeoCategoryColumn holds the preset category of a Mapeo observation.
const MapeoCategoryColumn = "p__categoryid"

// loadRows fetches table and applies the column and value filters of cfg.
func (s *Service) loadRows(ctx context.Context, table string, cfg model.ViewConfig) ([]model.Row, error) {
	rows, err := s.store.FetchRows(ctx, table)
	if err != nil {
		return nil, err
	}
	mapping, err := s.store.FetchColumnMapping(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("column mapping for %q: %w", table, err)
	}
	rows = filter.FilterUnwantedKeys(rows, mapping, cfg.UnwantedColumns, cfg.UnwantedSubstrings)
	n := len(rows)
	rows = filter.FilterOutUnwantedValues(rows, cfg.FilterByColumn, cfg.FilterOutValuesFromColumn)
	observability.AddRowsDropped("unwanted_values", n-len(rows))
	return rows, nil
}

func (s *Service) MapView(ctx context.Context, table string) (*MapPayload, error) {
	cfg, err := s.config(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.loadRows(ctx, table, cfg)
	if err != nil {
		return nil, err
	}
	geoRows := filter.FilterGeoData(rows)
	observability.AddRowsDropped("geometry", len(rows)-len(geoRows))

	colorColumn := firstNonEmpty(cfg.ColorColumn, cfg.FrontEndFilterColumn)
	fc := geojson.Build(geoRows, buildOptions(cfg, colorColumn))
	if cfg.MapeoTable != "" {
		mapeo, err := s.mapeoFeatures(ctx, cfg, colorColumn)
		if err != nil {
			return nil, err
		}
		fc = geojson.Merge(fc, mapeo)
	}
	observability.AddFeaturesEmitted(string(KindMap), len(fc.Features))

	out := &MapPayload{
		Data:          fc,
		TotalFeatures: len(fc.Features),
		Statistics:    stats.PrepareMapStatistics(geoRows),
		FilterColumn:  cfg.FrontEndFilterColumn,
		FilterValues:  filter.DistinctValues(geoRows, cfg.FrontEndFilterColumn),
	}
	if s.opts.H3Res >= 0 {
		d, err := stats.CellDensity(fc, s.opts.H3Res)
		if err != nil {
			slog.WarnContext(ctx, "density skipped", "err", err)
		} else {
			out.Density = d
		}
	}
	return out, nil
}

func (s *Service) GalleryView(ctx context.Context, table string) (*GalleryPayload, error) {
	cfg, err := s.config(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.loadRows(ctx, table, cfg)
	if err != nil {
		return nil, err
	}
	media := filter.FilterDataByExtension(rows, cfg.Extensions, cfg.MediaColumn)
	observability.AddRowsDropped("media", len(rows)-len(media))

	entries := transform.TransformSurveyData(media, cfg.IconColumn)
	return &GalleryPayload{
		Data:         entries,
		TotalEntries: len(entries),
		FilterColumn: cfg.FrontEndFilterColumn,
		FilterValues: filter.DistinctValues(media, cfg.FrontEndFilterColumn),
		Extensions:   cfg.Extensions,
		MediaColumn:  cfg.MediaColumn,
	}, nil
}

func (s *Service) AlertsView(ctx context.Context, table string) (*AlertsPayload, error) {
	cfg, err := s.config(table)
	if err != nil {
		return nil, err
	}
	if !cfg.IsAlerts {
		return nil, fmt.Errorf("%q: %w", table, ErrNotAlerts)
	}
	rows, err := s.loadRows(ctx, table, cfg)
	if err != nil {
		return nil, err
	}
	geoRows := filter.FilterGeoData(rows)
	observability.AddRowsDropped("geometry", len(rows)-len(geoRows))

	metadata, err := s.optionalRows(ctx, cfg.AlertMetadataTable)
	if err != nil {
		return nil, err
	}

	data := stats.PrepareAlertData(geoRows, metadata)
	st := stats.PrepareAlertsStatistics(geoRows, metadata)
	observability.AddFeaturesEmitted(string(KindAlerts), len(data.MostRecentAlerts.Features)+len(data.PreviousAlerts.Features))

	out := &AlertsPayload{
		AlertData:   data,
		Statistics:  st,
		DateOptions: stats.DateOptions(st),
	}
	if cfg.MapeoTable != "" {
		mapeo, err := s.mapeoFeatures(ctx, cfg, "")
		if err != nil {
			return nil, err
		}
		out.MapeoData = &mapeo
	}
	return out, nil
}

// ExportCSV writes the display-transformed rows of table as CSV.
func (s *Service) ExportCSV(ctx context.Context, table string, w io.Writer) error {
	cfg, err := s.config(table)
	if err != nil {
		return err
	}
	rows, err := s.loadRows(ctx, table, cfg)
	if err != nil {
		return err
	}
	return csvexport.Write(w, transform.TransformSurveyData(rows, cfg.IconColumn))
}

// mapeoFeatures builds the secondary Mapeo dataset, keeping only the
// configured categories when any are listed.
func (s *Service) mapeoFeatures(ctx context.Context, cfg model.ViewConfig, colorColumn string) (model.FeatureCollection, error) {
	rows, err := s.optionalRows(ctx, cfg.MapeoTable)
	if err != nil {
		return model.FeatureCollection{}, err
	}
	rows = filter.FilterGeoData(rows)
	if ids := strings.TrimSpace(cfg.MapeoCategoryIDs); ids != "" {
		keep := map[string]struct{}{}
		for id := range strings.SplitSeq(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				keep[id] = struct{}{}
			}
		}
		kept := rows[:0:0]
		for _, r := range rows {
			if _, ok := keep[fmt.Sprint(r[MapeoCategoryColumn])]; ok {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	return geojson.Build(rows, geojson.Options{
		IncludeAllProperties: true,
		FilterColumn:         colorColumn,
		IDs:                  geojson.MapeoIDs{},
	}), nil
}

// optionalRows treats a missing or unset companion table as empty.
func (s *Service) optionalRows(ctx context.Context, table string) ([]model.Row, error) {
	if table == "" {
		return nil, nil
	}
	rows, err := s.store.FetchRows(ctx, table)
	if errors.Is(err, repository.ErrTableNotFound) {
		slog.WarnContext(ctx, "companion table missing", "companion", table)
		return nil, nil
	}
	return rows, err
}

func buildOptions(cfg model.ViewConfig, colorColumn string) geojson.Options {
	opts := geojson.Options{
		IDField:              cfg.IDField,
		IncludeAllProperties: true,
		FilterColumn:         colorColumn,
	}
	if cfg.IsMapeo {
		opts.IDs = geojson.MapeoIDs{}
	}
	return opts
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
