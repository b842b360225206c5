// Package views runs the row pipeline for each configured table and caches
// the rendered payloads.
package views

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mohammed-shakir/geodata-explorer/internal/cache/keys"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/observability"
	"github.com/mohammed-shakir/geodata-explorer/internal/logger"
	"github.com/mohammed-shakir/geodata-explorer/internal/repository"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrNotAlerts   = fmt.Errorf("%w: table is not configured for alerts", ErrUnknownView)
)

// Cache stores rendered payloads. *viewcache.Store satisfies it.
// SetIfCurrent must drop the write when table was invalidated after gen was
// returned by Generation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Generation(table string) uint64
	SetIfCurrent(ctx context.Context, table string, gen uint64, key string, val []byte) bool
}

type Options struct {
	// H3Res enables per-cell density on map payloads when >= 0.
	H3Res int
}

type Service struct {
	store repository.Store
	views map[string]model.ViewConfig
	cache Cache
	opts  Options
	group singleflight.Group
}

// New builds a Service. cache may be nil.
func New(store repository.Store, views map[string]model.ViewConfig, cache Cache, opts Options) *Service {
	return &Service{store: store, views: views, cache: cache, opts: opts}
}

// Tables lists the configured tables in sorted order.
func (s *Service) Tables() []string {
	out := make([]string, 0, len(s.views))
	for t := range s.views {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Dependents maps every table a view reads besides its own (column mapping,
// Mapeo and alert metadata tables) to the configured tables that read it.
func Dependents(views map[string]model.ViewConfig) map[string][]string {
	out := map[string][]string{}
	for _, table := range slices.Sorted(maps.Keys(views)) {
		cfg := views[table]
		for _, dep := range []string{table + repository.ColumnsSuffix, cfg.MapeoTable, cfg.AlertMetadataTable} {
			if dep == "" || dep == table || slices.Contains(out[dep], table) {
				continue
			}
			out[dep] = append(out[dep], table)
		}
	}
	return out
}

func (s *Service) config(table string) (model.ViewConfig, error) {
	cfg, ok := s.views[table]
	if !ok {
		return model.ViewConfig{}, fmt.Errorf("%w: %q", ErrUnknownView, table)
	}
	return cfg, nil
}

// Render returns the serialized payload of one view: JSON for map, gallery and
// alerts, CSV for KindCSV. Identical concurrent requests share one build.
func (s *Service) Render(ctx context.Context, kind Kind, table string) ([]byte, error) {
	cfg, err := s.config(table)
	if err != nil {
		return nil, err
	}
	if kind == KindAlerts && !cfg.IsAlerts {
		return nil, fmt.Errorf("%q: %w", table, ErrNotAlerts)
	}
	key := keys.View(string(kind), table, s.fingerprint(cfg))
	if s.cache != nil {
		if b, ok := s.cache.Get(ctx, key); ok {
			return b, nil
		}
	}

	// builds are shared per generation so a request arriving after an
	// invalidation never joins a build that read the old rows
	var gen uint64
	if s.cache != nil {
		gen = s.cache.Generation(table)
	}
	flight := key + "@" + strconv.FormatUint(gen, 10)

	// a shared build must not be cancelled by the caller that started it
	v, err, _ := s.group.Do(flight, func() (any, error) {
		bctx := context.WithoutCancel(ctx)
		b, err := s.render(bctx, kind, table)
		if err == nil && s.cache != nil && !s.cache.SetIfCurrent(bctx, table, gen, key, b) {
			slog.DebugContext(bctx, "view invalidated during build, not cached", "table", table, "kind", kind)
		}
		return b, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Service) render(ctx context.Context, kind Kind, table string) ([]byte, error) {
	ctx = logger.WithView(logger.WithTable(ctx, table), string(kind))
	start := time.Now()

	var (
		payload any
		err     error
	)
	switch kind {
	case KindMap:
		payload, err = s.MapView(ctx, table)
	case KindGallery:
		payload, err = s.GalleryView(ctx, table)
	case KindAlerts:
		payload, err = s.AlertsView(ctx, table)
	case KindCSV:
		var buf bytes.Buffer
		err = s.ExportCSV(ctx, table, &buf)
		observability.ObserveViewBuild(string(kind), err, time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownView, kind)
	}
	observability.ObserveViewBuild(string(kind), err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s view: %w", kind, err)
	}
	slog.DebugContext(ctx, "view rendered", "bytes", len(b), "took", time.Since(start))
	return b, nil
}

func (s *Service) fingerprint(cfg model.ViewConfig) string {
	b, _ := json.Marshal(cfg)
	return keys.Fingerprint(string(b), strconv.Itoa(s.opts.H3Res))
}
