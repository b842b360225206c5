// Package viewcache caches rendered view payloads in a local LRU backed by
// an optional shared Redis tier.
package viewcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mohammed-shakir/geodata-explorer/internal/cache/keys"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/observability"
)

// Backend is the shared tier. *redisstore.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type Config struct {
	Size      int
	TTL       time.Duration
	OpTimeout time.Duration
	// Dependents maps a table to the tables whose views embed its rows.
	// Invalidating the key also invalidates every listed table.
	Dependents map[string][]string
}

type Store struct {
	local      *expirable.LRU[string, []byte]
	backend    Backend
	ttl        time.Duration
	opTimeout  time.Duration
	dependents map[string][]string

	// writers hold mu shared; invalidation bumps gen under the exclusive lock
	mu  sync.RWMutex
	gen map[string]uint64
}

// New builds a Store. backend may be nil for a process-local cache.
func New(cfg Config, backend Backend) *Store {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &Store{
		local:      expirable.NewLRU[string, []byte](cfg.Size, nil, cfg.TTL),
		backend:    backend,
		ttl:        cfg.TTL,
		opTimeout:  cfg.OpTimeout,
		dependents: cfg.Dependents,
		gen:        map[string]uint64{},
	}
}

// Generation returns the invalidation counter of table. Read it before
// loading rows and pass it to SetIfCurrent.
func (s *Store) Generation(table string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen[table]
}

// Get checks the local tier first and promotes shared-tier hits into it.
// Backend errors are logged and reported as a miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if b, ok := s.local.Get(key); ok {
		observability.IncCacheResult("lru", "hit")
		return b, true
	}
	observability.IncCacheResult("lru", "miss")
	if s.backend == nil {
		return nil, false
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	b, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "view cache get failed", "key", key, "err", err)
		return nil, false
	}
	if !ok {
		observability.IncCacheResult("redis", "miss")
		return nil, false
	}
	observability.IncCacheResult("redis", "hit")
	s.local.Add(key, b)
	return b, true
}

func (s *Store) Set(ctx context.Context, key string, val []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.set(ctx, key, val)
}

// SetIfCurrent stores val only if table has not been invalidated since gen
// was read. It reports whether the value was stored.
func (s *Store) SetIfCurrent(ctx context.Context, table string, gen uint64, key string, val []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gen[table] != gen {
		observability.IncCacheResult("lru", "stale_write")
		return false
	}
	s.set(ctx, key, val)
	return true
}

func (s *Store) set(ctx context.Context, key string, val []byte) {
	s.local.Add(key, val)
	if s.backend == nil {
		return
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.backend.Set(ctx, key, val, s.ttl); err != nil {
		slog.WarnContext(ctx, "view cache set failed", "key", key, "err", err)
	}
}

// InvalidateTable drops every cached view of table and of its dependents from
// both tiers and returns the number of entries removed. Writes started
// before the call are rejected by SetIfCurrent.
func (s *Store) InvalidateTable(ctx context.Context, table string) (int, error) {
	tables := s.affected(table)

	s.mu.Lock()
	for _, t := range tables {
		s.gen[t]++
	}
	s.mu.Unlock()

	n := 0
	for _, t := range tables {
		prefix := keys.TablePrefix(t)
		for _, k := range s.local.Keys() {
			if strings.HasPrefix(k, prefix) && s.local.Remove(k) {
				n++
			}
		}
	}
	if s.backend == nil {
		return n, nil
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	var errs []error
	for _, t := range tables {
		m, err := s.backend.DeletePrefix(ctx, keys.TablePrefix(t))
		n += m
		if err != nil {
			errs = append(errs, fmt.Errorf("delete views of %q: %w", t, err))
		}
	}
	return n, errors.Join(errs...)
}

// affected returns table followed by its dependents, without repeats.
func (s *Store) affected(table string) []string {
	out := []string{table}
	for _, t := range s.dependents[table] {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Len() int { return s.local.Len() }

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
