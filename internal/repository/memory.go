package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

// Memory is an in-process Store used by tests and local demos.
type Memory struct {
	mu       sync.RWMutex
	tables   map[string][]model.Row
	mappings map[string][]model.ColumnMapping
	PingErr  error
}

func NewMemory() *Memory {
	return &Memory{
		tables:   map[string][]model.Row{},
		mappings: map[string][]model.ColumnMapping{},
	}
}

func (m *Memory) Put(table string, rows []model.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = slices.Clone(rows)
}

func (m *Memory) PutMapping(table string, mapping []model.ColumnMapping) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[table] = slices.Clone(mapping)
}

func (m *Memory) FetchRows(_ context.Context, table string) ([]model.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("fetch %q: %w", table, ErrTableNotFound)
	}
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, maps.Clone(r))
	}
	return out, nil
}

func (m *Memory) FetchColumnMapping(_ context.Context, table string) ([]model.ColumnMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.mappings[table]), nil
}

func (m *Memory) TableExists(_ context.Context, table string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[table]
	return ok, nil
}

func (m *Memory) Ping(context.Context) error { return m.PingErr }

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)
