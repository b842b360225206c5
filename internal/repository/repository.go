// Package repository reads survey tables from Postgres.
package repository

import (
	"context"
	"errors"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

var ErrTableNotFound = errors.New("table not found")

// ColumnsSuffix names the companion table that maps original column names to
// their SQL-safe equivalents.
const ColumnsSuffix = "__columns"

type Store interface {
	// FetchRows returns every row of table. ErrTableNotFound when it is missing.
	FetchRows(ctx context.Context, table string) ([]model.Row, error)
	// FetchColumnMapping returns nil when the table has no mapping companion.
	FetchColumnMapping(ctx context.Context, table string) ([]model.ColumnMapping, error)
	TableExists(ctx context.Context, table string) (bool, error)
	Ping(ctx context.Context) error
}
