package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/observability"
)

type Options struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type Postgres struct {
	db *sql.DB
}

// Open connects through the pgx database/sql driver and verifies the
// connection before returning.
func Open(ctx context.Context, dsn string, opt Options) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open postgres: empty DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opt.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opt.MaxOpenConns)
		db.SetMaxIdleConns(max(opt.MaxOpenConns/4, 1))
	}
	if opt.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opt.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (p *Postgres) TableExists(ctx context.Context, table string) (bool, error) {
	var ok bool
	err := p.db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", quoteIdent(table)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check table %q: %w", table, err)
	}
	return ok, nil
}

func (p *Postgres) FetchRows(ctx context.Context, table string) ([]model.Row, error) {
	ok, err := p.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fetch %q: %w", table, ErrTableNotFound)
	}

	start := time.Now()
	rows, err := p.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", table, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	observability.ObserveDBQuery("fetch_rows", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", table, err)
	}
	return out, nil
}

func (p *Postgres) FetchColumnMapping(ctx context.Context, table string) ([]model.ColumnMapping, error) {
	mt := table + ColumnsSuffix
	ok, err := p.TableExists(ctx, mt)
	if err != nil || !ok {
		return nil, err
	}

	start := time.Now()
	rows, err := p.db.QueryContext(ctx, "SELECT original_column, sql_column FROM "+quoteIdent(mt))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", mt, err)
	}
	defer rows.Close()

	var out []model.ColumnMapping
	for rows.Next() {
		var m model.ColumnMapping
		if err := rows.Scan(&m.Original, &m.SQL); err != nil {
			return nil, fmt.Errorf("scan %q: %w", mt, err)
		}
		out = append(out, m)
	}
	observability.ObserveDBQuery("fetch_column_mapping", time.Since(start).Seconds())
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %q: %w", mt, err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]model.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []model.Row{}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(model.Row, len(cols))
		for i, c := range cols {
			r[c] = normalize(vals[i])
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// normalize maps driver values onto string, float64, int64 or nil.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return t
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return t
	case float32:
		return float64(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *big.Float:
		f, _ := t.Float64()
		return f
	default:
		return fmt.Sprint(t)
	}
}
