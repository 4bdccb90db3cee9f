package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// driverName is the database/sql driver registered for d.
func (d Dialect) driverName() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}

func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// SQLStore is a FallbackStore over a relational fitments table with columns
// id, make, model, year, battery_model, battery_sku, alt_model.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open opens a connection pool for the dialect and verifies it.
func Open(ctx context.Context, d Dialect, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if dsn == "" {
		return nil, domain.NewConfigError("DATABASE_URL", "required for the relational fallback")
	}
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", d.driverName(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: ping %s: %w", d.driverName(), err)
	}
	return NewSQLStore(db, d, logger), nil
}

// NewSQLStore wraps an existing pool.
func NewSQLStore(db *sql.DB, d Dialect, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: db, dialect: d, logger: logger}
}

// DB exposes the pool, mostly for migrations in tests and tooling.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Close closes the pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// Search runs req against the table. Matching is case-insensitive.
func (s *SQLStore) Search(ctx context.Context, req SearchRequest) ([]domain.FitmentRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query, args := buildSQL(req, s.dialect)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: search %s: %w", req.Table, err)
	}
	defer rows.Close()

	var out []domain.FitmentRecord
	for rows.Next() {
		rec := domain.FitmentRecord{Direction: domain.VehicleToBattery}
		if err := rows.Scan(&rec.ID, &rec.Make, &rec.Model, &rec.Year, &rec.BatteryModel, &rec.BatterySKU, &rec.AltModel); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: rows: %w", err)
	}
	s.logger.Debug("catalog search done", "table", req.Table, "conditions", len(req.Contains)+len(req.Equals), "rows", len(out))
	return out, nil
}

// buildSQL renders req. req must already be validated.
func buildSQL(req SearchRequest, d Dialect) (string, []any) {
	var (
		args []any
		b    strings.Builder
	)
	next := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	fmt.Fprintf(&b, `SELECT CAST(id AS TEXT), COALESCE(make, ''), COALESCE(model, ''), COALESCE(CAST(year AS TEXT), ''),
	COALESCE(battery_model, ''), COALESCE(battery_sku, ''), COALESCE(alt_model, '')
FROM %s
WHERE (`, req.Table)
	for i, c := range req.Contains {
		if i > 0 {
			b.WriteString(" OR ")
		}
		fmt.Fprintf(&b, `LOWER(CAST(%s AS TEXT)) LIKE %s ESCAPE '\'`, c.Column, next("%"+escapeLike(strings.ToLower(c.Value))+"%"))
	}
	b.WriteString(")")
	for _, c := range req.Equals {
		fmt.Fprintf(&b, " AND LOWER(CAST(%s AS TEXT)) = %s", c.Column, next(strings.ToLower(c.Value)))
	}
	fmt.Fprintf(&b, " LIMIT %s", next(req.Limit))
	return b.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
