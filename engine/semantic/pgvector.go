package semantic

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// DefaultPGVectorTable holds catalog rows with an `embedding vector(n)` column.
const DefaultPGVectorTable = "fitment_vectors"

var tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PGVectorIndex is a vector index over a Postgres table using the pgvector
// cosine distance operator.
type PGVectorIndex struct {
	db    *sql.DB
	table string
	query string
	stats string
}

// OpenPGVector opens a lib/pq connection pool and wraps it.
func OpenPGVector(dsn, table string) (*PGVectorIndex, error) {
	if dsn == "" {
		return nil, domain.NewConfigError("PGVECTOR_DSN", "required when VECTOR_BACKEND=pgvector")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("semantic: open postgres: %w", err)
	}
	idx, err := NewPGVector(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// NewPGVector wraps an existing pool. table must be a plain or
// schema-qualified identifier.
func NewPGVector(db *sql.DB, table string) (*PGVectorIndex, error) {
	if table == "" {
		table = DefaultPGVectorTable
	}
	if !tableRe.MatchString(table) {
		return nil, domain.NewConfigError("PGVECTOR_TABLE", fmt.Sprintf("invalid table name %q", table))
	}
	return &PGVectorIndex{
		db:    db,
		table: table,
		query: searchSQL(table),
		stats: fmt.Sprintf(`SELECT count(*), COALESCE(max(vector_dims(embedding)), 0) FROM %s`, table),
	}, nil
}

func searchSQL(table string) string {
	return fmt.Sprintf(`SELECT CAST(id AS TEXT), COALESCE(CAST(direction AS TEXT), ''),
	       COALESCE(CAST(make AS TEXT), ''), COALESCE(CAST(model AS TEXT), ''),
	       COALESCE(CAST(year AS TEXT), ''), COALESCE(CAST(battery_model AS TEXT), ''),
	       COALESCE(CAST(battery_sku AS TEXT), ''), COALESCE(CAST(alt_model AS TEXT), ''),
	       COALESCE(CAST(document AS TEXT), ''),
	       1 - (embedding <=> $1) AS score
	FROM %s
	WHERE direction = $2
	ORDER BY embedding <=> $1
	LIMIT $3`, table)
}

// Close closes the pool.
func (p *PGVectorIndex) Close() error { return p.db.Close() }

// Query returns the nearest catalog rows of one direction, best first.
func (p *PGVectorIndex) Query(ctx context.Context, vector []float32, dir domain.Direction, limit int) ([]domain.Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := p.db.QueryContext(ctx, p.query, pgvector.NewVector(vector), dir.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("semantic: pgvector search %s: %w", p.table, err)
	}
	defer rows.Close()

	var hits []domain.Hit
	for rows.Next() {
		var (
			rec       domain.FitmentRecord
			direction string
			score     float64
		)
		if err := rows.Scan(&rec.ID, &direction, &rec.Make, &rec.Model, &rec.Year, &rec.BatteryModel,
			&rec.BatterySKU, &rec.AltModel, &rec.Document, &score); err != nil {
			return nil, fmt.Errorf("semantic: pgvector scan: %w", err)
		}
		rec.Direction = dir
		if d, err := domain.ParseDirection(direction); err == nil {
			rec.Direction = d
		}
		hits = append(hits, domain.Hit{Record: rec, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("semantic: pgvector rows: %w", err)
	}
	return hits, nil
}

// Stats reports the row count and embedding width.
func (p *PGVectorIndex) Stats(ctx context.Context) (domain.CatalogStats, error) {
	var points, size int64
	if err := p.db.QueryRowContext(ctx, p.stats).Scan(&points, &size); err != nil {
		return domain.CatalogStats{}, fmt.Errorf("semantic: pgvector stats %s: %w", p.table, err)
	}
	return domain.CatalogStats{
		Backend:    "pgvector",
		Collection: p.table,
		Points:     uint64(points),
		VectorSize: uint64(size),
	}, nil
}
