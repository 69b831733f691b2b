package vector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVector keeps the collection in a Postgres table with a pgvector column.
// One row per point: id, embedding, payload as jsonb.
type PgVector struct {
	pool  *pgxpool.Pool
	table string
}

func NewPgVector(ctx context.Context, databaseURL, collection string) (*PgVector, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set for the pgvector backend")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	return &PgVector{pool: pool, table: collection}, nil
}

func (p *PgVector) Name() string { return "pgvector" }

func (p *PgVector) ident() string {
	return pgx.Identifier{p.table}.Sanitize()
}

func (p *PgVector) EnsureCollection(ctx context.Context, dim int) (bool, error) {
	var existing *string
	err := p.pool.QueryRow(ctx, `SELECT to_regclass($1)::text`, p.table).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("check table: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	if _, err := p.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return false, fmt.Errorf("create vector extension: %w", err)
	}

	stmt := fmt.Sprintf(`
		CREATE TABLE %s (
			id BIGINT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			payload JSONB NOT NULL
		)
	`, p.ident(), dim)
	if _, err := p.pool.Exec(ctx, stmt); err != nil {
		return false, fmt.Errorf("create table: %w", err)
	}
	return true, nil
}

func (p *PgVector) Upsert(ctx context.Context, points []Point) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, payload = EXCLUDED.payload
	`, p.ident())

	for _, pt := range points {
		payload, err := json.Marshal(pt.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		vec := pgvector.NewVector(pt.Vector)
		if _, err := p.pool.Exec(ctx, stmt, int64(pt.ID), vec, payload); err != nil {
			return fmt.Errorf("upsert point %d: %w", pt.ID, err)
		}
	}
	return nil
}

// Search orders by cosine distance and reports 1-distance as the similarity
// score, matching the cosine scores Qdrant returns.
func (p *PgVector) Search(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	stmt := fmt.Sprintf(`
		SELECT payload, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, p.ident())

	rows, err := p.pool.Query(ctx, stmt, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var raw []byte
		var score float64
		if err := rows.Scan(&raw, &score); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		payload := map[string]string{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		hits = append(hits, Hit{Score: float32(score), Payload: payload})
	}
	return hits, rows.Err()
}

func (p *PgVector) Count(ctx context.Context) (int, error) {
	var n int
	stmt := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, p.ident())
	if err := p.pool.QueryRow(ctx, stmt).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (p *PgVector) Drop(ctx context.Context) error {
	stmt := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, p.ident())
	if _, err := p.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	return nil
}

func (p *PgVector) Close() error {
	p.pool.Close()
	return nil
}

var _ Store = (*PgVector)(nil)
