package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nao1215/trendscan/internal/model"
)

// postgresMaxConns bounds the pool. Runs are sequential and the HTTP
// trigger only reads.
const postgresMaxConns = 4

// PostgresStore is a RecordStore backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the trends table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, storageErr("parse postgres dsn", err)
	}
	cfg.MaxConns = postgresMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, storageErr("connect to postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storageErr("connect to postgres", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.createTables(ctx); err != nil {
		pool.Close()
		return nil, storageErr("create tables", err)
	}
	return s, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS trends (
		_id TEXT PRIMARY KEY,
		trend1 TEXT,
		trend2 TEXT,
		trend3 TEXT,
		trend4 TEXT,
		trend5 TEXT,
		timestamp TEXT NOT NULL,
		ip_address TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trends_timestamp ON trends(timestamp);
	`)
	return err
}

// Close implements RecordStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Insert implements RecordStore.
func (s *PostgresStore) Insert(ctx context.Context, r *model.ScrapeResult) error {
	_, err := s.pool.Exec(ctx, `
	INSERT INTO trends (_id, trend1, trend2, trend3, trend4, trend5, timestamp, ip_address)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Trend1, r.Trend2, r.Trend3, r.Trend4, r.Trend5, r.Timestamp, r.IPAddress,
	)
	if err != nil {
		return storageErr("insert result", err)
	}
	return nil
}

// Latest implements RecordStore.
func (s *PostgresStore) Latest(ctx context.Context) (*model.ScrapeResult, error) {
	r, err := scanPostgres(s.pool.QueryRow(ctx, selectColumns+` ORDER BY timestamp DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("read latest result", err)
	}
	return r, nil
}

// History implements RecordStore.
func (s *PostgresStore) History(ctx context.Context, limit int) ([]*model.ScrapeResult, error) {
	rows, err := s.pool.Query(ctx, selectColumns+` ORDER BY timestamp DESC LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, storageErr("query history", err)
	}
	defer rows.Close()

	var out []*model.ScrapeResult
	for rows.Next() {
		r, err := scanPostgres(rows)
		if err != nil {
			return nil, storageErr("scan history row", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate history", err)
	}
	return out, nil
}

func scanPostgres(row pgx.Row) (*model.ScrapeResult, error) {
	var r model.ScrapeResult
	if err := row.Scan(
		&r.ID, &r.Trend1, &r.Trend2, &r.Trend3, &r.Trend4, &r.Trend5, &r.Timestamp, &r.IPAddress,
	); err != nil {
		return nil, err
	}
	return &r, nil
}
