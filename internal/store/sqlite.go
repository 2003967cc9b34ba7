package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/trendscan/internal/model"
)

// SQLiteFile is the database file name inside the data directory.
const SQLiteFile = "trendscan.db"

// SQLiteStore is the file-backed RecordStore.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// SQLiteOptions configures SQLiteStore behavior.
type SQLiteOptions struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that readers (the HTTP
	// trigger) are not blocked by a run writing its result.
	EnableWAL bool
}

// DefaultSQLiteOptions returns the default database options.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates the database in dbDir.
func OpenSQLite(dbDir string, opts SQLiteOptions) (*SQLiteStore, error) {
	dbPath := filepath.Join(dbDir, SQLiteFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, storageErr("open database", fmt.Errorf("database not found at %s", dbPath))
		} else if err != nil {
			return nil, storageErr("check database path", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, storageErr("create database directory", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storageErr("open database", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, storageErr("enable WAL mode", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, storageErr("create tables", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	schema := `
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
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Insert implements RecordStore.
func (s *SQLiteStore) Insert(ctx context.Context, r *model.ScrapeResult) error {
	query := `
	INSERT INTO trends (_id, trend1, trend2, trend3, trend4, trend5, timestamp, ip_address)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		nullable(r.Trend1),
		nullable(r.Trend2),
		nullable(r.Trend3),
		nullable(r.Trend4),
		nullable(r.Trend5),
		r.Timestamp,
		r.IPAddress,
	)
	if err != nil {
		return storageErr("insert result", err)
	}
	return nil
}

// Latest implements RecordStore. Ties on timestamp go to the row inserted last.
func (s *SQLiteStore) Latest(ctx context.Context) (*model.ScrapeResult, error) {
	query := selectColumns + ` ORDER BY timestamp DESC, rowid DESC LIMIT 1`

	r, err := scanResult(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("read latest result", err)
	}
	return r, nil
}

// History implements RecordStore.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]*model.ScrapeResult, error) {
	query := selectColumns + ` ORDER BY timestamp DESC, rowid DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, storageErr("query history", err)
	}
	defer rows.Close()

	var out []*model.ScrapeResult
	for rows.Next() {
		r, err := scanResult(rows)
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

const selectColumns = `
	SELECT _id, trend1, trend2, trend3, trend4, trend5, timestamp, ip_address
	FROM trends`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*model.ScrapeResult, error) {
	var (
		r      model.ScrapeResult
		trends [model.MaxTrends]sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&trends[0], &trends[1], &trends[2], &trends[3], &trends[4],
		&r.Timestamp,
		&r.IPAddress,
	)
	if err != nil {
		return nil, err
	}
	slots := []**string{&r.Trend1, &r.Trend2, &r.Trend3, &r.Trend4, &r.Trend5}
	for i, t := range trends {
		if t.Valid {
			v := t.String
			*slots[i] = &v
		}
	}
	return &r, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
