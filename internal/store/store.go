package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/trendscan/internal/config"
	"github.com/nao1215/trendscan/internal/model"
)

// ErrStorage wraps every failure of a backend.
var ErrStorage = errors.New("storage error")

// RecordStore persists and reads scrape results.
type RecordStore interface {
	// Insert stores one result. A duplicate _id is an error.
	Insert(ctx context.Context, result *model.ScrapeResult) error
	// Latest returns the result with the greatest timestamp, or nil, nil
	// when the store is empty.
	Latest(ctx context.Context) (*model.ScrapeResult, error)
	// History returns up to limit results, newest first.
	History(ctx context.Context, limit int) ([]*model.ScrapeResult, error)
	// Close releases the backend connection.
	Close() error
}

// Open returns the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (RecordStore, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite, "":
		return OpenSQLite(cfg.DBDir, DefaultSQLiteOptions())
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg.StoreDSN)
	case config.StoreMongo:
		return OpenMongo(ctx, cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrStorage, config.ErrUnknownStoreDriver, cfg.StoreDriver)
	}
}

// storageErr wraps err as ErrStorage with an action description.
func storageErr(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStorage, action, err)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return config.DefaultHistoryLimit
	}
	return limit
}
