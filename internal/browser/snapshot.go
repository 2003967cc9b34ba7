package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// snapshotLayout is the timestamp suffix of snapshot file names.
const snapshotLayout = "20060102_150405"

// Snapshot tags.
const (
	TagLoginError    = "login_error"
	TagScrapingError = "scraping_error"
)

// Snapshotter writes a screenshot of a session into Dir when a stage fails.
// A Snapshotter with an empty Dir, or a nil *Snapshotter, does nothing.
type Snapshotter struct {
	Dir    string
	Now    func() time.Time
	Logger *slog.Logger
}

// NewSnapshotter creates a Snapshotter writing into dir.
func NewSnapshotter(dir string, logger *slog.Logger) *Snapshotter {
	return &Snapshotter{Dir: dir, Now: time.Now, Logger: logger}
}

// Capture saves "<tag>_YYYYMMDD_HHMMSS.png" and returns its path.
// Failures are logged and reported as an empty path; a missing snapshot
// never changes the outcome of the stage that asked for it.
func (s *Snapshotter) Capture(ctx context.Context, sess Session, tag string) string {
	if s == nil || s.Dir == "" || sess == nil {
		return ""
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path, err := s.capture(ctx, sess, tag)
	if err != nil {
		logger.Warn("failed to save diagnostic snapshot", "tag", tag, "error", err)
		return ""
	}
	logger.Info("saved diagnostic snapshot", "tag", tag, "path", path)
	return path
}

func (s *Snapshotter) capture(ctx context.Context, sess Session, tag string) (string, error) {
	// The stage context has usually expired by now.
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	png, err := sess.Screenshot(shotCtx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s.png", tag, now().Format(snapshotLayout)))
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}
