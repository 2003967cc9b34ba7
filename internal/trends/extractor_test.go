package trends_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/browser/browsertest"
	"github.com/nao1215/trendscan/internal/model"
	"github.com/nao1215/trendscan/internal/trends"
)

const (
	trendingURL   = "https://x.com/explore/tabs/trending"
	trendSelector = `[data-testid="trend"]`
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func item(topic string) string {
	return "1\n·\nTrending in Japan\n" + topic + "\n2K posts"
}

func topics(entries []model.TrendEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Topic)
	}
	return out
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	ep := model.MustParseProxyEndpoint("proxy.example.com:31280")

	t.Run("filters the first five items in page order", func(t *testing.T) {
		t.Parallel()

		sess := browsertest.NewSession(ep, trendSelector)
		sess.TextsBySelector[trendSelector] = []string{
			item("#A"), item("Plain"), item("#B"), item("#C"), item("#D"), item("#E"), item("#F"),
		}

		e := trends.NewExtractor(trendingURL, trendSelector, trends.WithLogger(quietLogger()))
		got := e.Extract(t.Context(), sess)

		if diff := cmp.Diff([]string{"#A", "#B", "#C", "#D"}, topics(got)); diff != "" {
			t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{trendingURL}, sess.Navigations); diff != "" {
			t.Errorf("navigations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("items after the fifth are never used", func(t *testing.T) {
		t.Parallel()

		sess := browsertest.NewSession(ep, trendSelector)
		sess.TextsBySelector[trendSelector] = []string{
			item("#A"), item("x"), item("y"), item("z"), item("w"), item("#F"), item("#G"),
		}

		e := trends.NewExtractor(trendingURL, trendSelector, trends.WithLogger(quietLogger()))
		if diff := cmp.Diff([]string{"#A"}, topics(e.Extract(t.Context(), sess))); diff != "" {
			t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("max trends option", func(t *testing.T) {
		t.Parallel()

		sess := browsertest.NewSession(ep, trendSelector)
		sess.TextsBySelector[trendSelector] = []string{item("#A"), item("#B"), item("#C")}

		e := trends.NewExtractor(trendingURL, trendSelector,
			trends.WithMaxTrends(2), trends.WithLogger(quietLogger()))
		if got := e.Extract(t.Context(), sess); len(got) != 2 {
			t.Errorf("Extract() returned %d entries, want 2", len(got))
		}
	})

	t.Run("no trend element yields empty and a snapshot", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		snaps := browser.NewSnapshotter(dir, quietLogger())
		snaps.Now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

		sess := browsertest.NewSession(ep)
		e := trends.NewExtractor(trendingURL, trendSelector,
			trends.WithSnapshotter(snaps), trends.WithLogger(quietLogger()))

		if got := e.Extract(t.Context(), sess); len(got) != 0 {
			t.Errorf("Extract() = %v, want empty", got)
		}
		want := filepath.Join(dir, "scraping_error_20240301_093000.png")
		if _, err := os.Stat(want); err != nil {
			t.Errorf("snapshot %s not written: %v", want, err)
		}
	})

	t.Run("read error yields empty", func(t *testing.T) {
		t.Parallel()

		sess := browsertest.NewSession(ep, trendSelector)
		sess.TextsErr = errors.New("evaluate failed")

		e := trends.NewExtractor(trendingURL, trendSelector, trends.WithLogger(quietLogger()))
		if got := e.Extract(t.Context(), sess); len(got) != 0 {
			t.Errorf("Extract() = %v, want empty", got)
		}
	})

	t.Run("navigation failure yields empty", func(t *testing.T) {
		t.Parallel()

		sess := browsertest.NewSession(ep, trendSelector)
		sess.FailNavigation[trendingURL] = true

		e := trends.NewExtractor(trendingURL, trendSelector, trends.WithLogger(quietLogger()))
		if got := e.Extract(t.Context(), sess); len(got) != 0 {
			t.Errorf("Extract() = %v, want empty", got)
		}
		if len(sess.Waits) != 0 {
			t.Errorf("waited for %v after failed navigation", sess.Waits)
		}
	})

	t.Run("all items malformed", func(t *testing.T) {
		t.Parallel()

		sess := browsertest.NewSession(ep, trendSelector)
		sess.TextsBySelector[trendSelector] = []string{"x", "1\n2\n3\nnohash"}

		e := trends.NewExtractor(trendingURL, trendSelector, trends.WithLogger(quietLogger()))
		if got := e.Extract(t.Context(), sess); len(got) != 0 {
			t.Errorf("Extract() = %v, want empty", got)
		}
	})
}
