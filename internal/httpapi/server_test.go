package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/trendscan/internal/model"
)

// fakeRunner stores result in store when run, like the real runner does.
type fakeRunner struct {
	calls   atomic.Int32
	result  *model.ScrapeResult
	err     error
	store   *fakeStore
	started chan struct{}
	release chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context) (*model.ScrapeResult, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil && f.store != nil {
		f.store.set(f.result)
	}
	return f.result, nil
}

type fakeStore struct {
	mu     sync.Mutex
	latest *model.ScrapeResult
	err    error
}

func (f *fakeStore) set(r *model.ScrapeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = r
}

func (f *fakeStore) Latest(context.Context) (*model.ScrapeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.err
}

func record(id string, topics ...string) *model.ScrapeResult {
	entries := make([]model.TrendEntry, len(topics))
	for i, topic := range topics {
		entries[i] = model.TrendEntry{Topic: topic}
	}
	at := time.Date(2024, 7, 8, 9, 10, 11, 0, time.UTC)
	return model.NewScrapeResult(id, entries, at, model.ProxyEndpoint{Host: "us-ny.proxymesh.com", Port: 31280})
}

func newTestServer(runner Runner, store LatestReader) *Server {
	return NewServer(runner, store, Options{Logger: slog.New(slog.DiscardHandler)})
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	var resp Response
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v\nbody=%q", err, rr.Body.String())
		}
	}
	return rr, resp
}

func TestRunScript(t *testing.T) {
	t.Parallel()

	t.Run("returns the stored record", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		want := record("run-1", "#A", "#B")
		srv := newTestServer(&fakeRunner{result: want, store: store}, store)

		rr, resp := get(t, srv.Handler(), "/run-script")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
		}
		if resp.Status != StatusSuccess {
			t.Fatalf("status = %q, want success", resp.Status)
		}
		if diff := cmp.Diff(want, resp.Data); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(rr.Body.String(), `"_id":"run-1"`) {
			t.Errorf("body does not use stored field names: %s", rr.Body.String())
		}
	})

	t.Run("no data from an empty store", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeRunner{}, &fakeStore{})

		rr, resp := get(t, srv.Handler(), "/run-script")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if resp.Status != StatusError || resp.Message != MsgNoDataFetched {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("run error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeRunner{err: errors.New("missing credentials")}, &fakeStore{})

		rr, resp := get(t, srv.Handler(), "/run-script")
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rr.Code)
		}
		if resp.Status != StatusError || !strings.Contains(resp.Message, "missing credentials") {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("concurrent requests share one run", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		runner := &fakeRunner{
			result:  record("shared", "#S"),
			store:   store,
			started: make(chan struct{}, 8),
			release: make(chan struct{}),
		}
		srv := newTestServer(runner, store)
		h := srv.Handler()

		const clients = 4
		var wg sync.WaitGroup
		codes := make([]int, clients)
		for i := range clients {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rr := httptest.NewRecorder()
				h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/run-script", nil))
				codes[i] = rr.Code
			}()
		}

		<-runner.started
		time.Sleep(200 * time.Millisecond)
		close(runner.release)
		wg.Wait()

		if n := runner.calls.Load(); n != 1 {
			t.Errorf("runner called %d times, want 1", n)
		}
		for i, c := range codes {
			if c != http.StatusOK {
				t.Errorf("client %d status = %d", i, c)
			}
		}
	})
}

func TestGetLatestData(t *testing.T) {
	t.Parallel()

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeRunner{}, &fakeStore{})
		_, resp := get(t, srv.Handler(), "/get-latest-data")
		if resp.Status != StatusError || resp.Message != MsgNoData {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("latest record", func(t *testing.T) {
		t.Parallel()

		want := record("latest", "#L")
		runner := &fakeRunner{}
		srv := newTestServer(runner, &fakeStore{latest: want})

		_, resp := get(t, srv.Handler(), "/get-latest-data")
		if diff := cmp.Diff(want, resp.Data); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
		if runner.calls.Load() != 0 {
			t.Error("reading the latest record must not start a run")
		}
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeRunner{}, &fakeStore{err: errors.New("db down")})
		rr, resp := get(t, srv.Handler(), "/get-latest-data")
		if rr.Code != http.StatusInternalServerError || resp.Status != StatusError {
			t.Errorf("status = %d, response = %+v", rr.Code, resp)
		}
	})
}

func TestIndexAndHealthz(t *testing.T) {
	t.Parallel()

	h := newTestServer(&fakeRunner{}, &fakeStore{}).Handler()

	rr, _ := get(t, h, "/")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/run-script") {
		t.Errorf("index status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("index content type = %s", ct)
	}

	rr, _ = get(t, h, "/healthz")
	if rr.Body.String() != "ok\n" {
		t.Errorf("healthz body = %q", rr.Body.String())
	}

	rr, _ = get(t, h, "/does-not-exist")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rr.Code)
	}
}

func TestMetrics_CountsRequestsAndRuns(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	srv := newTestServer(&fakeRunner{result: record("m", "#M"), store: store}, store)
	h := srv.Handler()

	get(t, h, "/healthz")
	get(t, h, "/run-script")

	rr, _ := get(t, h, "/metrics")
	body := rr.Body.String()

	for _, want := range []string{
		"trendscan_http_requests_total 2\n",
		`pattern="GET /healthz",status="200"} 1`,
		`pattern="GET /run-script",status="200"} 1`,
		`trendscan_runs_total{outcome="success"} 1`,
		`trendscan_runs_total{outcome="no_data"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics body missing %q, got:\n%s", want, body)
		}
	}
}
