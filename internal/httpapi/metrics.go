package httpapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type runOutcome string

const (
	runSucceeded runOutcome = "success"
	runNoData    runOutcome = "no_data"
	runFailed    runOutcome = "error"
)

// metricsStore keeps a few counters per Server.
type metricsStore struct {
	mu sync.Mutex

	httpRequestsTotal uint64
	httpByPattern     map[reqKey]uint64

	runs       map[runOutcome]uint64
	runsShared uint64
}

type reqKey struct {
	Pattern string
	Status  int
}

type reqMetric struct {
	reqKey
	N uint64
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		httpByPattern: make(map[reqKey]uint64),
		runs:          make(map[runOutcome]uint64),
	}
}

func (m *metricsStore) incRequest(pattern string, status int) {
	if pattern == "" {
		pattern = "(unknown)"
	}
	m.mu.Lock()
	m.httpRequestsTotal++
	m.httpByPattern[reqKey{Pattern: pattern, Status: status}]++
	m.mu.Unlock()
}

func (m *metricsStore) incRun(o runOutcome) {
	m.mu.Lock()
	m.runs[o]++
	m.mu.Unlock()
}

func (m *metricsStore) incRunShared() {
	m.mu.Lock()
	m.runsShared++
	m.mu.Unlock()
}

func (m *metricsStore) render() string {
	m.mu.Lock()
	total := m.httpRequestsTotal
	reqs := make([]reqMetric, 0, len(m.httpByPattern))
	for k, n := range m.httpByPattern {
		reqs = append(reqs, reqMetric{reqKey: k, N: n})
	}
	runs := make(map[runOutcome]uint64, len(m.runs))
	for k, n := range m.runs {
		runs[k] = n
	}
	shared := m.runsShared
	m.mu.Unlock()

	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Pattern != reqs[j].Pattern {
			return reqs[i].Pattern < reqs[j].Pattern
		}
		return reqs[i].Status < reqs[j].Status
	})

	var b strings.Builder

	b.WriteString("# HELP trendscan_http_requests_total Total HTTP requests.\n")
	b.WriteString("# TYPE trendscan_http_requests_total counter\n")
	b.WriteString("trendscan_http_requests_total " + strconv.FormatUint(total, 10) + "\n")

	b.WriteString("# HELP trendscan_http_requests_by_pattern_total HTTP requests by ServeMux pattern and status.\n")
	b.WriteString("# TYPE trendscan_http_requests_by_pattern_total counter\n")
	for _, r := range reqs {
		b.WriteString("trendscan_http_requests_by_pattern_total{pattern=\"")
		b.WriteString(promLabelEscape(r.Pattern))
		b.WriteString("\",status=\"")
		b.WriteString(strconv.Itoa(r.Status))
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(r.N, 10))
		b.WriteByte('\n')
	}

	b.WriteString("# HELP trendscan_runs_total Scrape runs by outcome.\n")
	b.WriteString("# TYPE trendscan_runs_total counter\n")
	for _, o := range []runOutcome{runSucceeded, runNoData, runFailed} {
		b.WriteString("trendscan_runs_total{outcome=\"" + string(o) + "\"} ")
		b.WriteString(strconv.FormatUint(runs[o], 10))
		b.WriteByte('\n')
	}

	b.WriteString("# HELP trendscan_run_requests_shared_total /run-script requests answered by a run already in flight.\n")
	b.WriteString("# TYPE trendscan_run_requests_shared_total counter\n")
	b.WriteString("trendscan_run_requests_shared_total " + strconv.FormatUint(shared, 10) + "\n")

	return b.String()
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	WriteText(w, http.StatusOK, s.metrics.render())
}

// promLabelEscape escapes a Prometheus label value.
func promLabelEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
