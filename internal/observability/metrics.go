package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics keeps in-process counters for the request path. Requests are
// keyed by route, method and status; errors are additionally rolled up
// by domain error code so failure classes stand out at a glance.
type Metrics struct {
	mu           sync.Mutex
	requests     map[string]int64
	latencySum   map[string]time.Duration
	errors       map[string]int64
	errorsByCode map[string]int64
}

// MetricsSnapshot is a point-in-time copy of the counters, served on
// the metrics endpoint.
type MetricsSnapshot struct {
	Requests     map[string]int64 `json:"requests"`
	LatencyMS    map[string]int64 `json:"latency_ms_total"`
	Errors       map[string]int64 `json:"errors"`
	ErrorsByCode map[string]int64 `json:"errors_by_code"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests:     make(map[string]int64),
		latencySum:   make(map[string]time.Duration),
		errors:       make(map[string]int64),
		errorsByCode: make(map[string]int64),
	}
}

// RecordRequest counts a completed request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := counterKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	m.latencySum[key] += duration
}

// RecordError counts a request that resolved to a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[counterKey(path, method, code)]++
	m.errorsByCode[code]++
}

// Snapshot copies the counters for serving.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Requests:     make(map[string]int64),
		LatencyMS:    make(map[string]int64),
		Errors:       make(map[string]int64),
		ErrorsByCode: make(map[string]int64),
	}
	if m == nil {
		return snapshot
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, count := range m.requests {
		snapshot.Requests[key] = count
	}
	for key, total := range m.latencySum {
		snapshot.LatencyMS[key] = total.Milliseconds()
	}
	for key, count := range m.errors {
		snapshot.Errors[key] = count
	}
	for code, count := range m.errorsByCode {
		snapshot.ErrorsByCode[code] = count
	}
	return snapshot
}

func counterKey(parts ...string) string {
	return strings.Join(parts, "|")
}
