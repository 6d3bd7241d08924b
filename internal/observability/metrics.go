package observability

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	started      time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	latency      map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:      time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latency:      make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latency[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RouteStat summarizes one method, path and status combination.
type RouteStat struct {
	Method       string  `json:"method"`
	Path         string  `json:"path"`
	Status       string  `json:"status"`
	Count        int64   `json:"count"`
	AvgLatencyMs float64 `json:"avgLatencyMs,omitempty"`
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64       `json:"uptimeSeconds"`
	Requests      []RouteStat `json:"requests"`
	Errors        []RouteStat `json:"errors"`
}

// Snapshot copies the counters, sorted by path then method.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Requests:      make([]RouteStat, 0, len(m.requestCount)),
		Errors:        make([]RouteStat, 0, len(m.errorCount)),
	}
	for key, count := range m.requestCount {
		stat := splitKey(key, count)
		if count > 0 {
			stat.AvgLatencyMs = float64(m.latency[key].Microseconds()) / 1000 / float64(count)
		}
		snap.Requests = append(snap.Requests, stat)
	}
	for key, count := range m.errorCount {
		snap.Errors = append(snap.Errors, splitKey(key, count))
	}
	sortStats(snap.Requests)
	sortStats(snap.Errors)
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}

func splitKey(key string, count int64) RouteStat {
	parts := strings.SplitN(key, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return RouteStat{Path: parts[0], Method: parts[1], Status: parts[2], Count: count}
}

func sortStats(stats []RouteStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Path != stats[j].Path {
			return stats[i].Path < stats[j].Path
		}
		if stats[i].Method != stats[j].Method {
			return stats[i].Method < stats[j].Method
		}
		return stats[i].Status < stats[j].Status
	})
}
