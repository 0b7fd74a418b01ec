package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /pattern" for requests, "VERB table" for queries
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Failed     bool // 5xx response or driver error
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// Writes overwrite the oldest entry when full; aggregation happens on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0 (non-positive sizes fall back to DefaultRingSize)
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record appends an entry to the ring buffer.
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	Since    time.Time    `json:"since"`
	Requests KindSnapshot `json:"requests"`
	Queries  KindSnapshot `json:"queries"`
}

// KindSnapshot aggregates one entry kind.
type KindSnapshot struct {
	Count   int        `json:"count"`
	Failed  int        `json:"failed"`
	P50Ms   float64    `json:"p50_ms"`
	P95Ms   float64    `json:"p95_ms"`
	P99Ms   float64    `json:"p99_ms"`
	Slowest []PathStat `json:"slowest"`
}

// PathStat aggregates timing for a single path or statement label.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	Failed  int     `json:"failed"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	totalMs float64
}

// Snapshot computes aggregated stats for entries recorded at or after since.
// It sorts, so call it on demand only.
// PRE: topN >= 0
// POST: Returns percentiles and the topN slowest paths per kind
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var acc [2]accumulator
	for i := range acc {
		acc[i].paths = make(map[string]*PathStat)
	}
	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) || int(e.Kind) >= len(acc) {
			continue
		}
		acc[e.Kind].add(e)
	}

	return Snapshot{
		Since:    since,
		Requests: acc[KindRequest].snapshot(topN),
		Queries:  acc[KindQuery].snapshot(topN),
	}
}

type accumulator struct {
	durations []float64
	failed    int
	paths     map[string]*PathStat
}

func (a *accumulator) add(e Entry) {
	a.durations = append(a.durations, e.DurationMs)
	s, ok := a.paths[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		a.paths[e.Path] = s
	}
	s.Count++
	s.totalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
	if e.Failed {
		s.Failed++
		a.failed++
	}
}

func (a *accumulator) snapshot(topN int) KindSnapshot {
	ks := KindSnapshot{Count: len(a.durations), Failed: a.failed, Slowest: []PathStat{}}
	if len(a.durations) == 0 {
		return ks
	}
	sort.Float64s(a.durations)
	ks.P50Ms = percentile(a.durations, 50)
	ks.P95Ms = percentile(a.durations, 95)
	ks.P99Ms = percentile(a.durations, 99)

	list := make([]PathStat, 0, len(a.paths))
	for _, s := range a.paths {
		s.AvgMs = s.totalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if len(list) > topN {
		list = list[:topN]
	}
	ks.Slowest = list
	return ks
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
