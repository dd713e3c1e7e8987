// Package stats collects pass counters shared by concurrent batch
// workers, with no external dependencies.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/livefir/tmplmin"
)

// Collector aggregates counters for one batch run. All recording
// methods are safe for concurrent use.
type Collector struct {
	counters  *Snapshot
	startTime time.Time
}

// Snapshot is a point-in-time copy of the batch counters.
type Snapshot struct {
	// File outcomes
	FilesProcessed int64 `json:"files_processed"`
	FilesFailed    int64 `json:"files_failed"`

	// Cache effectiveness
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`

	// Byte accounting
	BytesIn  int64 `json:"bytes_in"`
	BytesOut int64 `json:"bytes_out"`

	// Tree-level work
	SpansMinified  int64 `json:"spans_minified"`
	SymbolsDropped int64 `json:"symbols_dropped"`

	// Timing
	StartTime time.Time     `json:"start_time"`
	Elapsed   time.Duration `json:"elapsed"`
}

// NewCollector creates a collector with all counters at zero.
func NewCollector() *Collector {
	return &Collector{
		counters:  &Snapshot{StartTime: time.Now()},
		startTime: time.Now(),
	}
}

// RecordFile records one successfully processed file and its byte
// counts before and after minification.
func (c *Collector) RecordFile(bytesIn, bytesOut int) {
	atomic.AddInt64(&c.counters.FilesProcessed, 1)
	atomic.AddInt64(&c.counters.BytesIn, int64(bytesIn))
	atomic.AddInt64(&c.counters.BytesOut, int64(bytesOut))
}

// RecordFailure records a file that could not be processed.
func (c *Collector) RecordFailure() {
	atomic.AddInt64(&c.counters.FilesFailed, 1)
}

// RecordCacheHit records a file served from the result cache.
func (c *Collector) RecordCacheHit() {
	atomic.AddInt64(&c.counters.CacheHits, 1)
}

// RecordCacheMiss records a file that had to be minified.
func (c *Collector) RecordCacheMiss() {
	atomic.AddInt64(&c.counters.CacheMisses, 1)
}

// RecordRewrite records tree-level work done by one rewrite pass.
func (c *Collector) RecordRewrite(spansMinified, symbolsDropped int64) {
	atomic.AddInt64(&c.counters.SpansMinified, spansMinified)
	atomic.AddInt64(&c.counters.SymbolsDropped, symbolsDropped)
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesProcessed: atomic.LoadInt64(&c.counters.FilesProcessed),
		FilesFailed:    atomic.LoadInt64(&c.counters.FilesFailed),
		CacheHits:      atomic.LoadInt64(&c.counters.CacheHits),
		CacheMisses:    atomic.LoadInt64(&c.counters.CacheMisses),
		BytesIn:        atomic.LoadInt64(&c.counters.BytesIn),
		BytesOut:       atomic.LoadInt64(&c.counters.BytesOut),
		SpansMinified:  atomic.LoadInt64(&c.counters.SpansMinified),
		SymbolsDropped: atomic.LoadInt64(&c.counters.SymbolsDropped),
		StartTime:      c.counters.StartTime,
		Elapsed:        time.Since(c.startTime),
	}
}

// Reset resets all counters to zero.
func (c *Collector) Reset() {
	atomic.StoreInt64(&c.counters.FilesProcessed, 0)
	atomic.StoreInt64(&c.counters.FilesFailed, 0)
	atomic.StoreInt64(&c.counters.CacheHits, 0)
	atomic.StoreInt64(&c.counters.CacheMisses, 0)
	atomic.StoreInt64(&c.counters.BytesIn, 0)
	atomic.StoreInt64(&c.counters.BytesOut, 0)
	atomic.StoreInt64(&c.counters.SpansMinified, 0)
	atomic.StoreInt64(&c.counters.SymbolsDropped, 0)

	c.startTime = time.Now()
	c.counters.StartTime = c.startTime
}

// SavingsPercent returns how much smaller outputs are than inputs.
func (c *Collector) SavingsPercent() float64 {
	in := atomic.LoadInt64(&c.counters.BytesIn)
	out := atomic.LoadInt64(&c.counters.BytesOut)

	if in == 0 {
		return 0.0
	}

	return float64(in-out) / float64(in) * 100.0
}

// TreeCounts returns the number of non-empty markup spans and the
// total symbol count in a tree. Comparing the counts before and after
// a rewrite yields the work figures for RecordRewrite.
func TreeCounts(root *tmplmin.Block) (spans, symbols int64) {
	tmplmin.Walk(root, func(n tmplmin.Node) bool {
		if s, ok := n.(*tmplmin.Span); ok {
			if s.Kind == tmplmin.SpanMarkup && s.Text() != "" {
				spans++
			}
			symbols += int64(len(s.Symbols))
		}
		return true
	})
	return spans, symbols
}
