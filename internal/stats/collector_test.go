package stats

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/livefir/tmplmin"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.RecordFile(100, 60)
	c.RecordFile(50, 50)
	c.RecordFailure()
	c.RecordCacheHit()
	c.RecordCacheMiss()
	c.RecordCacheMiss()
	c.RecordRewrite(5, 12)

	s := c.Snapshot()
	if s.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", s.FilesProcessed)
	}
	if s.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", s.FilesFailed)
	}
	if s.CacheHits != 1 || s.CacheMisses != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", s.CacheHits, s.CacheMisses)
	}
	if s.BytesIn != 150 || s.BytesOut != 110 {
		t.Errorf("bytes = %d/%d, want 150/110", s.BytesIn, s.BytesOut)
	}
	if s.SpansMinified != 5 || s.SymbolsDropped != 12 {
		t.Errorf("rewrite work = %d/%d, want 5/12", s.SpansMinified, s.SymbolsDropped)
	}
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordFile(10, 7)
				c.RecordRewrite(1, 2)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.FilesProcessed != 800 {
		t.Errorf("FilesProcessed = %d, want 800", s.FilesProcessed)
	}
	if s.BytesIn != 8000 || s.BytesOut != 5600 {
		t.Errorf("bytes = %d/%d, want 8000/5600", s.BytesIn, s.BytesOut)
	}
	if s.SymbolsDropped != 1600 {
		t.Errorf("SymbolsDropped = %d, want 1600", s.SymbolsDropped)
	}
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	c.RecordFile(10, 5)
	c.RecordFailure()

	c.Reset()

	s := c.Snapshot()
	if s.FilesProcessed != 0 || s.FilesFailed != 0 || s.BytesIn != 0 {
		t.Errorf("counters not reset: %+v", s)
	}
}

func TestSavingsPercent(t *testing.T) {
	c := NewCollector()
	if got := c.SavingsPercent(); got != 0.0 {
		t.Errorf("SavingsPercent() with no input = %f, want 0", got)
	}

	c.RecordFile(200, 150)
	if got := c.SavingsPercent(); got != 25.0 {
		t.Errorf("SavingsPercent() = %f, want 25", got)
	}
}

func TestSnapshotJSON(t *testing.T) {
	c := NewCollector()
	c.RecordFile(10, 8)

	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	for _, key := range []string{"files_processed", "bytes_in", "bytes_out", "spans_minified"} {
		if !jsonHasKey(data, key) {
			t.Errorf("snapshot JSON missing %q: %s", key, data)
		}
	}
}

func jsonHasKey(data []byte, key string) bool {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return false
	}
	_, ok := m[key]
	return ok
}

func TestTreeCounts(t *testing.T) {
	root := &tmplmin.Block{
		Type: tmplmin.BlockDocument,
		Children: []tmplmin.Node{
			&tmplmin.Span{Kind: tmplmin.SpanMarkup, Content: "<div>"},
			&tmplmin.Span{Kind: tmplmin.SpanMarkup, Content: ""},
			&tmplmin.Block{
				Type: tmplmin.BlockExpression,
				Children: []tmplmin.Node{
					&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "{{"},
					&tmplmin.Span{Kind: tmplmin.SpanCode, Symbols: []tmplmin.Symbol{
						{Type: tmplmin.SymbolIdentifier, Content: ".X"},
						{Type: tmplmin.SymbolWhiteSpace, Content: " "},
					}},
					&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "}}"},
				},
			},
		},
	}

	spans, symbols := TreeCounts(root)
	if spans != 1 {
		t.Errorf("spans = %d, want 1 non-empty markup span", spans)
	}
	if symbols != 2 {
		t.Errorf("symbols = %d, want 2", symbols)
	}
}
