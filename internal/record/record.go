// Package record defines the canonical dataset record emitted by every
// ingestion source, plus the identifier allocator threaded between stages.
package record

import "sync"

// Dataset is the canonical output unit shared by the catalogue and crawl
// stages. Every field other than ID defaults to the empty string rather
// than being absent, and a Dataset is never mutated once it has been
// appended to the output collection.
type Dataset struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Owner         string `json:"owner"`
	Topic         string `json:"topic"`
	Year          string `json:"year"`
	License       string `json:"license"`
	Coverage      string `json:"coverage"`
	SamplePreview string `json:"sample_preview"`
	SourceURL     string `json:"source_url"`
	DataTypes     string `json:"data_types"`
}

// Counter allocates dense, monotonically increasing record identifiers.
// It is handed from the catalogue stage into the crawl stage so the two
// sources never collide, and it is safe for concurrent use by crawl
// workers racing to keep records.
type Counter struct {
	mu   sync.Mutex
	next int
}

// NewCounter returns a Counter whose first allocated identifier is start.
// Values below 1 are clamped to 1.
func NewCounter(start int) *Counter {
	if start < 1 {
		start = 1
	}
	return &Counter{next: start}
}

// Next returns the next identifier and advances the counter. Callers must
// invoke Next only when a record is actually kept; dropped candidates
// never consume an identifier.
func (c *Counter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	return id
}

// Value returns the next unallocated identifier without consuming it.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
