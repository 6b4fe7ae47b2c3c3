package relay

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultCapacity bounds the buffer when no explicit capacity is configured.
const DefaultCapacity = 100

// Record is one received alert payload together with the time it arrived.
type Record struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Buffer is a bounded, mutex guarded queue of received alerts.
// When full, adding a record evicts the oldest one.
type Buffer struct {
	mu       sync.Mutex
	records  []Record
	capacity int
}

// NewBuffer creates a buffer that retains at most capacity records.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

// Add stamps the payload with the current time and appends it,
// evicting the oldest record if the buffer is full.
func (b *Buffer) Add(data json.RawMessage) Record {
	rec := Record{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.records) == b.capacity {
		// Shift left in place so the backing array stays at capacity
		copy(b.records, b.records[1:])
		b.records[b.capacity-1] = rec
		return rec
	}
	b.records = append(b.records, rec)
	return rec
}

// List returns a copy of the stored records, oldest first.
func (b *Buffer) List() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of records currently stored.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
