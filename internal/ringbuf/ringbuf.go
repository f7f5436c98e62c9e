// Package ringbuf keeps a bounded in-memory history of recent cycle status
// records. Each symbol gets a fixed-capacity overwrite ring so the HTTP API
// can serve recent indicator values without touching storage.
package ringbuf

import (
	"context"
	"sync"

	"papertrader/internal/model"
)

// Ring is a fixed-capacity overwrite ring of cycle status records. When full,
// a push evicts the oldest entry. Capacity is rounded up to a power of two
// for fast bitwise modulo.
type Ring struct {
	mu   sync.RWMutex
	buf  []model.CycleStatus
	mask uint64
	head uint64 // total pushes; next write goes to head&mask
}

// New creates a ring. capacity is rounded up to the next power of two, with
// a minimum of 2.
func New(capacity int) *Ring {
	c := nextPow2(capacity)
	if c < 2 {
		c = 2
	}
	return &Ring{
		buf:  make([]model.CycleStatus, c),
		mask: uint64(c - 1),
	}
}

// Push appends a status record, evicting the oldest when full.
func (r *Ring) Push(s model.CycleStatus) {
	r.mu.Lock()
	r.buf[r.head&r.mask] = s
	r.head++
	r.mu.Unlock()
}

// Recent returns up to n records, oldest first. n <= 0 returns everything
// retained.
func (r *Ring) Recent(n int) []model.CycleStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.head
	if size > uint64(len(r.buf)) {
		size = uint64(len(r.buf))
	}
	if n <= 0 || uint64(n) > size {
		n = int(size)
	}

	out := make([]model.CycleStatus, 0, n)
	for i := r.head - uint64(n); i < r.head; i++ {
		out = append(out, r.buf[i&r.mask])
	}
	return out
}

// Len returns the number of records currently retained.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.head > uint64(len(r.buf)) {
		return len(r.buf)
	}
	return int(r.head)
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// History fans cycle status records into per-symbol rings. It implements
// model.StatusSink; trade events are ignored because fills are journaled
// separately.
type History struct {
	capacity int

	mu    sync.RWMutex
	rings map[string]*Ring
}

// NewHistory creates a history keeping up to capacity records per symbol.
func NewHistory(capacity int) *History {
	return &History{
		capacity: capacity,
		rings:    make(map[string]*Ring),
	}
}

// PublishStatus records one cycle's status in the symbol's ring.
func (h *History) PublishStatus(_ context.Context, status model.CycleStatus) {
	h.mu.Lock()
	ring, ok := h.rings[status.Symbol]
	if !ok {
		ring = New(h.capacity)
		h.rings[status.Symbol] = ring
	}
	h.mu.Unlock()

	ring.Push(status)
}

// PublishTrade is a no-op; see the type comment.
func (h *History) PublishTrade(context.Context, model.Trade) {}

// Recent returns up to n status records for symbol, oldest first.
func (h *History) Recent(symbol string, n int) []model.CycleStatus {
	h.mu.RLock()
	ring, ok := h.rings[symbol]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return ring.Recent(n)
}

// Symbols returns the symbols with recorded history.
func (h *History) Symbols() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.rings))
	for s := range h.rings {
		out = append(out, s)
	}
	return out
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
