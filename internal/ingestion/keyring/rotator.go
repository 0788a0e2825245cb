package keyring

import (
	"fmt"
	"strings"
	"sync"
)

// Rotator hands out API keys round-robin. The free upstream tier enforces a
// per-key quota, so spreading calls evenly across keys multiplies the quota.
// Safe for concurrent use.
type Rotator struct {
	mu     sync.Mutex
	keys   []string
	cursor int
	usage  []uint64
}

// NewRotator builds a rotator from the configured key list. Blank entries
// are dropped; an effectively empty list is a construction error.
func NewRotator(keys []string) (*Rotator, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no API keys configured")
	}
	return &Rotator{
		keys:  cleaned,
		usage: make([]uint64, len(cleaned)),
	}, nil
}

// Next returns the key at the current cursor position and its index, then
// advances the cursor. The read, usage increment and advance are one
// atomic step so concurrent callers never observe the same cursor value.
func (r *Rotator) Next() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := r.cursor
	key := r.keys[index]
	r.usage[index]++
	r.cursor = (r.cursor + 1) % len(r.keys)
	return key, index
}

// Len returns the number of configured keys.
func (r *Rotator) Len() int {
	return len(r.keys)
}

// Usage returns a snapshot of per-key draw counts indexed by key position.
func (r *Rotator) Usage() map[int]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[int]uint64, len(r.usage))
	for i, n := range r.usage {
		snapshot[i] = n
	}
	return snapshot
}

// TotalRequests returns the total number of draws across all keys.
func (r *Rotator) TotalRequests() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total uint64
	for _, n := range r.usage {
		total += n
	}
	return total
}

// ResetUsage zeroes the usage counters. The cursor is left alone so the
// rotation order is unaffected.
func (r *Rotator) ResetUsage() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.usage {
		r.usage[i] = 0
	}
}
