package keyring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRotator(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		wantErr bool
		wantLen int
	}{
		{name: "single key", keys: []string{"key1"}, wantLen: 1},
		{name: "trims and drops blanks", keys: []string{" key1 ", "", "key2", "  "}, wantLen: 2},
		{name: "empty list", keys: nil, wantErr: true},
		{name: "only blanks", keys: []string{"", "  "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRotator(tt.keys)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, r.Len())
		})
	}
}

func TestRotator_RoundRobin(t *testing.T) {
	r, err := NewRotator([]string{"a", "b", "c"})
	require.NoError(t, err)

	var indices []int
	for i := 0; i < 9; i++ {
		key, idx := r.Next()
		indices = append(indices, idx)
		assert.Equal(t, []string{"a", "b", "c"}[idx], key)
	}

	// Sequence must be periodic with period K.
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0, 1, 2}, indices)
}

func TestRotator_UsageBalance(t *testing.T) {
	r, err := NewRotator([]string{"a", "b", "c"})
	require.NoError(t, err)

	const calls = 10 // not a multiple of 3 on purpose
	for i := 0; i < calls; i++ {
		r.Next()
	}

	usage := r.Usage()
	var min, max uint64 = usage[0], usage[0]
	for _, n := range usage {
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	// Round-robin balance: counts may differ by at most one.
	assert.LessOrEqual(t, max-min, uint64(1))
	assert.Equal(t, uint64(calls), r.TotalRequests())
}

func TestRotator_ResetUsageKeepsCursor(t *testing.T) {
	r, err := NewRotator([]string{"a", "b"})
	require.NoError(t, err)

	r.Next() // cursor now at 1
	r.ResetUsage()

	assert.Equal(t, uint64(0), r.TotalRequests())

	_, idx := r.Next()
	assert.Equal(t, 1, idx, "reset must not move the cursor")
}

func TestRotator_ConcurrentNext(t *testing.T) {
	r, err := NewRotator([]string{"a", "b", "c", "d"})
	require.NoError(t, err)

	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				r.Next()
			}
		}()
	}
	wg.Wait()

	usage := r.Usage()
	var total uint64
	for _, n := range usage {
		total += n
	}
	assert.Equal(t, uint64(goroutines*perGoroutine), total)

	// 800 draws over 4 keys divides evenly, so every count must match.
	for i, n := range usage {
		assert.Equal(t, uint64(goroutines*perGoroutine/4), n, "key %d", i)
	}
}
