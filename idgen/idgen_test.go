package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIsMonotonic(t *testing.T) {
	Reset()
	a := Next()
	b := Next()
	c := Next()
	assert.Equal(t, a+1, b)
	assert.Equal(t, b+1, c)
}

func TestResetRestartsAtZero(t *testing.T) {
	Reset()
	assert.Equal(t, 0, Next())
	assert.Equal(t, 1, Next())
	Reset()
	assert.Equal(t, 0, Next())
}

func TestNextUniqueUnderConcurrency(t *testing.T) {
	Reset()
	const n = 500
	ids := make([]int, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			ids[i] = Next()
		}()
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
