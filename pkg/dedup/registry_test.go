package dedup

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRejectsCollision(t *testing.T) {
	r := New()

	release, ok := r.Acquire("addSale_50000000001_1700000000000")
	require.True(t, ok)
	assert.True(t, r.Has("addSale_50000000001_1700000000000"))

	_, ok = r.Acquire("addSale_50000000001_1700000000000")
	assert.False(t, ok, "second caller must be rejected while the first is in flight")

	release()
	assert.False(t, r.Has("addSale_50000000001_1700000000000"))

	release2, ok := r.Acquire("addSale_50000000001_1700000000000")
	require.True(t, ok, "key is free again once released")
	release2()
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := New()
	release, ok := r.Acquire("k")
	require.True(t, ok)

	release()
	release()
	assert.Equal(t, 0, r.Len())
}

func TestConcurrentAcquireAdmitsOne(t *testing.T) {
	r := New()
	var admitted int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := r.Acquire("same"); ok {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), admitted)
}
