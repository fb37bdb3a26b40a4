package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitWaitRunsAllTasks(t *testing.T) {
	pool := New(4)
	defer pool.Shutdown()

	var done int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		err := pool.SubmitWait(func() {
			defer wg.Done()
			atomic.AddInt64(&done, 1)
		})
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, int64(50), atomic.LoadInt64(&done))
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := New(1)
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(func() {}), ErrPoolClosed)
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	require.NoError(t, pool.SubmitWait(func() { panic("boom") }))

	var wg sync.WaitGroup
	wg.Add(1)
	ran := false
	require.NoError(t, pool.SubmitWait(func() {
		defer wg.Done()
		ran = true
	}))
	wg.Wait()
	assert.True(t, ran)
}

func TestShutdownIsIdempotent(t *testing.T) {
	pool := New(2)
	pool.Shutdown()
	pool.Shutdown()
}
