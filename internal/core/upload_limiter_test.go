package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadLimiter_AcquireRelease(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	assert.Equal(t, UploadLimiterStatus{Active: 0, Available: 2, MaxConcurrent: 2}, limiter.Status())

	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	assert.Equal(t, UploadLimiterStatus{Active: 2, Available: 0, MaxConcurrent: 2}, limiter.Status())

	limiter.Release()
	assert.Equal(t, 1, limiter.Status().Active)
	assert.Equal(t, 1, limiter.Status().Available)

	limiter.Release()
	assert.Equal(t, 0, limiter.Status().Active)
}

func TestUploadLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewUploadLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)

	assert.ErrorIs(t, err, ErrTooManyUploads)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestUploadLimiter_ContextCancelled(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Minute)
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, limiter.Acquire(ctx), context.Canceled)
}

func TestUploadLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	const totalRequests = 10

	limiter := NewUploadLimiter(maxConcurrent, 5*time.Second)

	var (
		wg          sync.WaitGroup
		inFlight    atomic.Int32
		maxObserved atomic.Int32
	)

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			n := inFlight.Add(1)
			for {
				old := maxObserved.Load()
				if n <= old || maxObserved.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, maxObserved.Load(), int32(maxConcurrent))
	assert.Equal(t, 0, limiter.Status().Active)
}

func TestUploadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	require.NoError(t, limiter.Acquire(context.Background()))

	released := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
		close(released)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, limiter.WaitForDrain(ctx))
	<-released

	// Drain hands its slots back.
	assert.Equal(t, 2, limiter.Status().Available)
}

func TestUploadLimiter_WaitForDrainTimeout(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, limiter.WaitForDrain(ctx), context.DeadlineExceeded)
	assert.Equal(t, 0, limiter.Status().Available)
}

func TestNewUploadLimiter_Defaults(t *testing.T) {
	limiter := NewUploadLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentUploads, limiter.Status().MaxConcurrent)
	assert.Equal(t, DefaultMaxWaitTime, limiter.maxWait)
}
