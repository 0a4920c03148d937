package ulasan

import (
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEveryJob(t *testing.T) {
	pool := NewPool(4)
	defer pool.Stop()

	var count int64
	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = func() error {
			atomic.AddInt64(&count, 1)
			return nil
		}
	}
	pool.Add(jobs)
	require.NoError(t, pool.Wait())
	assert.EqualValues(t, 100, atomic.LoadInt64(&count))
}

func TestPoolReportsErrors(t *testing.T) {
	pool := NewPool(2)
	defer pool.Stop()

	errBoom := errors.New("boom")
	pool.Add([]Job{
		func() error { return nil },
		func() error { return errBoom },
		func() error { return nil },
	})
	err := pool.Wait()
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "1 job(s) failed")
}

func TestPoolRecoversPanics(t *testing.T) {
	pool := NewPool(1)
	defer pool.Stop()

	pool.Add([]Job{func() error { panic("kaboom") }})
	err := pool.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestPoolDefaultsWorkers(t *testing.T) {
	pool := NewPool(0)
	defer pool.Stop()

	pool.Add([]Job{func() error { return nil }})
	assert.NoError(t, pool.Wait())
}
