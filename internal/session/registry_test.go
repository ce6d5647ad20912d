package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmitRejectsSecondConnection(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Admit("alice", "c1"))
	assert.ErrorIs(t, r.Admit("alice", "c2"), ErrAlreadyConnected)
	assert.ErrorIs(t, r.Admit("alice", "c1"), ErrAlreadyConnected)
	assert.True(t, r.Connected("alice"))
	assert.Equal(t, 1, r.Count())
}

func TestReleaseOnlyByHolder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Admit("alice", "c1"))

	r.Release("alice", "c2")
	assert.True(t, r.Connected("alice"), "stale release must not evict the holder")

	r.Release("alice", "c1")
	assert.False(t, r.Connected("alice"))

	// Idempotent.
	r.Release("alice", "c1")
	r.Release("ghost", "c9")
	assert.Zero(t, r.Count())

	require.NoError(t, r.Admit("alice", "c2"), "identity can re-admit right after release")
}

func TestConcurrentAdmitSingleWinner(t *testing.T) {
	r := NewRegistry()

	const attempts = 64
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		rejected atomic.Int32
	)
	start := make(chan struct{})
	for i := range attempts {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			<-start
			err := r.Admit("alice", fmt.Sprintf("c%d", id))
			switch {
			case err == nil:
				accepted.Add(1)
			case assert.ErrorIs(t, err, ErrAlreadyConnected):
				rejected.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load())
	assert.EqualValues(t, attempts-1, rejected.Load())
}
