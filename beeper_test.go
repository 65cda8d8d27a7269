package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeeperQueueSilenceStaysNearZero(t *testing.T) {
	q := NewBeeperQueue(44100)
	out := make([]int16, 1024)
	q.ReadSamples(out)
	for _, s := range out {
		require.InDelta(t, 0, s, 1)
	}
}

func TestBeeperQueueToggleProducesNonZeroOutput(t *testing.T) {
	q := NewBeeperQueue(44100)
	q.Push(0, true)
	q.Push(1000, false)
	q.Push(2000, true)

	out := make([]int16, 256)
	q.ReadSamples(out)

	var sawNonZero bool
	for _, s := range out {
		if s != 0 {
			sawNonZero = true
			break
		}
	}
	require.True(t, sawNonZero)
}

func TestBeeperQueueEndFrameRebasesFutureEdges(t *testing.T) {
	q := NewBeeperQueue(44100)
	// An edge timestamped slightly past the end of this frame belongs to
	// the next frame; EndFrame must not drop it, only rebase it to 0.
	q.Push(TStatesPerFrame+10, true)
	q.EndFrame()

	require.Equal(t, 1, q.qLen)
	require.Equal(t, uint32(10), q.queue[0].tstate)
}

func TestBeeperQueueResyncClearsPendingEdges(t *testing.T) {
	q := NewBeeperQueue(44100)
	q.Push(100, true)
	q.Resync()
	require.Equal(t, 0, q.qLen)
	require.Equal(t, 0.0, q.cycleCursor)
}
