package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertosw/gamepad-bridge/gamepad"
)

// Exercises the queue and marker bookkeeping directly, without the pump
// goroutine, so drop counts can be asserted exactly.

func stateEvent(seq uint64) gamepad.Event {
	return gamepad.Event{Kind: gamepad.EventState, Device: "pad", Seq: seq}
}

func TestPushKeepsOrder(t *testing.T) {
	s := &Subscription{notify: make(chan struct{}, 1)}
	for i := uint64(1); i <= 3; i++ {
		s.push(stateEvent(i), 8)
	}

	for i := uint64(1); i <= 3; i++ {
		ev, ok := s.next()
		require.True(t, ok)
		assert.Equal(t, i, ev.Seq)
	}
	_, ok := s.next()
	assert.False(t, ok)
}

func TestOverflowDropsOldest(t *testing.T) {
	s := &Subscription{notify: make(chan struct{}, 1)}
	for i := uint64(1); i <= 5; i++ {
		s.push(stateEvent(i), 3)
	}

	// Two oldest dropped, marker first, then 3..5.
	ev, ok := s.next()
	require.True(t, ok)
	assert.Equal(t, gamepad.EventDropped, ev.Kind)
	assert.Equal(t, uint64(2), ev.Dropped)

	for i := uint64(3); i <= 5; i++ {
		ev, ok := s.next()
		require.True(t, ok)
		assert.Equal(t, gamepad.EventState, ev.Kind)
		assert.Equal(t, i, ev.Seq)
	}
}

func TestOverflowAbsorbsEarlierMarker(t *testing.T) {
	s := &Subscription{notify: make(chan struct{}, 1)}

	// First overflow round: pending becomes 2.
	for i := uint64(1); i <= 5; i++ {
		s.push(stateEvent(i), 3)
	}
	ev, ok := s.next()
	require.True(t, ok)
	require.Equal(t, gamepad.EventDropped, ev.Kind)
	require.Equal(t, uint64(2), ev.Dropped)

	// Queue holds 3..5. Overflow again before the consumer catches up; the
	// count keeps accumulating.
	for i := uint64(6); i <= 9; i++ {
		s.push(stateEvent(i), 3)
	}
	ev, ok = s.next()
	require.True(t, ok)
	assert.Equal(t, gamepad.EventDropped, ev.Kind)
	assert.Equal(t, uint64(4), ev.Dropped)

	for i := uint64(7); i <= 9; i++ {
		ev, ok := s.next()
		require.True(t, ok)
		assert.Equal(t, i, ev.Seq)
	}
}
