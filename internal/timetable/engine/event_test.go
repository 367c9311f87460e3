package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_DropsOldestProgressUnderBackpressure(t *testing.T) {
	s := newSink(2)

	s.emit(Event{Kind: EventProgress, Iteration: 1})
	s.emit(Event{Kind: EventProgress, Iteration: 2})
	// Buffer is now full (capacity 2). A third Progress event must evict
	// the oldest rather than block or get dropped itself.
	s.emit(Event{Kind: EventProgress, Iteration: 3})

	first := <-s.ch
	second := <-s.ch
	assert.Equal(t, 2, first.Iteration)
	assert.Equal(t, 3, second.Iteration)
}

func TestSink_NeverDropsTerminalEventForProgress(t *testing.T) {
	s := newSink(2)

	s.emit(Event{Kind: EventProgress, Iteration: 1})
	s.emit(Event{Kind: EventCompleted})

	first := <-s.ch
	second := <-s.ch
	assert.Equal(t, EventProgress, first.Kind)
	assert.Equal(t, EventCompleted, second.Kind)
}

func TestSink_CloseStopsFurtherReads(t *testing.T) {
	s := newSink(1)
	s.emit(Event{Kind: EventStarted})
	s.close()

	_, ok := <-s.ch
	require.True(t, ok, "buffered event before close must still be readable")

	_, ok = <-s.ch
	assert.False(t, ok, "channel must report closed once drained")
}
