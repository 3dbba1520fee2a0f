package conversation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendAndTurns(t *testing.T) {
	h := NewHistory()

	_, ok := h.Last()
	assert.False(t, ok)

	h.Append(Turn{Role: RoleUser, Text: "hi"}, Turn{Role: RoleModel, Text: "hello"})

	turns := h.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.False(t, turns[0].Timestamp.IsZero())

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "hello", last.Text)

	// the returned slice is a copy
	turns[0].Text = "mutated"
	assert.Equal(t, "hi", h.Turns()[0].Text)
}

func TestHistory_KeepsTimestamp(t *testing.T) {
	h := NewHistory()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	h.Append(Turn{Role: RoleTool, Name: "ping", Text: "{}", Timestamp: ts})
	assert.Equal(t, ts, h.Turns()[0].Timestamp)
}

func TestHistory_MaxTurns(t *testing.T) {
	h := NewHistory(func(o *Options) { o.MaxTurns = 2 })

	h.Append(Turn{Text: "1"}, Turn{Text: "2"}, Turn{Text: "3"})

	turns := h.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "2", turns[0].Text)
	assert.Equal(t, "3", turns[1].Text)
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory()
	h.Append(Turn{Text: "x"})
	h.Reset()
	assert.Equal(t, 0, h.Len())
}

func TestHistory_Concurrent(t *testing.T) {
	h := NewHistory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Append(Turn{Role: RoleUser, Text: "x"})
			_ = h.Turns()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
