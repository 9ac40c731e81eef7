package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ragent-ai/ragent/testutil"
	"github.com/ragent-ai/ragent/types"
)

func TestWindowMemory_AppendAndOrder(t *testing.T) {
	m := NewWindowMemory(10)
	m.Append(types.NewUserMessage("one"))
	m.Append(types.NewAssistantMessage("two"))
	m.Append(types.NewUserMessage("three"))

	testutil.AssertMessagesEqual(t, []types.Message{
		{Role: types.RoleUser, Content: "one"},
		{Role: types.RoleAssistant, Content: "two"},
		{Role: types.RoleUser, Content: "three"},
	}, m.Messages())
}

func TestWindowMemory_SetSystem(t *testing.T) {
	m := NewWindowMemory(10)
	m.Append(types.NewUserMessage("hello"))
	m.SetSystem("You are helpful.")

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are helpful.", msgs[0].Content)
	assert.Equal(t, "hello", msgs[1].Content)

	// A second call replaces in place, never stacks.
	m.SetSystem("You are terse.")
	msgs = m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "You are terse.", msgs[0].Content)
}

func TestWindowMemory_EvictsOldestNonSystem(t *testing.T) {
	m := NewWindowMemory(4)
	m.SetSystem("system")
	for i := 0; i < 5; i++ {
		m.Append(types.NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}

	msgs := m.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, types.RoleSystem, msgs[0].Role)
	assert.Equal(t, "msg-2", msgs[1].Content)
	assert.Equal(t, "msg-3", msgs[2].Content)
	assert.Equal(t, "msg-4", msgs[3].Content)
}

func TestWindowMemory_EvictionWithoutSystem(t *testing.T) {
	m := NewWindowMemory(2)
	m.Append(types.NewUserMessage("a"))
	m.Append(types.NewUserMessage("b"))
	m.Append(types.NewUserMessage("c"))

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].Content)
	assert.Equal(t, "c", msgs[1].Content)
}

func TestWindowMemory_DefaultCap(t *testing.T) {
	m := NewWindowMemory(0)
	for i := 0; i < 30; i++ {
		m.Append(types.NewUserMessage("m"))
	}
	assert.Equal(t, defaultMemoryWindow, m.Len())
}

func TestWindowMemory_MessagesReturnsCopy(t *testing.T) {
	m := NewWindowMemory(5)
	m.Append(types.NewUserMessage("original"))

	msgs := m.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "original", m.Messages()[0].Content)
}

// The cap holds under any interleaving of appends and system updates,
// and the system message stays pinned at index 0 once set.
func TestWindowMemory_CapProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 10).Draw(t, "cap")
		m := NewWindowMemory(capacity)

		hasSystem := false
		n := rapid.IntRange(0, 40).Draw(t, "ops")
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("sys-%d", i)) {
				m.SetSystem("system")
				hasSystem = true
			} else {
				m.Append(types.NewUserMessage(fmt.Sprintf("msg-%d", i)))
			}

			if m.Len() > capacity {
				t.Fatalf("buffer holds %d messages, cap is %d", m.Len(), capacity)
			}
			msgs := m.Messages()
			if hasSystem && len(msgs) > 0 && capacity > 1 && msgs[0].Role != types.RoleSystem {
				t.Fatal("system message displaced from index 0")
			}
		}
	})
}

func TestWindowMemory_Clear(t *testing.T) {
	m := NewWindowMemory(5)
	m.SetSystem("system")
	m.Append(types.NewUserMessage("hello"))

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Messages())
}
