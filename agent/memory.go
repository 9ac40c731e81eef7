package agent

import "github.com/ragent-ai/ragent/types"

const defaultMemoryWindow = 20

// WindowMemory is a bounded, ordered message buffer for one session.
// The cap counts all messages including the system message. Once the cap
// is exceeded the oldest non-system message is evicted; a system message,
// if present, sits at index 0 and is never evicted while capacity >= 1.
//
// WindowMemory is not safe for concurrent use on its own; the owning
// session serializes access (see SessionStore).
type WindowMemory struct {
	cap      int
	messages []types.Message
}

// NewWindowMemory creates a memory buffer holding at most cap messages.
func NewWindowMemory(cap int) *WindowMemory {
	if cap <= 0 {
		cap = defaultMemoryWindow
	}
	return &WindowMemory{cap: cap}
}

// SetSystem installs the system message at index 0. Called again, it
// replaces the content in place rather than adding a second one.
func (m *WindowMemory) SetSystem(content string) {
	if len(m.messages) > 0 && m.messages[0].Role == types.RoleSystem {
		m.messages[0].Content = content
		return
	}
	m.messages = append([]types.Message{types.NewSystemMessage(content)}, m.messages...)
	m.evictToCap()
}

// Append adds a message, evicting the oldest eligible message if the cap
// would be exceeded.
func (m *WindowMemory) Append(msg types.Message) {
	m.messages = append(m.messages, msg)
	m.evictToCap()
}

// evictToCap removes oldest non-system messages one at a time until the
// buffer fits the cap.
func (m *WindowMemory) evictToCap() {
	for len(m.messages) > m.cap {
		i := 0
		if m.messages[0].Role == types.RoleSystem {
			if len(m.messages) == 1 {
				return
			}
			i = 1
		}
		m.messages = append(m.messages[:i], m.messages[i+1:]...)
	}
}

// Messages returns a copy of the buffer in order.
func (m *WindowMemory) Messages() []types.Message {
	out := make([]types.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the current message count.
func (m *WindowMemory) Len() int {
	return len(m.messages)
}

// Clear empties the buffer, system message included.
func (m *WindowMemory) Clear() {
	m.messages = nil
}
