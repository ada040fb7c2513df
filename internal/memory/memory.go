// Package memory implements the conversation memory: an ordered,
// append-only message log anchored by a system prompt, with the single
// rollback operation the agent loop needs for permission-denial recovery.
package memory

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/searchloop/searchloop/internal/provider"
)

// ErrInvalidRole is returned when a message carries a role outside the
// four allowed values. It indicates a programming error in the caller.
var ErrInvalidRole = errors.New("memory: invalid message role")

// Memory is an ordered conversation log. The first entry is always the
// system message. One Memory belongs to one logical conversation; callers
// serialize requests against it (single-writer discipline), the internal
// mutex only guards against accidental concurrent reads during a write.
type Memory struct {
	mu      sync.RWMutex
	entries []provider.Message
}

// New creates a Memory seeded with the given system prompt.
func New(systemPrompt string) *Memory {
	return &Memory{
		entries: []provider.Message{{
			Role:    provider.MessageRoleSystem,
			Content: systemPrompt,
		}},
	}
}

// Append adds one message to the log.
func (m *Memory) Append(msg provider.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, msg)
	return nil
}

// AppendMany adds messages in order. It stops at the first invalid role,
// leaving earlier messages appended.
func (m *Memory) AppendMany(msgs []provider.Message) error {
	for _, msg := range msgs {
		if err := m.Append(msg); err != nil {
			return err
		}
	}
	return nil
}

// RemoveLast removes the most recently appended message only if it is an
// assistant message, and reports whether a removal happened. This exists
// solely to undo the assistant tool-call append when the tool provider
// denies permission; any other state is left untouched.
func (m *Memory) RemoveLast() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := len(m.entries) - 1
	if last < 1 || m.entries[last].Role != provider.MessageRoleAssistant {
		return false
	}
	m.entries = m.entries[:last]
	return true
}

// View returns a snapshot of the full ordered message list for use as
// model-call input. The returned slice is the caller's to keep.
func (m *Memory) View() []provider.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.entries)
}

// Len returns the number of messages, including the system message.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear truncates the log back to the original system message.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = m.entries[:1]
}
