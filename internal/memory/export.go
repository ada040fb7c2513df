package memory

import (
	"encoding/json"
	"fmt"

	"github.com/searchloop/searchloop/internal/provider"
)

// Export serializes the conversation as a flat ordered JSON array of
// messages. This is the only externally visible serialization of Memory.
func (m *Memory) Export() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("memory: export: %w", err)
	}
	return data, nil
}

// Import reconstructs a Memory from an Export snapshot. The snapshot must
// be non-empty and start with a system message; every role is validated.
// Import(Export(m)) reproduces an equivalent ordered message list.
func Import(data []byte) (*Memory, error) {
	var entries []provider.Message
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("memory: import: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("memory: import: empty conversation")
	}
	if entries[0].Role != provider.MessageRoleSystem {
		return nil, fmt.Errorf("memory: import: first message must be %q, got %q",
			provider.MessageRoleSystem, entries[0].Role)
	}
	for i, e := range entries {
		if !e.Role.Valid() {
			return nil, fmt.Errorf("%w: entry %d has role %q", ErrInvalidRole, i, e.Role)
		}
	}
	return &Memory{entries: entries}, nil
}
