package memory

import (
	"errors"
	"testing"

	"github.com/searchloop/searchloop/internal/provider"
)

func TestNew_SeedsSystemMessage(t *testing.T) {
	t.Parallel()

	m := New("be helpful")
	if m.Len() != 1 {
		t.Fatalf("expected 1 seeded message, got %d", m.Len())
	}
	first := m.View()[0]
	if first.Role != provider.MessageRoleSystem || first.Content != "be helpful" {
		t.Errorf("unexpected seed message: %+v", first)
	}
}

func TestAppend_RejectsInvalidRole(t *testing.T) {
	t.Parallel()

	m := New("sys")
	err := m.Append(provider.Message{Role: "narrator", Content: "hi"})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("rejected append must not grow the log, got len %d", m.Len())
	}
}

func TestAppend_PreservesOrder(t *testing.T) {
	t.Parallel()

	m := New("sys")
	msgs := []provider.Message{
		{Role: provider.MessageRoleUser, Content: "question"},
		{Role: provider.MessageRoleAssistant, Content: "call a tool", ToolCalls: []provider.ToolCall{{ID: "1", Name: "read"}}},
		{Role: provider.MessageRoleTool, Content: "tool output", ToolID: "1"},
		{Role: provider.MessageRoleAssistant, Content: "answer"},
	}
	if err := m.AppendMany(msgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := m.View()
	if len(view) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(view))
	}
	for i, want := range msgs {
		got := view[i+1]
		if got.Role != want.Role || got.Content != want.Content {
			t.Errorf("message %d: got %+v, want %+v", i+1, got, want)
		}
	}
}

func TestRemoveLast_OnlyRemovesAssistant(t *testing.T) {
	t.Parallel()

	m := New("sys")
	_ = m.Append(provider.Message{Role: provider.MessageRoleUser, Content: "q"})
	_ = m.Append(provider.Message{Role: provider.MessageRoleAssistant, Content: "a"})

	if !m.RemoveLast() {
		t.Fatal("expected assistant tail to be removed")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 messages after removal, got %d", m.Len())
	}

	// Tail is now the user message: RemoveLast must refuse.
	if m.RemoveLast() {
		t.Error("RemoveLast must not remove a non-assistant tail")
	}
	if m.Len() != 2 {
		t.Errorf("refused removal must not change the log, got len %d", m.Len())
	}
}

func TestRemoveLast_NeverRemovesSystemSeed(t *testing.T) {
	t.Parallel()

	m := New("sys")
	if m.RemoveLast() {
		t.Error("RemoveLast on a fresh memory must be a no-op")
	}
	if m.Len() != 1 {
		t.Errorf("expected seed to survive, got len %d", m.Len())
	}
}

func TestView_ReturnsCopy(t *testing.T) {
	t.Parallel()

	m := New("sys")
	_ = m.Append(provider.Message{Role: provider.MessageRoleUser, Content: "q"})

	view := m.View()
	view[0].Content = "tampered"

	if m.View()[0].Content != "sys" {
		t.Error("mutating a view must not affect the log")
	}
}

func TestClear_KeepsSystemPrompt(t *testing.T) {
	t.Parallel()

	m := New("sys")
	_ = m.Append(provider.Message{Role: provider.MessageRoleUser, Content: "q"})
	_ = m.Append(provider.Message{Role: provider.MessageRoleAssistant, Content: "a"})

	m.Clear()
	if m.Len() != 1 {
		t.Fatalf("expected only the system message after Clear, got %d", m.Len())
	}
	if m.View()[0].Content != "sys" {
		t.Errorf("expected original system prompt, got %q", m.View()[0].Content)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	m := New("sys")
	_ = m.Append(provider.Message{Role: provider.MessageRoleUser, Content: "q"})
	_ = m.Append(provider.Message{
		Role:      provider.MessageRoleAssistant,
		ToolCalls: []provider.ToolCall{{ID: "1", Name: "read", Arguments: []byte(`{"path":"x"}`)}},
	})
	_ = m.Append(provider.Message{Role: provider.MessageRoleTool, Content: "data", ToolID: "1"})

	data, err := m.Export()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	restored, err := Import(data)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	orig, back := m.View(), restored.View()
	if len(back) != len(orig) {
		t.Fatalf("expected %d messages, got %d", len(orig), len(back))
	}
	for i := range orig {
		if back[i].Role != orig[i].Role || back[i].Content != orig[i].Content || back[i].ToolID != orig[i].ToolID {
			t.Errorf("message %d mismatch: got %+v, want %+v", i, back[i], orig[i])
		}
	}
}

func TestImport_RejectsMalformedSnapshots(t *testing.T) {
	t.Parallel()

	if _, err := Import([]byte(`[]`)); err == nil {
		t.Error("expected error for empty conversation")
	}
	if _, err := Import([]byte(`[{"role":"user","content":"q"}]`)); err == nil {
		t.Error("expected error when first message is not system")
	}
	if _, err := Import([]byte(`[{"role":"system","content":"s"},{"role":"narrator","content":"x"}]`)); !errors.Is(err, ErrInvalidRole) {
		t.Error("expected ErrInvalidRole for unknown role")
	}
	if _, err := Import([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
