package agent

import (
	"context"
	"fmt"

	"github.com/searchloop/searchloop/internal/provider"
)

// ProcessQueryStream runs the same loop as ProcessQuery but reports
// progress over a channel. Per tool call a tool_call_start event precedes
// its tool_result; the final answer is re-emitted as content chunks; the
// stream closes after exactly one done or error event.
func (a *Agent) ProcessQueryStream(ctx context.Context, query string) <-chan Event {
	events := make(chan Event, 16)

	go func() {
		defer close(events)
		a.runStream(ctx, query, events)
	}()

	return events
}

func (a *Agent) runStream(ctx context.Context, query string, events chan Event) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	emit := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error) {
		a.status.Notify(StatusError, err.Error())
		deliverTerminal(ctx, events, Event{Type: EventError, Err: err})
	}

	a.status.Notify(StatusProcessing, "Starting request processing...")

	reg, defs, err := a.snapshotTools(ctx)
	if err != nil {
		fail(err)
		return
	}

	if err := a.memory.Append(provider.Message{
		Role:    provider.MessageRoleUser,
		Content: query,
	}); err != nil {
		fail(err)
		return
	}

	onStart := func(rec ToolCallRecord) {
		emit(Event{Type: EventToolCallStart, ToolCall: &rec})
	}
	onResult := func(rec ToolCallRecord) {
		emit(Event{Type: EventToolResult, ToolCall: &rec})
	}

	for round := 0; round < a.config.MaxIterations; round++ {
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		a.logger.Info("processing round", "round", round+1, "max", a.config.MaxIterations)

		resp, err := a.complete(ctx, provider.CompletionRequest{
			Messages: a.memory.View(),
			Tools:    defs,
		})
		if err != nil {
			fail(fmt.Errorf("model call: %w", err))
			return
		}

		if len(resp.ToolCalls) == 0 {
			a.status.Notify(StatusSummarizing, "Generating final response...")
			if err := a.memory.Append(provider.Message{
				Role:    provider.MessageRoleAssistant,
				Content: resp.Content,
			}); err != nil {
				fail(err)
				return
			}
			if !a.emitAnswer(ctx, events, resp.Content) {
				fail(ctx.Err())
				return
			}
			a.status.Notify(StatusClear, "")
			return
		}

		if err := a.memory.Append(provider.Message{
			Role:      provider.MessageRoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}); err != nil {
			fail(err)
			return
		}

		records, err := a.dispatchCalls(ctx, reg, resp.ToolCalls, onStart, onResult)
		if err != nil {
			a.memory.RemoveLast()
			fail(err)
			return
		}

		if err := a.memory.AppendMany(toolMessages(records)); err != nil {
			fail(err)
			return
		}
	}

	a.logger.Info("max tool call limit reached", "max", a.config.MaxIterations)
	a.status.Notify(StatusWarning, fmt.Sprintf(
		"Reached maximum tool call limit (%d), generating final response...", a.config.MaxIterations))

	answer, err := a.forcedFinalAnswer(ctx)
	if err != nil {
		fail(err)
		return
	}

	if !a.emitAnswer(ctx, events, answer) {
		fail(ctx.Err())
		return
	}
	a.status.Notify(StatusClear, "")
}

// emitAnswer replays the materialized answer as fixed-size content chunks
// followed by the terminal done event. Chunk boundaries never split a rune.
// It reports false when the context expired first; in that case no terminal
// event has been sent yet and the caller must emit the error.
func (a *Agent) emitAnswer(ctx context.Context, events chan<- Event, answer string) bool {
	runes := []rune(answer)
	size := a.config.ChunkSize
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		select {
		case events <- Event{Type: EventContent, Content: string(runes[i:end])}:
		case <-ctx.Done():
			return false
		}
	}
	select {
	case events <- Event{Type: EventDone}:
		return true
	case <-ctx.Done():
		return false
	}
}

// deliverTerminal queues the stream's terminal event even when the context
// has already expired and the buffer is full. The loop is the channel's
// sole sender, so after dropping one queued event a slot is guaranteed to
// be free for the terminal one; a consumer draining after the deadline
// still observes a proper ending.
func deliverTerminal(ctx context.Context, events chan Event, ev Event) {
	select {
	case events <- ev:
		return
	case <-ctx.Done():
	}
	select {
	case events <- ev:
		return
	default:
	}
	select {
	case <-events:
	default:
	}
	select {
	case events <- ev:
	default:
	}
}
