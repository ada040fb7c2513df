package agent

import (
	"context"
	"fmt"

	"github.com/searchloop/searchloop/internal/provider"
	"github.com/searchloop/searchloop/internal/tool"
)

// maxToolCallNotice is appended as a user message before the forced final
// round when the iteration budget is exhausted.
const maxToolCallNotice = "You have reached the maximum tool call limit. " +
	"Please use the information gathered so far to generate your final answer."

// ProcessQuery runs the orchestration loop synchronously and returns the
// fully materialized answer.
//
// Each round snapshots Memory, calls the model with the per-request tool
// snapshot, dispatches any proposed calls, and folds the outcomes back in.
// A permission denial from the tool provider rolls back the pending
// assistant message and propagates immediately; every other tool failure
// is recoverable and fed back to the model as evidence. When MaxIterations
// rounds pass without a final answer, one extra model call with tools
// disabled produces it.
func (a *Agent) ProcessQuery(ctx context.Context, query string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	a.status.Notify(StatusProcessing, "Starting request processing...")

	reg, defs, err := a.snapshotTools(ctx)
	if err != nil {
		a.status.Notify(StatusError, err.Error())
		return Result{}, err
	}

	if err := a.memory.Append(provider.Message{
		Role:    provider.MessageRoleUser,
		Content: query,
	}); err != nil {
		return Result{}, err
	}

	var (
		toolsCalled []string
		allRecords  []ToolCallRecord
	)

	for round := 0; round < a.config.MaxIterations; round++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		a.logger.Info("processing round", "round", round+1, "max", a.config.MaxIterations)

		resp, err := a.complete(ctx, provider.CompletionRequest{
			Messages: a.memory.View(),
			Tools:    defs,
		})
		if err != nil {
			a.status.Notify(StatusError, err.Error())
			return Result{}, fmt.Errorf("model call: %w", err)
		}

		// No tool calls: the model is done reasoning.
		if len(resp.ToolCalls) == 0 {
			a.status.Notify(StatusSummarizing, "Generating final response...")
			if err := a.memory.Append(provider.Message{
				Role:    provider.MessageRoleAssistant,
				Content: resp.Content,
			}); err != nil {
				return Result{}, err
			}
			a.status.Notify(StatusClear, "")
			return Result{
				Answer:      resp.Content,
				Iterations:  round + 1,
				ToolsCalled: toolsCalled,
				ToolCalls:   allRecords,
			}, nil
		}

		// Record the assistant message carrying the raw proposed calls,
		// then dispatch them in order.
		if err := a.memory.Append(provider.Message{
			Role:      provider.MessageRoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}); err != nil {
			return Result{}, err
		}

		records, err := a.dispatchCalls(ctx, reg, resp.ToolCalls, nil, nil)
		if err != nil {
			// Permission denial is fatal for the request: undo the
			// assistant tool-call append and propagate without retry.
			a.memory.RemoveLast()
			a.status.Notify(StatusError, err.Error())
			return Result{}, err
		}

		for _, rec := range records {
			toolsCalled = append(toolsCalled, rec.Name)
		}
		allRecords = append(allRecords, records...)

		if err := a.memory.AppendMany(toolMessages(records)); err != nil {
			return Result{}, err
		}
	}

	// Iteration budget exhausted: force a final answer without tools.
	a.logger.Info("max tool call limit reached", "max", a.config.MaxIterations)
	a.status.Notify(StatusWarning, fmt.Sprintf(
		"Reached maximum tool call limit (%d), generating final response...", a.config.MaxIterations))

	answer, err := a.forcedFinalAnswer(ctx)
	if err != nil {
		a.status.Notify(StatusError, err.Error())
		return Result{}, err
	}

	a.status.Notify(StatusClear, "")
	return Result{
		Answer:      answer,
		Iterations:  a.config.MaxIterations,
		ToolsCalled: toolsCalled,
		ToolCalls:   allRecords,
	}, nil
}

// snapshotTools refreshes the tool registry for one request. Zero tools is
// valid: the loop proceeds and a plain model answer terminates it.
func (a *Agent) snapshotTools(ctx context.Context) (*tool.Registry, []provider.ToolDefinition, error) {
	schemas, err := a.tools.Discover(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("discover tools: %w", err)
	}
	reg := tool.NewRegistry(schemas)
	a.logger.Info("tools discovered", "count", reg.Len(), "tools", reg.Names())
	return reg, reg.Definitions(), nil
}

// forcedFinalAnswer runs the extra model call after the iteration ceiling:
// a user-role instruction to answer from gathered information, with tools
// disabled so the model cannot keep digging.
func (a *Agent) forcedFinalAnswer(ctx context.Context) (string, error) {
	a.status.Notify(StatusSummarizing, "Synthesizing gathered information...")

	if err := a.memory.Append(provider.Message{
		Role:    provider.MessageRoleUser,
		Content: maxToolCallNotice,
	}); err != nil {
		return "", err
	}

	resp, err := a.complete(ctx, provider.CompletionRequest{
		Messages: a.memory.View(),
	})
	if err != nil {
		return "", fmt.Errorf("final model call: %w", err)
	}

	if err := a.memory.Append(provider.Message{
		Role:    provider.MessageRoleAssistant,
		Content: resp.Content,
	}); err != nil {
		return "", err
	}

	return resp.Content, nil
}
