package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/searchloop/searchloop/internal/provider"
	"github.com/searchloop/searchloop/internal/tool"
)

// dispatchCalls executes proposed tool calls sequentially, in the order the
// model emitted them. Each call's arguments are reconciled against the
// tool's declared schema before dispatch. The onStart and onResult hooks
// (either may be nil) fire immediately before and after each invocation.
//
// A permission denial aborts the batch and is returned as the error; every
// other failure is folded into the record as an unsuccessful outcome and
// dispatch continues.
func (a *Agent) dispatchCalls(ctx context.Context, reg *tool.Registry, calls []provider.ToolCall, onStart, onResult func(ToolCallRecord)) ([]ToolCallRecord, error) {
	records := make([]ToolCallRecord, 0, len(calls))

	for _, call := range calls {
		rec := ToolCallRecord{ID: call.ID, Name: call.Name}

		args, err := decodeArguments(call.Arguments)
		if err != nil {
			// Unparseable arguments are a recoverable model mistake: report
			// the failure back as evidence instead of aborting the round.
			rec.Arguments = map[string]any{}
			rec.Result = fmt.Sprintf("invalid tool arguments: %v", err)
			if onStart != nil {
				onStart(rec)
			}
			if onResult != nil {
				onResult(rec)
			}
			records = append(records, rec)
			continue
		}

		if schema, ok := reg.Lookup(call.Name); ok {
			args = tool.Reconcile(schema, args)
		}
		rec.Arguments = args

		if onStart != nil {
			onStart(rec)
		}

		start := time.Now()
		out, err := a.tools.Invoke(ctx, call.Name, args)
		rec.Duration = time.Since(start)

		switch {
		case errors.Is(err, tool.ErrPermissionDenied):
			a.logger.Warn("tool invocation denied", "tool", call.Name)
			return records, err
		case err != nil:
			rec.Result = err.Error()
			rec.Success = false
			a.logger.Warn("tool invocation failed", "tool", call.Name, "error", err)
		default:
			rec.Result = out.Content
			rec.Success = !out.IsError
		}

		if onResult != nil {
			onResult(rec)
		}
		records = append(records, rec)
	}

	return records, nil
}

// decodeArguments parses the raw JSON argument object the model emitted.
// An absent or empty object decodes to an empty map.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// toolMessages converts outcome records into role=tool messages, one per
// record, preserving dispatch order.
func toolMessages(records []ToolCallRecord) []provider.Message {
	msgs := make([]provider.Message, len(records))
	for i, rec := range records {
		msgs[i] = provider.Message{
			Role:    provider.MessageRoleTool,
			Content: rec.Result,
			ToolID:  rec.ID,
			IsError: !rec.Success,
		}
	}
	return msgs
}
