package mcp

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

func TestServerConfig_Defaults(t *testing.T) {
	t.Parallel()

	stdio := ServerConfig{Name: "files", Command: "mcp-files"}
	if got := stdio.withDefaults().Transport; got != TransportStdio {
		t.Errorf("command implies stdio, got %s", got)
	}

	remote := ServerConfig{Name: "api", URL: "https://mcp.example.com"}
	if got := remote.withDefaults().Transport; got != TransportStreamableHTTP {
		t.Errorf("url implies streamable_http, got %s", got)
	}
}

func TestServerConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{"missing name", ServerConfig{Command: "x"}, "name is required"},
		{"stdio without command", ServerConfig{Name: "a", Transport: TransportStdio}, "requires a command"},
		{"sse without url", ServerConfig{Name: "b", Transport: TransportSSE}, "requires a url"},
		{"unknown transport", ServerConfig{Name: "c", Transport: "carrier_pigeon"}, "unknown transport"},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}

	ok := ServerConfig{Name: "files", Command: "mcp-files", Args: []string{"--root", "/"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid stdio config rejected: %v", err)
	}
}

func TestToSchema(t *testing.T) {
	t.Parallel()

	decl := mcptypes.Tool{
		Name:        "web_search",
		Description: "search the web",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{"type": "string"},
				"limit": map[string]any{"type": "integer"},
			},
			Required: []string{"query"},
		},
	}

	schema, err := toSchema(decl)
	if err != nil {
		t.Fatalf("toSchema: %v", err)
	}
	if schema.Name != "web_search" || schema.Description != "search the web" {
		t.Errorf("unexpected identity: %+v", schema)
	}
	if !reflect.DeepEqual(schema.Required, []string{"query"}) {
		t.Errorf("unexpected required: %v", schema.Required)
	}
	if !reflect.DeepEqual(schema.Params, []string{"limit", "query"}) {
		t.Errorf("expected sorted params, got %v", schema.Params)
	}

	var raw map[string]any
	if err := json.Unmarshal(schema.InputSchema, &raw); err != nil {
		t.Fatalf("input schema is not JSON: %v", err)
	}
	if raw["type"] != "object" {
		t.Errorf("unexpected re-encoded schema: %v", raw)
	}
}

func TestFlattenContent(t *testing.T) {
	t.Parallel()

	got := flattenContent([]mcptypes.Content{
		mcptypes.TextContent{Type: "text", Text: "line one"},
		mcptypes.TextContent{Type: "text", Text: "line two"},
	})
	if got != "line one\nline two" {
		t.Errorf("unexpected flattened text: %q", got)
	}

	if got := flattenContent(nil); got != "" {
		t.Errorf("expected empty output for no parts, got %q", got)
	}
}

func TestIsPermissionDenied(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{"Access Denied", "permission denied by policy", "request DENIED"} {
		if !isPermissionDenied(msg) {
			t.Errorf("expected %q to be treated as a denial", msg)
		}
	}
	for _, msg := range []string{"file not found", "connection refused", ""} {
		if isPermissionDenied(msg) {
			t.Errorf("expected %q not to be treated as a denial", msg)
		}
	}
}
