package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/searchloop/searchloop/internal/mcp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "searchloop.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
version: "1"
model:
  base_url: https://api.example.com/v1
  api_key: ${TEST_API_KEY:-sk-default}
  model: gpt-4o-mini
agent:
  max_iterations: 3
  system_prompt: "You answer questions."
mcp:
  servers:
    - name: files
      command: mcp-files
      args: ["--root", "/data"]
logging:
  level: debug
  format: json
`

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}

	if cfg.Model.BaseURL != "https://api.example.com/v1" {
		t.Errorf("unexpected base_url %q", cfg.Model.BaseURL)
	}
	if cfg.Model.APIKey != "sk-default" {
		t.Errorf("expected default-expanded api key, got %q", cfg.Model.APIKey)
	}
	if cfg.Agent.MaxIterations != 3 {
		t.Errorf("expected max_iterations 3, got %d", cfg.Agent.MaxIterations)
	}
	if len(cfg.MCP.Servers) != 1 || cfg.MCP.Servers[0].Name != "files" {
		t.Errorf("unexpected mcp servers: %+v", cfg.MCP.Servers)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_EnvVarOverridesDefault(t *testing.T) {
	t.Setenv("TEST_API_KEY", "sk-from-env")
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model.APIKey != "sk-from-env" {
		t.Errorf("expected env value, got %q", cfg.Model.APIKey)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
version: "1"
model:
  base_url: https://api.example.com
  api_key: ${DEFINITELY_NOT_SET_ANYWHERE}
  model: m
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unresolved variables: DEFINITELY_NOT_SET_ANYWHERE") {
		t.Fatalf("expected unresolved variable error, got %v", err)
	}
}

func TestParse_CollectsAllUnresolvedVariables(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("model:\n  api_key: ${NOT_SET_A}\n  base_url: ${NOT_SET_B}\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "NOT_SET_A") || !strings.Contains(err.Error(), "NOT_SET_B") {
		t.Fatalf("expected both variables reported, got %v", err)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("version: \"1\"\nmodle:\n  base_url: https://api.example.com\n"))
	if err == nil || !strings.Contains(err.Error(), "modle") {
		t.Fatalf("expected unknown-key error naming the typo, got %v", err)
	}
}

func TestParse_EscapedDefault(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
version: "1"
model:
  api_key: ${NOT_SET_ANYWHERE:-br\}ace}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model.APIKey != "br}ace" {
		t.Errorf("expected escaped brace in default, got %q", cfg.Model.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Version: "2",
		Logging: LoggingConfig{Level: "loud", Format: "xml"},
	}
	cfg.MCP.Servers = []mcp.ServerConfig{{Name: ""}}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, fragment := range []string{
		"unsupported version",
		"base_url is required",
		"server name is required",
		`logging.level "loud"`,
		`logging.format "xml"`,
	} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("expected error to mention %q, got:\n%v", fragment, err)
		}
	}
}

func TestValidate_NegativeAgentBounds(t *testing.T) {
	t.Parallel()

	cfg := &Config{Version: "1"}
	cfg.Model.BaseURL = "https://api.example.com"
	cfg.Model.APIKey = "sk-x"
	cfg.Model.Model = "m"
	cfg.Agent.MaxIterations = -1
	cfg.Agent.ChunkSize = -5

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !strings.Contains(err.Error(), "max_iterations") || !strings.Contains(err.Error(), "chunk_size") {
		t.Errorf("expected both bound errors, got:\n%v", err)
	}
}
