package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} placeholders. A default
// value may escape literal braces and backslashes with a backslash.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads the configuration file at path and parses it via Parse.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands environment placeholders in raw YAML and decodes it into
// a Config. Unknown keys are rejected so a misspelled setting fails loudly
// instead of silently falling back to its default.
func Parse(raw []byte) (*Config, error) {
	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	return &cfg, nil
}

// expandEnv substitutes each placeholder with the environment value, or
// the inline default when the variable is unset. Placeholders that resolve
// to neither are collected and reported together.
func expandEnv(raw []byte) ([]byte, error) {
	var (
		out     bytes.Buffer
		missing []string
		last    int
	)

	for _, loc := range envPattern.FindAllSubmatchIndex(raw, -1) {
		out.Write(raw[last:loc[0]])
		last = loc[1]

		name := string(raw[loc[2]:loc[3]])
		if value, ok := os.LookupEnv(name); ok {
			out.WriteString(value)
			continue
		}
		if loc[4] >= 0 {
			out.WriteString(unescapeDefault(string(raw[loc[4]:loc[5]])))
			continue
		}

		missing = append(missing, name)
	}
	out.Write(raw[last:])

	if len(missing) > 0 {
		return nil, fmt.Errorf("unresolved variables: %s", strings.Join(missing, ", "))
	}
	return out.Bytes(), nil
}

// unescapeDefault strips the backslash escapes allowed inside a
// placeholder default value.
func unescapeDefault(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
