package tool

import (
	"cmp"
	"slices"

	"github.com/searchloop/searchloop/internal/provider"
)

// Registry is an immutable snapshot of the tools available to one
// processing request. It is rebuilt from Provider.Discover at the start
// of every request; the agent never caches it across requests.
type Registry struct {
	schemas map[string]Schema
	names   []string
}

// NewRegistry builds a Registry from a discovery snapshot.
func NewRegistry(schemas map[string]Schema) *Registry {
	copied := make(map[string]Schema, len(schemas))
	names := make([]string, 0, len(schemas))
	for name, s := range schemas {
		copied[name] = s
		names = append(names, name)
	}
	slices.Sort(names)
	return &Registry{schemas: copied, names: names}
}

// Lookup returns the schema for the named tool.
func (r *Registry) Lookup(name string) (Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns all tool names sorted alphabetically.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of tools in the snapshot.
func (r *Registry) Len() int {
	return len(r.schemas)
}

// Definitions formats the snapshot as callable-function descriptors for a
// model call, sorted by name for reproducible prompting.
func (r *Registry) Definitions() []provider.ToolDefinition {
	defs := make([]provider.ToolDefinition, 0, len(r.schemas))
	for _, s := range r.schemas {
		defs = append(defs, provider.ToolDefinition{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.InputSchema,
		})
	}
	slices.SortFunc(defs, func(a, b provider.ToolDefinition) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return defs
}
