package agent

import "log/slog"

// Registry is the static name → definition mapping resolved on every turn.
// Immutable after startup.
type Registry struct {
	agents      map[string]*Definition
	order       []string
	defaultName string
}

// NewRegistry builds a registry. The first definition is the default entry
// point used for new sessions and unknown-name fallback.
func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{agents: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if _, dup := r.agents[d.Name]; dup {
			continue
		}
		r.agents[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	if len(r.order) > 0 {
		r.defaultName = r.order[0]
	}
	return r
}

// Get returns the definition for name, if registered.
func (r *Registry) Get(name string) (*Definition, bool) {
	d, ok := r.agents[name]
	return d, ok
}

// Resolve returns the definition for name, falling back to the default agent
// when the name is unknown. The fallback is logged so stale session state
// does not fail silently.
func (r *Registry) Resolve(name string) *Definition {
	if d, ok := r.agents[name]; ok {
		return d
	}
	slog.Warn("unknown agent reference, falling back to default", "agent", name, "default", r.defaultName)
	return r.agents[r.defaultName]
}

// Default returns the entry-point agent for new sessions.
func (r *Registry) Default() *Definition {
	return r.agents[r.defaultName]
}

// List returns all definitions in registration order.
func (r *Registry) List() []*Definition {
	defs := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.agents[name])
	}
	return defs
}
