package strategyconfig

import (
	"fmt"
	"sort"
)

// Registry resolves strategy names to validated profiles. Unknown
// names fail fast at startup, never mid-run.
type Registry struct {
	profiles map[string]*StrategyProfile
}

// NewRegistry builds a registry holding the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*StrategyProfile)}
	for name, build := range builtins() {
		r.profiles[name] = build()
	}
	return r
}

// Register adds or replaces a profile after validating it.
func (r *Registry) Register(p *StrategyProfile) error {
	if err := Validate(p); err != nil {
		return err
	}
	r.profiles[p.Name] = p.Clone()
	return nil
}

// Get returns a copy of the named profile.
func (r *Registry) Get(name string) (*StrategyProfile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
	}
	return p.Clone(), nil
}

// Names lists the registered strategy names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
