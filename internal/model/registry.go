package model

import "fmt"

// Handle is a stable identity for a decision variable, independent of any
// particular relaxation instance. Index is the handle's position in
// registration order, which is the canonical coefficient ordering for
// every cut.
type Handle struct {
	Index int
	Name  string
}

// Registry maintains the correspondence of decision variables across
// relaxation instances. Relaxation construction clones the program's
// variables first, in program order, with unchanged names; the registry
// relies on that contract and fails fast when an instance breaks it.
//
// Variables introduced by the relaxations themselves (reserved prefix) are
// never registered.
type Registry struct {
	handles []Handle
	byName  map[string]int
}

// NewRegistry registers every non-reserved variable of the source instance
// in declaration order.
func NewRegistry(source *Model) *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, v := range source.Variables() {
		if v.IsReserved() {
			continue
		}
		r.byName[v.Name] = len(r.handles)
		r.handles = append(r.handles, Handle{Index: len(r.handles), Name: v.Name})
	}
	return r
}

// Len returns the number of registered handles.
func (r *Registry) Len() int { return len(r.handles) }

// Handles returns the registered handles in canonical order.
// The returned slice is a copy.
func (r *Registry) Handles() []Handle {
	out := make([]Handle, len(r.handles))
	copy(out, r.handles)
	return out
}

// Lookup returns the handle registered under the given name.
func (r *Registry) Lookup(name string) (Handle, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Handle{}, false
	}
	return r.handles[i], true
}

// Resolve maps a handle to the corresponding variable ID in the target
// instance. Resolution requires the target to carry the handle's variable
// at the handle's declaration position with an identical name; anything
// else means the oracle's correspondence contract is broken and resolution
// fails with a ConfigurationError.
func (r *Registry) Resolve(h Handle, target *Model) (int, error) {
	if h.Index < 0 || h.Index >= len(r.handles) || r.handles[h.Index].Name != h.Name {
		return 0, &ConfigurationError{
			Op:  "Registry.Resolve",
			Msg: fmt.Sprintf("handle %d (%q) is not registered", h.Index, h.Name),
		}
	}
	if h.Index >= target.NumVars() {
		return 0, &ConfigurationError{
			Op: "Registry.Resolve",
			Msg: fmt.Sprintf("instance %q has %d variables, handle %d (%q) does not resolve",
				target.Name, target.NumVars(), h.Index, h.Name),
		}
	}
	v := target.Var(h.Index)
	if v.Name != h.Name {
		return 0, &ConfigurationError{
			Op: "Registry.Resolve",
			Msg: fmt.Sprintf("instance %q variable %d is %q, want %q",
				target.Name, h.Index, v.Name, h.Name),
		}
	}
	return v.ID, nil
}

// Validate resolves every registered handle against the target instance,
// returning the first resolution failure. Drivers call this once per
// instance before iterating so a broken oracle contract surfaces
// immediately rather than mid-loop.
func (r *Registry) Validate(target *Model) error {
	for _, h := range r.handles {
		if _, err := r.Resolve(h, target); err != nil {
			return err
		}
	}
	return nil
}

// Values extracts the registered variables' values from a full solution
// vector of the given instance, in canonical handle order.
func (r *Registry) Values(target *Model, solution []float64) ([]float64, error) {
	out := make([]float64, len(r.handles))
	for i, h := range r.handles {
		id, err := r.Resolve(h, target)
		if err != nil {
			return nil, err
		}
		if id < len(solution) {
			out[i] = solution[id]
		}
	}
	return out, nil
}
