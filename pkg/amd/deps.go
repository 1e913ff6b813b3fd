package amd

import "fmt"

// Unassigned is the binding of a dependency that has no local name yet.
const Unassigned = ""

// Dependency is one entry of a DependencyTable.
type Dependency struct {
	// Path is the module path literal as written, quotes included.
	Path string
	// Binding is the local identifier, or Unassigned.
	Binding string
}

// DependencyTable maps module paths to bindings and remembers insertion
// order, which is the order imports are emitted in.
type DependencyTable struct {
	order    []string
	bindings map[string]string
}

// NewDependencyTable returns an empty table.
func NewDependencyTable() *DependencyTable {
	return &DependencyTable{bindings: make(map[string]string)}
}

// Add inserts path with binding unless path is already present. It reports
// whether the entry was inserted.
func (t *DependencyTable) Add(path, binding string) bool {
	if _, ok := t.bindings[path]; ok {
		return false
	}

	t.order = append(t.order, path)
	t.bindings[path] = binding

	return true
}

// Assign sets the binding of an Unassigned entry. Assigned entries are never
// overwritten.
func (t *DependencyTable) Assign(path, binding string) bool {
	current, ok := t.bindings[path]
	if !ok || current != Unassigned {
		return false
	}

	t.bindings[path] = binding

	return true
}

// Binding returns the binding for path and whether path is present.
func (t *DependencyTable) Binding(path string) (string, bool) {
	binding, ok := t.bindings[path]

	return binding, ok
}

// Len returns the number of entries.
func (t *DependencyTable) Len() int {
	return len(t.order)
}

// Entries returns the entries in insertion order.
func (t *DependencyTable) Entries() []Dependency {
	out := make([]Dependency, 0, len(t.order))

	for _, path := range t.order {
		out = append(out, Dependency{Path: path, Binding: t.bindings[path]})
	}

	return out
}

// checkBindings rejects two paths bound to the same identifier.
func (t *DependencyTable) checkBindings() error {
	owner := make(map[string]string, len(t.order))

	for _, path := range t.order {
		binding := t.bindings[path]
		if binding == Unassigned {
			continue
		}

		if prev, ok := owner[binding]; ok {
			return fmt.Errorf("%w: %s is bound to both %s and %s", ErrConflictingBinding, binding, prev, path)
		}

		owner[binding] = path
	}

	return nil
}

// ComponentRegistry is the ordered set of binding names that were
// synthesized from module paths. Registration statements are regenerated from
// it in order.
type ComponentRegistry struct {
	names []string
	seen  map[string]bool
}

// NewComponentRegistry returns an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{seen: make(map[string]bool)}
}

// Record appends name unless it is already present.
func (r *ComponentRegistry) Record(name string) {
	if r.seen[name] {
		return
	}

	r.seen[name] = true
	r.names = append(r.names, name)
}

// Names returns the recorded names in discovery order.
func (r *ComponentRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// Len returns the number of recorded names.
func (r *ComponentRegistry) Len() int {
	return len(r.names)
}
