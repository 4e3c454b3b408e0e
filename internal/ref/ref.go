// Package ref implements the lazy variable-reference system (spec.md
// §4.8): a dotted path into a host's variable mapping, built once and
// resolved per host at dispatch time.
package ref

import "fmt"

// Ref is one node in a linked attribute-path chain. A root node has a
// nil parent. Walking from a root caches each child so repeated walks
// of the same path share identity (spec.md §4.8's "walk caching").
type Ref struct {
	parent   *Ref
	name     string
	children map[string]*Ref
}

// Root returns a new root reference node.
func Root() *Ref {
	return &Ref{}
}

// Get returns the child node for name, creating and caching it if this
// is the first walk through that name.
func (r *Ref) Get(name string) *Ref {
	if r.children == nil {
		r.children = make(map[string]*Ref)
	}
	if child, ok := r.children[name]; ok {
		return child
	}
	child := &Ref{parent: r, name: name}
	r.children[name] = child
	return child
}

// path returns the names from root to this node, in resolution order.
func (r *Ref) path() []string {
	var names []string
	for n := r; n.parent != nil; n = n.parent {
		names = append(names, n.name)
	}
	// names was collected leaf-to-root; reverse it.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// Deref resolves r against a host's variable mapping by indexing it by
// each name in r's path, root to leaf. Deref on any non-*Ref value is
// the identity function, per spec.md §9's open question: deref must be
// a no-op on non-references so argument-merging code can call it
// unconditionally.
func Deref(hostVars map[string]any, value any) (any, error) {
	r, ok := value.(*Ref)
	if !ok {
		return value, nil
	}

	var cur any = hostVars
	for _, name := range r.path() {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot index %q into non-mapping value", name)
		}
		v, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("missing key %q in host vars", name)
		}
		cur = v
	}
	return cur, nil
}

// IsRef reports whether value is a variable reference.
func IsRef(value any) bool {
	_, ok := value.(*Ref)
	return ok
}
