package flow

import (
	"sync"
	"unicode"
	"unicode/utf8"
)

// Built-in node types. Neither carries runtime behaviour.
const (
	TypeProcess NodeType = "process"
	TypeForLoop NodeType = "forLoop"
)

// TypeRegistry maps node type tags to display labels.
// It is safe for concurrent use.
type TypeRegistry struct {
	mu     sync.RWMutex
	labels map[NodeType]string
	order  []NodeType
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{labels: make(map[NodeType]string)}
}

// DefaultTypes returns a registry holding the built-in types.
func DefaultTypes() *TypeRegistry {
	r := NewTypeRegistry()
	r.Register(TypeProcess, "Process")
	r.Register(TypeForLoop, "For Loop")
	return r
}

// Register adds or relabels a type. Registration order is kept for
// [TypeRegistry.Types].
func (r *TypeRegistry) Register(t NodeType, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.labels[t]; !ok {
		r.order = append(r.order, t)
	}
	r.labels[t] = label
}

// Known reports whether t has been registered.
func (r *TypeRegistry) Known(t NodeType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.labels[t]
	return ok
}

// Types returns the registered types in registration order.
func (r *TypeRegistry) Types() []NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NodeType, len(r.order))
	copy(out, r.order)
	return out
}

// Label returns the display label for t. Unregistered types fall back to
// [DefaultLabel].
func (r *TypeRegistry) Label(t NodeType) string {
	if r != nil {
		r.mu.RLock()
		label, ok := r.labels[t]
		r.mu.RUnlock()
		if ok {
			return label
		}
	}
	return DefaultLabel(t)
}

// NewNode builds an unselected node of type t at pos with the type's label.
func (r *TypeRegistry) NewNode(id NodeID, t NodeType, pos Position) Node {
	return Node{
		ID:       id,
		Type:     t,
		Position: pos,
		Data:     NodeData{Label: r.Label(t)},
	}
}

// DefaultLabel returns t with its first letter upper-cased.
func DefaultLabel(t NodeType) string {
	s := string(t)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
