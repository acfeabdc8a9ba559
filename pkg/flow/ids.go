package flow

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource produces identifiers for new nodes and edges.
//
// Implementations must be safe for concurrent use. Callers that need ids
// disjoint from an existing set (paste) check for collisions themselves
// and simply ask again.
type IDSource interface {
	NewID() string
}

// UUIDSource generates random version 4 UUIDs. It is the default source.
type UUIDSource struct{}

// NewID returns a new random UUID string.
func (UUIDSource) NewID() string { return uuid.NewString() }

// Sequence generates "<prefix><n>" ids with n counting up from 1.
// It is deterministic and meant for tests and scripted sessions.
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

// NewSequence returns a sequence whose first id is prefix+"1".
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s%d", s.prefix, s.n.Add(1))
}

// IDSourceFunc adapts a function to [IDSource].
type IDSourceFunc func() string

// NewID calls f.
func (f IDSourceFunc) NewID() string { return f() }

var (
	_ IDSource = UUIDSource{}
	_ IDSource = (*Sequence)(nil)
	_ IDSource = IDSourceFunc(nil)
)
