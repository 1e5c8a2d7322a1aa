package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out entity identifiers.
type Generator interface {
	NewID() string
}

// UUID generates RFC 4122 random identifiers.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence yields prefix-1, prefix-2, ... and is meant for tests.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}
