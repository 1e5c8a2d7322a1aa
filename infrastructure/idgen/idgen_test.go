package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_ParsesAndIsUnique(t *testing.T) {
	var g Generator = UUID{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.NewID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.False(t, seen[id], "id %s generated twice", id)
		seen[id] = true
	}
}

func TestSequence_Deterministic(t *testing.T) {
	s := NewSequence("sale")
	assert.Equal(t, "sale-1", s.NewID())
	assert.Equal(t, "sale-2", s.NewID())
}
