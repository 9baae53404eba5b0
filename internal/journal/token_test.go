package journal

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_Format(t *testing.T) {
	gen := UUIDv7Generator{}
	token := gen.Generate()

	assert.Equal(t, 36, len(token), "token should be a hyphenated UUID")

	parsed, err := uuid.Parse(token)
	require.NoError(t, err, "token should be a valid UUID")
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Uniqueness(t *testing.T) {
	gen := UUIDv7Generator{}
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		token := gen.Generate()
		require.False(t, seen[token], "token %q generated twice", token)
		seen[token] = true
	}
}

func TestFixedGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedGenerator("run-1", "run-2", "run-3")

	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.Equal(t, "run-3", gen.Generate())
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("run-1")
	gen.Generate()

	assert.Panics(t, func() { gen.Generate() })
}
