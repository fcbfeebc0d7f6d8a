package serial_test

import (
	"testing"

	"loyalwallet/internal/pkg/serial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorUnique(t *testing.T) {
	gen, err := serial.NewGenerator(1)
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen.Next()
		assert.Positive(t, id)
		_, dup := seen[id]
		require.False(t, dup, "serial %d issued twice", id)
		seen[id] = struct{}{}
	}
}

func TestGeneratorRejectsBadNode(t *testing.T) {
	_, err := serial.NewGenerator(4096)
	assert.Error(t, err)
}
