package password_test

import (
	"testing"

	"loyalwallet/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = password.DefaultCost })

	hash, err := password.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, password.Verify("s3cret-pass", hash))
	assert.False(t, password.Verify("wrong", hash))
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, password.HashToken("abc"), password.HashToken("abc"))
	assert.NotEqual(t, password.HashToken("abc"), password.HashToken("abd"))
	assert.Len(t, password.HashToken("abc"), 64)
}

func TestNewToken(t *testing.T) {
	a, err := password.NewToken(16)
	require.NoError(t, err)
	b, err := password.NewToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, password.ValidatePassword("short"))
	assert.True(t, password.ValidatePassword("long enough"))
}
