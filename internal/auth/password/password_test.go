package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost) // keep the test fast

	hash, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", hash)

	assert.True(t, h.Compare("Passw0rd", hash))
	assert.False(t, h.Compare("WrongPass1", hash))
	assert.False(t, h.Compare("", hash))
	assert.False(t, h.Compare("Passw0rd", "not-a-bcrypt-hash"))
}

func TestNewHasher_CostClamping(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, MinCost, NewHasher(3).cost)
	assert.Equal(t, MaxCost, NewHasher(31).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}

func TestValidateStrength(t *testing.T) {
	assert.Empty(t, ValidateStrength("Passw0rd"))

	// every violated rule is reported, not just the first
	violations := ValidateStrength("abc")
	assert.Len(t, violations, 3)

	assert.Len(t, ValidateStrength("password1"), 1) // no uppercase
	assert.Len(t, ValidateStrength("PASSWORD1"), 1) // no lowercase
	assert.Len(t, ValidateStrength("Password"), 1)  // no digit
	assert.Len(t, ValidateStrength("Pw1"), 1)       // too short only
}
