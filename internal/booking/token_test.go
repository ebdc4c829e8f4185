package booking

import (
	"testing"
	"time"

	"cinebook/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager(secret string) *TokenManager {
	return NewTokenManager(config.GuestTokenConfig{
		Secret:   secret,
		Lifetime: time.Hour,
	})
}

func TestTokenMintAndVerify(t *testing.T) {
	m := newTestTokenManager("secret-one")
	bookingID := uuid.New()

	token, err := m.Mint(bookingID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, m.Verify(token, bookingID))
}

func TestTokenBoundToBooking(t *testing.T) {
	m := newTestTokenManager("secret-one")

	token, err := m.Mint(uuid.New())
	require.NoError(t, err)

	assert.False(t, m.Verify(token, uuid.New()))
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	bookingID := uuid.New()
	token, err := newTestTokenManager("secret-one").Mint(bookingID)
	require.NoError(t, err)

	assert.False(t, newTestTokenManager("secret-two").Verify(token, bookingID))
}

func TestTokenRejectsGarbage(t *testing.T) {
	m := newTestTokenManager("secret-one")
	assert.False(t, m.Verify("", uuid.New()))
	assert.False(t, m.Verify("not-a-jwt", uuid.New()))
}
