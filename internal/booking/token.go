package booking

import (
	"crypto/subtle"
	"fmt"
	"time"

	"cinebook/internal/shared/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenManager mints and verifies guest capability tokens. The token is an
// HS256-signed JWT bound to one booking; the client treats it as an opaque
// bearer credential. Guests are not authenticated accounts, so holding the
// token is the only thing that authorizes further mutations.
type TokenManager struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenManager(cfg config.GuestTokenConfig) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
	}
}

// Mint creates a guest token for the given booking.
func (m *TokenManager) Mint(bookingID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"booking_id": bookingID.String(),
		"type":       "guest",
		"iat":        now.Unix(),
		"exp":        now.Add(m.lifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign guest token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and that it was minted for bookingID.
func (m *TokenManager) Verify(tokenString string, bookingID uuid.UUID) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "guest" {
		return false
	}
	claimed, ok := claims["booking_id"].(string)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(claimed), []byte(bookingID.String())) == 1
}
