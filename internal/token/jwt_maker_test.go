package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestCreateAndVerifyToken(t *testing.T) {
	maker := NewJWTMaker(testSecret)

	ttl := 72 * time.Hour
	issuedAt := time.Now()

	tokenStr, claims, err := maker.CreateToken(42, ttl)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, uint(42), claims.UserID)

	// expiry sits exactly ttl after issuance
	require.WithinDuration(t, issuedAt.Add(ttl), claims.ExpiresAt.Time, time.Second)

	parsed, err := maker.VerifyToken(tokenStr)
	require.NoError(t, err)
	require.Equal(t, uint(42), parsed.UserID)
	require.Equal(t, claims.ID, parsed.ID)
}

func TestVerifyExpiredToken(t *testing.T) {
	maker := NewJWTMaker(testSecret)

	tokenStr, _, err := maker.CreateToken(42, -time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	maker := NewJWTMaker(testSecret)

	tokenStr, _, err := maker.CreateToken(42, time.Hour)
	require.NoError(t, err)

	other := NewJWTMaker("another-secret")
	_, err = other.VerifyToken(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsNoneAlg(t *testing.T) {
	maker := NewJWTMaker(testSecret)

	claims, err := NewUserClaims(42, time.Hour)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}
