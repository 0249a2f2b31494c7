package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/murmurchat/murmur/pkg/apierror"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	token, err := m.Generate(userID, "a@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, userID.String(), claims.UserID)
	require.Equal(t, "a@example.com", claims.Email)
	require.NotEmpty(t, claims.ID)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, 24*time.Hour)

	token, err := m.Generate(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)
	require.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)
	other := NewJWTManager("other-secret", time.Hour, 24*time.Hour)

	token, err := m.Generate(uuid.New(), "")
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
	require.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}

func TestVerifyGarbage(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	_, err := m.Verify("not-a-token")
	require.Error(t, err)
	require.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}

func TestNewRefreshTokenUnique(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	first, exp, err := m.NewRefreshToken()
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	second, _, err := m.NewRefreshToken()
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestExtractTokenFromHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	token, err := ExtractTokenFromHeader(r)
	require.NoError(t, err)
	require.Equal(t, "abc123", token)

	r.Header.Set("Authorization", "abc123")
	_, err = ExtractTokenFromHeader(r)
	require.Error(t, err)
}
