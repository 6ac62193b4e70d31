package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
)

func newTestJWTService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "classline-test",
	})
}

func testUser() *models.User {
	return &models.User{
		ID:       42,
		SchoolID: 3,
		Email:    "teacher@example.com",
		RoleType: models.RoleTeacher,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	token, expiresIn, err := svc.GenerateToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, int64(3), claims.SchoolID)
	assert.Equal(t, "teacher@example.com", claims.Email)
	assert.Equal(t, string(models.RoleTeacher), claims.RoleType)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestJWTService(-time.Minute)

	token, _, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateTokenWrongKey(t *testing.T) {
	token, _, err := newTestJWTService(time.Hour).GenerateToken(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other-secret", AccessTokenExp: time.Hour, TokenIssuer: "classline-test"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("abc.def.ghi")
	assert.Error(t, err)

	_, err = ExtractBearerToken("")
	assert.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	assert.True(t, CheckPassword(hash, "s3cretpass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestActivationTokenExpiry(t *testing.T) {
	token, expiresAt := NewActivationToken(time.Hour)
	assert.NotEmpty(t, token)
	assert.False(t, TokenExpired(expiresAt))

	_, expired := NewActivationToken(-time.Minute)
	assert.True(t, TokenExpired(expired))

	// Tokens are unique per issue
	other, _ := NewActivationToken(time.Hour)
	assert.NotEqual(t, token, other)
}
