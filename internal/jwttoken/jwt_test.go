package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "legatum/pkg/domain-errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "legatum", "legatum-api")
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "executor", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "executor", claims.Role)
	assert.Equal(t, "legatum", claims.Issuer)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "legatum", "legatum-api")

	token, err := svc.GenerateAccessToken(uuid.New(), "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTService_WrongKey(t *testing.T) {
	svc := NewJWTService("test-signing-key", "legatum", "legatum-api")
	other := NewJWTService("other-key", "legatum", "legatum-api")

	token, err := svc.GenerateAccessToken(uuid.New(), "", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter_TypedUserID(t *testing.T) {
	svc := NewJWTService("test-signing-key", "legatum", "legatum-api")
	adapter := NewMiddlewareAdapter(svc)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "owner", time.Hour)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID.String())
	assert.Equal(t, "owner", claims.Role)
}
