package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken("user-1", RoleUser)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewService("secret-a", time.Hour).GenerateToken("user-1", RoleUser)
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)
	token, err := svc.GenerateToken("user-1", RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveSubject(t *testing.T) {
	base := context.Background()

	userCtx := context.WithValue(base, ctxUserID, "user-1")
	userCtx = context.WithValue(userCtx, ctxRole, RoleUser)

	// Callers act on themselves by default.
	subject, ok := ResolveSubject(userCtx, "")
	assert.True(t, ok)
	assert.Equal(t, "user-1", subject)

	subject, ok = ResolveSubject(userCtx, "user-1")
	assert.True(t, ok)
	assert.Equal(t, "user-1", subject)

	// A regular caller cannot act on someone else.
	_, ok = ResolveSubject(userCtx, "user-2")
	assert.False(t, ok)

	// The service role can.
	svcCtx := context.WithValue(base, ctxUserID, "backend")
	svcCtx = context.WithValue(svcCtx, ctxRole, RoleService)
	subject, ok = ResolveSubject(svcCtx, "user-2")
	assert.True(t, ok)
	assert.Equal(t, "user-2", subject)

	// Unauthenticated context resolves nothing.
	_, ok = ResolveSubject(base, "")
	assert.False(t, ok)
}
