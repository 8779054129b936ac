package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-characters", Issuer: "stockflow"})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService()
	worker := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: uuid.New()}

	token, err := svc.Issue(worker, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "stockflow", claims.Issuer)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, worker, actor)
}

func TestJWTService_AdminHasNoInventory(t *testing.T) {
	svc := newTestService()
	token, err := svc.Issue(workflow.Actor{UserID: uuid.New(), Role: workflow.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Empty(t, claims.InventoryID)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())
	assert.Equal(t, uuid.Nil, actor.InventoryID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := newTestService()
	admin := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleAdmin}

	t.Run("expired", func(t *testing.T) {
		token, err := svc.Issue(admin, -time.Minute)
		require.NoError(t, err)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters!!", Issuer: "stockflow"})
		token, err := other.Issue(admin, time.Hour)
		require.NoError(t, err)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-characters", Issuer: "someone-else"})
		token, err := other.Issue(admin, time.Hour)
		require.NoError(t, err)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.NewString(), Role: "ADMIN"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Actor(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
	}{
		{"bad user id", Claims{UserID: "nope", Role: "ADMIN"}},
		{"unknown role", Claims{UserID: uuid.NewString(), Role: "OWNER"}},
		{"bad inventory id", Claims{UserID: uuid.NewString(), Role: "WORKER", InventoryID: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.claims.Actor()
			assert.ErrorIs(t, err, ErrInvalidClaims)
		})
	}
}
