package jwtmanager

import (
	"context"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, secret string) *JWTManager {
	t.Helper()
	cfg := &config.InternalConfig{JWT: config.AppJWT{Secret: secret, ExpTimeInHour: 1}}
	manager, err := NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)
	return manager
}

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := newTestManager(t, "secret")
	ctx := context.Background()

	created, err := manager.CreateToken(ctx, &CreateTokenInput{Principal: models.Principal{
		ID:   "patient-1",
		Role: constvars.RoleTypePatient,
		Name: "Pat",
	}})
	require.NoError(t, err)

	verified, err := manager.VerifyToken(ctx, &VerifyTokenInput{Token: created.Token})
	require.NoError(t, err)
	assert.Equal(t, "patient-1", verified.Principal.ID)
	assert.Equal(t, constvars.RoleTypePatient, verified.Principal.Role)
	assert.Equal(t, "Pat", verified.Principal.Name)
	assert.WithinDuration(t, created.ExpiresAt, verified.ExpiresAt, time.Second)
}

func TestJWTManager_VerifyRejects(t *testing.T) {
	manager := newTestManager(t, "secret")
	other := newTestManager(t, "other-secret")
	ctx := context.Background()

	foreign, err := other.CreateToken(ctx, &CreateTokenInput{Principal: models.Principal{ID: "u1", Role: constvars.RoleTypeDoctor}})
	require.NoError(t, err)

	expiredClaims := AccessTokenClaims{
		Role: constvars.RoleTypeDoctor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	require.NoError(t, err)

	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		Role:             "nurse",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: foreign.Token},
		{name: "expired", token: expired},
		{name: "unknown role", token: unknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := manager.VerifyToken(ctx, &VerifyTokenInput{Token: tt.token})
			assert.Error(t, err)
			assert.Nil(t, out)
		})
	}
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager(&config.InternalConfig{}, zap.NewNop())
	assert.Error(t, err)
}
