package jwtmanager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

var (
	ErrTokenRequired    = errors.New("token is required")
	ErrSubjectRequired  = errors.New("token subject is required")
	ErrRoleNotSupported = errors.New("token role is not supported")
)

// AccessTokenClaims is the bearer token payload issued by the identity service. Subject carries the user id.
type AccessTokenClaims struct {
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	log    *zap.Logger
	secret []byte
	ttl    time.Duration
}

type CreateTokenInput struct {
	Principal models.Principal
}

type CreateTokenOutput struct {
	Token     string
	ExpiresAt time.Time
}

type VerifyTokenInput struct {
	Token string
}

type VerifyTokenOutput struct {
	Principal *models.Principal
	ExpiresAt time.Time
}

func NewJWTManager(cfg *config.InternalConfig, log *zap.Logger) (*JWTManager, error) {
	secret := strings.TrimSpace(cfg.JWT.Secret)
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	ttl := time.Duration(cfg.JWT.ExpTimeInHour) * time.Hour
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &JWTManager{
		log:    log,
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// CreateToken issues a token for the principal. The identity service owns issuance in production; this is used by tooling and tests.
func (j *JWTManager) CreateToken(ctx context.Context, in *CreateTokenInput) (*CreateTokenOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	j.log.Debug("JWTManager.CreateToken called", zap.String(constvars.LoggingRequestIDKey, requestID))

	if in == nil || strings.TrimSpace(in.Principal.ID) == "" {
		return nil, ErrSubjectRequired
	}

	now := time.Now().UTC()
	expiresAt := now.Add(j.ttl)
	claims := AccessTokenClaims{
		Role:  in.Principal.Role,
		Name:  in.Principal.Name,
		Email: in.Principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.Principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return nil, err
	}
	return &CreateTokenOutput{Token: signed, ExpiresAt: expiresAt}, nil
}

// VerifyToken checks signature, expiry and the role claim, and returns the caller as a principal.
func (j *JWTManager) VerifyToken(ctx context.Context, in *VerifyTokenInput) (*VerifyTokenOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if in == nil || strings.TrimSpace(in.Token) == "" {
		return nil, ErrTokenRequired
	}

	claims := new(AccessTokenClaims)
	_, err := jwt.ParseWithClaims(in.Token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		j.log.Debug("JWTManager.VerifyToken rejected token",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if claims.Subject == "" {
		return nil, ErrSubjectRequired
	}
	switch claims.Role {
	case constvars.RoleTypePatient, constvars.RoleTypeDoctor, constvars.RoleTypeAdmin:
	default:
		return nil, ErrRoleNotSupported
	}

	out := &VerifyTokenOutput{
		Principal: &models.Principal{
			ID:    claims.Subject,
			Role:  claims.Role,
			Name:  claims.Name,
			Email: claims.Email,
		},
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
