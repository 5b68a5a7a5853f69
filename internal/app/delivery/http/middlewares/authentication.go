package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"telehealth-service/internal/app/services/shared/jwtmanager"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// Authenticate verifies the bearer token and stores the caller's principal in the request context.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, constvars.HeaderBearerPrefix) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, constvars.HeaderBearerPrefix))
		out, err := m.JWTManager.VerifyToken(r.Context(), &jwtmanager.VerifyTokenInput{Token: token})
		if err != nil {
			utils.LogSecurityEvent(m.Log, "token_rejected", utils.GetRequestID(r.Context()), "low",
				zap.String(constvars.LoggingRemoteAddrKey, utils.ClientIP(r)),
				zap.Error(err),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenInvalidOrExpired(err))
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_PRINCIPAL_KEY, out.Principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize checks the principal's role against the route policy for the request method and path.
func (m *Middlewares) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := utils.GetPrincipal(r.Context())
		if !ok {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrPrincipalMissing(nil))
			return
		}

		path := m.policyPath(r.URL.Path)
		allowed, err := m.Enforcer.Enforce(principal.Role, r.Method, path)
		if err != nil {
			m.Log.Error("Middlewares.Authorize enforcer error",
				zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
				zap.Error(err))
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerProcess(err))
			return
		}
		if !allowed {
			utils.LogSecurityEvent(m.Log, "route_forbidden", utils.GetRequestID(r.Context()), "low",
				zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
				zap.String("method", r.Method),
				zap.String("path", path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrRoleNotAllowed(fmt.Errorf("%s %s", r.Method, path), principal.Role))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// policyPath strips the versioned API prefix so policies stay independent of deployment settings.
func (m *Middlewares) policyPath(path string) string {
	if m.InternalConfig != nil {
		prefix := fmt.Sprintf("/%s/%s", m.InternalConfig.App.EndpointPrefix, m.InternalConfig.App.Version)
		path = strings.TrimPrefix(path, prefix)
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}
