package utils

import (
	"context"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
)

// GetPrincipal returns the caller attached by the auth middleware.
func GetPrincipal(ctx context.Context) (*models.Principal, bool) {
	principal, ok := ctx.Value(constvars.CONTEXT_PRINCIPAL_KEY).(*models.Principal)
	return principal, ok && principal != nil
}
