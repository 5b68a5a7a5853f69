package models

import "telehealth-service/internal/pkg/constvars"

// Principal is the authenticated caller attached to a request by the auth middleware.
type Principal struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (p *Principal) IsPatient() bool {
	return p != nil && p.Role == constvars.RoleTypePatient
}

func (p *Principal) IsDoctor() bool {
	return p != nil && p.Role == constvars.RoleTypeDoctor
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == constvars.RoleTypeAdmin
}

// SystemPrincipal acts for scheduled jobs and provider callbacks.
var SystemPrincipal = &Principal{ID: constvars.RoleTypeSystem, Role: constvars.RoleTypeSystem}
