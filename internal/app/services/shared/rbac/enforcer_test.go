package rbac

import (
	"telehealth-service/internal/pkg/constvars"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcer(t *testing.T) {
	enforcer, err := NewEnforcer()
	require.NoError(t, err)

	tests := []struct {
		role   string
		method string
		path   string
		want   bool
	}{
		{constvars.RoleTypePatient, "POST", "/appointments", true},
		{constvars.RoleTypeDoctor, "POST", "/appointments", false},
		{constvars.RoleTypeDoctor, "GET", "/appointments", true},
		{constvars.RoleTypeAdmin, "GET", "/appointments/stats", true},
		{constvars.RoleTypeDoctor, "PUT", "/appointments/abc/status", true},
		{constvars.RoleTypeAdmin, "PUT", "/appointments/abc/status", false},
		{constvars.RoleTypeDoctor, "POST", "/appointments/abc/rating", false},
		{constvars.RoleTypePatient, "POST", "/appointments/abc/rating", true},
		{constvars.RoleTypeDoctor, "DELETE", "/calendar/block-slot/2030-01-07/slot-1", true},
		{constvars.RoleTypeDoctor, "GET", "/calendar", true},
		{constvars.RoleTypePatient, "GET", "/calendar", false},
		{constvars.RoleTypePatient, "POST", "/payments/create-order", true},
		{constvars.RoleTypeDoctor, "POST", "/payments/create-order", false},
		{constvars.RoleTypeDoctor, "GET", "/payments/history", true},
		{constvars.RoleTypePatient, "POST", "/payments/capture/ORDER-1", true},
		{"guest", "GET", "/appointments", false},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.path, func(t *testing.T) {
			allowed, err := enforcer.Enforce(tt.role, tt.method, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}
