package rbac

import (
	"telehealth-service/internal/pkg/constvars"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Requests are (role, method, path). Paths are relative to the versioned API prefix and
// policy paths use keyMatch2 placeholders such as /appointments/:id/status.
const modelText = `
[request_definition]
r = sub, act, obj

[policy_definition]
p = sub, act, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.act == "*" || r.act == p.act) && keyMatch2(r.obj, p.obj)
`

// roleParticipant is granted to patients and doctors for routes both of them use.
const roleParticipant = "participant"

var defaultGroupings = [][]string{
	{constvars.RoleTypePatient, roleParticipant},
	{constvars.RoleTypeDoctor, roleParticipant},
	{constvars.RoleTypeAdmin, roleParticipant},
}

var defaultPolicies = [][]string{
	{roleParticipant, "GET", "/appointments"},
	{roleParticipant, "GET", "/appointments/schedule"},
	{roleParticipant, "GET", "/appointments/stats"},
	{roleParticipant, "GET", "/appointments/history"},
	{constvars.RoleTypePatient, "POST", "/appointments"},
	{constvars.RoleTypePatient, "PUT", "/appointments/:id/status"},
	{constvars.RoleTypeDoctor, "PUT", "/appointments/:id/status"},
	{constvars.RoleTypePatient, "POST", "/appointments/:id/reschedule"},
	{constvars.RoleTypePatient, "POST", "/appointments/:id/rating"},

	{constvars.RoleTypeDoctor, "*", "/calendar"},
	{constvars.RoleTypeDoctor, "*", "/calendar/*"},

	{constvars.RoleTypePatient, "POST", "/payments/create-order"},
	{roleParticipant, "POST", "/payments/capture/:orderId"},
	{roleParticipant, "GET", "/payments/*"},
}

// NewEnforcer builds the in-memory route policy shared by every request.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := enforcer.AddGroupingPolicies(defaultGroupings); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, err
	}
	return enforcer, nil
}
