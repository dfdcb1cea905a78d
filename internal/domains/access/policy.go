package access

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// DefaultPolicy grants order management to admin and anything inheriting it.
const DefaultPolicy = `
p, admin, orders, manage
g, superadmin, admin
`

// Policy is a Casbin RBAC permission checker.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy builds a checker backed by the given Casbin adapter.
func NewPolicy(adapter persist.Adapter) (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	return &Policy{enforcer: e}, nil
}

// NewDefaultPolicy loads DefaultPolicy.
func NewDefaultPolicy() (*Policy, error) {
	return NewPolicy(stringadapter.NewAdapter(strings.TrimSpace(DefaultPolicy)))
}

// NewFilePolicy loads a CSV policy file in Casbin format.
func NewFilePolicy(path string) (*Policy, error) {
	return NewPolicy(fileadapter.NewAdapter(path))
}

// Allowed reports whether role may perform action on resource.
func (p *Policy) Allowed(role, resource, action string) (bool, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return false, nil
	}
	return p.enforcer.Enforce(role, resource, action)
}

var _ PermissionChecker = (*Policy)(nil)
