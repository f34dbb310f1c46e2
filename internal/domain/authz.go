package domain

import (
	"strings"

	"gitlab.com/contesa/contesa/internal/models"
)

// Operation names one gated action. Every mutation entry point declares its
// operation here, so thresholds live in one table instead of per call site.
type Operation string

const (
	OpModerateContent Operation = "moderate_content"
	OpViewReports     Operation = "view_reports"
	OpResolveReports  Operation = "resolve_reports"
	OpManageUsers     Operation = "manage_users"
	OpViewAuditLog    Operation = "view_audit_log"
	OpChangeRoles     Operation = "change_roles"
	OpManageSettings  Operation = "manage_settings"
)

// Policy maps operations to the minimum role allowed to perform them.
// It is built once at startup and never mutated.
type Policy struct {
	thresholds map[Operation]models.Role
}

func DefaultPolicy() *Policy {
	return &Policy{thresholds: map[Operation]models.Role{
		OpModerateContent: models.RoleModerator,
		OpViewReports:     models.RoleModerator,
		OpResolveReports:  models.RoleModerator,
		OpManageUsers:     models.RoleSuperModerator,
		OpViewAuditLog:    models.RoleSuperModerator,
		OpChangeRoles:     models.RoleAdmin,
		OpManageSettings:  models.RoleAdmin,
	}}
}

// MinimumRole returns the threshold for an operation. Unknown operations have
// no threshold and are always denied.
func (p *Policy) MinimumRole(op Operation) (models.Role, bool) {
	r, ok := p.thresholds[op]
	return r, ok
}

func (p *Policy) Operations() []Operation {
	ops := make([]Operation, 0, len(p.thresholds))
	for op := range p.thresholds {
		ops = append(ops, op)
	}
	return ops
}

// Gate answers permit/deny questions before an operation reaches a service.
// It never writes anything.
type Gate struct {
	policy *Policy
}

func NewGate(policy *Policy) *Gate {
	return &Gate{policy: policy}
}

func (g *Gate) Allow(actor models.Role, op Operation) error {
	required, ok := g.policy.MinimumRole(op)
	if !ok {
		return ErrPermDenied
	}
	if !models.HasMinimumRole(actor, required) {
		return ErrPermDenied
	}
	return nil
}

// AllowRoleChange checks a role-change request: the actor must clear the
// change_roles threshold and strictly outrank both the target's current role
// and the requested one, and must give a reason.
func (g *Gate) AllowRoleChange(actor, current, requested models.Role, reason string) error {
	if !requested.Valid() {
		return ValidationError{Field: "role", Msg: "unknown role"}
	}
	if strings.TrimSpace(reason) == "" {
		return ValidationError{Field: "reason", Msg: "a reason is required to change a role"}
	}
	if err := g.Allow(actor, OpChangeRoles); err != nil {
		return err
	}
	if !models.CanActOnRole(actor, current) || !models.CanActOnRole(actor, requested) {
		return ErrPermDenied
	}
	return nil
}
