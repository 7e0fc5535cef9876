package service

import (
	"github.com/harborline/bms/internal/auth/domain"
)

// Role authorization is encoded as explicit decision tables rather than a
// rank comparison. The matrices are asymmetric (an AdminEmployee may remove
// an Owner but may not see Owners in listings), so deriving them from a
// linear ordering produces wrong answers. Unknown roles fall through to the
// deny branch in every table.

// visibleRoles maps a viewer's role to the member roles they may list.
// Absent viewer roles may list nothing.
var visibleRoles = map[domain.BusinessRole][]domain.BusinessRole{
	domain.RoleAdminEmployee: {domain.RoleEmployee},
	domain.RoleOwner:         {domain.RoleEmployee, domain.RoleAdminEmployee},
	domain.RoleSuperOwner:    {domain.RoleEmployee, domain.RoleAdminEmployee, domain.RoleOwner},
}

// VisibleRoles returns the member roles the viewer may list, or ErrForbidden
// when the viewer may not list personnel at all.
func VisibleRoles(viewer domain.BusinessRole) ([]domain.BusinessRole, error) {
	roles, ok := visibleRoles[viewer]
	if !ok {
		return nil, ErrForbidden
	}
	return roles, nil
}

// addableRoles maps an actor's role to the roles they may grant when adding
// a member. SuperOwner never appears as a grantable role: the sole
// SuperOwner is created together with the business.
var addableRoles = map[domain.BusinessRole][]domain.BusinessRole{
	domain.RoleEmployee:      {domain.RoleEmployee},
	domain.RoleAdminEmployee: {domain.RoleEmployee, domain.RoleAdminEmployee, domain.RoleOwner},
	domain.RoleOwner:         {domain.RoleEmployee, domain.RoleAdminEmployee, domain.RoleOwner},
	domain.RoleSuperOwner:    {domain.RoleEmployee, domain.RoleAdminEmployee, domain.RoleOwner},
}

// CanAddRole reports whether the actor may add a member with the target
// role. A SuperOwner target returns ErrSuperOwnerExists for the SuperOwner
// actor (the business already has its one) and ErrForbidden for everyone
// else.
func CanAddRole(actor, target domain.BusinessRole) error {
	if target == domain.RoleSuperOwner {
		if actor == domain.RoleSuperOwner {
			return ErrSuperOwnerExists
		}
		return ErrForbidden
	}

	for _, allowed := range addableRoles[actor] {
		if target == allowed {
			return nil
		}
	}
	return ErrForbidden
}

// removableRoles maps an actor's role to the roles they may remove. The
// AdminEmployee row includes Owner while the Owner and SuperOwner rows do
// not; that asymmetry is deliberate.
var removableRoles = map[domain.BusinessRole][]domain.BusinessRole{
	domain.RoleAdminEmployee: {domain.RoleEmployee, domain.RoleAdminEmployee, domain.RoleOwner},
	domain.RoleOwner:         {domain.RoleEmployee, domain.RoleAdminEmployee},
	domain.RoleSuperOwner:    {domain.RoleEmployee, domain.RoleAdminEmployee},
}

// CanRemoveRole reports whether the actor may remove a member holding the
// target role. Any SuperOwner target returns ErrCannotRemoveSuperOwner
// regardless of actor.
func CanRemoveRole(actor, target domain.BusinessRole) error {
	if target == domain.RoleSuperOwner {
		return ErrCannotRemoveSuperOwner
	}

	for _, allowed := range removableRoles[actor] {
		if target == allowed {
			return nil
		}
	}
	return ErrForbidden
}

// CanUpdateBusiness reports whether the actor may edit business details.
func CanUpdateBusiness(actor domain.BusinessRole) error {
	switch actor {
	case domain.RoleSuperOwner, domain.RoleOwner:
		return nil
	}
	return ErrForbidden
}

// CanDeleteBusiness reports whether the actor may delete the business.
func CanDeleteBusiness(actor domain.BusinessRole) error {
	if actor == domain.RoleSuperOwner {
		return nil
	}
	return ErrForbidden
}
