package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborline/bms/internal/auth/domain"
)

var allRoles = []domain.BusinessRole{
	domain.RoleEmployee,
	domain.RoleAdminEmployee,
	domain.RoleOwner,
	domain.RoleSuperOwner,
}

func TestVisibleRoles(t *testing.T) {
	t.Parallel()

	t.Run("employee sees nobody", func(t *testing.T) {
		_, err := VisibleRoles(domain.RoleEmployee)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin employee sees only employees", func(t *testing.T) {
		roles, err := VisibleRoles(domain.RoleAdminEmployee)
		require.NoError(t, err)
		require.ElementsMatch(t, []domain.BusinessRole{domain.RoleEmployee}, roles)
	})

	t.Run("owner sees employees and admin employees", func(t *testing.T) {
		roles, err := VisibleRoles(domain.RoleOwner)
		require.NoError(t, err)
		require.ElementsMatch(t,
			[]domain.BusinessRole{domain.RoleEmployee, domain.RoleAdminEmployee}, roles)
	})

	t.Run("super owner sees everyone but super owners", func(t *testing.T) {
		roles, err := VisibleRoles(domain.RoleSuperOwner)
		require.NoError(t, err)
		require.ElementsMatch(t,
			[]domain.BusinessRole{domain.RoleEmployee, domain.RoleAdminEmployee, domain.RoleOwner},
			roles)
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		_, err := VisibleRoles(domain.BusinessRole("intern"))
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestCanAddRole(t *testing.T) {
	t.Parallel()

	// expected[actor][target]
	expected := map[domain.BusinessRole]map[domain.BusinessRole]error{
		domain.RoleEmployee: {
			domain.RoleEmployee:      nil,
			domain.RoleAdminEmployee: ErrForbidden,
			domain.RoleOwner:         ErrForbidden,
			domain.RoleSuperOwner:    ErrForbidden,
		},
		domain.RoleAdminEmployee: {
			domain.RoleEmployee:      nil,
			domain.RoleAdminEmployee: nil,
			domain.RoleOwner:         nil,
			domain.RoleSuperOwner:    ErrForbidden,
		},
		domain.RoleOwner: {
			domain.RoleEmployee:      nil,
			domain.RoleAdminEmployee: nil,
			domain.RoleOwner:         nil,
			domain.RoleSuperOwner:    ErrForbidden,
		},
		domain.RoleSuperOwner: {
			domain.RoleEmployee:      nil,
			domain.RoleAdminEmployee: nil,
			domain.RoleOwner:         nil,
			domain.RoleSuperOwner:    ErrSuperOwnerExists,
		},
	}

	for _, actor := range allRoles {
		for _, target := range allRoles {
			want := expected[actor][target]
			got := CanAddRole(actor, target)
			if want == nil {
				require.NoError(t, got, "actor=%s target=%s", actor, target)
			} else {
				require.ErrorIs(t, got, want, "actor=%s target=%s", actor, target)
			}
		}
	}

	t.Run("unknown actor is denied", func(t *testing.T) {
		require.ErrorIs(t, CanAddRole("intern", domain.RoleEmployee), ErrForbidden)
	})
}

func TestCanRemoveRole(t *testing.T) {
	t.Parallel()

	expected := map[domain.BusinessRole]map[domain.BusinessRole]error{
		domain.RoleEmployee: {
			domain.RoleEmployee:      ErrForbidden,
			domain.RoleAdminEmployee: ErrForbidden,
			domain.RoleOwner:         ErrForbidden,
			domain.RoleSuperOwner:    ErrCannotRemoveSuperOwner,
		},
		domain.RoleAdminEmployee: {
			domain.RoleEmployee:      nil,
			domain.RoleAdminEmployee: nil,
			domain.RoleOwner:         nil, // deliberate asymmetry
			domain.RoleSuperOwner:    ErrCannotRemoveSuperOwner,
		},
		domain.RoleOwner: {
			domain.RoleEmployee:      nil,
			domain.RoleAdminEmployee: nil,
			domain.RoleOwner:         ErrForbidden,
			domain.RoleSuperOwner:    ErrCannotRemoveSuperOwner,
		},
		domain.RoleSuperOwner: {
			domain.RoleEmployee:      nil,
			domain.RoleAdminEmployee: nil,
			domain.RoleOwner:         ErrForbidden,
			domain.RoleSuperOwner:    ErrCannotRemoveSuperOwner,
		},
	}

	for _, actor := range allRoles {
		for _, target := range allRoles {
			want := expected[actor][target]
			got := CanRemoveRole(actor, target)
			if want == nil {
				require.NoError(t, got, "actor=%s target=%s", actor, target)
			} else {
				require.ErrorIs(t, got, want, "actor=%s target=%s", actor, target)
			}
		}
	}
}

func TestCanUpdateBusiness(t *testing.T) {
	t.Parallel()

	require.NoError(t, CanUpdateBusiness(domain.RoleSuperOwner))
	require.NoError(t, CanUpdateBusiness(domain.RoleOwner))
	require.ErrorIs(t, CanUpdateBusiness(domain.RoleAdminEmployee), ErrForbidden)
	require.ErrorIs(t, CanUpdateBusiness(domain.RoleEmployee), ErrForbidden)
	require.ErrorIs(t, CanUpdateBusiness("intern"), ErrForbidden)
}

func TestCanDeleteBusiness(t *testing.T) {
	t.Parallel()

	require.NoError(t, CanDeleteBusiness(domain.RoleSuperOwner))
	require.ErrorIs(t, CanDeleteBusiness(domain.RoleOwner), ErrForbidden)
	require.ErrorIs(t, CanDeleteBusiness(domain.RoleAdminEmployee), ErrForbidden)
	require.ErrorIs(t, CanDeleteBusiness(domain.RoleEmployee), ErrForbidden)
}
