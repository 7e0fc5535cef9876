package domain

import "time"

type Business struct {
	ID          string
	Name        string
	Category    string
	Description string
	Address     string
	Phone       string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BusinessRole is the role a user holds within one business. Roles are
// per-business: the same user can be an Owner in one business and an
// Employee in another.
type BusinessRole string

const (
	RoleEmployee      BusinessRole = "employee"
	RoleAdminEmployee BusinessRole = "admin_employee"
	RoleOwner         BusinessRole = "owner"
	RoleSuperOwner    BusinessRole = "super_owner"
)

// Valid reports whether the role is one of the four known roles.
func (r BusinessRole) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdminEmployee, RoleOwner, RoleSuperOwner:
		return true
	}
	return false
}

// Membership links a user to a business with a role.
type Membership struct {
	ID         string
	BusinessID string
	UserID     string
	Role       BusinessRole
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BusinessSummary is a membership joined with its business record, as
// returned by "my businesses" listings.
type BusinessSummary struct {
	BusinessID string
	Name       string
	Role       BusinessRole
	JoinedAt   time.Time
}

// Member is a membership joined with its user record, as returned by
// personnel listings.
type Member struct {
	UserID   string
	Username string
	Email    string
	Role     BusinessRole
	JoinedAt time.Time
}
