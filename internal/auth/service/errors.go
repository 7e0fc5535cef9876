package service

import "errors"

var (
	// ErrUnknownAccount covers both a missing account and an unconfirmed
	// one. Login deliberately does not distinguish the two.
	ErrUnknownAccount = errors.New("unknown_account")

	// ErrInvalidPassword means the account exists and is confirmed but the
	// password did not match.
	ErrInvalidPassword = errors.New("invalid_password")

	// ErrAccountExists means the username or email is already registered.
	ErrAccountExists = errors.New("account_exists")

	// ErrInvalidRefresh covers missing, expired, used, and revoked refresh
	// tokens.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrInvalidOTP covers wrong, expired, and never-issued passcodes.
	ErrInvalidOTP = errors.New("invalid_otp")

	// ErrNotAssociated means the acting user has no membership in the
	// business they tried to operate on.
	ErrNotAssociated = errors.New("not_associated")

	// ErrForbidden means the acting user's role does not permit the
	// operation.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyMember means the target user already belongs to the business.
	ErrAlreadyMember = errors.New("already_member")

	// ErrSuperOwnerExists means a second SuperOwner was requested; each
	// business has exactly one, created with the business itself.
	ErrSuperOwnerExists = errors.New("super_owner_exists")

	// ErrCannotRemoveSuperOwner means a removal targeted the SuperOwner.
	ErrCannotRemoveSuperOwner = errors.New("cannot_remove_super_owner")

	// ErrInvalidRole means the request named a role outside the four known
	// ones.
	ErrInvalidRole = errors.New("invalid_role")
)
