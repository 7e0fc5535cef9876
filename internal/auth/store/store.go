package store

import (
	"context"
	"errors"

	"github.com/harborline/bms/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable, and to actively stop people from accidentally doing
// transactions within transactions.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Businesses() Businesses
	Memberships() Memberships

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during username login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used during email login and password recovery.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// ConfirmEmail flips email_confirmed and bumps updated_at.
	ConfirmEmail(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetActiveBusiness points the user at the business they operate as.
	// Pass nil to clear the pointer.
	SetActiveBusiness(ctx context.Context, userID string, businessID *string) error

	// DeleteUser cascades to refresh_tokens and memberships (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// UsernameExists reports whether a username is already taken.
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ConsumeRefreshToken atomically flips used=1 on a live token. Returns
	// ErrNotFound when the token is missing, already used, or revoked, so
	// concurrent redemptions of the same token succeed exactly once.
	ConsumeRefreshToken(ctx context.Context, hash string) error

	// GetLiveTokenForUser returns one unused, unrevoked, unexpired token
	// for the user. Used by logout to retire an open session.
	GetLiveTokenForUser(ctx context.Context, userID string) (domain.RefreshToken, error)

	// RevokeAllUserRefreshTokens bulk revocation for a user (e.g., password reset).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteRefreshToken removes a single token row by fingerprint.
	DeleteRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type Businesses interface {
	// GetBusinessByID fetches a business by id.
	GetBusinessByID(ctx context.Context, id string) (domain.Business, error)

	// CreateBusiness inserts a new business (id is ULID).
	CreateBusiness(ctx context.Context, b domain.Business) error

	// UpdateBusiness mutates the profile fields and bumps updated_at.
	UpdateBusiness(ctx context.Context, b domain.Business) error

	// DeleteBusiness cascades to memberships (per schema).
	DeleteBusiness(ctx context.Context, businessID string) error
}

type Memberships interface {
	// CreateMembership links a user to a business with a role.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// GetMembership returns the membership for a user within a business.
	GetMembership(ctx context.Context, businessID, userID string) (domain.Membership, error)

	// ListMembers returns memberships joined with user records, filtered to
	// the given roles. An empty filter returns nothing.
	ListMembers(ctx context.Context, businessID string, roles []domain.BusinessRole) ([]domain.Member, error)

	// ListUserBusinesses returns the user's memberships joined with business
	// names, for listings.
	ListUserBusinesses(ctx context.Context, userID string) ([]domain.BusinessSummary, error)

	// DeleteMembership removes a user from a business.
	DeleteMembership(ctx context.Context, businessID, userID string) error
}
