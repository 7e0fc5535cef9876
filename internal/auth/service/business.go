package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/idx"
	"github.com/harborline/bms/pkg/slogx"
)

var ErrInvalidBusinessName = errors.New("invalid_business_name")

// BusinessService manages businesses and their personnel. Every operation
// first resolves the actor's membership in the target business; the role
// matrices in authz.go decide the rest.
type BusinessService struct {
	Store store.Store
}

// Create registers a new business. The creator becomes its SuperOwner and
// their active-business pointer moves to the new business, all in one
// transaction.
func (s *BusinessService) Create(ctx context.Context, creatorID string, b domain.Business) (domain.Business, error) {
	l := slogx.FromContext(ctx)

	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return domain.Business{}, ErrInvalidBusinessName
	}
	b.ID = idx.New().String()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Businesses().CreateBusiness(ctx, b); err != nil {
			return err
		}
		if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:         idx.New().String(),
			BusinessID: b.ID,
			UserID:     creatorID,
			Role:       domain.RoleSuperOwner,
		}); err != nil {
			return err
		}
		return tx.Users().SetActiveBusiness(ctx, creatorID, &b.ID)
	})
	if err != nil {
		return domain.Business{}, err
	}

	l.Info("business created",
		slog.String("business_id", b.ID), slog.String("super_owner", creatorID))
	return b, nil
}

// Get returns a business the actor belongs to, along with the actor's role
// in it.
func (s *BusinessService) Get(ctx context.Context, actorID, businessID string) (domain.Business, domain.BusinessRole, error) {
	m, err := s.membership(ctx, businessID, actorID)
	if err != nil {
		return domain.Business{}, "", err
	}
	b, err := s.Store.Businesses().GetBusinessByID(ctx, businessID)
	if err != nil {
		return domain.Business{}, "", err
	}
	return b, m.Role, nil
}

// Update edits business details. Owner and SuperOwner only.
func (s *BusinessService) Update(ctx context.Context, actorID string, b domain.Business) error {
	m, err := s.membership(ctx, b.ID, actorID)
	if err != nil {
		return err
	}
	if err := CanUpdateBusiness(m.Role); err != nil {
		return err
	}

	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return ErrInvalidBusinessName
	}
	return s.Store.Businesses().UpdateBusiness(ctx, b)
}

// Delete removes a business and all its memberships. SuperOwner only.
// Users whose active-business pointer referenced it are repointed to nil.
func (s *BusinessService) Delete(ctx context.Context, actorID, businessID string) error {
	m, err := s.membership(ctx, businessID, actorID)
	if err != nil {
		return err
	}
	if err := CanDeleteBusiness(m.Role); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		members, err := tx.Memberships().ListMembers(ctx, businessID, []domain.BusinessRole{
			domain.RoleEmployee, domain.RoleAdminEmployee, domain.RoleOwner, domain.RoleSuperOwner,
		})
		if err != nil {
			return err
		}
		for _, member := range members {
			u, err := tx.Users().GetUserByID(ctx, member.UserID)
			if err != nil {
				return err
			}
			if u.ActiveBusiness != nil && *u.ActiveBusiness == businessID {
				if err := tx.Users().SetActiveBusiness(ctx, member.UserID, nil); err != nil {
					return err
				}
			}
		}
		return tx.Businesses().DeleteBusiness(ctx, businessID)
	})
}

// Members lists the personnel the actor is allowed to see, per the view
// matrix.
func (s *BusinessService) Members(ctx context.Context, actorID, businessID string) ([]domain.Member, error) {
	m, err := s.membership(ctx, businessID, actorID)
	if err != nil {
		return nil, err
	}

	roles, err := VisibleRoles(m.Role)
	if err != nil {
		return nil, err
	}
	return s.Store.Memberships().ListMembers(ctx, businessID, roles)
}

// AddMember adds an existing user to the business by username or email. The
// add matrix decides whether the actor may grant the requested role.
func (s *BusinessService) AddMember(ctx context.Context, actorID, businessID, identifier string, role domain.BusinessRole) error {
	l := slogx.FromContext(ctx)

	if !role.Valid() {
		return ErrInvalidRole
	}

	actor, err := s.membership(ctx, businessID, actorID)
	if err != nil {
		return err
	}
	if err := CanAddRole(actor.Role, role); err != nil {
		return err
	}

	identifier = strings.TrimSpace(identifier)
	var target domain.User
	if strings.Contains(identifier, "@") {
		target, err = s.Store.Users().GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		target, err = s.Store.Users().GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownAccount
		}
		return err
	}

	err = s.Store.Memberships().CreateMembership(ctx, domain.Membership{
		ID:         idx.New().String(),
		BusinessID: businessID,
		UserID:     target.ID,
		Role:       role,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrAlreadyMember
	}
	if err != nil {
		return err
	}

	l.Info("member added",
		slog.String("business_id", businessID),
		slog.String("user_id", target.ID),
		slog.String("role", string(role)))
	return nil
}

// RemoveMember removes a member per the remove matrix. No path removes the
// SuperOwner; self-removal is allowed whenever the matrix permits the
// actor's own role, so an AdminEmployee may leave this way.
func (s *BusinessService) RemoveMember(ctx context.Context, actorID, businessID, targetUserID string) error {
	l := slogx.FromContext(ctx)

	actor, err := s.membership(ctx, businessID, actorID)
	if err != nil {
		return err
	}

	target, err := s.Store.Memberships().GetMembership(ctx, businessID, targetUserID)
	if err != nil {
		return err // store.ErrNotFound passes through
	}

	if err := CanRemoveRole(actor.Role, target.Role); err != nil {
		return err
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Memberships().DeleteMembership(ctx, businessID, targetUserID); err != nil {
			return err
		}
		u, err := tx.Users().GetUserByID(ctx, targetUserID)
		if err != nil {
			return err
		}
		if u.ActiveBusiness != nil && *u.ActiveBusiness == businessID {
			return tx.Users().SetActiveBusiness(ctx, targetUserID, nil)
		}
		return nil
	}); err != nil {
		return err
	}

	l.Info("member removed",
		slog.String("business_id", businessID),
		slog.String("user_id", targetUserID))
	return nil
}

// ListMine returns every business the user belongs to, with their role.
func (s *BusinessService) ListMine(ctx context.Context, userID string) ([]domain.BusinessSummary, error) {
	return s.Store.Memberships().ListUserBusinesses(ctx, userID)
}

// SetActive points the user's active-business pointer at a business they
// belong to.
func (s *BusinessService) SetActive(ctx context.Context, userID, businessID string) error {
	if _, err := s.membership(ctx, businessID, userID); err != nil {
		return err
	}
	return s.Store.Users().SetActiveBusiness(ctx, userID, &businessID)
}

// membership resolves the actor's role in the business, translating a
// missing row into ErrNotAssociated.
func (s *BusinessService) membership(ctx context.Context, businessID, userID string) (domain.Membership, error) {
	m, err := s.Store.Memberships().GetMembership(ctx, businessID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Membership{}, ErrNotAssociated
		}
		return domain.Membership{}, err
	}
	return m, nil
}
