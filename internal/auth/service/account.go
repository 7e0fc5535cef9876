package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/email"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/cryptox"
	"github.com/harborline/bms/pkg/idx"
	"github.com/harborline/bms/pkg/jwtx"
	"github.com/harborline/bms/pkg/slogx"
)

var (
	usernameRe = regexp.MustCompile(`^[^\s]{3,50}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const minPasswordLength = 8

var (
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrWeakPassword    = errors.New("weak_password")
)

// AccountService orchestrates the account lifecycle: registration, email
// confirmation, login, logout, password recovery, and deletion.
type AccountService struct {
	Store  store.Store
	Tokens *TokenService
	OTP    *OTPService
	Email  email.Sender
}

// Register creates an unconfirmed account and emails a confirmation code.
// The account cannot log in until the code is redeemed.
func (s *AccountService) Register(ctx context.Context, username, emailAddr, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if !usernameRe.MatchString(username) {
		return domain.User{}, ErrInvalidUsername
	}
	if !emailRe.MatchString(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrAccountExists
		}
		return domain.User{}, err
	}

	code, err := s.OTP.Issue(ctx, OTPPurposeConfirm, emailAddr)
	if err != nil {
		return domain.User{}, err
	}

	subject, body := email.ConfirmationBody(username, code)
	if err := s.Email.Send(ctx, emailAddr, subject, body); err != nil {
		// The account exists; the user can request a fresh code.
		l.Error("confirmation email delivery failed",
			slog.String("user_id", user.ID), slog.Any("err", err))
	}

	l.Info("account registered", slog.String("user_id", user.ID))
	return user, nil
}

// ResendConfirmation issues a fresh confirmation code for an unconfirmed
// account. Confirmed or unknown addresses get the same silent success so the
// endpoint cannot be used to probe for accounts.
func (s *AccountService) ResendConfirmation(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.Store.Users().GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.EmailConfirmed {
		return nil
	}

	code, err := s.OTP.Issue(ctx, OTPPurposeConfirm, emailAddr)
	if err != nil {
		return err
	}
	subject, body := email.ConfirmationBody(user.Username, code)
	return s.Email.Send(ctx, emailAddr, subject, body)
}

// ConfirmEmail redeems a confirmation code and activates the account.
func (s *AccountService) ConfirmEmail(ctx context.Context, emailAddr, code string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if err := s.OTP.Verify(ctx, OTPPurposeConfirm, emailAddr, code); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	return s.Store.Users().ConfirmEmail(ctx, user.ID)
}

// Login authenticates by username or email (an identifier containing "@" is
// treated as an email) and issues a token pair. Unknown accounts and
// unconfirmed accounts are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (domain.User, *domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	identifier = strings.TrimSpace(identifier)

	var (
		user domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.Store.Users().GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.Store.Users().GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, nil, ErrUnknownAccount
		}
		return domain.User{}, nil, err
	}

	if !user.EmailConfirmed {
		return domain.User{}, nil, ErrUnknownAccount
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		l.Info("login rejected: bad password", slog.String("user_id", user.ID))
		return domain.User{}, nil, ErrInvalidPassword
	}

	pair, err := s.Tokens.IssuePair(ctx, user)
	if err != nil {
		return domain.User{}, nil, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))
	return user, pair, nil
}

// Logout blacklists the presented access token and retires one live refresh
// session for the user.
func (s *AccountService) Logout(ctx context.Context, userID, rawAccess string, claims jwtx.Claims) error {
	if err := s.Tokens.RevokeAccess(ctx, rawAccess, claims); err != nil {
		return err
	}
	return s.Tokens.RetireOneSession(ctx, userID)
}

// ForgotPassword issues a reset code when the address belongs to an account.
// The caller always gets the same answer, whether or not the account exists.
func (s *AccountService) ForgotPassword(ctx context.Context, emailAddr string) error {
	l := slogx.FromContext(ctx)

	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.Store.Users().GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	code, err := s.OTP.Issue(ctx, OTPPurposeReset, emailAddr)
	if err != nil {
		return err
	}

	subject, body := email.PasswordResetBody(user.Username, code)
	if err := s.Email.Send(ctx, emailAddr, subject, body); err != nil {
		l.Error("reset email delivery failed",
			slog.String("user_id", user.ID), slog.Any("err", err))
	}
	return nil
}

// ResetPassword redeems a reset code, sets the new password, and revokes
// every open session.
func (s *AccountService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	if err := s.OTP.Verify(ctx, OTPPurposeReset, emailAddr, code); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	return s.Tokens.RetireAllSessions(ctx, user.ID)
}

// ChangePassword verifies the current password and replaces it, revoking
// every open session.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if cryptox.VerifyPassword(current, user.PasswordHash) != nil {
		return ErrInvalidPassword
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	return s.Tokens.RetireAllSessions(ctx, userID)
}

// RequestAccountDeletion mails a fresh deletion code to the caller's own
// address. Deletion is a step-up operation: holding a live access token is
// not enough, the mailbox must confirm it.
func (s *AccountService) RequestAccountDeletion(ctx context.Context, userID string) error {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	code, err := s.OTP.Issue(ctx, OTPPurposeDelete, user.Email)
	if err != nil {
		return err
	}

	subject, body := email.AccountDeletionBody(user.Username, code)
	if err := s.Email.Send(ctx, user.Email, subject, body); err != nil {
		l.Error("deletion email delivery failed",
			slog.String("user_id", userID), slog.Any("err", err))
		return err
	}
	return nil
}

// DeleteAccount redeems a deletion code and removes the user (memberships
// and refresh tokens cascade), then blacklists the presented access token.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, code, rawAccess string, claims jwtx.Claims) error {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.OTP.Verify(ctx, OTPPurposeDelete, user.Email, code); err != nil {
		return err
	}

	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return err
	}

	l.Info("account deleted", slog.String("user_id", userID))
	return s.Tokens.RevokeAccess(ctx, rawAccess, claims)
}

// Profile returns the account record for an authenticated user.
func (s *AccountService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UsernameAvailable reports whether a username can still be registered.
func (s *AccountService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if !usernameRe.MatchString(username) {
		return false, nil
	}
	exists, err := s.Store.Users().UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
