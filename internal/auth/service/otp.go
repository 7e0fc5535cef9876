package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/harborline/bms/internal/auth/cache"
	"github.com/harborline/bms/pkg/cryptox"
)

// OTP purposes. Codes for different purposes never collide: confirming an
// email cannot redeem a reset code issued to the same address.
const (
	OTPPurposeConfirm = "confirm"
	OTPPurposeReset   = "reset"
	OTPPurposeDelete  = "delete"
)

const (
	// DefaultOTPTTL is how long a passcode stays redeemable.
	DefaultOTPTTL = 10 * time.Minute

	// otpDigits is the passcode length. Six digits at five attempts per
	// rate-limit window keeps brute force impractical within the TTL.
	otpDigits = 6
)

// OTPService issues and verifies one-time passcodes keyed by purpose and
// email address. Issuing a new code for the same purpose+email overwrites
// the previous one and resets its TTL.
type OTPService struct {
	Cache cache.Cache
	TTL   time.Duration
}

func NewOTPService(c cache.Cache, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPService{Cache: c, TTL: ttl}
}

// Issue generates a fresh six-digit code and stores it under purpose+email.
func (s *OTPService) Issue(ctx context.Context, purpose, email string) (string, error) {
	code, err := cryptox.GenerateNumericCode(otpDigits)
	if err != nil {
		return "", err
	}
	if err := s.Cache.Set(ctx, otpKey(purpose, email), code, s.TTL); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks a submitted code and consumes it on success. Wrong codes do
// not consume the stored one; the user can retry until the TTL elapses.
func (s *OTPService) Verify(ctx context.Context, purpose, email, code string) error {
	stored, err := s.Cache.Get(ctx, otpKey(purpose, email))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return ErrInvalidOTP
		}
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidOTP
	}

	return s.Cache.Delete(ctx, otpKey(purpose, email))
}

func otpKey(purpose, email string) string {
	return "otp:" + purpose + ":" + email
}
