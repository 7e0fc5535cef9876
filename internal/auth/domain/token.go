package domain

import "time"

// TokenPair represents what the token endpoints return: the short-lived
// access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until expiry
}

// RefreshToken models the stored refresh token record in the DB. Rotation
// never deletes a row; consumed tokens are flagged Used so replays of an old
// token are detectable.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt time.Time
	Used      bool
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Live reports whether the token can still be redeemed.
func (t RefreshToken) Live(now time.Time) bool {
	return !t.Used && !t.Revoked && now.Before(t.ExpiresAt)
}
