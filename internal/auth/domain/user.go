package domain

import "time"

type User struct {
	ID             string
	Username       string
	Email          string
	EmailConfirmed bool
	PasswordHash   string  // argon2 encoded
	ActiveBusiness *string // Business the user currently operates as (nullable)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
