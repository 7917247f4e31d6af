package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role represents a user's role within the storefront.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// RoleFromString parses a stored role value. Anything unrecognised, including
// the empty string, degrades to customer so a malformed record can never
// grant admin access.
func RoleFromString(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

type User struct {
	ID           string    `json:"id,omitempty"`    // Unique identifier for the user
	Email        string    `json:"email,omitempty"` // User's email address, the lookup key for session resolution
	Role         Role      `json:"role,omitempty"`  // customer or admin
	PasswordHash string    `json:"-"`               // Hashed version of the user's password - never serialize
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// HashPassword generates a bcrypt hash from a plaintext password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
