package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Behnamfe76/contacts-directory/internal/config"
)

// PasswordHasher turns a plaintext password into its stored form and checks candidates against it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(stored, plain string) bool
}

// NewPasswordHasher returns the hasher for the configured scheme.
func NewPasswordHasher(scheme string, bcryptCost int) (PasswordHasher, error) {
	switch scheme {
	case config.PasswordSchemeBcrypt, "":
		return BcryptHasher{Cost: bcryptCost}, nil
	case config.PasswordSchemePlain:
		return PlainHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// BcryptHasher stores salted bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return HashPassword(plain, cost)
}

func (h BcryptHasher) Matches(stored, plain string) bool {
	return ComparePassword(stored, plain) == nil
}

// PlainHasher keeps passwords as cleartext for databases migrated from the legacy service.
type PlainHasher struct{}

func (PlainHasher) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlainHasher) Matches(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}
