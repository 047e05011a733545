// Package services holds the stateless credential rules of the identity
// context. They operate on domain types only; hashing is behind PasswordHasher.
package services

import (
	"github.com/ghuser/stockledger/pkg/validator"
	"github.com/ghuser/stockledger/services/identity/domain"
	"github.com/ghuser/stockledger/services/identity/domain/models"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 8

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// AuthorizeLogin decides the outcome of a login attempt once the password has
// been checked. The password is always verified first so that a pending
// account is only disclosed to someone who knows its password.
func AuthorizeLogin(u *models.User, passwordOK bool) error {
	if u == nil || !passwordOK || !u.IsActive {
		return domain.ErrInvalidCredentials
	}
	switch u.Status {
	case models.StatusApproved:
		return nil
	case models.StatusPending:
		return domain.ErrAccountPending
	default:
		return domain.ErrInvalidCredentials
	}
}

// ValidateNewPassword checks length and confirmation. field names the request
// field that carries the new password.
func ValidateNewPassword(field, password, confirm string) error {
	errs := validator.FieldErrors{}
	if len(password) < MinPasswordLength {
		errs[field] = "Password must be at least 8 characters"
	}
	if password != confirm {
		errs["confirmPassword"] = "Passwords do not match"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
