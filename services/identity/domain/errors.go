package domain

import "errors"

// Sentinel errors for the identity domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a unique account field is already taken.
	// Returned wrapped in a *DuplicateError naming the field.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials covers unknown user id, wrong password and
	// accounts that were rejected or deactivated.
	ErrInvalidCredentials = errors.New("invalid user id or password")

	// ErrAccountPending is returned for a correct password on an account
	// that has not been approved yet.
	ErrAccountPending = errors.New("account pending approval")

	// ErrIncorrectPassword indicates the current password given for a
	// password change does not match.
	ErrIncorrectPassword = errors.New("current password is incorrect")

	// ErrRegistrationClosed is returned when self-registration is disabled.
	ErrRegistrationClosed = errors.New("registration is closed")
)

// DuplicateError reports which unique field collided.
type DuplicateError struct {
	Field string // userId, email or phone
}

func (e *DuplicateError) Error() string {
	return ErrUserAlreadyExists.Error() + ": " + e.Field
}

// Is lets errors.Is(err, ErrUserAlreadyExists) match.
func (e *DuplicateError) Is(target error) bool { return target == ErrUserAlreadyExists }

// Fields returns the per-field message used in API responses.
func (e *DuplicateError) Fields() map[string]string {
	return map[string]string{e.Field: duplicateMessages[e.Field]}
}

var duplicateMessages = map[string]string{
	"userId": "User ID already exists",
	"email":  "Email already exists",
	"phone":  "Phone number already exists",
}
