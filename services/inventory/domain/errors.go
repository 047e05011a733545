package domain

import "errors"

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates the ledger number is already in use.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrInvalidTransition indicates the operation is not allowed from the
	// item's current status (deleted and condemned are terminal).
	ErrInvalidTransition = errors.New("operation not allowed in current item status")

	// ErrForbidden indicates the caller lacks the role or ownership required.
	ErrForbidden = errors.New("access denied")
)

// DuplicateError reports which unique item field collided.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return ErrItemAlreadyExists.Error() + ": " + e.Field
}

// Is lets errors.Is(err, ErrItemAlreadyExists) match.
func (e *DuplicateError) Is(target error) bool { return target == ErrItemAlreadyExists }

// Fields returns the per-field message used in API responses.
func (e *DuplicateError) Fields() map[string]string {
	return map[string]string{e.Field: "Ledger number already exists"}
}
