// Package errhttp maps domain errors to HTTP responses.
// Add a row to rules for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/validator"
	identity "github.com/ghuser/stockledger/services/identity/domain"
	inventory "github.com/ghuser/stockledger/services/inventory/domain"
)

type rule struct {
	target  error
	status  int
	message string
}

// rules are matched in order with errors.Is.
var rules = []rule{
	{validator.ErrValidation, http.StatusUnprocessableEntity, "Validation failed"},
	{identity.ErrUserAlreadyExists, http.StatusConflict, "User already exists"},
	{inventory.ErrItemAlreadyExists, http.StatusConflict, "Ledger number already exists"},
	{inventory.ErrInvalidTransition, http.StatusConflict, "Operation not allowed for the item's current status"},
	{identity.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid user ID or password"},
	{identity.ErrAccountPending, http.StatusUnauthorized, "Your account is pending approval"},
	{identity.ErrIncorrectPassword, http.StatusUnauthorized, "Current password is incorrect"},
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "Authentication required"},
	{inventory.ErrForbidden, http.StatusForbidden, "Access denied"},
	{identity.ErrRegistrationClosed, http.StatusForbidden, "Registration is currently disabled"},
	{identity.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{inventory.ErrItemNotFound, http.StatusNotFound, "Item not found"},
}

// fielder is implemented by validator.FieldErrors and the domain DuplicateErrors.
type fielder interface {
	Fields() map[string]string
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Field-level errors are written as {"error", "fields"}. Unrecognized errors
// become a generic 500 and are logged with the request context.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	for _, rl := range rules {
		if !errors.Is(err, rl.target) {
			continue
		}
		var fe fielder
		if errors.As(err, &fe) {
			httpx.JSONFields(w, rl.status, rl.message, fe.Fields())
			return
		}
		httpx.JSONError(w, rl.status, rl.message)
		return
	}

	if log != nil {
		log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal server error")
}

// Status returns the HTTP status WriteError would use for err.
func Status(err error) int {
	for _, rl := range rules {
		if errors.Is(err, rl.target) {
			return rl.status
		}
	}
	return http.StatusInternalServerError
}
