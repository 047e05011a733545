package errhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/validator"
	identity "github.com/ghuser/stockledger/services/identity/domain"
	inventory "github.com/ghuser/stockledger/services/inventory/domain"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func write(t *testing.T, err error, log logger.Logger) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodGet, "/api/x", http.NoBody), log, err)
	var body errorBody
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("response body is not valid JSON: %v", decodeErr)
	}
	return w, body
}

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"field errors", validator.Field("userId", "Must be exactly 6 digits"), http.StatusUnprocessableEntity},
		{"duplicate user", &identity.DuplicateError{Field: "email"}, http.StatusConflict},
		{"duplicate ledger", &inventory.DuplicateError{Field: "ledgerNo"}, http.StatusConflict},
		{"invalid transition", inventory.ErrInvalidTransition, http.StatusConflict},
		{"invalid credentials", identity.ErrInvalidCredentials, http.StatusUnauthorized},
		{"pending account", identity.ErrAccountPending, http.StatusUnauthorized},
		{"incorrect password", identity.ErrIncorrectPassword, http.StatusUnauthorized},
		{"unauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", inventory.ErrForbidden, http.StatusForbidden},
		{"registration closed", identity.ErrRegistrationClosed, http.StatusForbidden},
		{"wrapped user not found", fmt.Errorf("get user: %w", identity.ErrUserNotFound), http.StatusNotFound},
		{"wrapped item not found", fmt.Errorf("get item: %w", inventory.ErrItemNotFound), http.StatusNotFound},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := write(t, tt.err, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := Status(tt.err); got != tt.wantStatus {
				t.Fatalf("Status: expected %d, got %d", tt.wantStatus, got)
			}
		})
	}
}

func TestWriteError_FieldsInBody(t *testing.T) {
	_, body := write(t, fmt.Errorf("register: %w", &identity.DuplicateError{Field: "userId"}), nil)
	if body.Fields["userId"] != "User ID already exists" {
		t.Fatalf("expected userId field, got %+v", body)
	}

	_, body = write(t, validator.FieldErrors{"quantity": "Must be greater than or equal to 0"}, nil)
	if body.Error != "Validation failed" || body.Fields["quantity"] == "" {
		t.Fatalf("unexpected validation body %+v", body)
	}
}

func TestWriteError_PendingMessage(t *testing.T) {
	_, body := write(t, fmt.Errorf("login: %w", identity.ErrAccountPending), nil)
	if body.Error != "Your account is pending approval" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestWriteError_InternalErrorIsGenericAndLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&config.Config{LogLevel: "info"}, &buf)

	_, body := write(t, errors.New("pq: relation \"items\" does not exist"), log)
	if body.Error != "internal server error" {
		t.Fatalf("expected generic message, got %q", body.Error)
	}
	if !strings.Contains(buf.String(), "relation") {
		t.Fatal("cause must be logged")
	}
}
