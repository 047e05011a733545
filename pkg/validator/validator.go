package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/pkg/httpx"
)

// DateLayout is the wire format for calendar dates (procurement date, dob).
const DateLayout = "2006-01-02"

// ErrValidation is matched (errors.Is) by every FieldErrors value.
var ErrValidation = errors.New("validation failed")

// FieldErrors maps a request field (JSON name) to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (fe FieldErrors) Is(target error) bool { return target == ErrValidation }

// Fields returns the per-field messages.
func (fe FieldErrors) Fields() map[string]string { return fe }

// Field builds a single-field FieldErrors.
func Field(name, message string) FieldErrors {
	return FieldErrors{name: message}
}

var (
	userIDPattern   = regexp.MustCompile(`^\d{6}$`)
	phonePattern    = regexp.MustCompile(`^\d{10}$`)
	ledgerPattern   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	itemNamePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IsUserID reports whether s is a 6-digit user id.
func IsUserID(s string) bool { return userIDPattern.MatchString(s) }

// IsPhone reports whether s is a 10-digit phone number.
func IsPhone(s string) bool { return phonePattern.MatchString(s) }

// IsEmail reports whether s has the shape local@domain.tld.
func IsEmail(s string) bool { return emailPattern.MatchString(s) }

// IsLedgerNo reports whether s is a non-empty alphanumeric ledger number.
func IsLedgerNo(s string) bool { return ledgerPattern.MatchString(s) }

// IsItemName reports whether s contains only letters and spaces.
func IsItemName(s string) bool { return itemNamePattern.MatchString(s) }

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	stringRule := func(fn func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool { return fn(fl.Field().String()) }
	}
	rules := map[string]validator.Func{
		"userid":     stringRule(IsUserID),
		"phone10":    stringRule(IsPhone),
		"mail":       stringRule(IsEmail),
		"ledgerno":   stringRule(IsLedgerNo),
		"itemname":   stringRule(IsItemName),
		"group":      stringRule(catalog.IsGroup),
		"unit":       stringRule(catalog.IsUnit),
		"cadre":      stringRule(catalog.IsCadre),
		"employment": stringRule(catalog.IsEmploymentType),
		"gender":     stringRule(catalog.IsGender),
		"role":       stringRule(catalog.IsRole),
		"acctstatus": stringRule(catalog.IsAccountStatus),
		"isodate": stringRule(func(s string) bool {
			_, err := time.Parse(DateLayout, s)
			return err == nil
		}),
	}
	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
}

// Validate runs struct-level validation using go-playground/validator tags.
// Tag failures are returned as FieldErrors.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return FormatValidationErrors(err)
	}
	return err
}

// FormatValidationErrors converts validator.ValidationErrors (or FieldErrors)
// into a map of field name → human-readable message.
func FormatValidationErrors(err error) FieldErrors {
	errs := make(FieldErrors)
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "email", "mail":
		return "Must be a valid email address"
	case "eqfield":
		return "Does not match"
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", e.Param())
	case "userid":
		return "Must be exactly 6 digits"
	case "phone10":
		return "Must be exactly 10 digits"
	case "ledgerno":
		return "Ledger number must be alphanumeric"
	case "itemname":
		return "Item name must contain only letters and spaces"
	case "group":
		return "Unknown group"
	case "unit":
		return "Unknown unit"
	case "cadre":
		return "Unknown cadre"
	case "employment":
		return "Must be permanent or temporary"
	case "gender":
		return "Must be male, female or other"
	case "role":
		return "Must be user, inventory_holder or admin"
	case "acctstatus":
		return "Must be pending, approved or rejected"
	case "isodate":
		return "Must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// ValidateRequest decodes the JSON request body into T, validates it, and
// writes an appropriate error response if either step fails.
// Returns (parsedStruct, true) on success or (nil, false) on failure.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Validation failed",
			"fields": FormatValidationErrors(err),
		})
		return nil, false
	}
	return &req, true
}
