package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/validator"
	"github.com/ghuser/stockledger/services/identity/domain"
	"github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/identity/domain/repositories"
	domainsvcs "github.com/ghuser/stockledger/services/identity/domain/services"
)

// RegisterInput is a self-registration request after field validation.
type RegisterInput struct {
	models.Registration
	Password        string
	ConfirmPassword string
}

// ProfileUpdate carries a profile edit. The password fields are either all
// empty or describe a password change.
type ProfileUpdate struct {
	Designation     string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// wantsPasswordChange reports whether any password field was supplied.
func (u ProfileUpdate) wantsPasswordChange() bool {
	return u.CurrentPassword != "" || u.NewPassword != "" || u.ConfirmPassword != ""
}

// BootstrapAdmin describes the administrator account created on first start.
type BootstrapAdmin struct {
	UserID   string
	Email    string
	Password string
}

// AccountService covers registration, login and self-service profile edits.
type AccountService struct {
	repo                repositories.UserRepository
	hasher              domainsvcs.PasswordHasher
	log                 logger.Logger
	registrationEnabled bool
	logins              metric.Int64Counter
	registrations       metric.Int64Counter
}

// NewAccountService wires the service. registrationEnabled gates Register.
func NewAccountService(repo repositories.UserRepository, hasher domainsvcs.PasswordHasher, log logger.Logger, registrationEnabled bool) *AccountService {
	return &AccountService{
		repo:                repo,
		hasher:              hasher,
		log:                 log,
		registrationEnabled: registrationEnabled,
		logins:              counter("identity.logins", "Login attempts by outcome"),
		registrations:       counter("identity.registrations", "Accounts registered"),
	}
}

// NormalizeEmail trims and lowercases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a pending account with the user role. Uniqueness is checked
// up front so the caller gets every clash at once; the unique indexes still
// decide races.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !s.registrationEnabled {
		return nil, domain.ErrRegistrationClosed
	}
	if err := domainsvcs.ValidateNewPassword("password", in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	in.Email = NormalizeEmail(in.Email)

	if err := s.checkAvailable(ctx, in.Registration); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := models.NewUser(in.Registration, hash)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("group", u.Group)))
	s.log.InfoContext(ctx, "user registered", "user_id", u.UserID, "group", u.Group)
	return u, nil
}

type uniqueCheck struct {
	field repositories.UniqueField
	value string
}

func (s *AccountService) checkAvailable(ctx context.Context, reg models.Registration) error {
	checks := []uniqueCheck{
		{repositories.FieldUserID, reg.UserID},
		{repositories.FieldEmail, reg.Email},
	}
	if reg.Phone != nil {
		checks = append(checks, uniqueCheck{repositories.FieldPhone, *reg.Phone})
	}

	clashes := validator.FieldErrors{}
	for _, c := range checks {
		exists, err := s.repo.Exists(ctx, c.field, c.value)
		if err != nil {
			return err
		}
		if exists {
			dup := &domain.DuplicateError{Field: string(c.field)}
			clashes[dup.Field] = dup.Fields()[dup.Field]
		}
	}
	switch len(clashes) {
	case 0:
		return nil
	case 1:
		for field := range clashes {
			return &domain.DuplicateError{Field: field}
		}
	}
	return &duplicateFields{clashes}
}

// duplicateFields reports several unique clashes at once.
type duplicateFields struct {
	fields validator.FieldErrors
}

func (e *duplicateFields) Error() string { return domain.ErrUserAlreadyExists.Error() }

func (e *duplicateFields) Is(target error) bool { return target == domain.ErrUserAlreadyExists }

func (e *duplicateFields) Fields() map[string]string { return e.fields }

// Login verifies the password before disclosing anything about the account's
// approval state.
func (s *AccountService) Login(ctx context.Context, userID, password string) (*models.User, error) {
	u, err := s.repo.GetByUserID(ctx, strings.TrimSpace(userID))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	passwordOK := u != nil && s.hasher.Compare(u.PasswordHash, password)

	if err := domainsvcs.AuthorizeLogin(u, passwordOK); err != nil {
		s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
		s.log.WarnContext(ctx, "login rejected", "user_id", userID, "reason", err.Error())
		return nil, err
	}
	s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	return u, nil
}

func outcome(err error) string {
	if errors.Is(err, domain.ErrAccountPending) {
		return "pending"
	}
	return "invalid"
}

// CheckUnique validates value for field and reports whether it is taken.
func (s *AccountService) CheckUnique(ctx context.Context, field, value string) (bool, error) {
	value = strings.TrimSpace(value)
	var valid bool
	switch repositories.UniqueField(field) {
	case repositories.FieldUserID:
		valid = validator.IsUserID(value)
	case repositories.FieldEmail:
		value = NormalizeEmail(value)
		valid = validator.IsEmail(value)
	case repositories.FieldPhone:
		valid = validator.IsPhone(value)
	default:
		return false, validator.Field("field", "Must be userId, email or phone")
	}
	if !valid {
		return false, validator.Field(field, "Invalid format")
	}
	return s.repo.Exists(ctx, repositories.UniqueField(field), value)
}

// Me returns the caller's own account.
func (s *AccountService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	return s.repo.GetByID(ctx, p.ID)
}

// UpdateProfile changes the designation and, optionally, the password. Both
// are written by one statement.
func (s *AccountService) UpdateProfile(ctx context.Context, p auth.Principal, upd ProfileUpdate) (*models.User, error) {
	if strings.TrimSpace(upd.Designation) == "" {
		return nil, validator.Field("designation", "This field is required")
	}
	if upd.wantsPasswordChange() {
		if upd.CurrentPassword == "" {
			return nil, validator.Field("currentPassword", "This field is required")
		}
		if err := domainsvcs.ValidateNewPassword("newPassword", upd.NewPassword, upd.ConfirmPassword); err != nil {
			return nil, err
		}
	}

	u, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var newHash *string
	if upd.wantsPasswordChange() {
		if !s.hasher.Compare(u.PasswordHash, upd.CurrentPassword) {
			return nil, domain.ErrIncorrectPassword
		}
		hash, err := s.hasher.Hash(upd.NewPassword)
		if err != nil {
			return nil, err
		}
		newHash = &hash
	}

	if err := s.repo.UpdateProfile(ctx, u.ID, strings.TrimSpace(upd.Designation), newHash); err != nil {
		return nil, err
	}
	u.Designation = strings.TrimSpace(upd.Designation)
	if newHash != nil {
		u.PasswordHash = *newHash
		s.log.InfoContext(ctx, "password changed", "user_id", u.UserID)
	}
	u.UpdatedAt = time.Now().UTC()
	return u, nil
}

// EnsureBootstrapAdmin creates the approved administrator account if no
// account holds its user id. It reports whether an account was created.
func (s *AccountService) EnsureBootstrapAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	_, err := s.repo.GetByUserID(ctx, admin.UserID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return false, err
	}
	u := models.NewUser(models.Registration{
		UserID:         admin.UserID,
		Email:          NormalizeEmail(admin.Email),
		Name:           "System Admin",
		Designation:    "System Administrator",
		Cadre:          "admin",
		Group:          "ADMIN",
		EmploymentType: "permanent",
	}, hash)
	u.Role = models.RoleAdmin
	u.Status = models.StatusApproved

	if err := s.repo.Create(ctx, u); err != nil {
		// another instance won the race
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.log.InfoContext(ctx, "bootstrap admin created", "user_id", u.UserID)
	return true, nil
}
