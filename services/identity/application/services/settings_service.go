package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/validator"
)

// ErrSettingsUnavailable is returned when no override store is configured.
var ErrSettingsUnavailable = errors.New("settings store unavailable")

// SettingsStore persists override sections as raw JSON objects.
type SettingsStore interface {
	All(ctx context.Context) (map[string]json.RawMessage, error)
	Save(ctx context.Context, section string, settings json.RawMessage) error
}

// Settings is the admin settings view: configured defaults plus any saved
// override sections.
type Settings struct {
	UserRegistration       string                     `json:"userRegistration"`
	DefaultUserRole        string                     `json:"defaultUserRole"`
	ItemExpiryNotification string                     `json:"itemExpiryNotification"`
	ExpiryWarningDays      int                        `json:"expiryWarningDays"`
	PasswordPolicy         string                     `json:"passwordPolicy"`
	LoginAttempts          int                        `json:"loginAttempts"`
	Saved                  map[string]json.RawMessage `json:"saved,omitempty"`
}

// SettingsService serves and stores admin settings.
type SettingsService struct {
	defaults Settings
	store    SettingsStore
	log      logger.Logger
}

// NewSettingsService returns a SettingsService. store may be nil, in which
// case only the defaults are served.
func NewSettingsService(defaults Settings, store SettingsStore, log logger.Logger) *SettingsService {
	return &SettingsService{defaults: defaults, store: store, log: log}
}

// Get returns the defaults merged with saved sections.
func (s *SettingsService) Get(ctx context.Context) (Settings, error) {
	out := s.defaults
	if s.store == nil {
		return out, nil
	}
	saved, err := s.store.All(ctx)
	if err != nil {
		return Settings{}, err
	}
	if len(saved) > 0 {
		out.Saved = saved
	}
	return out, nil
}

// Save stores one override section. The payload must be a JSON object.
func (s *SettingsService) Save(ctx context.Context, actor auth.Principal, section string, settings json.RawMessage) error {
	section = strings.TrimSpace(section)
	errs := validator.FieldErrors{}
	if section == "" {
		errs["type"] = "This field is required"
	}
	var obj map[string]any
	if err := json.Unmarshal(settings, &obj); err != nil || obj == nil {
		errs["settings"] = "Must be a JSON object"
	}
	if len(errs) > 0 {
		return errs
	}
	if s.store == nil {
		return ErrSettingsUnavailable
	}
	if err := s.store.Save(ctx, section, settings); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "settings saved", "section", section, "actor", actor.UserID)
	return nil
}
