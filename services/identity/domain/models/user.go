package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/catalog"
)

// Role is the authorization level of an account.
type Role string

// Account roles.
const (
	RoleUser            Role = catalog.RoleUser
	RoleInventoryHolder Role = catalog.RoleInventoryHolder
	RoleAdmin           Role = catalog.RoleAdmin
)

// Status is the approval state of an account.
type Status string

// Approval states. Any state can be set from any other by an admin.
const (
	StatusPending  Status = catalog.StatusPending
	StatusApproved Status = catalog.StatusApproved
	StatusRejected Status = catalog.StatusRejected
)

// User is the account aggregate. PasswordHash never leaves the identity context.
type User struct {
	ID             uuid.UUID
	UserID         string // 6-digit employee number, unique
	Email          string
	Phone          *string
	Name           string
	Designation    string
	Cadre          string
	Group          string
	EmploymentType string
	Gender         *string
	DOB            *time.Time
	Role           Role
	Status         Status
	IsActive       bool
	PasswordHash   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Registration carries the validated self-registration fields.
type Registration struct {
	UserID         string
	Email          string
	Phone          *string
	Name           string
	Designation    string
	Cadre          string
	Group          string
	EmploymentType string
	Gender         *string
	DOB            *time.Time
}

// NewUser builds a pending, active account with the user role. Requested roles
// are never honoured at registration.
func NewUser(reg Registration, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:             uuid.New(),
		UserID:         reg.UserID,
		Email:          reg.Email,
		Phone:          reg.Phone,
		Name:           reg.Name,
		Designation:    reg.Designation,
		Cadre:          reg.Cadre,
		Group:          reg.Group,
		EmploymentType: reg.EmploymentType,
		Gender:         reg.Gender,
		DOB:            reg.DOB,
		Role:           RoleUser,
		Status:         StatusPending,
		IsActive:       true,
		PasswordHash:   passwordHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsApproved reports whether the account may hold a session.
func (u *User) IsApproved() bool {
	return u.Status == StatusApproved && u.IsActive
}

// Summary is the display projection other contexts may see.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
	Group       string    `json:"group"`
}

// Summary projects the account onto its display fields.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, UserID: u.UserID, Name: u.Name, Designation: u.Designation, Group: u.Group}
}
