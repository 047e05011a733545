package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/validator"
	"github.com/ghuser/stockledger/services/identity/domain/models"
)

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	UserID          string `json:"userId"          validate:"required,userid"         example:"123456"`
	Email           string `json:"email"           validate:"required,mail,max=254"   example:"asha@example.org"`
	Phone           string `json:"phone"           validate:"omitempty,phone10"       example:"9876543210"`
	Name            string `json:"name"            validate:"required,max=100"        example:"Asha Rao"`
	Designation     string `json:"designation"     validate:"required,max=100"        example:"Scientist B"`
	Cadre           string `json:"cadre"           validate:"required,cadre"          example:"drds"`
	Group           string `json:"group"           validate:"required,group"          example:"IT"`
	EmploymentType  string `json:"employmentType"  validate:"required,employment"     example:"permanent"`
	Gender          string `json:"gender"          validate:"omitempty,gender"        example:"female"`
	DOB             string `json:"dob"             validate:"omitempty,isodate"       example:"1990-04-01"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
} // @name RegisterRequest

func (req *RegisterRequest) registration() models.Registration {
	reg := models.Registration{
		UserID:         req.UserID,
		Email:          req.Email,
		Name:           req.Name,
		Designation:    req.Designation,
		Cadre:          req.Cadre,
		Group:          req.Group,
		EmploymentType: req.EmploymentType,
	}
	if req.Phone != "" {
		reg.Phone = &req.Phone
	}
	if req.Gender != "" {
		reg.Gender = &req.Gender
	}
	if req.DOB != "" {
		// format already checked by the isodate tag
		if dob, err := time.Parse(validator.DateLayout, req.DOB); err == nil {
			reg.DOB = &dob
		}
	}
	return reg
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	UserID     string `json:"userId"     validate:"required" example:"123456"`
	Password   string `json:"password"   validate:"required"`
	RememberMe bool   `json:"rememberMe"`
} // @name LoginRequest

// ProfileRequest is the request body for PUT /profile.
type ProfileRequest struct {
	Designation     string `json:"designation"     validate:"required,max=100" example:"Scientist C"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
} // @name ProfileRequest

// StatusRequest is the request body for PUT /admin/users/{id}/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,acctstatus" example:"approved"`
} // @name StatusRequest

// RoleRequest is the request body for PUT /admin/users/{id}/role.
type RoleRequest struct {
	Role string `json:"role" validate:"required,role" example:"inventory_holder"`
} // @name RoleRequest

// SettingsRequest is the request body for POST /admin/settings.
type SettingsRequest struct {
	Type     string         `json:"type"     validate:"required,max=50" example:"security"`
	Settings map[string]any `json:"settings" validate:"required"`
} // @name SettingsRequest

// UserResponse is the public view of an account. It never carries the
// password hash.
type UserResponse struct {
	ID             uuid.UUID `json:"id"             example:"123e4567-e89b-12d3-a456-426614174000"`
	UserID         string    `json:"userId"         example:"123456"`
	Email          string    `json:"email"          example:"asha@example.org"`
	Phone          *string   `json:"phone"`
	Name           string    `json:"name"           example:"Asha Rao"`
	Designation    string    `json:"designation"    example:"Scientist B"`
	Cadre          string    `json:"cadre"          example:"drds"`
	Group          string    `json:"group"          example:"IT"`
	EmploymentType string    `json:"employmentType" example:"permanent"`
	Gender         *string   `json:"gender"`
	DOB            *string   `json:"dob"`
	Role           string    `json:"role"           example:"user"`
	Status         string    `json:"status"         example:"pending"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
} // @name UserResponse

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		UserID:         u.UserID,
		Email:          u.Email,
		Phone:          u.Phone,
		Name:           u.Name,
		Designation:    u.Designation,
		Cadre:          u.Cadre,
		Group:          u.Group,
		EmploymentType: u.EmploymentType,
		Gender:         u.Gender,
		Role:           string(u.Role),
		Status:         string(u.Status),
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.DOB != nil {
		dob := u.DOB.Format(validator.DateLayout)
		resp.DOB = &dob
	}
	return resp
}

func toUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

// UserEnvelope wraps a single account.
type UserEnvelope struct {
	User UserResponse `json:"user"`
} // @name UserEnvelope

// UsersEnvelope wraps a list of accounts.
type UsersEnvelope struct {
	Users []UserResponse `json:"users"`
} // @name UsersEnvelope

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
} // @name SuccessResponse

// ExistsResponse answers a uniqueness check.
type ExistsResponse struct {
	Exists bool `json:"exists"`
} // @name ExistsResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error  string            `json:"error"            example:"Validation failed"`
	Fields map[string]string `json:"fields,omitempty"`
} // @name ErrorResponse
