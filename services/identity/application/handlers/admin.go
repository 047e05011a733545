package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/identity/application/services"
)

// AdminHandler serves account approval, role assignment and settings.
// Every route is behind the admin guard.
type AdminHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewAdminHandler returns an AdminHandler.
func NewAdminHandler(svc *appsvcs.Services, log logger.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

// ListUsers lists accounts, optionally filtered by status.
//
//	@Summary	List users
//	@Tags		admin
//	@Produce	json
//	@Param		status	query		string	false	"pending, approved or rejected"
//	@Success	200		{object}	UsersEnvelope
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Admin.ListUsers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UsersEnvelope{Users: toUserResponses(users)})
}

// GetUser returns one account.
//
//	@Summary	Get user
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Account id"
//	@Success	200	{object}	UserEnvelope
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		errhttp.WriteError(w, r, h.log, pkgvalidator.Field("id", "Must be a valid UUID"))
		return
	}
	u, err := h.svc.Admin.GetUser(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(u)})
}

// SetStatus approves, rejects or resets an account.
//
//	@Summary	Set account status
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Account id"
//	@Param		request	body		StatusRequest	true	"New status"
//	@Success	200		{object}	UserEnvelope
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/users/{id}/status [put]
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[StatusRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Admin.SetStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(u)})
}

// SetRole changes an account's role.
//
//	@Summary	Set account role
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Account id"
//	@Param		request	body		RoleRequest	true	"New role"
//	@Success	200		{object}	UserEnvelope
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/users/{id}/role [put]
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RoleRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Admin.SetRole(r.Context(), actor, id, req.Role)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(u)})
}

// DeleteUser hard deletes an account.
//
//	@Summary	Delete user
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Account id"
//	@Success	200	{object}	SuccessResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.svc.Admin.DeleteUser(r.Context(), actor, id); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "User deleted"})
}

// GetSettings returns the configured defaults and saved overrides.
//
//	@Summary	Get settings
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	services.Settings
//	@Router		/admin/settings [get]
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings.Get(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

// SaveSettings stores one override section.
//
//	@Summary	Save settings
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SettingsRequest	true	"Settings section"
//	@Success	200		{object}	SuccessResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/settings [post]
func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SettingsRequest](w, r)
	if !ok {
		return
	}
	raw, err := json.Marshal(req.Settings)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	if err := h.svc.Settings.Save(r.Context(), actor, req.Type, raw); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// target reads the acting admin and the {id} path parameter.
func (h *AdminHandler) target(w http.ResponseWriter, r *http.Request) (auth.Principal, uuid.UUID, bool) {
	actor, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return auth.Principal{}, uuid.Nil, false
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		errhttp.WriteError(w, r, h.log, pkgvalidator.Field("id", "Must be a valid UUID"))
		return auth.Principal{}, uuid.Nil, false
	}
	return actor, id, true
}
