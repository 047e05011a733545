package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/identity/application/services"
)

// AuthHandler serves registration, login, logout and the caller's own account.
type AuthHandler struct {
	svc      *appsvcs.Services
	sessions *auth.SessionManager
	log      logger.Logger
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(svc *appsvcs.Services, sessions *auth.SessionManager, log logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, log: log}
}

// Register creates a pending account.
//
//	@Summary		Register
//	@Description	Self-registration. The account starts pending with the user role.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration"
//	@Success		201		{object}	SuccessResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RegisterRequest](w, r)
	if !ok {
		return
	}
	_, err := h.svc.Accounts.Register(r.Context(), appsvcs.RegisterInput{
		Registration:    req.registration(),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Registration successful! Please wait for admin approval.",
	})
}

// Login verifies credentials and starts a session.
//
//	@Summary		Login
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	UserEnvelope
//	@Failure		401		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Accounts.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	if err := h.sessions.Login(w, r, appsvcs.PrincipalOf(u), req.RememberMe); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	h.log.InfoContext(r.Context(), "user logged in", "user_id", u.UserID, "remember_me", req.RememberMe)
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(u)})
}

// Logout ends the session.
//
//	@Summary	Logout
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	SuccessResponse
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Check reports whether a unique account field is taken.
//
//	@Summary	Check uniqueness
//	@Tags		auth
//	@Produce	json
//	@Param		field	path		string	true	"userId, email or phone"
//	@Param		value	query		string	true	"Value to check"
//	@Success	200		{object}	ExistsResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/auth/check/{field} [get]
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.Accounts.CheckUnique(r.Context(), chi.URLParam(r, "field"), r.URL.Query().Get("value"))
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ExistsResponse{Exists: exists})
}

// Me returns the caller's account and brings the session's role and group up
// to date with the store.
//
//	@Summary	Current user
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	UserEnvelope
//	@Failure	401	{object}	ErrorResponse
//	@Router		/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	current, err := h.svc.Directory.ResolvePrincipal(r.Context(), p.ID)
	if errors.Is(err, auth.ErrPrincipalRevoked) {
		_ = h.sessions.Logout(w, r)
		errhttp.WriteError(w, r, h.log, auth.ErrUnauthenticated)
		return
	}
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	if current != p {
		if err := h.sessions.Update(w, r, current); err != nil {
			h.log.WarnContext(r.Context(), "session refresh failed", "error", err)
		}
	}

	u, err := h.svc.Accounts.Me(r.Context(), current)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(u)})
}

// UpdateProfile changes the caller's designation and optionally password.
//
//	@Summary	Update profile
//	@Tags		profile
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ProfileRequest	true	"Profile"
//	@Success	200		{object}	UserEnvelope
//	@Failure	401		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ProfileRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Accounts.UpdateProfile(r.Context(), p, appsvcs.ProfileUpdate{
		Designation:     req.Designation,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(u)})
}
