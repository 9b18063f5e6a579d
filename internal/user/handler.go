package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/dchesnokov/inkwell/pkg/middleware"
	"github.com/dchesnokov/inkwell/pkg/response"
)

// Handler handles HTTP requests for account operations
type Handler struct {
	service *Service
	store   sessions.Store
}

// NewHandler creates a new user handler
func NewHandler(service *Service, store sessions.Store) *Handler {
	return &Handler{service: service, store: store}
}

// Routes returns the router for auth endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/password/change", h.ChangePassword)
	r.Post("/password/reset", h.RequestPasswordReset)
	r.Post("/password/reset/confirm", h.ConfirmPasswordReset)

	return r
}

// Signup handles POST /auth/signup
// @Summary      Create an account
// @Description  Register a new account and start a login session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup request"
// @Success      201 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, nil, verr.Fields)
			return
		}
		if errors.Is(err, ErrUsernameAlreadyInUse) || errors.Is(err, ErrEmailAlreadyInUse) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create account")
		return
	}

	if err := middleware.SignIn(w, r, h.store, user.ID); err != nil {
		response.InternalError(w, "Failed to start session")
		return
	}

	response.JSON(w, http.StatusCreated, user.ToResponse())
}

// LoginForm handles GET /auth/login, the target of authorization redirects
// @Summary      Describe the login form
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=LoginFormResponse}
// @Router       /auth/login [get]
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, &LoginFormResponse{})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	if err := middleware.SignIn(w, r, h.store, user.ID); err != nil {
		response.InternalError(w, "Failed to start session")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := middleware.SignOut(w, r, h.store); err != nil {
		response.InternalError(w, "Failed to end session")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ChangePassword handles POST /auth/password/change
// @Summary      Change password
// @Description  Verify the current password and replace it
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /auth/password/change [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, nil, verr.Fields)
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to change password")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

// RequestPasswordReset handles POST /auth/password/reset
// @Summary      Request a password reset
// @Description  Always answers 200; a token is issued only for known emails
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset request"
// @Success      200 {object} response.APIResponse
// @Router       /auth/password/reset [post]
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	token, err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		response.InternalError(w, "Failed to request password reset")
		return
	}

	// Email delivery is outside this service; surface the token to the
	// operator log for now.
	if token != "" {
		log.Printf("password reset token issued for %s: %s", req.Email, token)
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": "If the email is registered, a reset token has been issued",
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm
// @Summary      Complete a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ConfirmResetRequest true "Reset confirmation"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /auth/password/reset/confirm [post]
func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ConfirmResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(w, nil, verr.Fields)
			return
		}
		if errors.Is(err, ErrInvalidResetToken) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to reset password")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Password reset"})
}
