package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vanishmail/internal/application/auth"
	"github.com/vanishmail/internal/pkg/validate"
	"github.com/vanishmail/internal/transport/http/middleware"
)

// AuthHandler handles signup, login and password-reset endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "account created", AuthData{User: res.User, Token: res.Token})
}

func (h *AuthHandler) RequestSignupOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	warning, err := h.svc.RequestSignupOTP(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	var data interface{}
	if warning != "" {
		data = map[string]string{"warning": warning}
	}
	writeOK(w, http.StatusOK, "verification code sent", data)
}

func (h *AuthHandler) VerifySignupOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifySignupOTP(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "account created", AuthData{User: res.User, Token: res.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "logged in", AuthData{User: res.User, Token: res.Token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeOK(w, http.StatusOK, "", u)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !decode(w, r, &req) {
		return
	}
	warning, err := h.svc.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	var data interface{}
	if warning != "" {
		data = map[string]string{"warning": warning}
	}
	// Same message whether or not the email is registered.
	writeOK(w, http.StatusOK, "if the email is registered, a reset code has been sent", data)
}

func (h *AuthHandler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyResetOTP(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "code verified", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "password updated", nil)
}

// decode parses and validates a JSON request body, writing the error response
// itself when the body is malformed or fails validation.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		httpError(w, err)
		return false
	}
	return true
}
