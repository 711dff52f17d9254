package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/identity"
)

// credentials is the register/login request body.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler handles account endpoints.
type AuthHandler struct {
	accounts *identity.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts *identity.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterRoutes registers account routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

// Register creates an account. The duplicate-username case is reported as a
// 200 with an error message, matching the frontend contract.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Register(r.Context(), creds.Username, creds.Password)
	switch {
	case err == nil:
		JSON(w, http.StatusOK, map[string]string{"user_id": user.ID})
	case errors.Is(err, identity.ErrUsernameTaken), errors.Is(err, identity.ErrMissingCredentials):
		JSON(w, http.StatusOK, map[string]string{"error": "Username đã tồn tại"})
	default:
		slog.Error("Registration failed", "username", creds.Username, "error", err)
		Error(w, http.StatusInternalServerError, "Đã xảy ra lỗi khi đăng ký")
	}
}

// Login verifies credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Login(r.Context(), creds.Username, creds.Password)
	switch {
	case err == nil:
		JSON(w, http.StatusOK, map[string]string{"user_id": user.ID})
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrMissingCredentials):
		JSON(w, http.StatusOK, map[string]string{"error": "Sai tài khoản hoặc mật khẩu"})
	default:
		slog.Error("Login failed", "username", creds.Username, "error", err)
		Error(w, http.StatusInternalServerError, "Đã xảy ra lỗi khi đăng nhập")
	}
}
