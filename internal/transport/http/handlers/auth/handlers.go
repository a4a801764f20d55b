package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/api"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/middleware"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileResponse struct {
	User        auth.User `json:"user"`
	Dashboard   string    `json:"dashboard"`
	Permissions []string  `json:"permissions"`
}

func profile(user auth.User) profileResponse {
	return profileResponse{
		User:        user,
		Dashboard:   user.Role.Dashboard(),
		Permissions: auth.RolePermissions[user.Role],
	}
}

// handleLogin verifies credentials and returns the profile the client then
// identifies itself with through the viewer header.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Service.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
			return
		}
		slog.Error("login failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}
	slog.Info("login", "userId", user.ID, "role", user.Role)
	api.Success(w, profile(user), requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetViewer(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile(user), middleware.GetRequestID(r.Context()))
}
