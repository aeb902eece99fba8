package handler

import (
	"errors"
	"net/http"

	"github.com/userhub/userhub-go/internal/model"
	"github.com/userhub/userhub-go/internal/observability"
	"github.com/userhub/userhub-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
	metrics *observability.Metrics
}

// NewAuthHandler creates a new AuthHandler. metrics may be nil.
func NewAuthHandler(svc *service.AuthService, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{service: svc, metrics: metrics}
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrInvalidEmailFormat) {
			h.metrics.ObserveLogin(observability.LoginRejected)
		} else {
			h.metrics.ObserveLogin(observability.LoginError)
		}
		writeServiceError(w, r, err)
		return
	}

	h.metrics.ObserveLogin(observability.LoginSuccess)
	writeJSON(w, http.StatusOK, resp)
}
