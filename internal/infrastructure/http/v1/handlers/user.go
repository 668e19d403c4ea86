package handlers

import (
	"github.com/gin-gonic/gin"

	"apikit/internal/core/security"
	"apikit/internal/domain/user"
)

// UserHandler handles endpoints about the signed-in user.
type UserHandler struct {
	service  *user.Service
	verifier *security.AccessVerifier
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service *user.Service, verifier *security.AccessVerifier) *UserHandler {
	return &UserHandler{service: service, verifier: verifier}
}

// Info handles GET /api/user/secure/info
func (h *UserHandler) Info(c *gin.Context) (any, error) {
	return h.service.CurrentUserInfo(c.Request.Context())
}

// Admin handles GET /api/test/secure/admin
func (h *UserHandler) Admin(c *gin.Context) (any, error) {
	if err := h.verifier.RequireRole(c.Request.Context(), security.RoleAdmin); err != nil {
		return nil, err
	}
	return "ok", nil
}
