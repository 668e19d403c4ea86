package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apikit/internal/domain/auth"
	"apikit/internal/infrastructure/http/v1/dto"
	"apikit/internal/infrastructure/http/v1/response"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) (any, error) {
	var req dto.RegisterRequest
	if err := BindJSON(c, &req); err != nil {
		return nil, err
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		return nil, err
	}
	return dto.FromUser(user), nil
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) (any, error) {
	var req dto.LoginRequest
	if err := BindJSON(c, &req); err != nil {
		return nil, err
	}

	token, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		return nil, err
	}
	return dto.FromToken(token), nil
}

// Logout handles POST /api/auth/secure/logout
func (h *AuthHandler) Logout(c *gin.Context) (any, error) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		return nil, err
	}
	return response.StatusCode(http.StatusOK), nil
}
