package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "apikit/internal/core/context"
	"apikit/internal/core/i18n"
	"apikit/internal/infrastructure/http/v1/dto"
)

// I18nHandler exposes the message catalogs so clients can localize envelope keys.
type I18nHandler struct {
	resolver *i18n.Resolver
}

// NewI18nHandler creates a new i18n handler.
func NewI18nHandler(resolver *i18n.Resolver) *I18nHandler {
	return &I18nHandler{resolver: resolver}
}

// Messages handles GET /api/i18n/messages
func (h *I18nHandler) Messages(c *gin.Context) (any, error) {
	locale, messages := h.resolver.Messages(appctx.Locale(c.Request.Context()))
	return dto.MessagesResponse{Locale: locale, Messages: messages}, nil
}

// Resolve handles POST /api/i18n/resolve
func (h *I18nHandler) Resolve(c *gin.Context) (any, error) {
	var req dto.ResolveRequest
	if err := BindJSON(c, &req); err != nil {
		return nil, err
	}

	raw := appctx.Locale(c.Request.Context())
	return dto.ResolveResponse{
		Locale:  h.resolver.Match(raw).String(),
		Key:     req.Key,
		Message: h.resolver.Resolve(raw, req.Key, req.Variables),
	}, nil
}
