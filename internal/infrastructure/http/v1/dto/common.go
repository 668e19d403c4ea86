package dto

// HealthResponse reports service health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// MessagesResponse is a locale's full message catalog.
type MessagesResponse struct {
	Locale   string            `json:"locale"`
	Messages map[string]string `json:"messages"`
}

// ResolveRequest asks for one localized message.
type ResolveRequest struct {
	Key       string         `json:"key" binding:"required"`
	Variables map[string]any `json:"variables"`
}

// ResolveResponse is a localized message.
type ResolveResponse struct {
	Locale  string `json:"locale"`
	Key     string `json:"key"`
	Message string `json:"message"`
}
