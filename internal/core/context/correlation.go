package context

import "context"

// Correlation ties log lines and responses to one request.
type Correlation struct {
	RequestID string
	TraceID   string
}

type correlationContextKey struct{}

// WithCorrelation stores the request's correlation ids.
func WithCorrelation(ctx context.Context, c Correlation) context.Context {
	return context.WithValue(ctx, correlationContextKey{}, c)
}

// CorrelationOf returns the correlation ids, and false when none were stored.
func CorrelationOf(ctx context.Context) (Correlation, bool) {
	c, ok := ctx.Value(correlationContextKey{}).(Correlation)
	return c, ok
}

// RequestID returns the request id or "".
func RequestID(ctx context.Context) string {
	c, _ := CorrelationOf(ctx)
	return c.RequestID
}
