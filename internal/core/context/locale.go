package context

import (
	"context"
	"strings"
)

// DefaultLocale is used when the request carries no language.
const DefaultLocale = "en"

type localeContextKey struct{}

// WithLocale stores the raw locale value, or DefaultLocale when it is blank.
func WithLocale(ctx context.Context, locale string) context.Context {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// Locale returns the request locale or DefaultLocale.
func Locale(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return DefaultLocale
}
