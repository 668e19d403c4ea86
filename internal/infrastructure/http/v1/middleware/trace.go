package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appctx "apikit/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var tracer = otel.Tracer("apikit/http")

// Trace opens the request span and binds correlation ids to the request.
// The trace id is taken from the header, then from the span when a real
// provider is installed, and is generated otherwise.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.target", c.Request.URL.Path),
			),
		)
		defer span.End()

		ids := appctx.Correlation{
			RequestID: c.GetHeader(HeaderRequestID),
			TraceID:   c.GetHeader(HeaderTraceID),
		}
		if ids.RequestID == "" {
			ids.RequestID = uuid.NewString()
		}
		if ids.TraceID == "" {
			if sc := span.SpanContext(); sc.HasTraceID() {
				ids.TraceID = sc.TraceID().String()
			} else {
				ids.TraceID = uuid.NewString()
			}
		}

		c.Request = c.Request.WithContext(appctx.WithCorrelation(ctx, ids))
		c.Header(HeaderRequestID, ids.RequestID)
		c.Header(HeaderTraceID, ids.TraceID)

		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}
