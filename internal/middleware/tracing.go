// AngelaMos | 2026
// tracing.go

package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ecoplagas/backend/internal/core"
)

// Tracing starts a server span per request, continuing any trace context
// the caller propagated.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(
			r.Context(),
			propagation.HeaderCarrier(r.Header),
		)

		ctx, span := core.StartSpan(ctx, r.Method+" "+r.URL.Path,
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		)

		rw := wrapResponseWriter(w)
		r = r.WithContext(ctx)

		next.ServeHTTP(rw, r)

		span.SetName(r.Method + " " + routePattern(r))
		span.SetAttributes(attribute.Int("http.status_code", rw.Status()))

		var err error
		if rw.Status() >= http.StatusInternalServerError {
			err = fmt.Errorf("http status %d", rw.Status())
		}
		core.EndSpan(span, err)
	})
}
