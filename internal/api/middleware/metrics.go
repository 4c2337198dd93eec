package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"loan-origination/internal/infrastructure/monitoring"
)

// MetricsMiddleware records request counts and latencies against the
// matched chi route pattern, so path parameters such as session ids do
// not explode the label space.
func MetricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				route := chi.RouteContext(r.Context()).RoutePattern()
				if route == "" {
					route = "unmatched"
				}
				monitoring.ObserveHTTPRequest(r.Method, route, ww.Status(), time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
