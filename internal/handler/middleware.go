package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/savestreak/backend/internal/logger"
)

// RequestContext copies the chi request ID into the logging context so
// service-layer log lines can be correlated with the request.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = logger.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
