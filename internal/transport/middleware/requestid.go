package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/school-platform/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// RequestID propagates or mints a trace id and binds it to the request logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(logger.WithTraceID(r.Context(), traceID), "method", r.Method, "path", r.URL.Path)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
