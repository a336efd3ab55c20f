package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	ctxlog "github.com/frahmantamala/school-platform/pkg/logger"
)

// redactedKeys match header names and JSON keys by substring, case-insensitively.
var redactedKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"signature",
	"cookie",
	"client_secret",
	"api_key",
}

const (
	redacted      = "[REDACTED]"
	omitted       = "[OMITTED]"
	maxLoggedBody = 4096
)

// LoggingMiddleware writes one line when a request arrives and one when it completes.
// Multipart uploads and signed webhook payloads are never buffered.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := requestLogger(logger, r)

			lg.InfoContext(r.Context(), "request started",
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", redactHeaders(r.Header),
				"body", captureRequestBody(r),
			)

			captured := &limitedBuffer{max: maxLoggedBody}
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(captured)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			body := omitted
			if strings.Contains(ww.Header().Get("Content-Type"), "json") {
				body = redactBody(captured.Bytes())
			}

			lg.Log(r.Context(), levelFor(status), "request completed",
				"route", routePattern(r),
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"body", body,
			)
		})
	}
}

// requestLogger prefers the context logger, which already carries trace and path.
func requestLogger(fallback *slog.Logger, r *http.Request) *slog.Logger {
	if ctxlog.TraceID(r.Context()) != "" {
		return ctxlog.From(r.Context())
	}
	return fallback.With(
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func captureRequestBody(r *http.Request) string {
	if r.Body == nil || r.ContentLength <= 0 || r.ContentLength > maxLoggedBody {
		return omitted
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") || r.Header.Get("Stripe-Signature") != "" {
		return omitted
	}

	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return omitted
	}
	return redactBody(raw)
}

func isRedacted(name string) bool {
	name = strings.ToLower(name)
	for _, k := range redactedKeys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if isRedacted(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody masks sensitive keys in JSON; anything else is dropped when it mentions one.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		if isRedacted(string(body)) {
			return redacted
		}
		return string(body)
	}

	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return omitted
	}
	return string(out)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if isRedacted(k) {
				t[k] = redacted
			} else {
				t[k] = redactValue(child)
			}
		}
		return t
	case []any:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	default:
		return v
	}
}

// limitedBuffer keeps the first max bytes and silently discards the rest.
type limitedBuffer struct {
	bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}
