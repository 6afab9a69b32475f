package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// requireAuth admits a request only with a valid access token and stores
// the token subject in the request context. Rejected requests never reach
// next.
func (s *HTTPServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			s.rejectUnauthenticated(w, r, err)
			return
		}

		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			s.rejectUnauthenticated(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.Subject)))
	})
}

func (s *HTTPServer) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	reason := tokenMessage(err)
	s.metrics.authFailures.WithLabelValues(reason).Inc()
	s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "reason", reason)

	w.Header().Set("WWW-Authenticate", common.BearerScheme)
	writeMessage(w, http.StatusUnauthorized, reason)
}

// withRequestID propagates a caller-supplied X-Request-Id or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(contextWithRequestID(r.Context(), id)))
	})
}

func (s *HTTPServer) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFromContext(r.Context()),
		}
		switch requestLogLevel(rec.status) {
		case slog.LevelError:
			s.logger.Error(r.Context(), "http request", args...)
		case slog.LevelWarn:
			s.logger.Warn(r.Context(), "http request", args...)
		default:
			s.logger.Info(r.Context(), "http request", args...)
		}
	})
}

func requestLogLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// withRecover turns a handler panic into a 500.
func (s *HTTPServer) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.logger.Error(r.Context(), "panic in handler", "panic", p, "path", r.URL.Path)
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS applies the single-origin browser policy and answers preflights.
func (s *HTTPServer) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", s.corsOrigin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec, ok := w.(*statusRecorder)
		if !ok {
			rec = newStatusRecorder(w)
		}

		next.ServeHTTP(rec, r)

		route := routeLabel(r.Pattern)
		s.metrics.requests.WithLabelValues(r.Method, route, statusClass(rec.status)).Inc()
		s.metrics.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// routeLabel strips the method from a ServeMux pattern ("GET /tasks/{id}").
func routeLabel(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	if _, path, found := strings.Cut(pattern, " "); found {
		return path
	}
	return pattern
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }
