package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the full middleware-wrapped route table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("POST /auth/logout", s.requireAuth(http.HandlerFunc(s.handleLogout)))

	mux.Handle("GET /tasks", s.requireAuth(http.HandlerFunc(s.handleListTasks)))
	mux.Handle("POST /tasks", s.requireAuth(http.HandlerFunc(s.handleCreateTask)))
	mux.Handle("GET /tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleGetTask)))
	mux.Handle("PUT /tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateTask)))
	mux.Handle("DELETE /tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteTask)))

	var h http.Handler = mux
	h = s.withMetrics(h)
	h = s.withCORS(h)
	h = s.withRecover(h)
	h = s.withAccessLog(h)
	h = withRequestID(h)
	return h
}
