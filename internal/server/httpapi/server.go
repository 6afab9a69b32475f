// Package httpapi exposes the auth and task services over REST/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

// UserService is the subset of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string) error
}

// TaskService is the subset of services.TaskService the handlers need.
type TaskService interface {
	List(ctx context.Context, userID string, page, limit int) (*models.TaskPage, error)
	Create(ctx context.Context, userID string, in services.CreateTaskInput) (*models.Task, error)
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	Update(ctx context.Context, userID, id string, in services.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// Options carries the transport settings taken from server config.
type Options struct {
	Address           string
	SecretKey         string
	CORSAllowedOrigin string
	// Registry receives the request metrics and backs /metrics. Nil uses a
	// fresh registry.
	Registry *prometheus.Registry
}

type HTTPServer struct {
	address    string
	users      UserService
	tasks      TaskService
	logger     logging.Logger
	jwtSecret  []byte
	corsOrigin string
	metrics    *metrics
	registry   *prometheus.Registry
}

func NewHTTPServer(opts Options, l logging.Logger, us UserService, ts TaskService) *HTTPServer {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &HTTPServer{
		address:    opts.Address,
		users:      us,
		tasks:      ts,
		logger:     l.With("module", "http_server"),
		jwtSecret:  []byte(opts.SecretKey),
		corsOrigin: opts.CORSAllowedOrigin,
		metrics:    newMetrics(reg),
		registry:   reg,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
