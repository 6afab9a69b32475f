package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/tokenx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type View string

const (
	ViewLanding   View = "landing"
	ViewDashboard View = "dashboard"
)

const pingTimeout = 3 * time.Second

var errSignInRequired = errors.New("please register or login first")

type App struct {
	config  *config.Config
	logger  logging.Logger
	auth    services.AuthService
	tasks   services.TaskService
	reader  *bufio.Reader
	out     io.Writer
	closeFn func() error
	now     func() time.Time

	view       View
	page       int
	totalPages int
	// rows of the last rendered page; commands may refer to them by number
	rows []models.Task

	modeMu sync.RWMutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := session.NewStore(metadata.NewSQLiteRepository(db))
	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, store)

	as := services.NewAuthService(api, store, c.PasswordMaxLength)
	ts := services.NewTaskService(api, c.PageSize)

	app := newApp(c, logger, as, ts, os.Stdin, os.Stdout)
	app.closeFn = db.Close
	return app, nil
}

func newApp(c *config.Config, l logging.Logger, as services.AuthService, ts services.TaskService, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		logger: l,
		auth:   as,
		tasks:  ts,
		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
		view:   ViewLanding,
		page:   1,
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn == nil {
			return
		}
		if err := a.closeFn(); err != nil {
			a.logger.Warn(ctx, "close session database", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "Switched mode", "mode", string(mode))
	}
}

func (a *App) getMode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.view == ViewDashboard && a.auth.Current() != nil
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.auth.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// syncView returns to the landing view when there is no session.
func (a *App) syncView() {
	if a.auth.Current() != nil || a.view == ViewLanding {
		return
	}
	a.view = ViewLanding
	a.page, a.totalPages, a.rows = 1, 0, nil
	fmt.Fprintln(a.out, "Session ended. Back to the start screen.")
}

// requireSession drops a session whose token has expired locally, so the
// user is sent to the landing view before a request is wasted on it.
func (a *App) requireSession(ctx context.Context) error {
	s := a.auth.Current()
	if s != nil && tokenx.IsExpired(s.Token, a.now()) {
		a.dropSession(ctx)
		s = nil
	}
	if s == nil {
		a.syncView()
		return errSignInRequired
	}
	return nil
}

func (a *App) dropSession(ctx context.Context) {
	if err := a.auth.DropSession(ctx); err != nil {
		a.logger.Warn(ctx, "drop session", "error", err)
	}
}

// handleErr reacts to server answers that change app state: 401 ends the
// session, a transport failure marks the app offline.
func (a *App) handleErr(ctx context.Context, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		a.dropSession(ctx)
		a.syncView()
		return fmt.Errorf("session is no longer valid: %w", err)
	}
	return a.checkOffline(err)
}

func (a *App) checkOffline(err error) error {
	if errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
	}
	return err
}
