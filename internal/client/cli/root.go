package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	var parts []string
	if sess := a.auth.Current(); sess != nil && a.view == ViewDashboard {
		parts = append(parts, sess.DisplayName())
	}
	if mode := a.getMode(); mode != "" {
		parts = append(parts, string(mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Root resumes a saved session if there is one, starts the connectivity
// watcher and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to taskkeeper (type 'help' for commands)")

	a.restore(ctx)

	if a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) restore(ctx context.Context) {
	s, err := a.auth.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "restore session", "error", err)
	}
	if s == nil {
		a.syncView()
		return
	}

	a.view = ViewDashboard
	fmt.Fprintf(a.out, "Welcome back, %s\n", s.DisplayName())
	if err := a.List(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
}
