package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// Register prompts for name, email and password and creates the account.
// It does not sign in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.auth.Register(ctx, name, email, password); err != nil {
		return a.checkOffline(err)
	}

	fmt.Fprintln(a.out, "User registered successfully. You can login now.")
	return nil
}

// Login prompts for credentials. On success the new session replaces any
// previous one and the dashboard opens on the first page.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	// a failed login keeps whatever session was active before
	s, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return a.checkOffline(err)
	}

	a.view = ViewDashboard
	a.page, a.totalPages, a.rows = 1, 0, nil
	fmt.Fprintf(a.out, "Welcome, %s\n", s.DisplayName())

	return a.List(ctx)
}

// Logout ends the session and returns to the landing view.
func (a *App) Logout(ctx context.Context) error {
	if a.auth.Current() == nil {
		return errSignInRequired
	}

	err := a.auth.Logout(ctx)
	a.syncView()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged out successfully")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	s := a.auth.Current()
	fmt.Fprintf(a.out, "%s <%s>\nuser id: %s\nsession expires: %s\n",
		s.Claims.Name, s.Claims.Email, s.UserID(), s.ExpiresAt().Local().Format("2006-01-02 15:04"))
	return nil
}
