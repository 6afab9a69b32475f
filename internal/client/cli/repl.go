package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	GoToPage(ctx context.Context, page int) error
	Add(ctx context.Context, title string) error
	Edit(ctx context.Context, ref, title string) error
	Done(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
}

const (
	landingHelp   = "Available commands: register, login, help, exit"
	dashboardHelp = "Available commands: (l)ist, (n)ext, (p)rev, page N, add [title], edit N [title], done N, delete N, whoami, logout, help, exit"
)

// runREPL reads commands line by line from r and dispatches them to a.
// Command errors are printed and the loop goes on. It returns on EOF or
// "exit"/"quit".
//
// Task commands take a row number from the last listed page or a task id.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "tk %s> ", statusFn())

		line, readErr := r.ReadString('\n')
		if readErr != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, dashboardHelp)
			} else {
				fmt.Fprintln(w, landingHelp)
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "l", "list":
			err = a.List(ctx)

		case "n", "next":
			err = a.NextPage(ctx)

		case "p", "prev":
			err = a.PrevPage(ctx)

		case "page":
			n, convErr := pageArg(args)
			if convErr != nil {
				fmt.Fprintln(w, "Usage: page N")
				continue
			}
			err = a.GoToPage(ctx, n)

		case "add":
			err = a.Add(ctx, strings.Join(args, " "))

		case "edit":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: edit N [title]")
				continue
			}
			err = a.Edit(ctx, args[0], strings.Join(args[1:], " "))

		case "done":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: done N")
				continue
			}
			err = a.Done(ctx, args[0])

		case "delete", "rm":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: delete N")
				continue
			}
			err = a.Delete(ctx, args[0])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
		if readErr != nil {
			return
		}
	}
}

func pageArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want one argument, got %d", len(args))
	}
	return strconv.Atoi(args[0])
}
