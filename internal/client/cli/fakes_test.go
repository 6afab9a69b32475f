package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/tokenx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, exp time.Time) *session.Session {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "name": "Ann", "email": "ann@example.com", "exp": exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	claims, ok := tokenx.Decode(tok)
	require.True(t, ok)
	return &session.Session{Token: tok, Claims: claims}
}

type fakeAuth struct {
	current     *session.Session
	restored    *session.Session
	loginErr    error
	registerErr error
	logoutErr   error

	registered  []string
	lastEmail   string
	logoutCalls int
	dropCalls   int
	down        atomic.Bool
}

func (f *fakeAuth) Restore(context.Context) (*session.Session, error) {
	f.current = f.restored
	return f.restored, nil
}

func (f *fakeAuth) Current() *session.Session { return f.current }

func (f *fakeAuth) Register(_ context.Context, name, email string, _ []byte) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, name, email)
	return &models.User{ID: "u1", Name: name, Email: email}, nil
}

func (f *fakeAuth) Login(_ context.Context, email string, _ []byte) (*session.Session, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.current = f.restored
	return f.current, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	f.current = nil
	return f.logoutErr
}

func (f *fakeAuth) DropSession(context.Context) error {
	f.dropCalls++
	f.current = nil
	return nil
}

func (f *fakeAuth) Ping(context.Context) error {
	if f.down.Load() {
		return client.ErrUnavailable
	}
	return nil
}

// fakeTasks paginates an in-memory list the way the server does.
type fakeTasks struct {
	tasks     []models.Task
	pageSize  int
	err       error
	pageCalls int
	completed []string
	deleted   []string
}

func newFakeTasks(n int) *fakeTasks {
	f := &fakeTasks{pageSize: 2}
	for i := 1; i <= n; i++ {
		f.tasks = append(f.tasks, models.Task{ID: fmt.Sprintf("t%d", i), Title: fmt.Sprintf("task %d", i), Status: common.TaskStatusPending})
	}
	return f
}

func (f *fakeTasks) Page(_ context.Context, page int) (*models.TaskPage, error) {
	f.pageCalls++
	if f.err != nil {
		return nil, f.err
	}
	total := len(f.tasks)
	pages := (total + f.pageSize - 1) / f.pageSize
	from := min((page-1)*f.pageSize, total)
	to := min(from+f.pageSize, total)
	return &models.TaskPage{
		Tasks:       append([]models.Task{}, f.tasks[from:to]...),
		CurrentPage: page,
		TotalPages:  pages,
		TotalTasks:  total,
	}, nil
}

func (f *fakeTasks) Add(_ context.Context, title string) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := models.Task{ID: fmt.Sprintf("t%d", len(f.tasks)+1), Title: title, Status: common.TaskStatusPending}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeTasks) find(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeTasks) Rename(_ context.Context, id, title string) (*models.Task, error) {
	i := f.find(id)
	if i < 0 {
		return nil, client.ErrNotFound
	}
	f.tasks[i].Title = title
	return &f.tasks[i], nil
}

func (f *fakeTasks) Complete(_ context.Context, id string) (*models.Task, error) {
	i := f.find(id)
	if i < 0 {
		return nil, client.ErrNotFound
	}
	f.completed = append(f.completed, id)
	f.tasks[i].Status = common.TaskStatusCompleted
	return &f.tasks[i], nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	i := f.find(id)
	if i < 0 {
		return client.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

func newTestApp(fa *fakeAuth, ft *fakeTasks, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	app := newApp(&config.Config{}, logging.NewNop(), fa, ft, strings.NewReader(input), &out)
	return app, &out
}

// loggedIn returns an app already on the dashboard with a valid session.
func loggedIn(t *testing.T, ft *fakeTasks, input string) (*App, *fakeAuth, *bytes.Buffer) {
	t.Helper()
	s := newSession(t, time.Now().Add(time.Hour))
	fa := &fakeAuth{current: s, restored: s}
	app, out := newTestApp(fa, ft, input)
	app.view = ViewDashboard
	return app, fa, out
}

func stubPassword(t *testing.T, pw []byte) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return pw, nil }
	t.Cleanup(func() { getPassword = orig })
}
