package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer(us UserService, ts TaskService) *HTTPServer {
	return NewHTTPServer(Options{SecretKey: testSecret, CORSAllowedOrigin: "http://localhost:3000"},
		logging.NewNop(), us, ts)
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.TokenSubject{ID: userID, Name: "Ann", Email: "ann@example.com"}, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

func do(h http.Handler, method, path, authz, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var m messageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), "body: %s", rr.Body.String())
	return m.Message
}

type fakeUsers struct {
	registerFn func(services.RegisterInput) (*models.User, error)
	loginFn    func(email, password string) (*services.LoginResult, error)
	loggedOut  string
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	return f.registerFn(in)
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	return f.loginFn(email, password)
}

func (f *fakeUsers) Logout(_ context.Context, userID string) error {
	f.loggedOut = userID
	return nil
}

// fakeTasks records the identity and arguments each call received.
type fakeTasks struct {
	userID      string
	page, limit int
	id          string
	created     services.CreateTaskInput
	updated     services.UpdateTaskInput
	err         error
	panicOnList bool
}

func (f *fakeTasks) List(_ context.Context, userID string, page, limit int) (*models.TaskPage, error) {
	if f.panicOnList {
		panic("boom")
	}
	f.userID, f.page, f.limit = userID, page, limit
	if f.err != nil {
		return nil, f.err
	}
	return &models.TaskPage{Tasks: []models.Task{{ID: "t1", UserID: userID, Title: "one", Status: "pending"}},
		CurrentPage: 1, TotalPages: 1, TotalTasks: 1}, nil
}

func (f *fakeTasks) Create(_ context.Context, userID string, in services.CreateTaskInput) (*models.Task, error) {
	f.userID, f.created = userID, in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: "t-new", UserID: userID, Title: in.Title, Status: "pending"}, nil
}

func (f *fakeTasks) Get(_ context.Context, userID, id string) (*models.Task, error) {
	f.userID, f.id = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: id, UserID: userID, Title: "one", Status: "pending"}, nil
}

func (f *fakeTasks) Update(_ context.Context, userID, id string, in services.UpdateTaskInput) (*models.Task, error) {
	f.userID, f.id, f.updated = userID, id, in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: id, UserID: userID, Title: "updated", Status: "completed"}, nil
}

func (f *fakeTasks) Delete(_ context.Context, userID, id string) error {
	f.userID, f.id = userID, id
	return f.err
}
