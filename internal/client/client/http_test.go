package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type recorded struct {
	method string
	uri    string
	authz  string
	body   map[string]any
}

// newServer answers every request with status and body, recording what it got.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.uri = r.URL.RequestURI()
		rec.authz = r.Header.Get("Authorization")
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestHTTPClient_AttachesBearerOnProtectedCalls(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"tasks":[{"id":"t1","title":"a","status":"pending"}],"currentPage":2,"totalPages":3,"totalTasks":5}`)
	c := NewHTTPClient(srv.URL+"/", time.Second, staticToken("tok"))

	page, err := c.ListTasks(context.Background(), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/tasks?limit=2&page=2", rec.uri)
	assert.Equal(t, "Bearer tok", rec.authz)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "t1", page.Tasks[0].ID)
}

func TestHTTPClient_PublicCallsCarryNoToken(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"token":"abc","user":{"id":"u1","email":"ann@example.com"}}`)
	c := NewHTTPClient(srv.URL, time.Second, staticToken("stale"))

	res, err := c.Login(context.Background(), "ann@example.com", "abc")
	require.NoError(t, err)

	assert.Empty(t, rec.authz)
	assert.Equal(t, "/auth/login", rec.uri)
	assert.Equal(t, "ann@example.com", rec.body["email"])
	assert.Equal(t, "abc", res.Token)
	assert.Equal(t, "u1", res.User.ID)
}

func TestHTTPClient_EmptyTokenSendsNoHeader(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"message":"Task deleted"}`)
	c := NewHTTPClient(srv.URL, time.Second, staticToken(""))

	require.NoError(t, c.DeleteTask(context.Background(), "abc"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/tasks/abc", rec.uri)
	assert.Empty(t, rec.authz)
}

func TestHTTPClient_UpdateSendsOnlySetFields(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"id":"x","title":"a","status":"completed"}`)
	c := NewHTTPClient(srv.URL, time.Second, staticToken("tok"))

	status := "completed"
	task, err := c.UpdateTask(context.Background(), "x", models.TaskUpdate{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, map[string]any{"status": "completed"}, rec.body)
	assert.Equal(t, "completed", task.Status)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   error
		msg    string
	}{
		{http.StatusBadRequest, `{"message":"validation error: title: cannot be blank."}`, ErrValidation, "validation error: title: cannot be blank."},
		{http.StatusUnauthorized, `{"message":"token expired"}`, ErrUnauthorized, "token expired"},
		{http.StatusNotFound, `{"message":"Task not found"}`, ErrNotFound, "Task not found"},
		{http.StatusConflict, `{"message":"User already exists"}`, ErrConflict, "User already exists"},
		{http.StatusServiceUnavailable, `upstream down`, ErrUnavailable, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			c := NewHTTPClient(srv.URL, time.Second, staticToken("tok"))

			_, err := c.GetTask(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.msg, apiErr.Error())
		})
	}
}

func TestHTTPClient_InternalErrorHasNoKind(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, `{"message":"Internal server error"}`)
	c := NewHTTPClient(srv.URL, time.Second, nil)

	err := c.Ping(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.NoError(t, errors.Unwrap(apiErr))
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second, nil)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_Register(t *testing.T) {
	srv, rec := newServer(t, http.StatusCreated, `{"message":"User registered successfully","user":{"id":"u1","name":"Ann"}}`)
	c := NewHTTPClient(srv.URL, time.Second, nil)

	u, err := c.Register(context.Background(), "Ann", "ann@example.com", "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, map[string]any{"name": "Ann", "email": "ann@example.com", "password": "abc"}, rec.body)
}
