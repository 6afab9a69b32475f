package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client, recording arguments.
type fakeClient struct {
	registerCalls int
	lastPassword  string
	lastEmail     string
	loginToken    string
	loginErr      error
	logoutErr     error
	logoutCalls   int
	pingErr       error

	lastPage, lastLimit int
	lastUpdate          models.TaskUpdate
	lastID              string
	lastTitle           string
	err                 error
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) Register(_ context.Context, name, email, password string) (*models.User, error) {
	f.registerCalls++
	f.lastEmail, f.lastPassword = email, password
	return &models.User{ID: "u1", Name: name, Email: email}, f.err
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*client.LoginResponse, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &client.LoginResponse{Token: f.loginToken}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeClient) ListTasks(_ context.Context, page, limit int) (*models.TaskPage, error) {
	f.lastPage, f.lastLimit = page, limit
	return &models.TaskPage{CurrentPage: page}, f.err
}

func (f *fakeClient) CreateTask(_ context.Context, title string) (*models.Task, error) {
	f.lastTitle = title
	return &models.Task{ID: "t1", Title: title}, f.err
}

func (f *fakeClient) GetTask(_ context.Context, id string) (*models.Task, error) {
	f.lastID = id
	return &models.Task{ID: id}, f.err
}

func (f *fakeClient) UpdateTask(_ context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	f.lastID, f.lastUpdate = id, upd
	return &models.Task{ID: id}, f.err
}

func (f *fakeClient) DeleteTask(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func token(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func newAuth(fc *fakeClient) (AuthService, *session.Store) {
	store := session.NewStore(metadata.NewMemoryRepository())
	return NewAuthService(fc, store, 5), store
}

func TestRegister_PasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"four characters", "abcd", false},
		{"at the limit", "abcde", false},
		{"six characters", "abcdef", true},
		{"multibyte counted as runes", "пароль", true},
		{"five multibyte", "пароп", false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			as, _ := newAuth(fc)

			_, err := as.Register(context.Background(), "Ann", " ann@example.com ", []byte(tt.password))
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				assert.Zero(t, fc.registerCalls, "server must not be called")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, fc.registerCalls)
			assert.Equal(t, "ann@example.com", fc.lastEmail)
			assert.Equal(t, tt.password, fc.lastPassword)
		})
	}
}

func TestRegister_ServerErrorWrapped(t *testing.T) {
	fc := &fakeClient{err: client.ErrConflict}
	as, _ := newAuth(fc)

	_, err := as.Register(context.Background(), "Ann", "ann@example.com", []byte("abc"))
	assert.ErrorIs(t, err, client.ErrConflict)
}

func TestLogin_StoresSession(t *testing.T) {
	fc := &fakeClient{loginToken: token(t, "u1")}
	as, store := newAuth(fc)

	s, err := as.Login(context.Background(), "ann@example.com", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID())
	assert.Equal(t, fc.loginToken, store.Token())
	assert.Same(t, s, as.Current())
}

func TestLogin_Failures(t *testing.T) {
	fc := &fakeClient{loginErr: client.ErrUnauthorized}
	as, store := newAuth(fc)

	_, err := as.Login(context.Background(), "ann@example.com", []byte("bad"))
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Nil(t, store.Current())

	fc.loginErr, fc.loginToken = nil, "not-a-jwt"
	_, err = as.Login(context.Background(), "ann@example.com", []byte("abc"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Empty(t, store.Token())
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name      string
		serverErr error
		wantErr   bool
	}{
		{"ok", nil, false},
		{"token already rejected", client.ErrUnauthorized, false},
		{"offline", client.ErrUnavailable, false},
		{"other failure", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fc := &fakeClient{loginToken: token(t, "u1"), logoutErr: tt.serverErr}
			as, store := newAuth(fc)
			_, err := as.Login(ctx, "ann@example.com", []byte("abc"))
			require.NoError(t, err)

			err = as.Logout(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, fc.logoutCalls)
			assert.Nil(t, store.Current(), "local session always ends")

			s, err := as.Restore(ctx)
			require.NoError(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestDropSession_DoesNotCallServer(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{loginToken: token(t, "u1")}
	as, store := newAuth(fc)
	_, err := as.Login(ctx, "ann@example.com", []byte("abc"))
	require.NoError(t, err)

	require.NoError(t, as.DropSession(ctx))
	assert.Zero(t, fc.logoutCalls)
	assert.Nil(t, store.Current())
}

func TestPing(t *testing.T) {
	fc := &fakeClient{pingErr: client.ErrUnavailable}
	as, _ := newAuth(fc)
	assert.ErrorIs(t, as.Ping(context.Background()), client.ErrUnavailable)
}
