package client

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context) error
	ListTasks(ctx context.Context, page, limit int) (*models.TaskPage, error)
	CreateTask(ctx context.Context, title string) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TokenSource supplies the access token attached to protected calls.
type TokenSource interface {
	Token() string
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
