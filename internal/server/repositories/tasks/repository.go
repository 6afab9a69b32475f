// Package tasks persists to-do items. Every query is scoped by owner so a
// user can never observe or touch another user's rows.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.Task, error)
	Count(ctx context.Context, userID string) (int, error)
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}
