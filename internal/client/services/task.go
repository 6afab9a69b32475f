package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// TaskService is the dashboard's view of the task API. Pages are fetched
// with a fixed page size.
type TaskService interface {
	Page(ctx context.Context, page int) (*models.TaskPage, error)
	Add(ctx context.Context, title string) (*models.Task, error)
	Rename(ctx context.Context, id, title string) (*models.Task, error)
	Complete(ctx context.Context, id string) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type taskService struct {
	client   client.Client
	pageSize int
}

func NewTaskService(c client.Client, pageSize int) TaskService {
	if pageSize < 1 {
		pageSize = 1
	}
	return &taskService{client: c, pageSize: pageSize}
}

func (s *taskService) Page(ctx context.Context, page int) (*models.TaskPage, error) {
	if page < 1 {
		page = 1
	}
	return s.client.ListTasks(ctx, page, s.pageSize)
}

func (s *taskService) Add(ctx context.Context, title string) (*models.Task, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	return s.client.CreateTask(ctx, title)
}

func (s *taskService) Rename(ctx context.Context, id, title string) (*models.Task, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	return s.client.UpdateTask(ctx, id, models.TaskUpdate{Title: &title})
}

func (s *taskService) Complete(ctx context.Context, id string) (*models.Task, error) {
	status := common.TaskStatusCompleted
	return s.client.UpdateTask(ctx, id, models.TaskUpdate{Status: &status})
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteTask(ctx, id)
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	return title, nil
}
