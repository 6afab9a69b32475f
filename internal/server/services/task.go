package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/cache"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	maxTitleLength  = 500
)

// NormalizePage applies list defaults: page and limit below 1 fall back to
// 1 and DefaultPageSize, limit is capped at MaxPageSize.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > math.MaxInt32 {
		page = math.MaxInt32
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

var statusRule = validation.In(common.TaskStatusPending, common.TaskStatusCompleted)

type CreateTaskInput struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

func (in CreateTaskInput) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&in.Status, statusRule),
	))
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

func (in UpdateTaskInput) Validate() error {
	if in.Title == nil && in.Status == nil {
		return fmt.Errorf("%w: nothing to update", common.ErrValidation)
	}
	errs := validation.Errors{}
	if in.Title != nil {
		if err := validation.Validate(*in.Title, validation.Required, validation.RuneLength(1, maxTitleLength)); err != nil {
			errs["title"] = err
		}
	}
	if in.Status != nil {
		if err := validation.Validate(*in.Status, validation.Required, statusRule); err != nil {
			errs["status"] = err
		}
	}
	if len(errs) > 0 {
		return asValidationError(errs)
	}
	return nil
}

// TaskService implements the to-do operations of one authenticated user.
// Every method takes the owner id resolved by the auth middleware.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.TaskCache
	log         logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, c cache.TaskCache, log logging.Logger) *TaskService {
	if c == nil {
		c = cache.NopCache{}
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &TaskService{db: db, repomanager: m, cache: c, log: log}
}

// List returns one page of userID's tasks. Count and page are read in one
// read-only transaction so totals agree with the returned slice.
func (s *TaskService) List(ctx context.Context, userID string, page, limit int) (*models.TaskPage, error) {
	page, limit = NormalizePage(page, limit)

	result := &models.TaskPage{CurrentPage: page}
	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		total, err := repo.Count(ctx, userID)
		if err != nil {
			return err
		}

		items, err := repo.List(ctx, userID, limit, (page-1)*limit)
		if err != nil {
			return err
		}

		result.TotalTasks = total
		result.Tasks = items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}

	result.TotalPages = (result.TotalTasks + limit - 1) / limit
	if result.Tasks == nil {
		result.Tasks = []models.Task{}
	}
	return result, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = common.TaskStatusPending
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repomanager.Tasks(s.db).Create(ctx, &models.Task{UserID: userID, Title: in.Title, Status: in.Status})
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return t, nil
}

// Get reads through the cache. Cache failures are logged and fall back to
// the database.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	t, err := s.cache.Get(ctx, userID, id)
	switch {
	case err == nil:
		s.log.Debug(ctx, "task cache hit", "task_id", id)
		return t, nil
	case !errors.Is(err, cache.ErrMiss):
		s.log.Warn(ctx, "task cache read failed", "task_id", id, "error", err)
	}

	t, err = s.repomanager.Tasks(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, wrapTaskErr("error reading task", err)
	}

	if err := s.cache.Set(ctx, t); err != nil {
		s.log.Warn(ctx, "task cache write failed", "task_id", id, "error", err)
	}
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, in UpdateTaskInput) (*models.Task, error) {
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		current, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		if in.Title != nil {
			current.Title = *in.Title
		}
		if in.Status != nil {
			current.Status = *in.Status
		}

		updated, err = repo.Update(ctx, current)
		return err
	})
	if err != nil {
		return nil, wrapTaskErr("error updating task", err)
	}

	s.invalidate(ctx, userID, id)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}

	if err := s.repomanager.Tasks(s.db).Delete(ctx, userID, id); err != nil {
		return wrapTaskErr("error deleting task", err)
	}

	s.invalidate(ctx, userID, id)
	return nil
}

func (s *TaskService) invalidate(ctx context.Context, userID, id string) {
	if err := s.cache.Delete(ctx, userID, id); err != nil {
		s.log.Warn(ctx, "task cache delete failed", "task_id", id, "error", err)
	}
}

// validID rejects ids that cannot be a task primary key, so they answer
// 404 without a database round trip.
func validID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

func wrapTaskErr(msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
