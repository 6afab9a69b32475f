package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/cache"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byEmail   map[string]*models.User
	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeTasksRepo keeps tasks in insertion order and scopes every lookup by owner.
type fakeTasksRepo struct {
	tasks []models.Task
	err   error

	getCalls   int
	lastLimit  int
	lastOffset int
}

func (f *fakeTasksRepo) add(userID, title string) models.Task {
	now := time.Now()
	t := models.Task{ID: uuid.NewString(), UserID: userID, Title: title, Status: common.TaskStatusPending, CreatedAt: now, UpdatedAt: now}
	f.tasks = append(f.tasks, t)
	return t
}

func (f *fakeTasksRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.tasks = append(f.tasks, *t)
	return t, nil
}

func (f *fakeTasksRepo) List(_ context.Context, userID string, limit, offset int) ([]models.Task, error) {
	f.lastLimit, f.lastOffset = limit, offset
	if f.err != nil {
		return nil, f.err
	}
	var own []models.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			own = append(own, t)
		}
	}
	if offset >= len(own) {
		return []models.Task{}, nil
	}
	end := offset + limit
	if end > len(own) {
		end = len(own)
	}
	return own[offset:end], nil
}

func (f *fakeTasksRepo) Count(_ context.Context, userID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, t := range f.tasks {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTasksRepo) Get(_ context.Context, userID, id string) (*models.Task, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			cp := t
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTasksRepo) Update(_ context.Context, t *models.Task) (*models.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID && f.tasks[i].UserID == t.UserID {
			t.UpdatedAt = time.Now()
			f.tasks[i] = *t
			return t, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTasksRepo) Delete(_ context.Context, userID, id string) error {
	if f.err != nil {
		return f.err
	}
	for i, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasksrepo.Repository          { return m.t }

// fakeCache is a map-backed cache.TaskCache.
type fakeCache struct {
	items  map[string]models.Task
	getErr error
}

func newFakeCache() *fakeCache { return &fakeCache{items: map[string]models.Task{}} }

func (c *fakeCache) Get(_ context.Context, userID, taskID string) (*models.Task, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	t, ok := c.items[cache.Key(userID, taskID)]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &t, nil
}

func (c *fakeCache) Set(_ context.Context, t *models.Task) error {
	c.items[cache.Key(t.UserID, t.ID)] = *t
	return nil
}

func (c *fakeCache) Delete(_ context.Context, userID, taskID string) error {
	delete(c.items, cache.Key(userID, taskID))
	return nil
}
