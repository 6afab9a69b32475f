package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (user_id, title, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, task.UserID, task.Title, task.Status).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

// List returns at most limit tasks of userID starting at offset, oldest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.Task, error) {
	query :=
		`SELECT id, user_id, title, status, created_at, updated_at FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Task, 0, limit)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE user_id = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	query :=
		`SELECT id, user_id, title, status, created_at, updated_at FROM tasks
		 WHERE id = $1 AND user_id = $2
		 `

	t := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

// Update writes title and status of task, matched by id and owner.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks SET title = $1, status = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, task.Title, task.Status, task.ID, task.UserID).
		Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
