package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

const pgUniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TaskRepo struct { // Репозиторий задач поверх Postgres
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

// Create inserts the task and its ownership link in one transaction.
func (r *TaskRepo) Create(ctx context.Context, ownerID int64, t model.Task) (model.Task, error) {
	var created model.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO tasks (title, description, status)
			VALUES ($1, $2, 0)
			RETURNING id
		`, t.Title, t.Description).Scan(&id); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		task, err := getTask(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("fetch created task: %w", err)
		}

		var linked bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM user_tasks WHERE user_id = $1 AND task_id = $2)
		`, ownerID, id).Scan(&linked); err != nil {
			return fmt.Errorf("check task link: %w", err)
		}
		if linked {
			return fmt.Errorf("check task link: %w", ErrorConflict)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO user_tasks (user_id, task_id) VALUES ($1, $2)
		`, ownerID, id); err != nil {
			return fmt.Errorf("link task: %w", mapError(err))
		}

		created = task
		return nil
	})
	return created, err
}

func (r *TaskRepo) Get(ctx context.Context, ownerID, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT t.id, t.title, t.description, t.status, t.created_at
		FROM tasks t
		JOIN user_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = $1 AND t.id = $2
	`, ownerID, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, ownerID int64) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.title, t.description, t.status, t.created_at
		FROM tasks t
		JOIN user_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = $1
		ORDER BY t.status DESC, t.created_at DESC, t.id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateStatus returns ErrorNotFound when the caller does not own the task.
func (r *TaskRepo) UpdateStatus(ctx context.Context, ownerID, id int64, status int) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = $1
		WHERE id = $2
		  AND EXISTS (SELECT 1 FROM user_tasks WHERE user_id = $3 AND task_id = $2)
	`, status, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// Delete removes the ownership link and the task in one transaction.
func (r *TaskRepo) Delete(ctx context.Context, ownerID, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			DELETE FROM user_tasks WHERE user_id = $1 AND task_id = $2
		`, ownerID, id)
		if err != nil {
			return fmt.Errorf("unlink task: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrorNotFound
		}

		if _, err := tx.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

func (r *TaskRepo) GetStats(ctx context.Context, ownerID int64) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE t.status >= 100),
		       COALESCE(AVG(t.status), 0)::float8
		FROM tasks t
		JOIN user_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = $1
	`, ownerID).Scan(&s.Total, &s.Completed, &s.AvgStatus)
	if err != nil {
		return s, err
	}
	s.InProgress = s.Total - s.Completed
	return s, nil
}

func getTask(ctx context.Context, q querier, id int64) (model.Task, error) {
	var t model.Task
	err := q.QueryRow(ctx, `
		SELECT id, title, description, status, created_at
		FROM tasks
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrorConflict, pgErr.ConstraintName)
	}
	return err
}
