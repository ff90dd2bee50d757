package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx commits when fn succeeds and rolls back on error or panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx dbtx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

type SQLiteTaskRepo struct {
	db *sql.DB
}

func NewSQLiteTaskRepo(db *sql.DB) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, ownerID int64, t model.Task) (model.Task, error) {
	var created model.Task
	err := withTx(ctx, r.db, func(tx dbtx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO tasks (title, description, status) VALUES (?, ?, 0)",
			t.Title, t.Description,
		)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		task, err := sqliteGetTask(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("fetch created task: %w", err)
		}

		var linked bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM user_tasks WHERE user_id = ? AND task_id = ?)",
			ownerID, id,
		).Scan(&linked); err != nil {
			return fmt.Errorf("check task link: %w", err)
		}
		if linked {
			return fmt.Errorf("check task link: %w", ErrorConflict)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_tasks (user_id, task_id) VALUES (?, ?)",
			ownerID, id,
		); err != nil {
			return fmt.Errorf("link task: %w", mapSQLiteError(err))
		}

		created = task
		return nil
	})
	return created, err
}

func (r *SQLiteTaskRepo) Get(ctx context.Context, ownerID, id int64) (model.Task, error) {
	var t model.Task
	err := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.title, t.description, t.status, t.created_at
		FROM tasks t
		JOIN user_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = ? AND t.id = ?
	`, ownerID, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *SQLiteTaskRepo) List(ctx context.Context, ownerID int64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.description, t.status, t.created_at
		FROM tasks t
		JOIN user_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = ?
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

func (r *SQLiteTaskRepo) UpdateStatus(ctx context.Context, ownerID, id int64, status int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?
		WHERE id = ?
		  AND EXISTS (SELECT 1 FROM user_tasks WHERE user_id = ? AND task_id = ?)
	`, status, id, ownerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, ownerID, id int64) error {
	return withTx(ctx, r.db, func(tx dbtx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM user_tasks WHERE user_id = ? AND task_id = ?",
			ownerID, id,
		)
		if err != nil {
			return fmt.Errorf("unlink task: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("unlink task: %w", err)
		}
		if n == 0 {
			return ErrorNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

func (r *SQLiteTaskRepo) GetStats(ctx context.Context, ownerID int64) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN t.status >= 100 THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(t.status), 0.0)
		FROM tasks t
		JOIN user_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = ?
	`, ownerID).Scan(&s.Total, &s.Completed, &s.AvgStatus)
	if err != nil {
		return s, err
	}
	s.InProgress = s.Total - s.Completed
	return s, nil
}

func sqliteGetTask(ctx context.Context, q dbtx, id int64) (model.Task, error) {
	var t model.Task
	err := q.QueryRowContext(ctx,
		"SELECT id, title, description, status, created_at FROM tasks WHERE id = ?",
		id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

type SQLiteUserRepo struct {
	db *sql.DB
}

func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		u.Username, u.PasswordHash,
	)
	if err != nil {
		return u, mapSQLiteError(err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return u, err
	}
	err = r.db.QueryRowContext(ctx, "SELECT created_at FROM users WHERE id = ?", u.ID).Scan(&u.CreatedAt)
	return u, err
}

func (r *SQLiteUserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrorConflict, sqliteErr.Error())
		}
	}
	return err
}
