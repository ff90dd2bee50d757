package repo

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

// Stats агрегирует задачи одного пользователя
type Stats struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	InProgress int     `json:"in_progress"`
	AvgStatus  float64 `json:"avg_status"`
}

// UserRepository хранит учетные данные пользователей
type UserRepository interface {
	// Create returns ErrorConflict when the username is taken.
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// TaskRepository определяет интерфейс для работы с задачами.
// Every method is scoped to the owner through the user_tasks link.
type TaskRepository interface {
	Create(ctx context.Context, ownerID int64, t model.Task) (model.Task, error)
	Get(ctx context.Context, ownerID, id int64) (model.Task, error)
	List(ctx context.Context, ownerID int64) ([]model.Task, error)
	UpdateStatus(ctx context.Context, ownerID, id int64, status int) error
	Delete(ctx context.Context, ownerID, id int64) error
	GetStats(ctx context.Context, ownerID int64) (Stats, error)
}
