package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if err := s.validate(t); err != nil { // Валидация модели на корректность введенных данных
		return t, err
	}
	t.Status = model.StatusMin

	created, err := s.repo.Create(ctx, ownerID, t)
	if err != nil {
		return created, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id int64) (model.Task, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *TaskService) List(ctx context.Context, ownerID int64) ([]model.Task, error) {
	return s.repo.List(ctx, ownerID)
}

// UpdateStatus takes int64 so out-of-range input is rejected before any narrowing.
func (s *TaskService) UpdateStatus(ctx context.Context, ownerID, id int64, status int64) error {
	if status < model.StatusMin || status > model.StatusMax {
		return fmt.Errorf("%w: status must be an integer between %d and %d", ErrValidation, model.StatusMin, model.StatusMax)
	}
	return s.repo.UpdateStatus(ctx, ownerID, id, int(status))
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func (s *TaskService) GetStats(ctx context.Context, ownerID int64) (repo.Stats, error) {
	return s.repo.GetStats(ctx, ownerID)
}

func (s *TaskService) validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	return nil
}
