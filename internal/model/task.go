package model

import "time"

const (
	StatusMin = 0
	StatusMax = 100
)

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      int       `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Completed reports whether the task reached 100 percent.
func (t Task) Completed() bool {
	return t.Status >= StatusMax
}
