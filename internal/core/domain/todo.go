package domain

import (
	"errors"
	"time"
)

var ErrTodoNotFound = errors.New("todo not found")

type Todo struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Todo) IsNew() bool {
	return t.ID == 0
}

// Toggle flips the completion flag in place.
func (t *Todo) Toggle() {
	t.Completed = !t.Completed
}

// Replace overwrites every mutable field with the values from other,
// including clearing the description when other has none.
func (t *Todo) Replace(other Todo) {
	t.Title = other.Title
	t.Description = other.Description
	t.Completed = other.Completed
}

func (t *Todo) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"updated_at":  t.UpdatedAt,
	}
}
