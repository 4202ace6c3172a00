package request

import "todoapi/internal/core/domain"

// TodoRequest is the body accepted by create and update. Any id sent by the
// client is ignored.
type TodoRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   bool    `json:"completed"`
}

func (r TodoRequest) ToDomain() domain.Todo {
	return domain.Todo{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}
