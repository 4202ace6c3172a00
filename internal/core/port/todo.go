package port

import (
	"context"

	"todoapi/internal/core/domain"
)

type TodoRepository interface {
	Save(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	FindByID(ctx context.Context, id int64) (domain.Todo, bool, error)
	FindAll(ctx context.Context) ([]domain.Todo, error)
	FindByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error)
	DeleteByID(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type TodoService interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	GetByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error)
	GetByID(ctx context.Context, id int64) (domain.Todo, bool, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Update(ctx context.Context, id int64, todo domain.Todo) (domain.Todo, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) (domain.Todo, error)
	Health(ctx context.Context) error
}
