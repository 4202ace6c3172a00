package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const serviceName = "todo"

type TodoService struct {
	repo      port.TodoRepository
	telemetry port.Telemetry
}

func NewTodoService(repo port.TodoRepository, telemetry port.Telemetry) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoService{
		repo:      repo,
		telemetry: telemetry,
	}
}

func (ts *TodoService) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "GetAll", nil)
	defer span.End()

	startTime := time.Now()

	todos, err := ts.repo.FindAll(ctx)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "GetAll", time.Since(startTime), err)

	if err != nil {
		return nil, err
	}

	return todos, nil
}

func (ts *TodoService) GetByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "GetByCompleted", []attribute.KeyValue{
		attribute.Bool("todo.completed", completed),
	})
	defer span.End()

	startTime := time.Now()

	todos, err := ts.repo.FindByCompleted(ctx, completed)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "GetByCompleted", time.Since(startTime), err)

	if err != nil {
		return nil, err
	}

	return todos, nil
}

func (ts *TodoService) GetByID(ctx context.Context, id int64) (domain.Todo, bool, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "GetByID", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	startTime := time.Now()

	todo, found, err := ts.repo.FindByID(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "GetByID", time.Since(startTime), err)

	return todo, found, err
}

func (ts *TodoService) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "Create", nil)
	defer span.End()

	startTime := time.Now()

	newTodo := domain.Todo{
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
	}

	saved, err := ts.repo.Save(ctx, newTodo)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "Create", time.Since(startTime), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "created", serviceName, saved.ID, map[string]interface{}{
		"completed": saved.Completed,
	})

	return saved, nil
}

// Update replaces title, description and completed of the todo with the given
// id. Fields missing from todo overwrite the stored values.
func (ts *TodoService) Update(ctx context.Context, id int64, todo domain.Todo) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "Update", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	startTime := time.Now()

	updated, err := ts.mutate(ctx, id, func(current *domain.Todo) {
		current.Replace(todo)
	})
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "Update", time.Since(startTime), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "updated", serviceName, updated.ID, map[string]interface{}{
		"completed": updated.Completed,
	})

	return updated, nil
}

func (ts *TodoService) Toggle(ctx context.Context, id int64) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "Toggle", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	startTime := time.Now()

	toggled, err := ts.mutate(ctx, id, func(current *domain.Todo) {
		current.Toggle()
	})
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "Toggle", time.Since(startTime), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "toggled", serviceName, toggled.ID, map[string]interface{}{
		"completed": toggled.Completed,
	})

	return toggled, nil
}

// Delete removes the todo, failing with domain.ErrTodoNotFound when it does not
// exist. The repository delete is a no-op for missing rows, so existence is
// checked first.
func (ts *TodoService) Delete(ctx context.Context, id int64) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "Delete", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	startTime := time.Now()

	err := ts.delete(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "Delete", time.Since(startTime), err)

	if err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "deleted", serviceName, id, nil)

	return nil
}

func (ts *TodoService) Health(ctx context.Context) error {
	return ts.repo.Ping(ctx)
}

func (ts *TodoService) delete(ctx context.Context, id int64) error {
	_, found, err := ts.repo.FindByID(ctx, id)

	if err != nil {
		return err
	}

	if !found {
		return fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	return ts.repo.DeleteByID(ctx, id)
}

func (ts *TodoService) mutate(ctx context.Context, id int64, apply func(*domain.Todo)) (domain.Todo, error) {
	current, found, err := ts.repo.FindByID(ctx, id)

	if err != nil {
		return domain.Todo{}, err
	}

	if !found {
		return domain.Todo{}, fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	apply(&current)

	return ts.repo.Save(ctx, current)
}
