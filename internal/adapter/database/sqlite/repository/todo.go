package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const entity = "todo"

type TodoRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) Save(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	if todo.IsNew() {
		return tr.insert(ctx, todo)
	}

	return tr.update(ctx, todo)
}

func (tr *TodoRepository) FindByID(ctx context.Context, id int64) (domain.Todo, bool, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "FindByID", entity, []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "FindByID", entity)

	query, args, err := tr.db.QueryBuilder.Select(sqlite.TodoColumns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		op.End(err)
		return domain.Todo{}, false, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "FindByID", entity, query, args)

	todo, err := sqlite.ScanTodo(tr.db.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		op.End(nil)
		return domain.Todo{}, false, nil
	}

	if err != nil {
		err = fmt.Errorf("find todo %d: %w", id, err)
		op.End(err)
		return domain.Todo{}, false, err
	}

	op.End(nil)

	return todo, true, nil
}

func (tr *TodoRepository) FindAll(ctx context.Context) ([]domain.Todo, error) {
	return tr.list(ctx, "FindAll", nil)
}

func (tr *TodoRepository) FindByCompleted(ctx context.Context, completed bool) ([]domain.Todo, error) {
	return tr.list(ctx, "FindByCompleted", sq.Eq{"completed": completed})
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "DeleteByID", entity, []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "DELETE"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "DeleteByID", entity)

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		op.End(err)
		return err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "DeleteByID", entity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		err = fmt.Errorf("delete todo %d: %w", id, err)
		op.End(err)
		return err
	}

	if rowsAffected, err := result.RowsAffected(); err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	}

	op.End(nil)

	return nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	return tr.db.PingContext(ctx)
}

func (tr *TodoRepository) insert(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Insert", entity, []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT"),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "Insert", entity)

	now := time.Now().UTC()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("title", "description", "completed", "created_at", "updated_at").
		Values(todo.Title, todo.Description, todo.Completed, now, now).
		ToSql()

	if err != nil {
		op.End(err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Insert", entity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		err = fmt.Errorf("insert todo: %w", err)
		op.End(err)
		return domain.Todo{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		op.End(err)
		return domain.Todo{}, err
	}

	span.SetAttributes(attribute.Int64("todo.id", id))

	saved, found, err := tr.FindByID(ctx, id)

	if err == nil && !found {
		err = fmt.Errorf("todo %d vanished after insert: %w", id, domain.ErrTodoNotFound)
	}

	op.End(err)

	return saved, err
}

func (tr *TodoRepository) update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", entity, []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "UPDATE"),
		attribute.Int64("todo.id", todo.ID),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "Update", entity)

	todo.UpdatedAt = time.Now().UTC()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(todo.ToMap()).
		Where(sq.Eq{"id": todo.ID}).
		ToSql()

	if err != nil {
		op.End(err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Update", entity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		err = fmt.Errorf("update todo %d: %w", todo.ID, err)
		op.End(err)
		return domain.Todo{}, err
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		op.End(err)
		return domain.Todo{}, err
	}

	if rowsAffected == 0 {
		err = fmt.Errorf("update todo %d: %w", todo.ID, domain.ErrTodoNotFound)
		op.End(err)
		return domain.Todo{}, err
	}

	saved, _, err := tr.FindByID(ctx, todo.ID)
	op.End(err)

	return saved, err
}

func (tr *TodoRepository) list(ctx context.Context, operation string, filter sq.Sqlizer) ([]domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, operation, entity, []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, operation, entity)

	builder := tr.db.QueryBuilder.Select(sqlite.TodoColumns...).
		From("todos").
		OrderBy("id ASC")

	if filter != nil {
		builder = builder.Where(filter)
	}

	query, args, err := builder.ToSql()

	if err != nil {
		op.End(err)
		return nil, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, operation, entity, query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		err = fmt.Errorf("list todos: %w", err)
		op.End(err)
		return nil, err
	}

	defer rows.Close()

	todos, err := sqlite.ScanTodos(rows)

	if err != nil {
		op.End(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(todos)))
	op.End(nil)

	return todos, nil
}
