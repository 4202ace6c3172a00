package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/adapter/database/postgres"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const entity = "todo"

var columns = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

type TodoRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *postgres.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{db: db, telemetry: telemetry}
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var todo domain.Todo

	err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

	return todo, err
}

func (tr *TodoRepository) Save(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	operation := "Update"
	if todo.IsNew() {
		operation = "Insert"
	}

	ctx, span := tr.telemetry.StartRepositorySpan(ctx, operation, entity, []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.Int64("todo.id", todo.ID),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, operation, entity)

	now := time.Now().UTC()

	var builder sq.Sqlizer

	if todo.IsNew() {
		builder = tr.db.QueryBuilder.Insert("todos").
			Columns("title", "description", "completed", "created_at", "updated_at").
			Values(todo.Title, todo.Description, todo.Completed, now, now).
			Suffix("RETURNING id, title, description, completed, created_at, updated_at")
	} else {
		todo.UpdatedAt = now

		builder = tr.db.QueryBuilder.Update("todos").
			SetMap(todo.ToMap()).
			Where(sq.Eq{"id": todo.ID}).
			Suffix("RETURNING id, title, description, completed, created_at, updated_at")
	}

	query, args, err := builder.ToSql()

	if err != nil {
		op.End(err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, operation, entity, query, args)

	saved, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("update todo %d: %w", todo.ID, domain.ErrTodoNotFound)
	} else if err != nil {
		err = fmt.Errorf("save todo: %w", err)
	}

	op.End(err)

	if err != nil {
		return domain.Todo{}, err
	}

	return saved, nil
}

func (tr *TodoRepository) FindByID(ctx context.Context, id int64) (domain.Todo, bool, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "FindByID", entity, []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "FindByID", entity)

	query, args, err := tr.db.QueryBuilder.Select(columns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		op.End(err)
		return domain.Todo{}, false, err
	}

	todo, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) {
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
		attribute.String("db.system", "postgresql"),
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

	tag, err := tr.db.Exec(ctx, query, args...)

	if err != nil {
		err = fmt.Errorf("delete todo %d: %w", id, err)
		op.End(err)
		return err
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	op.End(nil)

	return nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	return tr.db.Ping(ctx)
}

func (tr *TodoRepository) list(ctx context.Context, operation string, filter sq.Sqlizer) ([]domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, operation, entity, []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, operation, entity)

	builder := tr.db.QueryBuilder.Select(columns...).
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

	rows, err := tr.db.Query(ctx, query, args...)

	if err != nil {
		err = fmt.Errorf("list todos: %w", err)
		op.End(err)
		return nil, err
	}

	defer rows.Close()

	todos := make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := scanTodo(rows)

		if err != nil {
			op.End(err)
			return nil, err
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		op.End(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(todos)))
	op.End(nil)

	return todos, nil
}
