package sqlite

import (
	"database/sql"

	"todoapi/internal/core/domain"
)

// TodoColumns is the column order expected by ScanTodo.
var TodoColumns = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

func ScanTodo(row rowScanner) (domain.Todo, error) {
	var (
		todo        domain.Todo
		description sql.NullString
	)

	err := row.Scan(&todo.ID, &todo.Title, &description, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return domain.Todo{}, err
	}

	if description.Valid {
		todo.Description = &description.String
	}

	return todo, nil
}

func ScanTodos(rows *sql.Rows) ([]domain.Todo, error) {
	todos := make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := ScanTodo(rows)

		if err != nil {
			return nil, err
		}

		todos = append(todos, todo)
	}

	return todos, rows.Err()
}
