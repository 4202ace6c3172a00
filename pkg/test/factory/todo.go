package factory

import (
	fab "github.com/Goldziher/fabricator"

	"todoapi/internal/core/domain"
)

type todoAttributes struct {
	Title       string
	Description string
	Completed   bool
}

// NewTodo builds an unsaved todo with generated values. customData keys are
// todoAttributes field names; an empty Description becomes nil.
func NewTodo(customData ...map[string]any) domain.Todo {
	overrides := map[string]any{"Completed": false}

	for _, data := range customData {
		for key, value := range data {
			overrides[key] = value
		}
	}

	attrs := fab.New(todoAttributes{}).Build(overrides)

	todo := domain.Todo{
		Title:     attrs.Title,
		Completed: attrs.Completed,
	}

	if attrs.Title == "" {
		todo.Title = "Generated todo"
	}

	if attrs.Description != "" {
		description := attrs.Description
		todo.Description = &description
	}

	return todo
}
