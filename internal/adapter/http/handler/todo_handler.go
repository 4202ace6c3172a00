package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/pkg/logger"
	. "todoapi/pkg/tracing"
)

type TodoHandler struct {
	svc       port.TodoService
	validator port.Validator
	Logger    *logger.Logger
}

func NewTodoHandler(svc port.TodoService, validator port.Validator, log *logger.Logger) *TodoHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &TodoHandler{
		svc:       svc,
		validator: validator,
		Logger:    log,
	}
}

// GetAll lists every todo, or only those matching ?completed=true|false.
func (t *TodoHandler) GetAll(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAll", []attribute.KeyValue{
		attribute.String("handler.operation", "GetAll"),
	})
	defer span.End()

	var (
		todos []domain.Todo
		err   error
	)

	if raw, ok := c.GetQuery("completed"); ok {
		completed, parseErr := strconv.ParseBool(raw)

		if parseErr != nil {
			SendBadRequestError(c, "completed", "completed must be true or false")
			return
		}

		span.SetAttributes(attribute.Bool("todo.completed", completed))
		todos, err = t.svc.GetByCompleted(ctx, completed)
	} else {
		todos, err = t.svc.GetAll(ctx)
	}

	if err != nil {
		t.internalError(c, ctx, "Failed to list todos", err)
		return
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	SendSuccess(c, http.StatusOK, response.NewTodoListResponse(todos))
}

func (t *TodoHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetByID", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	todo, found, err := t.svc.GetByID(ctx, id)

	if err != nil {
		t.internalError(c, ctx, "Failed to get todo", err, zap.Int64("todo_id", id))
		return
	}

	if !found {
		SendNotFound(c)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (t *TodoHandler) Create(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.Create", nil)
	defer span.End()

	params, ok := t.bindTodo(c)
	if !ok {
		return
	}

	todo, err := t.svc.Create(ctx, params.ToDomain())

	if err != nil {
		t.internalError(c, ctx, "Failed to create todo", err)
		return
	}

	t.Logger.Ctx(ctx).Info("Todo created", zap.Int64("todo_id", todo.ID))

	SendSuccess(c, http.StatusCreated, response.NewTodoResponse(todo))
}

func (t *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.Update", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	params, ok := t.bindTodo(c)
	if !ok {
		return
	}

	todo, err := t.svc.Update(ctx, id, params.ToDomain())

	if errors.Is(err, domain.ErrTodoNotFound) {
		SendNotFound(c)
		return
	}

	if err != nil {
		t.internalError(c, ctx, "Failed to update todo", err, zap.Int64("todo_id", id))
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (t *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.Delete", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	err := t.svc.Delete(ctx, id)

	if errors.Is(err, domain.ErrTodoNotFound) {
		SendNotFound(c)
		return
	}

	if err != nil {
		t.internalError(c, ctx, "Failed to delete todo", err, zap.Int64("todo_id", id))
		return
	}

	SendNoContent(c)
}

func (t *TodoHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.Toggle", []attribute.KeyValue{
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	todo, err := t.svc.Toggle(ctx, id)

	if errors.Is(err, domain.ErrTodoNotFound) {
		SendNotFound(c)
		return
	}

	if err != nil {
		t.internalError(c, ctx, "Failed to toggle todo", err, zap.Int64("todo_id", id))
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (t *TodoHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if err := t.svc.Health(ctx); err != nil {
		t.Logger.Ctx(ctx).Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable"})
		return
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}

func (t *TodoHandler) bindTodo(c *gin.Context) (request.TodoRequest, bool) {
	var params request.TodoRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "body", "Invalid JSON body")
		return params, false
	}

	if err := t.validator.ValidateStruct(params); err != nil {
		SendValidationError(c, t.validator.FormatValidationErrors(err))
		return params, false
	}

	return params, true
}

func (t *TodoHandler) internalError(c *gin.Context, ctx context.Context, msg string, err error, fields ...zap.Field) {
	AddSpanError(trace.SpanFromContext(ctx), err)

	t.Logger.Ctx(ctx).Error(msg, append(fields, zap.Error(err), zap.String("trace_id", GetTraceID(ctx)))...)

	SendInternalError(c)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)

	if err != nil {
		SendBadRequestError(c, "id", "id must be an integer")
		return 0, false
	}

	return id, true
}
