package repository_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "todoapi/pkg/test"

	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/pkg/test/factory"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	TodoRepo port.TodoRepository
}

var ctx = context.Background()

func (s *TodoRepositoryTestSuite) SetupTest() {
	db := InitTestDB()

	s.T().Cleanup(func() { db.Close() })

	s.TodoRepo = repository.NewTodoRepository(db, nil)
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) TestRepository_FindAll_Empty() {
	todos, err := s.TodoRepo.FindAll(ctx)

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
	Expect(todos).ToNot(BeNil())
}

func (s *TodoRepositoryTestSuite) TestRepository_Save_InsertAssignsID() {
	description := "Some description"

	todo, err := s.TodoRepo.Save(ctx, domain.Todo{
		Title:       "Buy milk",
		Description: &description,
	})

	Expect(err).To(BeNil())
	Expect(todo.ID).To(BeNumerically(">", 0))
	Expect(todo.Title).To(Equal("Buy milk"))
	Expect(*todo.Description).To(Equal("Some description"))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.CreatedAt.IsZero()).To(BeFalse())
}

func (s *TodoRepositoryTestSuite) TestRepository_Save_InsertAssignsUniqueIDs() {
	first, err := s.TodoRepo.Save(ctx, factory.NewTodo(map[string]any{"Title": "First"}))
	assert.NoError(s.T(), err)

	second, err := s.TodoRepo.Save(ctx, factory.NewTodo(map[string]any{"Title": "Second"}))
	assert.NoError(s.T(), err)

	Expect(second.ID).ToNot(Equal(first.ID))
}

func (s *TodoRepositoryTestSuite) TestRepository_Save_NilDescriptionStaysNil() {
	todo, err := s.TodoRepo.Save(ctx, domain.Todo{Title: "No description"})

	Expect(err).To(BeNil())

	found, ok, err := s.TodoRepo.FindByID(ctx, todo.ID)

	Expect(err).To(BeNil())
	Expect(ok).To(BeTrue())
	Expect(found.Description).To(BeNil())
}

func (s *TodoRepositoryTestSuite) TestRepository_Save_UpdatesExistingRow() {
	description := "old"
	todo, _ := s.TodoRepo.Save(ctx, domain.Todo{Title: "Old title", Description: &description})

	todo.Title = "New title"
	todo.Description = nil
	todo.Completed = true

	updated, err := s.TodoRepo.Save(ctx, todo)

	Expect(err).To(BeNil())
	Expect(updated.ID).To(Equal(todo.ID))
	Expect(updated.Title).To(Equal("New title"))
	Expect(updated.Description).To(BeNil())
	Expect(updated.Completed).To(BeTrue())

	all, _ := s.TodoRepo.FindAll(ctx)
	Expect(all).To(HaveLen(1))
}

func (s *TodoRepositoryTestSuite) TestRepository_Save_UpdateMissingRow() {
	_, err := s.TodoRepo.Save(ctx, domain.Todo{ID: 999, Title: "Ghost"})

	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoRepositoryTestSuite) TestRepository_FindByID_NotFound() {
	todo, found, err := s.TodoRepo.FindByID(ctx, 12345)

	Expect(err).To(BeNil())
	Expect(found).To(BeFalse())
	Expect(todo).To(Equal(domain.Todo{}))
}

func (s *TodoRepositoryTestSuite) TestRepository_FindAll_InsertionOrder() {
	for _, title := range []string{"one", "two", "three"} {
		_, err := s.TodoRepo.Save(ctx, factory.NewTodo(map[string]any{"Title": title}))
		assert.NoError(s.T(), err)
	}

	todos, err := s.TodoRepo.FindAll(ctx)

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(3))
	Expect(todos[0].Title).To(Equal("one"))
	Expect(todos[1].Title).To(Equal("two"))
	Expect(todos[2].Title).To(Equal("three"))
}

func (s *TodoRepositoryTestSuite) TestRepository_FindByCompleted() {
	s.TodoRepo.Save(ctx, factory.NewTodo(map[string]any{"Title": "open", "Completed": false}))
	s.TodoRepo.Save(ctx, factory.NewTodo(map[string]any{"Title": "done", "Completed": true}))
	s.TodoRepo.Save(ctx, factory.NewTodo(map[string]any{"Title": "also open", "Completed": false}))

	done, err := s.TodoRepo.FindByCompleted(ctx, true)

	Expect(err).To(BeNil())
	Expect(done).To(HaveLen(1))
	Expect(done[0].Title).To(Equal("done"))

	open, err := s.TodoRepo.FindByCompleted(ctx, false)

	Expect(err).To(BeNil())
	Expect(open).To(HaveLen(2))
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByID_Success() {
	todo, _ := s.TodoRepo.Save(ctx, factory.NewTodo(map[string]any{"Title": "Delete me"}))

	err := s.TodoRepo.DeleteByID(ctx, todo.ID)
	assert.NoError(s.T(), err)

	_, found, err := s.TodoRepo.FindByID(ctx, todo.ID)

	Expect(err).To(BeNil())
	Expect(found).To(BeFalse())
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByID_MissingIsNoop() {
	err := s.TodoRepo.DeleteByID(ctx, 404)

	assert.NoError(s.T(), err)
}

func (s *TodoRepositoryTestSuite) TestRepository_Ping() {
	Expect(s.TodoRepo.Ping(ctx)).To(Succeed())
}
