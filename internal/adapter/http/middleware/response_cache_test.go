package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"todoapi/internal/adapter/cache/memory"
)

type countingAPI struct {
	router *gin.Engine
	calls  int
}

func newCachedAPI() *countingAPI {
	gin.SetMode(gin.TestMode)

	api := &countingAPI{router: gin.New()}
	rc := NewResponseCache(memory.New(time.Minute), "/api/todos", time.Minute, zap.NewNop(), nil)

	api.router.Use(rc.Middleware())

	api.router.GET("/api/todos", func(c *gin.Context) {
		api.calls++
		c.JSON(http.StatusOK, gin.H{"calls": api.calls})
	})
	api.router.GET("/api/todos/:id", func(c *gin.Context) {
		api.calls++
		c.Status(http.StatusNotFound)
	})
	api.router.POST("/api/todos", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	api.router.PUT("/api/todos/:id", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	return api
}

func (api *countingAPI) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(""))
	api.router.ServeHTTP(w, req)
	return w
}

func TestResponseCache_HitAfterMiss(t *testing.T) {
	RegisterTestingT(t)

	api := newCachedAPI()

	first := api.do(http.MethodGet, "/api/todos")

	Expect(first.Header().Get("X-Cache")).To(Equal("MISS"))

	second := api.do(http.MethodGet, "/api/todos")

	Expect(second.Code).To(Equal(http.StatusOK))
	Expect(second.Header().Get("X-Cache")).To(Equal("HIT"))
	Expect(second.Body.String()).To(Equal(first.Body.String()))
	Expect(second.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	Expect(api.calls).To(Equal(1))
}

func TestResponseCache_QueryIsPartOfKey(t *testing.T) {
	RegisterTestingT(t)

	api := newCachedAPI()

	api.do(http.MethodGet, "/api/todos")
	api.do(http.MethodGet, "/api/todos?completed=true")

	Expect(api.calls).To(Equal(2))
}

func TestResponseCache_SkipsNonOK(t *testing.T) {
	RegisterTestingT(t)

	api := newCachedAPI()

	api.do(http.MethodGet, "/api/todos/1")
	w := api.do(http.MethodGet, "/api/todos/1")

	Expect(w.Code).To(Equal(http.StatusNotFound))
	Expect(api.calls).To(Equal(2))
}

func TestResponseCache_InvalidatedBySuccessfulWrite(t *testing.T) {
	RegisterTestingT(t)

	api := newCachedAPI()

	api.do(http.MethodGet, "/api/todos")
	api.do(http.MethodPut, "/api/todos/1")
	api.do(http.MethodGet, "/api/todos")

	Expect(api.calls).To(Equal(1))

	api.do(http.MethodPost, "/api/todos")
	w := api.do(http.MethodGet, "/api/todos")

	Expect(w.Header().Get("X-Cache")).To(Equal("MISS"))
	Expect(api.calls).To(Equal(2))
}

func TestResponseCache_Invalidate(t *testing.T) {
	RegisterTestingT(t)

	store := memory.New(time.Minute)
	rc := NewResponseCache(store, "/api/todos", time.Minute, zap.NewNop(), nil)

	store.Set(context.Background(), "response:/api/todos", []byte("{}"), time.Minute)

	Expect(rc.Invalidate(context.Background())).To(Succeed())

	_, err := store.Get(context.Background(), "response:/api/todos")
	Expect(err).NotTo(BeNil())
}
