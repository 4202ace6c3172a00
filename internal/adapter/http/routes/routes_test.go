package routes_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	. "todoapi/pkg/test"

	"todoapi/internal/adapter/cache/memory"
	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/service"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
)

func newRouter(cfg *config.AppConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := repository.NewTodoRepository(InitTestDB(), nil)
	todoHandler := handler.NewTodoHandler(service.NewTodoService(repo, nil), validation.NewValidator(), nil)

	return routes.SetupRouter(routes.RouterConfig{
		TodoHandler: todoHandler,
		Metrics:     telemetry.NewAppMetrics(prometheus.NewRegistry()),
		Cache:       memory.New(time.Minute),
		Config:      cfg,
	})
}

func send(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	router.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_FullStack(t *testing.T) {
	RegisterTestingT(t)

	router := newRouter(config.GetDefaultConfig())

	w := send(router, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`)

	Expect(w.Code).To(Equal(http.StatusCreated))
	Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("100"))
	Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:5173"))

	w = send(router, http.MethodPatch, "/api/todos/1/toggle", "")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(MatchJSON(`{"id":1,"title":"Buy milk","description":null,"completed":true}`))

	w = send(router, http.MethodDelete, "/api/todos/1", "")

	Expect(w.Code).To(Equal(http.StatusNoContent))

	w = send(router, http.MethodGet, "/api/todos/1", "")

	Expect(w.Code).To(Equal(http.StatusNotFound))

	w = send(router, http.MethodGet, "/health", "")

	Expect(w.Code).To(Equal(http.StatusOK))
}

func TestSetupRouter_Preflight(t *testing.T) {
	RegisterTestingT(t)

	router := newRouter(config.GetDefaultConfig())

	w := send(router, http.MethodOptions, "/api/todos/1", "")

	Expect(w.Code).To(Equal(http.StatusNoContent))
}

func TestSetupRouter_RateLimit(t *testing.T) {
	RegisterTestingT(t)

	cfg := config.GetDefaultConfig()
	cfg.RateLimit.Requests = 2

	router := newRouter(cfg)

	send(router, http.MethodGet, "/api/todos", "")
	send(router, http.MethodGet, "/api/todos", "")

	w := send(router, http.MethodGet, "/api/todos", "")

	Expect(w.Code).To(Equal(http.StatusTooManyRequests))
}

func TestSetupRouter_CachedListSeesWrites(t *testing.T) {
	RegisterTestingT(t)

	cfg := config.GetDefaultConfig()
	cfg.CacheEnabled = true
	cfg.CacheTTL = time.Minute

	router := newRouter(cfg)

	w := send(router, http.MethodGet, "/api/todos", "")

	Expect(w.Body.String()).To(Equal("[]"))

	send(router, http.MethodPost, "/api/todos", `{"title":"Cached?"}`)

	w = send(router, http.MethodGet, "/api/todos", "")

	Expect(w.Header().Get("X-Cache")).To(Equal("MISS"))
	Expect(w.Body.String()).To(ContainSubstring("Cached?"))

	w = send(router, http.MethodGet, "/api/todos", "")

	Expect(w.Header().Get("X-Cache")).To(Equal("HIT"))
	Expect(w.Body.String()).To(ContainSubstring(fmt.Sprintf(`"id":%d`, 1)))
}
