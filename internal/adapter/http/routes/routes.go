package routes

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
	"todoapi/pkg/logger"
)

type RouterConfig struct {
	TodoHandler *handler.TodoHandler
	Metrics     *telemetry.AppMetrics
	Logger      *logger.Logger
	Cache       port.CacheRepository
	Config      *config.AppConfig
}

const todosPath = "/api/todos"

func SetupRouter(rc RouterConfig) *gin.Engine {
	cfg := rc.Config
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}

	log := rc.Logger
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.NewHTTPSEnforcer(cfg.EnforceHTTPS, log.Logger.Logger).Middleware())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(log))
	router.Use(middleware.CORS(cfg.AllowedOrigin))

	if rc.Metrics != nil {
		router.Use(middleware.Metrics(rc.Metrics))
	}

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		}, log.Logger.Logger, rc.Metrics)

		router.Use(limiter.Middleware())
	}

	if cfg.CacheEnabled && rc.Cache != nil {
		responseCache := middleware.NewResponseCache(rc.Cache, todosPath, cfg.CacheTTL, log.Logger.Logger, rc.Metrics)
		router.Use(responseCache.Middleware())
	}

	router.GET("/health", rc.TodoHandler.Health)

	todos := router.Group(todosPath)
	{
		todos.GET("", rc.TodoHandler.GetAll)
		todos.POST("", rc.TodoHandler.Create)
		todos.GET("/:id", rc.TodoHandler.GetByID)
		todos.PUT("/:id", rc.TodoHandler.Update)
		todos.DELETE("/:id", rc.TodoHandler.Delete)
		todos.PATCH("/:id/toggle", rc.TodoHandler.Toggle)
	}

	return router
}
