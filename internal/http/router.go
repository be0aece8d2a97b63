package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/skillmapper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillmapper-backend/internal/http/middleware"
	"github.com/yungbote/skillmapper-backend/internal/observability"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger
	// ServiceName names server spans; tracing middleware is skipped when empty.
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	RoadmapHandler  *httpH.RoadmapHandler
	ChatHandler     *httpH.ChatHandler
	ProgressHandler *httpH.ProgressHandler
	StreakHandler   *httpH.StreakHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.LimitBody(httpMW.DefaultBodyLimit))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Generation endpoints carry no user data.
		if cfg.RoadmapHandler != nil {
			api.POST("/resources", cfg.RoadmapHandler.Resources)
			api.POST("/suggestions", cfg.RoadmapHandler.Suggestions)
		}
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Chat)
		}
	}

	user := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			user.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Progress
		if cfg.ProgressHandler != nil {
			user.GET("/progress", cfg.ProgressHandler.Get)
			user.POST("/progress", cfg.ProgressHandler.Save)
		}

		// Streak
		if cfg.StreakHandler != nil {
			user.GET("/streak", cfg.StreakHandler.Get)
			user.POST("/streak/checkin", cfg.StreakHandler.CheckIn)
			user.PUT("/streak/goal", cfg.StreakHandler.SetWeeklyGoal)
		}
	}

	return r
}
