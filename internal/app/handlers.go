package app

import (
	"github.com/yungbote/skillmapper-backend/internal/http"
	httpH "github.com/yungbote/skillmapper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillmapper-backend/internal/http/middleware"
	"github.com/yungbote/skillmapper-backend/internal/observability"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type Middleware struct {
	// Auth is nil when AUTH_JWT_SECRET is unset.
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Roadmap  *httpH.RoadmapHandler
	Chat     *httpH.ChatHandler
	Progress *httpH.ProgressHandler
	Streak   *httpH.StreakHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Roadmap:  httpH.NewRoadmapHandler(log, services.Roadmap),
		Chat:     httpH.NewChatHandler(services.Chat),
		Progress: httpH.NewProgressHandler(services.Progress),
		Streak:   httpH.NewStreakHandler(services.Streak),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.AuthJWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET not set; progress and streak routes accept any userId")
		return Middleware{}
	}
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, cfg.AuthJWTSecret)}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	rc := http.RouterConfig{
		Log:             log,
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         metrics,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		RoadmapHandler:  handlers.Roadmap,
		ChatHandler:     handlers.Chat,
		ProgressHandler: handlers.Progress,
		StreakHandler:   handlers.Streak,
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = cfg.Otel.ServiceName
	}
	return rc
}
