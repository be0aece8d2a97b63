package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/skillmapper-backend/internal/modules/roadmap"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
	"github.com/yungbote/skillmapper-backend/internal/services"
)

type Services struct {
	Roadmap  services.RoadmapService
	Chat     services.ChatService
	Progress services.ProgressService
	Streak   services.StreakService
}

func wirePipeline(log *logger.Logger, cfg Config, clients Clients) *roadmap.Pipeline {
	return roadmap.NewPipeline(log, clients.OpenAI, clients.Links, clients.Cache, roadmap.Config{
		MaxTokens:               cfg.RoadmapMaxTokens,
		ValidateSuggestionLinks: cfg.SuggestionsValidateLinks,
		CacheTTL:                cfg.RoadmapCacheTTL,
	})
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Roadmap:  wirePipeline(log, cfg, clients),
		Chat:     services.NewChatService(log, clients.OpenAI, cfg.ChatMaxTokens),
		Progress: services.NewProgressService(log, reposet.Progress),
		Streak:   services.NewStreakService(db, log, reposet.Streak),
	}
}

// NewPipeline wires the roadmap pipeline without a database, for one-shot
// runs. The returned func releases its clients.
func NewPipeline(ctx context.Context, log *logger.Logger, cfg Config) (*roadmap.Pipeline, func(), error) {
	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}
	return wirePipeline(log, cfg, clients), clients.Close, nil
}
