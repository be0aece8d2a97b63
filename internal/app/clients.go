package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/skillmapper-backend/internal/platform/cache"
	"github.com/yungbote/skillmapper-backend/internal/platform/linkcheck"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
	"github.com/yungbote/skillmapper-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI openai.Client
	Links  *linkcheck.Prober
	// Cache is nil when neither the roadmap nor the link cache is enabled.
	Cache cache.Cache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Cache
	var c cache.Cache
	if cfg.RoadmapCacheTTL > 0 || cfg.LinkCheck.CacheTTL > 0 {
		if strings.TrimSpace(cfg.Redis.Addr) != "" {
			rc, err := cache.NewRedis(ctx, log, cache.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   "skillmapper:",
			})
			if err != nil {
				return Clients{}, fmt.Errorf("init redis cache: %w", err)
			}
			c = rc
		} else {
			c = cache.NewMemory(10000)
		}
	}

	// Openai
	llm, err := openai.NewClient(log, openai.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Model,
		Timeout:    cfg.OpenAI.Timeout,
		MaxRetries: cfg.OpenAI.MaxRetries,
	})
	if err != nil {
		if c != nil {
			_ = c.Close()
		}
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Link prober
	lc := linkcheck.DefaultConfig()
	lc.Concurrency = cfg.LinkCheck.Concurrency
	lc.Timeout = cfg.LinkCheck.Timeout
	lc.RequestTimeout = cfg.LinkCheck.RequestTimeout
	lc.BlockPrivate = cfg.LinkCheck.BlockPrivate
	lc.CacheTTL = cfg.LinkCheck.CacheTTL
	var opts []linkcheck.Option
	if c != nil && lc.CacheTTL > 0 {
		opts = append(opts, linkcheck.WithCache(c))
	}

	return Clients{
		OpenAI: llm,
		Links:  linkcheck.New(log, lc, opts...),
		Cache:  c,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
