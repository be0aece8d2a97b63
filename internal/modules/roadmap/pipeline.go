package roadmap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/skillmapper-backend/internal/domain"
	"github.com/yungbote/skillmapper-backend/internal/observability"
	"github.com/yungbote/skillmapper-backend/internal/platform/cache"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
	"github.com/yungbote/skillmapper-backend/internal/platform/openai"
)

const (
	KindRoadmap     = "roadmap"
	KindSuggestions = "suggestions"
)

type RoadmapResult struct {
	Steps   []types.RoadmapStep `json:"steps"`
	Status  Status              `json:"status"`
	Dropped []Dropped           `json:"dropped"`
}

type SuggestionsResult struct {
	Suggestion   *types.Suggestion   `json:"suggestion"`
	RoadmapSteps []types.RoadmapStep `json:"roadmapSteps"`
	Status       Status              `json:"status"`
	Dropped      []Dropped           `json:"dropped,omitempty"`
}

type Config struct {
	MaxTokens int
	// ValidateSuggestionLinks runs the link filter over suggestion steps too.
	ValidateSuggestionLinks bool
	// CacheTTL enables result caching when positive.
	CacheTTL time.Duration
}

type Pipeline struct {
	log   *logger.Logger
	llm   openai.Client
	links LinkChecker
	cache cache.Cache
	cfg   Config
}

// NewPipeline wires the ingestion steps. c may be nil.
func NewPipeline(log *logger.Logger, llm openai.Client, links LinkChecker, c cache.Cache, cfg Config) *Pipeline {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1800
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		log:   log.With("service", "RoadmapPipeline"),
		llm:   llm,
		links: links,
		cache: c,
		cfg:   cfg,
	}
}

// Roadmap builds, filters and returns a three-step roadmap. The error is
// non-nil only when the completion API could not be reached; the result
// then carries StatusUpstreamUnreachable.
func (p *Pipeline) Roadmap(ctx context.Context, career, difficulty string) (RoadmapResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "roadmap.generate")
	defer span.End()

	key := cacheKey(KindRoadmap, career, difficulty)
	var cached RoadmapResult
	if p.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	res := RoadmapResult{Steps: []types.RoadmapStep{}, Dropped: []Dropped{}}
	text, err := p.llm.Complete(ctx, KindRoadmap, RoadmapPrompt(career, difficulty), p.cfg.MaxTokens)
	if err != nil && !isMalformedReply(err) {
		res.Status = StatusUpstreamUnreachable
		p.finish(KindRoadmap, res.Status)
		return res, fmt.Errorf("generate roadmap: %w", err)
	}

	steps, err := ParseSteps(text)
	if err != nil {
		p.log.Warn("roadmap reply unparseable", "error", err, "chars", len(text))
		res.Status = StatusUpstreamMalformed
		p.finish(KindRoadmap, res.Status)
		return res, nil
	}

	res.Steps, res.Dropped = FilterSteps(ctx, p.links, steps)
	res.Status = StatusOK
	if countResources(res.Steps) == 0 {
		res.Status = StatusValidatedEmpty
	}
	span.SetAttributes(
		attribute.Int("roadmap.steps", len(res.Steps)),
		attribute.Int("roadmap.dropped", len(res.Dropped)),
		attribute.String("roadmap.status", string(res.Status)),
	)
	p.finish(KindRoadmap, res.Status)
	if res.Status == StatusOK {
		p.toCache(ctx, key, res)
	}
	return res, nil
}

// Suggestions returns a skill recommendation with its own roadmap steps.
// Links are probed only when ValidateSuggestionLinks is set.
func (p *Pipeline) Suggestions(ctx context.Context, career, difficulty string) (SuggestionsResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "roadmap.suggestions")
	defer span.End()

	key := cacheKey(KindSuggestions, career, difficulty)
	var cached SuggestionsResult
	if p.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	var res SuggestionsResult
	text, err := p.llm.Complete(ctx, KindSuggestions, SuggestionsPrompt(career, difficulty), p.cfg.MaxTokens)
	if err != nil && !isMalformedReply(err) {
		res.Status = StatusUpstreamUnreachable
		p.finish(KindSuggestions, res.Status)
		return res, fmt.Errorf("generate suggestions: %w", err)
	}

	sug, steps, err := ParseSuggestions(text)
	if err != nil {
		p.log.Warn("suggestions reply unparseable", "error", err, "chars", len(text))
		res.Status = StatusUpstreamMalformed
		p.finish(KindSuggestions, res.Status)
		return res, nil
	}
	res.Suggestion = sug
	res.RoadmapSteps = steps
	res.Status = StatusOK
	if steps != nil && p.cfg.ValidateSuggestionLinks {
		res.RoadmapSteps, res.Dropped = FilterSteps(ctx, p.links, steps)
		if countResources(res.RoadmapSteps) == 0 {
			res.Status = StatusValidatedEmpty
		}
	}
	if sug == nil && steps == nil {
		res.Status = StatusValidatedEmpty
	}
	p.finish(KindSuggestions, res.Status)
	if res.Status == StatusOK {
		p.toCache(ctx, key, res)
	}
	return res, nil
}

// isMalformedReply reports an answered but unusable completion. Its text is
// empty, so parsing degrades the result to upstream_malformed.
func isMalformedReply(err error) bool {
	return errors.Is(err, openai.ErrMalformedReply)
}

// IsUpstream reports whether err came from an unreachable completion API.
func IsUpstream(err error) bool {
	return errors.Is(err, openai.ErrUpstream)
}

func (p *Pipeline) finish(kind string, status Status) {
	observability.Current().IncIngestOutcome(kind, string(status))
	p.log.Info("pipeline finished", "kind", kind, "status", status)
}

func cacheKey(kind, career, difficulty string) string {
	sum := sha256.Sum256([]byte(kind + "|" + career + "|" + difficulty))
	return "roadmap:" + hex.EncodeToString(sum[:])
}

func (p *Pipeline) fromCache(ctx context.Context, key string, dst any) bool {
	if p.cache == nil || p.cfg.CacheTTL <= 0 {
		return false
	}
	raw, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("roadmap cache get failed", "error", err)
		return false
	}
	observability.Current().IncCacheLookup("roadmap", ok)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		p.log.Warn("roadmap cache entry unreadable", "error", err)
		return false
	}
	return true
}

func (p *Pipeline) toCache(ctx context.Context, key string, v any) {
	if p.cache == nil || p.cfg.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		p.log.Warn("roadmap cache encode failed", "error", err)
		return
	}
	if err := p.cache.Set(context.WithoutCancel(ctx), key, raw, p.cfg.CacheTTL); err != nil {
		p.log.Warn("roadmap cache set failed", "error", err)
	}
}
