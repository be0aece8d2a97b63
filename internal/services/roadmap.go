package services

import (
	"context"

	"github.com/yungbote/skillmapper-backend/internal/modules/roadmap"
)

// RoadmapService is implemented by *roadmap.Pipeline.
type RoadmapService interface {
	Roadmap(ctx context.Context, career, difficulty string) (roadmap.RoadmapResult, error)
	Suggestions(ctx context.Context, career, difficulty string) (roadmap.SuggestionsResult, error)
}

var _ RoadmapService = (*roadmap.Pipeline)(nil)
