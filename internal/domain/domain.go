package domain

import (
	"github.com/yungbote/skillmapper-backend/internal/domain/progress"
	"github.com/yungbote/skillmapper-backend/internal/domain/roadmap"
	"github.com/yungbote/skillmapper-backend/internal/domain/streak"
)

type (
	ResourceType = roadmap.ResourceType
	Resource     = roadmap.Resource
	RoadmapStep  = roadmap.Step
	SkillCard    = roadmap.SkillCard
	NextSkill    = roadmap.NextSkill
	Suggestion   = roadmap.Suggestion

	RoadmapProgress = progress.RoadmapProgress

	StreakRecord = streak.StreakRecord
	Badge        = streak.Badge
	Milestone    = streak.Milestone
	Rarity       = streak.Rarity
)

const (
	ResourceVideo    = roadmap.ResourceVideo
	ResourceArticle  = roadmap.ResourceArticle
	ResourceCourse   = roadmap.ResourceCourse
	ResourceBook     = roadmap.ResourceBook
	ResourceTool     = roadmap.ResourceTool
	ResourcePractice = roadmap.ResourcePractice

	ProgressSchemaVersion = progress.CurrentSchemaVersion
	StreakDateLayout      = streak.DateLayout
)

// ParseResourceType coerces a model-supplied type to the known set.
var ParseResourceType = roadmap.ParseResourceType

// Models lists every persisted type, in migration order.
func Models() []interface{} {
	return []interface{}{
		&progress.RoadmapProgress{},
		&streak.StreakRecord{},
	}
}
