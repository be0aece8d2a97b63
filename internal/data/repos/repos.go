package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillmapper-backend/internal/data/repos/progress"
	"github.com/yungbote/skillmapper-backend/internal/data/repos/streak"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type ProgressRepo = progress.ProgressRepo
type StreakRepo = streak.StreakRepo

var ErrVersionConflict = progress.ErrVersionConflict

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return progress.NewProgressRepo(db, baseLog)
}

func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return streak.NewStreakRepo(db, baseLog)
}
