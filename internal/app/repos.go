package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillmapper-backend/internal/data/repos"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type Repos struct {
	Progress repos.ProgressRepo
	Streak   repos.StreakRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Progress: repos.NewProgressRepo(db, log),
		Streak:   repos.NewStreakRepo(db, log),
	}
}
