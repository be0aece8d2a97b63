package streak

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/skillmapper-backend/internal/data/db"
	types "github.com/yungbote/skillmapper-backend/internal/domain"
	"github.com/yungbote/skillmapper-backend/internal/platform/dbctx"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type StreakRepo interface {
	Get(dbc dbctx.Context, userID string) (*types.StreakRecord, error)
	// GetForUpdate reads the row under a row lock where the database has
	// them. Call it inside a transaction.
	GetForUpdate(dbc dbctx.Context, userID string) (*types.StreakRecord, error)
	Save(dbc dbctx.Context, row *types.StreakRecord) error
}

type streakRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return &streakRepo{
		db:  db,
		log: baseLog.With("repo", "StreakRepo"),
	}
}

func (r *streakRepo) Get(dbc dbctx.Context, userID string) (*types.StreakRecord, error) {
	return r.find(dbc.DB(r.db), userID)
}

func (r *streakRepo) GetForUpdate(dbc dbctx.Context, userID string) (*types.StreakRecord, error) {
	t := dbc.DB(r.db)
	// sqlite has no row locks; its single writer connection already
	// serializes the transaction.
	if db.IsPostgres(t) {
		t = t.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(t, userID)
}

func (r *streakRepo) find(t *gorm.DB, userID string) (*types.StreakRecord, error) {
	if userID == "" {
		return nil, nil
	}
	var row types.StreakRecord
	if err := t.Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.UserID == "" {
		return nil, nil
	}
	return &row, nil
}

func (r *streakRepo) Save(dbc dbctx.Context, row *types.StreakRecord) error {
	if row == nil || row.UserID == "" {
		return fmt.Errorf("streak row requires user id")
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_streak",
			"longest_streak",
			"total_days",
			"last_activity_date",
			"weekly_goal",
			"weekly_progress",
			"week_start",
			"badges",
			"updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}
