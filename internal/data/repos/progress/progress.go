package progress

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillmapper-backend/internal/domain"
	"github.com/yungbote/skillmapper-backend/internal/platform/dbctx"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

// ErrVersionConflict is returned by CompareAndSwap when the stored version
// differs from the expected one.
var ErrVersionConflict = errors.New("progress version conflict")

type ProgressRepo interface {
	Get(dbc dbctx.Context, userID string) (*types.RoadmapProgress, error)
	// Upsert writes the whole record atomically and returns the new version.
	Upsert(dbc dbctx.Context, row *types.RoadmapProgress) (int64, error)
	// CompareAndSwap writes only if the stored version equals expected.
	// expected == 0 means the record must not exist yet.
	CompareAndSwap(dbc dbctx.Context, row *types.RoadmapProgress, expected int64) (int64, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{
		db:  db,
		log: baseLog.With("repo", "ProgressRepo"),
	}
}

func (r *progressRepo) Get(dbc dbctx.Context, userID string) (*types.RoadmapProgress, error) {
	if userID == "" {
		return nil, nil
	}
	var row types.RoadmapProgress
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.UserID == "" {
		return nil, nil
	}
	return &row, nil
}

func (r *progressRepo) Upsert(dbc dbctx.Context, row *types.RoadmapProgress) (int64, error) {
	if row == nil || row.UserID == "" {
		return 0, fmt.Errorf("progress row requires user id")
	}
	now := time.Now().UTC()
	ins := *row
	ins.Version = 1
	ins.CreatedAt = now
	ins.UpdatedAt = now

	// The new version comes back from the same statement so a concurrent
	// writer cannot slip in between write and read.
	err := dbc.DB(r.db).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "roadmap_config"}, Value: gorm.Expr("excluded.roadmap_config")},
				{Column: clause.Column{Name: "roadmap_data"}, Value: gorm.Expr("excluded.roadmap_data")},
				{Column: clause.Column{Name: "schema_version"}, Value: gorm.Expr("excluded.schema_version")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
				{Column: clause.Column{Name: "version"}, Value: gorm.Expr("roadmap_progress.version + 1")},
			},
		},
		clause.Returning{Columns: []clause.Column{{Name: "version"}}},
	).Create(&ins).Error
	if err != nil {
		return 0, fmt.Errorf("upsert progress: %w", err)
	}
	return ins.Version, nil
}

func (r *progressRepo) CompareAndSwap(dbc dbctx.Context, row *types.RoadmapProgress, expected int64) (int64, error) {
	if row == nil || row.UserID == "" {
		return 0, fmt.Errorf("progress row requires user id")
	}
	now := time.Now().UTC()
	t := dbc.DB(r.db)

	if expected == 0 {
		ins := *row
		ins.Version = 1
		ins.CreatedAt = now
		ins.UpdatedAt = now
		res := t.Clauses(clause.OnConflict{DoNothing: true}).Create(&ins)
		if res.Error != nil {
			return 0, fmt.Errorf("insert progress: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return 0, ErrVersionConflict
		}
		return 1, nil
	}

	res := t.Model(&types.RoadmapProgress{}).
		Where("user_id = ? AND version = ?", row.UserID, expected).
		Updates(map[string]any{
			"roadmap_config": row.RoadmapConfig,
			"roadmap_data":   row.RoadmapData,
			"schema_version": row.SchemaVersion,
			"updated_at":     now,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("update progress: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Debug("progress compare-and-swap lost", "user_id", row.UserID, "expected", expected)
		return 0, ErrVersionConflict
	}
	return expected + 1, nil
}
