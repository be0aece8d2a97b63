package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/skillmapper-backend/internal/data/repos"
	types "github.com/yungbote/skillmapper-backend/internal/domain"
	"github.com/yungbote/skillmapper-backend/internal/platform/apierr"
	"github.com/yungbote/skillmapper-backend/internal/platform/dbctx"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type SaveProgressInput struct {
	UserID        string
	RoadmapConfig json.RawMessage
	RoadmapData   json.RawMessage
	// ExpectedVersion turns the write into a compare-and-swap when set.
	ExpectedVersion *int64
}

type ProgressView struct {
	RoadmapConfig json.RawMessage `json:"roadmapConfig"`
	RoadmapData   json.RawMessage `json:"roadmapData"`
	SchemaVersion int             `json:"schemaVersion"`
	Version       int64           `json:"version"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type ProgressService interface {
	Get(dbc dbctx.Context, userID string) (*ProgressView, error)
	Save(dbc dbctx.Context, in SaveProgressInput) (int64, error)
}

type progressService struct {
	log  *logger.Logger
	repo repos.ProgressRepo
}

func NewProgressService(baseLog *logger.Logger, repo repos.ProgressRepo) ProgressService {
	return &progressService{
		log:  baseLog.With("service", "ProgressService"),
		repo: repo,
	}
}

// IsMissingJSON reports an absent or null JSON value.
func IsMissingJSON(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func (s *progressService) Get(dbc dbctx.Context, userID string) (*ProgressView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apierr.BadRequest("userId required")
	}
	row, err := s.repo.Get(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return &ProgressView{
		RoadmapConfig: json.RawMessage(row.RoadmapConfig),
		RoadmapData:   json.RawMessage(row.RoadmapData),
		SchemaVersion: row.SchemaVersion,
		Version:       row.Version,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func (s *progressService) Save(dbc dbctx.Context, in SaveProgressInput) (int64, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" || IsMissingJSON(in.RoadmapConfig) || IsMissingJSON(in.RoadmapData) {
		return 0, apierr.BadRequest("userId, roadmapConfig, and roadmapData required")
	}
	if in.ExpectedVersion != nil && *in.ExpectedVersion < 0 {
		return 0, apierr.BadRequest("expectedVersion must be >= 0")
	}
	row := &types.RoadmapProgress{
		UserID:        in.UserID,
		RoadmapConfig: datatypes.JSON(in.RoadmapConfig),
		RoadmapData:   datatypes.JSON(in.RoadmapData),
		SchemaVersion: types.ProgressSchemaVersion,
	}

	var (
		version int64
		err     error
	)
	if in.ExpectedVersion != nil {
		version, err = s.repo.CompareAndSwap(dbc, row, *in.ExpectedVersion)
	} else {
		version, err = s.repo.Upsert(dbc, row)
	}
	if errors.Is(err, repos.ErrVersionConflict) {
		s.log.Info("progress write rejected", "user_id", in.UserID, "expected_version", *in.ExpectedVersion)
		return 0, apierr.Conflict(fmt.Errorf("progress was modified elsewhere; reload and retry"))
	}
	if err != nil {
		return 0, fmt.Errorf("save progress: %w", err)
	}
	s.log.Debug("progress saved", "user_id", in.UserID, "version", version)
	return version, nil
}
