package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/skillmapper-backend/internal/data/repos"
	types "github.com/yungbote/skillmapper-backend/internal/domain"
	"github.com/yungbote/skillmapper-backend/internal/domain/streak"
	"github.com/yungbote/skillmapper-backend/internal/observability"
	"github.com/yungbote/skillmapper-backend/internal/platform/apierr"
	"github.com/yungbote/skillmapper-backend/internal/platform/dbctx"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type StreakView struct {
	UserID           string        `json:"userId"`
	CurrentStreak    int           `json:"currentStreak"`
	LongestStreak    int           `json:"longestStreak"`
	TotalDays        int           `json:"totalDays"`
	LastActivityDate string        `json:"lastActivityDate"`
	WeeklyGoal       int           `json:"weeklyGoal"`
	WeeklyProgress   int           `json:"weeklyProgress"`
	WeekStart        string        `json:"weekStart"`
	Badges           []types.Badge `json:"badges"`
	AlreadyCompleted bool          `json:"alreadyCompleted"`
	NewBadges        []types.Badge `json:"newBadges,omitempty"`
}

type StreakService interface {
	Get(dbc dbctx.Context, userID string) (*StreakView, error)
	// CheckIn records activity for the current UTC day. A second check-in on
	// the same day changes nothing and reports AlreadyCompleted.
	CheckIn(dbc dbctx.Context, userID string) (*StreakView, error)
	SetWeeklyGoal(dbc dbctx.Context, userID string, goal int) (*StreakView, error)
}

type streakService struct {
	db    *gorm.DB
	log   *logger.Logger
	repo  repos.StreakRepo
	now   func() time.Time
	locks *userLocks
}

func NewStreakService(db *gorm.DB, baseLog *logger.Logger, repo repos.StreakRepo) StreakService {
	return newStreakService(db, baseLog, repo, time.Now)
}

func newStreakService(db *gorm.DB, baseLog *logger.Logger, repo repos.StreakRepo, now func() time.Time) *streakService {
	return &streakService{
		db:    db,
		log:   baseLog.With("service", "StreakService"),
		repo:  repo,
		now:   now,
		locks: newUserLocks(),
	}
}

func (s *streakService) Get(dbc dbctx.Context, userID string) (*StreakView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apierr.BadRequest("userId required")
	}
	row, err := s.repo.Get(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	if row == nil {
		row = newStreakRecord(userID)
	}
	today := s.now().UTC()
	// An unread week rollover still shows as zero progress.
	if row.WeekStart != "" && row.WeekStart != weekStart(today) {
		row.WeeklyProgress = 0
		row.WeekStart = weekStart(today)
	}
	return viewOf(row, nil, false)
}

func (s *streakService) CheckIn(dbc dbctx.Context, userID string) (*StreakView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apierr.BadRequest("userId required")
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.now().UTC()
	today := now.Format(streak.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(streak.DateLayout)

	var (
		view   *StreakView
		result = "checked_in"
	)
	err := s.transaction(dbc, func(txc dbctx.Context) error {
		row, err := s.repo.GetForUpdate(txc, userID)
		if err != nil {
			return err
		}
		if row == nil {
			row = newStreakRecord(userID)
		}
		if row.LastActivityDate == today {
			result = "already_completed"
			view, err = viewOf(row, nil, true)
			return err
		}

		if ws := weekStart(now); row.WeekStart != ws {
			row.WeekStart = ws
			row.WeeklyProgress = 0
		}
		if row.LastActivityDate == yesterday {
			row.CurrentStreak++
		} else {
			row.CurrentStreak = 1
		}
		if row.CurrentStreak > row.LongestStreak {
			row.LongestStreak = row.CurrentStreak
		}
		row.TotalDays++
		if row.WeeklyProgress < row.WeeklyGoal {
			row.WeeklyProgress++
		}
		row.LastActivityDate = today

		badges, err := decodeBadges(row.Badges)
		if err != nil {
			return err
		}
		unlocked := unlockBadges(badges, row.CurrentStreak, now)
		if len(unlocked) > 0 {
			badges = append(badges, unlocked...)
			raw, err := json.Marshal(badges)
			if err != nil {
				return err
			}
			row.Badges = datatypes.JSON(raw)
		}
		if err := s.repo.Save(txc, row); err != nil {
			return err
		}
		view, err = viewOf(row, unlocked, false)
		return err
	})
	if err != nil {
		observability.Current().IncStreakCheckin("error")
		return nil, fmt.Errorf("streak check-in: %w", err)
	}
	observability.Current().IncStreakCheckin(result)
	if len(view.NewBadges) > 0 {
		s.log.Info("streak badges unlocked", "user_id", userID, "streak", view.CurrentStreak, "count", len(view.NewBadges))
	}
	return view, nil
}

func (s *streakService) SetWeeklyGoal(dbc dbctx.Context, userID string, goal int) (*StreakView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apierr.BadRequest("userId required")
	}
	if goal < streak.MinWeeklyGoal || goal > streak.MaxWeeklyGoal {
		return nil, apierr.BadRequest(fmt.Sprintf("weeklyGoal must be between %d and %d", streak.MinWeeklyGoal, streak.MaxWeeklyGoal))
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.now().UTC()
	var view *StreakView
	err := s.transaction(dbc, func(txc dbctx.Context) error {
		row, err := s.repo.GetForUpdate(txc, userID)
		if err != nil {
			return err
		}
		if row == nil {
			row = newStreakRecord(userID)
		}
		if ws := weekStart(now); row.WeekStart != ws {
			row.WeekStart = ws
			row.WeeklyProgress = 0
		}
		row.WeeklyGoal = goal
		if row.WeeklyProgress > goal {
			row.WeeklyProgress = goal
		}
		if err := s.repo.Save(txc, row); err != nil {
			return err
		}
		view, err = viewOf(row, nil, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set weekly goal: %w", err)
	}
	return view, nil
}

// transaction joins an outer transaction when dbc already carries one.
func (s *streakService) transaction(dbc dbctx.Context, fn func(txc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}

func newStreakRecord(userID string) *types.StreakRecord {
	return &types.StreakRecord{
		UserID:     userID,
		WeeklyGoal: streak.DefaultWeeklyGoal,
		Badges:     datatypes.JSON("[]"),
	}
}

func decodeBadges(raw datatypes.JSON) ([]types.Badge, error) {
	badges := []types.Badge{}
	if len(raw) == 0 || string(raw) == "null" {
		return badges, nil
	}
	if err := json.Unmarshal(raw, &badges); err != nil {
		return nil, fmt.Errorf("decode badges: %w", err)
	}
	return badges, nil
}

// unlockBadges returns the milestone badges earned at exactly this streak
// length that the user does not hold yet.
func unlockBadges(have []types.Badge, current int, at time.Time) []types.Badge {
	owned := make(map[string]bool, len(have))
	for _, b := range have {
		owned[b.ID] = true
	}
	var out []types.Badge
	for _, m := range streak.Milestones {
		if m.Days != current {
			continue
		}
		id := BadgeID(m)
		if owned[id] {
			continue
		}
		out = append(out, types.Badge{
			ID:          id,
			Name:        m.Name,
			Description: fmt.Sprintf("Achieved a %d-day streak!", m.Days),
			Icon:        m.Icon,
			UnlockedAt:  at,
			Rarity:      m.Rarity,
		})
	}
	return out
}

// BadgeID is stable per milestone so a badge is granted at most once.
func BadgeID(m types.Milestone) string {
	return fmt.Sprintf("streak-%d", m.Days)
}

// weekStart returns the Monday of t's ISO week.
func weekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(streak.DateLayout)
}

func viewOf(row *types.StreakRecord, unlocked []types.Badge, already bool) (*StreakView, error) {
	badges, err := decodeBadges(row.Badges)
	if err != nil {
		return nil, err
	}
	return &StreakView{
		UserID:           row.UserID,
		CurrentStreak:    row.CurrentStreak,
		LongestStreak:    row.LongestStreak,
		TotalDays:        row.TotalDays,
		LastActivityDate: row.LastActivityDate,
		WeeklyGoal:       row.WeeklyGoal,
		WeeklyProgress:   row.WeeklyProgress,
		WeekStart:        row.WeekStart,
		Badges:           badges,
		AlreadyCompleted: already,
		NewBadges:        unlocked,
	}, nil
}

// userLocks serializes read-modify-write cycles per user inside this process.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: map[string]*userLock{}}
}

func (l *userLocks) lock(key string) func() {
	l.mu.Lock()
	ul := l.locks[key]
	if ul == nil {
		ul = &userLock{}
		l.locks[key] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
