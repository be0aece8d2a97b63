package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillmapper-backend/internal/data/repos"
	"github.com/yungbote/skillmapper-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillmapper-backend/internal/platform/apierr"
	"github.com/yungbote/skillmapper-backend/internal/platform/dbctx"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) AddDays(n int) {
	c.mu.Lock()
	c.t = c.t.AddDate(0, 0, n)
	c.mu.Unlock()
}

func newTestStreakService(t *testing.T, start time.Time) (*streakService, *stepClock) {
	t.Helper()
	gdb := testutil.SQLite(t)
	log := testutil.Logger(t)
	clock := &stepClock{t: start}
	return newStreakService(gdb, log, repos.NewStreakRepo(gdb, log), clock.Now), clock
}

// Wednesday.
var streakEpoch = time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC)

func TestStreakCheckInConsecutiveDays(t *testing.T) {
	svc, clock := newTestStreakService(t, streakEpoch)
	dbc := dbctx.New(context.Background())

	first, err := svc.CheckIn(dbc, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentStreak)
	assert.Equal(t, 1, first.TotalDays)
	assert.Equal(t, "2025-03-05", first.LastActivityDate)
	assert.Equal(t, "2025-03-03", first.WeekStart)
	assert.Equal(t, 5, first.WeeklyGoal)
	assert.False(t, first.AlreadyCompleted)

	clock.AddDays(1)
	second, err := svc.CheckIn(dbc, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, second.CurrentStreak)
	assert.Equal(t, 2, second.LongestStreak)
	assert.Equal(t, 2, second.WeeklyProgress)
}

func TestStreakCheckInSameDayIsNoop(t *testing.T) {
	svc, _ := newTestStreakService(t, streakEpoch)
	dbc := dbctx.New(context.Background())

	_, err := svc.CheckIn(dbc, "u1")
	require.NoError(t, err)
	again, err := svc.CheckIn(dbc, "u1")
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, 1, again.CurrentStreak)
	assert.Equal(t, 1, again.TotalDays)
	assert.Equal(t, 1, again.WeeklyProgress)
}

func TestStreakCheckInGapResetsCurrentKeepsLongest(t *testing.T) {
	svc, clock := newTestStreakService(t, streakEpoch)
	dbc := dbctx.New(context.Background())

	for i := 0; i < 3; i++ {
		_, err := svc.CheckIn(dbc, "u1")
		require.NoError(t, err)
		clock.AddDays(1)
	}
	clock.AddDays(1)
	v, err := svc.CheckIn(dbc, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.CurrentStreak)
	assert.Equal(t, 3, v.LongestStreak)
	assert.Equal(t, 4, v.TotalDays)
}

func TestStreakWeeklyProgressResetsOnNewWeek(t *testing.T) {
	// Sunday, then Monday.
	svc, clock := newTestStreakService(t, time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC))
	dbc := dbctx.New(context.Background())

	v, err := svc.CheckIn(dbc, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", v.WeekStart)
	assert.Equal(t, 1, v.WeeklyProgress)

	clock.AddDays(1)
	v, err = svc.CheckIn(dbc, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", v.WeekStart)
	assert.Equal(t, 1, v.WeeklyProgress)
	assert.Equal(t, 2, v.CurrentStreak)
}

func TestStreakWeeklyProgressCappedAtGoal(t *testing.T) {
	// Monday.
	svc, clock := newTestStreakService(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	dbc := dbctx.New(context.Background())

	_, err := svc.SetWeeklyGoal(dbc, "u1", 2)
	require.NoError(t, err)
	var v *StreakView
	for i := 0; i < 4; i++ {
		v, err = svc.CheckIn(dbc, "u1")
		require.NoError(t, err)
		clock.AddDays(1)
	}
	assert.Equal(t, 2, v.WeeklyProgress)
	assert.Equal(t, 4, v.CurrentStreak)
}

func TestStreakMilestoneBadgeUnlockedOnce(t *testing.T) {
	svc, clock := newTestStreakService(t, streakEpoch)
	dbc := dbctx.New(context.Background())

	var v *StreakView
	var err error
	for i := 0; i < 7; i++ {
		v, err = svc.CheckIn(dbc, "u1")
		require.NoError(t, err)
		if i < 6 {
			assert.Empty(t, v.NewBadges, "day %d", i+1)
			clock.AddDays(1)
		}
	}
	require.Len(t, v.NewBadges, 1)
	b := v.NewBadges[0]
	assert.Equal(t, "streak-7", b.ID)
	assert.Equal(t, "Week Warrior", b.Name)
	assert.Equal(t, "Achieved a 7-day streak!", b.Description)
	assert.Len(t, v.Badges, 1)

	// Break the streak and rebuild it to seven days.
	clock.AddDays(2)
	for i := 0; i < 7; i++ {
		v, err = svc.CheckIn(dbc, "u1")
		require.NoError(t, err)
		clock.AddDays(1)
	}
	assert.Equal(t, 7, v.CurrentStreak)
	assert.Empty(t, v.NewBadges)
	assert.Len(t, v.Badges, 1)
}

func TestStreakConcurrentCheckInsCountOnce(t *testing.T) {
	svc, _ := newTestStreakService(t, streakEpoch)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CheckIn(dbctx.New(context.Background()), "u1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	v, err := svc.Get(dbctx.New(context.Background()), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.TotalDays)
	assert.Equal(t, 1, v.CurrentStreak)
}

func TestStreakGetDefaultsAndValidation(t *testing.T) {
	svc, _ := newTestStreakService(t, streakEpoch)
	dbc := dbctx.New(context.Background())

	v, err := svc.Get(dbc, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, v.CurrentStreak)
	assert.Equal(t, 5, v.WeeklyGoal)
	assert.NotNil(t, v.Badges)

	_, err = svc.Get(dbc, "  ")
	assert.Equal(t, apierr.CodeInvalidRequest, apierr.From(err).Code)

	for _, goal := range []int{0, 8} {
		_, err = svc.SetWeeklyGoal(dbc, "u1", goal)
		assert.Equal(t, apierr.CodeInvalidRequest, apierr.From(err).Code, "goal %d", goal)
	}
}

func TestWeekStart(t *testing.T) {
	cases := map[string]string{
		"2025-03-03": "2025-03-03",
		"2025-03-05": "2025-03-03",
		"2025-03-09": "2025-03-03",
		"2025-03-10": "2025-03-10",
		"2025-01-01": "2024-12-30",
	}
	for in, want := range cases {
		d, err := time.Parse("2006-01-02", in)
		require.NoError(t, err)
		assert.Equal(t, want, weekStart(d), in)
	}
}
