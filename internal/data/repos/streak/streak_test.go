package streak

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/skillmapper-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillmapper-backend/internal/domain"
	"github.com/yungbote/skillmapper-backend/internal/platform/dbctx"
)

func TestSaveAndGet(t *testing.T) {
	gdb := testutil.SQLite(t)
	repo := NewStreakRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	got, err := repo.Get(dbc, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := &types.StreakRecord{
		UserID:           "u1",
		CurrentStreak:    3,
		LongestStreak:    5,
		TotalDays:        9,
		LastActivityDate: "2026-10-17",
		WeeklyGoal:       4,
		WeeklyProgress:   2,
		WeekStart:        "2026-10-12",
		Badges:           datatypes.JSON(`[]`),
	}
	require.NoError(t, repo.Save(dbc, rec))

	rec.CurrentStreak = 4
	rec.TotalDays = 10
	rec.LastActivityDate = "2026-10-18"
	require.NoError(t, repo.Save(dbc, rec))

	err = gdb.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.GetForUpdate(dbc.WithTx(tx), "u1")
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, 4, locked.CurrentStreak)
		assert.Equal(t, 10, locked.TotalDays)
		assert.Equal(t, "2026-10-18", locked.LastActivityDate)
		assert.Equal(t, 4, locked.WeeklyGoal)
		return nil
	})
	require.NoError(t, err)
}

func TestGetForUpdateLocksOnlyOnPostgres(t *testing.T) {
	cases := []struct {
		name string
		open func(tb testing.TB) *gorm.DB
		lock bool
	}{
		{name: "sqlite", open: testutil.SQLite, lock: false},
		{name: "postgres", open: testutil.Postgres, lock: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gdb := tc.open(t)
			var mu sync.Mutex
			var queries []string
			require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
				mu.Lock()
				defer mu.Unlock()
				queries = append(queries, tx.Statement.SQL.String())
			}))
			t.Cleanup(func() { _ = gdb.Callback().Query().Remove("test:capture_sql") })

			repo := NewStreakRepo(gdb, testutil.Logger(t))
			uid := testutil.UniqueUserID(t, "lock")
			err := gdb.Transaction(func(tx *gorm.DB) error {
				_, err := repo.GetForUpdate(dbctx.New(context.Background()).WithTx(tx), uid)
				return err
			})
			require.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			require.NotEmpty(t, queries)
			assert.Equal(t, tc.lock, strings.Contains(queries[len(queries)-1], "FOR UPDATE"), queries[len(queries)-1])
		})
	}
}
