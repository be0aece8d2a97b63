package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

func row(userID, tag string) *types.RoadmapProgress {
	return &types.RoadmapProgress{
		UserID:        userID,
		RoadmapConfig: datatypes.JSON(fmt.Sprintf(`{"career":"Chef","writer":%q}`, tag)),
		RoadmapData:   datatypes.JSON(fmt.Sprintf(`{"completed":[1,2],"writer":%q}`, tag)),
		SchemaVersion: types.ProgressSchemaVersion,
	}
}

type backend struct {
	name string
	open func(tb testing.TB) *gorm.DB
}

func backends() []backend {
	return []backend{
		{name: "sqlite", open: testutil.SQLite},
		{name: "postgres", open: testutil.Postgres},
	}
}

func TestGetMissing(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := NewProgressRepo(b.open(t), testutil.Logger(t))
			got, err := repo.Get(dbctx.New(context.Background()), testutil.UniqueUserID(t, "nobody"))
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := NewProgressRepo(b.open(t), testutil.Logger(t))
			dbc := dbctx.New(context.Background())
			uid := testutil.UniqueUserID(t, "alice")

			v, err := repo.Upsert(dbc, row(uid, "first"))
			require.NoError(t, err)
			assert.Equal(t, int64(1), v)

			v, err = repo.Upsert(dbc, row(uid, "second"))
			require.NoError(t, err)
			assert.Equal(t, int64(2), v)

			got, err := repo.Get(dbc, uid)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.JSONEq(t, `{"career":"Chef","writer":"second"}`, string(got.RoadmapConfig))
			assert.JSONEq(t, `{"completed":[1,2],"writer":"second"}`, string(got.RoadmapData))
			assert.Equal(t, types.ProgressSchemaVersion, got.SchemaVersion)
			assert.Equal(t, int64(2), got.Version)
		})
	}
}

func TestConcurrentWritesDifferentUsers(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := NewProgressRepo(b.open(t), testutil.Logger(t))
			dbc := dbctx.New(context.Background())

			ids := make([]string, 12)
			for i := range ids {
				ids[i] = testutil.UniqueUserID(t, fmt.Sprintf("user%d", i))
			}
			var wg sync.WaitGroup
			errs := make(chan error, len(ids))
			for _, id := range ids {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.Upsert(dbc, row(id, id))
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			for _, id := range ids {
				got, err := repo.Get(dbc, id)
				require.NoError(t, err)
				require.NotNil(t, got, "record for %s missing", id)
				assert.JSONEq(t, fmt.Sprintf(`{"career":"Chef","writer":%q}`, id), string(got.RoadmapConfig))
			}
		})
	}
}

func TestConcurrentWritesSameUserLandWhole(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := NewProgressRepo(b.open(t), testutil.Logger(t))
			dbc := dbctx.New(context.Background())
			uid := testutil.UniqueUserID(t, "shared")

			writers := []string{"tab-a", "tab-b"}
			var wg sync.WaitGroup
			errs := make(chan error, len(writers))
			for _, w := range writers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.Upsert(dbc, row(uid, w))
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			got, err := repo.Get(dbc, uid)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(2), got.Version)

			var cfg, data struct {
				Writer string `json:"writer"`
			}
			require.NoError(t, json.Unmarshal(got.RoadmapConfig, &cfg))
			require.NoError(t, json.Unmarshal(got.RoadmapData, &data))
			assert.Contains(t, writers, cfg.Writer)
			assert.Equal(t, cfg.Writer, data.Writer, "config and data came from different writers")
		})
	}
}

func TestConcurrentUpsertsReportTheirOwnVersion(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := NewProgressRepo(b.open(t), testutil.Logger(t))
			dbc := dbctx.New(context.Background())
			uid := testutil.UniqueUserID(t, "versions")

			const n = 8
			var wg sync.WaitGroup
			versions := make(chan int64, n)
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					v, err := repo.Upsert(dbc, row(uid, fmt.Sprintf("w%d", i)))
					errs <- err
					versions <- v
				}()
			}
			wg.Wait()
			close(errs)
			close(versions)
			for err := range errs {
				require.NoError(t, err)
			}

			seen := map[int64]bool{}
			for v := range versions {
				assert.False(t, seen[v], "version %d reported twice", v)
				seen[v] = true
			}
			for v := int64(1); v <= n; v++ {
				assert.True(t, seen[v], "version %d never reported", v)
			}
		})
	}
}

func TestCompareAndSwap(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := NewProgressRepo(b.open(t), testutil.Logger(t))
			dbc := dbctx.New(context.Background())
			uid := testutil.UniqueUserID(t, "cas")

			v, err := repo.CompareAndSwap(dbc, row(uid, "create"), 0)
			require.NoError(t, err)
			assert.Equal(t, int64(1), v)

			_, err = repo.CompareAndSwap(dbc, row(uid, "dup-create"), 0)
			assert.True(t, errors.Is(err, ErrVersionConflict), "err=%v", err)

			v, err = repo.CompareAndSwap(dbc, row(uid, "update"), 1)
			require.NoError(t, err)
			assert.Equal(t, int64(2), v)

			_, err = repo.CompareAndSwap(dbc, row(uid, "stale"), 1)
			assert.True(t, errors.Is(err, ErrVersionConflict), "err=%v", err)

			got, err := repo.Get(dbc, uid)
			require.NoError(t, err)
			assert.JSONEq(t, `{"career":"Chef","writer":"update"}`, string(got.RoadmapConfig))
			assert.Equal(t, int64(2), got.Version)
		})
	}
}
