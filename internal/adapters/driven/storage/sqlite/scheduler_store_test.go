package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	now := time.Now().UTC()
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDIndexBuild,
		Name:        "Index Build",
		Interval:    168 * time.Hour,
		LastRun:     now.Add(-time.Hour),
		NextRun:     now.Add(167 * time.Hour),
		LastSuccess: now.Add(-time.Hour),
		Enabled:     true,
	}
	require.NoError(t, store.SaveTask(ctx, task))

	got, err := store.GetTask(ctx, domain.TaskIDIndexBuild)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, task.Name, got.Name)
	assert.Equal(t, task.Interval, got.Interval)
	assert.True(t, got.Enabled)
	assert.True(t, task.LastRun.Equal(got.LastRun))
	assert.True(t, task.NextRun.Equal(got.NextRun))
	assert.True(t, task.LastSuccess.Equal(got.LastSuccess))
}

func TestSchedulerStore_GetTask_Missing(t *testing.T) {
	store := setupTestStore(t).SchedulerStore()

	got, err := store.GetTask(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_SaveTask_Upsert(t *testing.T) {
	store := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "t", Name: "First", Interval: time.Hour, Enabled: true}))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID: "t", Name: "Second", Interval: 2 * time.Hour, LastError: "boom",
	}))

	got, err := store.GetTask(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Name)
	assert.Equal(t, 2*time.Hour, got.Interval)
	assert.Equal(t, "boom", got.LastError)
	assert.False(t, got.Enabled)
	assert.True(t, got.LastRun.IsZero())
}

func TestSchedulerStore_NilInputs(t *testing.T) {
	store := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.RecordResult(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_ListAndDelete(t *testing.T) {
	store := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	empty, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: id, Name: id, Interval: time.Minute}))
	}
	require.NoError(t, store.DeleteTask(ctx, "b"))
	require.NoError(t, store.DeleteTask(ctx, "unknown"))

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "c", tasks[1].ID)
}

func TestSchedulerStore_HistoryMostRecentFirst(t *testing.T) {
	store := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
		TaskID: "index-build", StartedAt: base, EndedAt: base.Add(time.Minute),
		Success: true, ItemsProcessed: 1200,
	}))
	// Sub-second offset must still sort after the whole-second start.
	require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
		TaskID: "index-build", StartedAt: base.Add(500 * time.Millisecond), EndedAt: base.Add(time.Minute),
		Error: "discovery failed",
	}))
	require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
		TaskID: "other", StartedAt: base, EndedAt: base,
	}))

	history, err := store.GetTaskHistory(ctx, "index-build", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].Success)
	assert.Equal(t, "discovery failed", history[0].Error)
	assert.True(t, history[1].Success)
	assert.Equal(t, 1200, history[1].ItemsProcessed)
	assert.True(t, base.Equal(history[1].StartedAt))
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 6; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		for _, task := range []string{"a", "b"} {
			require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
				TaskID: task, StartedAt: start, EndedAt: start, Success: true, ItemsProcessed: i,
			}))
		}
	}

	require.NoError(t, store.PruneHistory(ctx, 2))

	for _, task := range []string{"a", "b"} {
		history, err := store.GetTaskHistory(ctx, task, 100)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, 6, history[0].ItemsProcessed)
		assert.Equal(t, 5, history[1].ItemsProcessed)
	}
}

func TestTimeHelpers(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	ts := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	formatted := formatNullableTime(ts)
	assert.Equal(t, "2024-02-01T09:30:00.000000000Z", formatted)
	assert.True(t, ts.Equal(parseTime("2024-02-01T09:30:00.000000000Z")))

	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.True(t, parseNullableTime(sql.NullString{}).IsZero())

	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}
