package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atiaron/taskflow/internal/models"
)

func newTestTaskService(t *testing.T, now *time.Time) *TaskService {
	t.Helper()
	s := NewTaskService(newTestDB(t))
	s.now = func() time.Time { return *now }
	return s
}

func TestTaskService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	due := today(18, 0)
	created, err := s.CreateTask(ctx, models.CreateTaskRequest{
		Title:    "  לקנות חלב  ",
		Priority: "גבוהה",
		DueDate:  &due,
		Tags:     models.Tags{"סופר"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "לקנות חלב", created.Title)
	assert.Equal(t, models.PriorityHigh, created.Priority)

	got, err := s.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.False(t, got.Completed)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.True(t, got.CreatedAt.Equal(now))
	assert.Equal(t, models.Tags{"סופר"}, got.Tags)
}

func TestTaskService_CreateDefaults(t *testing.T) {
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	task, err := s.CreateTask(context.Background(), models.CreateTaskRequest{Title: "משהו"})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)

	_, err = s.CreateTask(context.Background(), models.CreateTaskRequest{Title: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestTaskService_GetMissing(t *testing.T) {
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	_, err := s.GetTask(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_CompleteSetsCompletionTime(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	task, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: "לסיים דוח", Priority: models.PriorityHigh})
	require.NoError(t, err)

	now = today(7, 30).AddDate(0, 0, 1)
	done, err := s.CompleteTask(ctx, task.ID)
	require.NoError(t, err)

	at, ok := done.CompletionTime()
	require.True(t, ok)
	assert.True(t, at.Equal(now))

	stored, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.True(t, stored.UpdatedAt.Equal(now))
}

func TestTaskService_RecompleteKeepsCompletionTime(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	task, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: "לסיים דוח"})
	require.NoError(t, err)

	now = today(23, 0)
	first, err := s.CompleteTask(ctx, task.ID)
	require.NoError(t, err)

	now = today(7, 0).AddDate(0, 0, 1)
	second, err := s.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.Equal(first.UpdatedAt))

	stored, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(today(23, 0)))

	// Any other field still counts as an edit.
	done := true
	title := "לסיים דוח רבעוני"
	edited, err := s.UpdateTask(ctx, task.ID, models.TaskPatch{Completed: &done, Title: &title})
	require.NoError(t, err)
	assert.True(t, edited.UpdatedAt.Equal(now))
}

func TestTaskService_KeepsRemindersInStep(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	timers := &fakeTimers{}
	reminders := NewReminderScheduler(&recordingNotifier{},
		WithReminderClock(func() time.Time { return now }),
		WithReminderTimers(timers.after))
	s := NewTaskService(newTestDB(t), WithReminders(reminders))
	s.now = func() time.Time { return now }

	due := today(18, 0)
	task, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: "תור לרופא", DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"reminder": 1, "deadline": 1}, reminders.Pending())

	_, err = s.CreateTask(ctx, models.CreateTaskRequest{Title: "בלי תאריך"})
	require.NoError(t, err)
	assert.Len(t, timers.live(), 2)

	later := today(20, 0)
	_, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{DueDate: &later})
	require.NoError(t, err)
	live := timers.live()
	require.Len(t, live, 2)
	assert.Equal(t, 10*time.Hour, live[0].wait)
	assert.Equal(t, 11*time.Hour, live[1].wait)

	_, err = s.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, reminders.Pending())

	reopened := false
	_, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Completed: &reopened})
	require.NoError(t, err)
	assert.Len(t, timers.live(), 2)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	assert.Empty(t, timers.live())
}

func TestTaskService_UpdatePatch(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	due := today(18, 0)
	task, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: "תור לרופא", DueDate: &due})
	require.NoError(t, err)

	title := "תור לרופא שיניים"
	low := models.PriorityLow
	tags := models.Tags{"בריאות"}
	updated, err := s.UpdateTask(ctx, task.ID, models.TaskPatch{Title: &title, Priority: &low, Tags: &tags, ClearDue: true})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, models.PriorityLow, updated.Priority)
	assert.Nil(t, updated.DueDate)

	empty := " "
	_, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Title: &empty})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = s.UpdateTask(ctx, "missing", models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_ListAndPending(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	a, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: "a"})
	require.NoError(t, err)
	now = now.Add(time.Minute)
	b, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: "b"})
	require.NoError(t, err)
	_, err = s.CompleteTask(ctx, a.ID)
	require.NoError(t, err)

	all, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)

	pending, err := s.PendingTasks(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	task, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: "a"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	assert.ErrorIs(t, s.DeleteTask(ctx, task.ID), ErrTaskNotFound)
}

func TestTaskService_FindByTitle(t *testing.T) {
	ctx := context.Background()
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	for _, title := range []string{"Buy milk at the store", "Finish quarterly report", "Call grandma"} {
		_, err := s.CreateTask(ctx, models.CreateTaskRequest{Title: title})
		require.NoError(t, err)
	}

	exact, err := s.FindByTitle(ctx, "call GRANDMA")
	require.NoError(t, err)
	assert.Equal(t, "Call grandma", exact.Title)

	partial, err := s.FindByTitle(ctx, "quarterly")
	require.NoError(t, err)
	assert.Equal(t, "Finish quarterly report", partial.Title)

	fuzzy, err := s.FindByTitle(ctx, "buy milk at store")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk at the store", fuzzy.Title)

	_, err = s.FindByTitle(ctx, "  ")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_FindByTitleEmptyStore(t *testing.T) {
	now := today(9, 0)
	s := newTestTaskService(t, &now)

	_, err := s.FindByTitle(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
