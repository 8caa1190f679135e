package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atiaron/taskflow/internal/database"
	"github.com/atiaron/taskflow/internal/models"
)

var testLoc = time.FixedZone("IDT", 3*60*60)

// today is the reference day every test builds times against.
func today(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, testLoc)
}

func daysAgo(n, hour int) time.Time {
	return today(hour, 0).AddDate(0, 0, -n)
}

func timePtr(t time.Time) *time.Time { return &t }

func completedTask(id string, at time.Time, priority models.Priority, due *time.Time) models.Task {
	return models.Task{
		ID:        id,
		Title:     "task " + id,
		Priority:  priority,
		Completed: true,
		DueDate:   due,
		CreatedAt: at.Add(-time.Hour),
		UpdatedAt: at,
	}
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(database.DriverSQLite, filepath.Join(t.TempDir(), "taskflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeStore struct {
	mu    sync.Mutex
	saved []models.Achievement
	err   error
}

func (s *fakeStore) AppendAchievement(_ context.Context, a models.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, a)
	return nil
}

func (s *fakeStore) ListAchievements(context.Context) ([]models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Achievement(nil), s.saved...), nil
}

type fakeCounter struct {
	n     int
	reads int
	err   error
}

func (c *fakeCounter) IncrementAIUsage(context.Context) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.n++
	return c.n, nil
}

func (c *fakeCounter) AIUsageCount(context.Context) (int, error) {
	c.reads++
	if c.err != nil {
		return 0, c.err
	}
	return c.n, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	shown []models.Notification
	err   error
}

func (r *recordingNotifier) Show(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, n)
	return r.err
}

func (r *recordingNotifier) tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.shown))
	for _, n := range r.shown {
		out = append(out, n.Tag)
	}
	return out
}

var errBoom = errors.New("boom")

func ids(as []models.Achievement) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}
