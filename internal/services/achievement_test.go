package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/atiaron/taskflow/internal/models"
)

func newTestEngine(now time.Time, store AchievementStore, counter UsageCounter, notifier *recordingNotifier) *AchievementEngine {
	var opts = []EngineOption{
		WithClock(func() time.Time { return now }),
		WithLocation(testLoc),
	}
	if notifier == nil {
		return NewAchievementEngine(store, counter, nil, opts...)
	}
	return NewAchievementEngine(store, counter, notifier, opts...)
}

func TestCheckAchievements_EmptyInput(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{}, nil)

	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), models.UserStats{}, nil)

	assert.Empty(t, unlocked)
}

func TestCheckAchievements_EarlyAndLateCompletions(t *testing.T) {
	store := &fakeStore{}
	notifier := &recordingNotifier{}
	engine := newTestEngine(today(23, 30), store, &fakeCounter{}, notifier)

	tasks := []models.Task{
		completedTask("1", today(7, 30), models.PriorityHigh, nil),
		completedTask("2", today(23, 10), models.PriorityLow, nil),
	}
	stats := engine.GetUserStats(tasks)
	require.Equal(t, 1, stats.CurrentStreak)

	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), stats, tasks)

	assert.Equal(t, []string{AchievementFirstTask, AchievementEarlyBird, AchievementNightOwl}, ids(unlocked))
	for _, a := range unlocked {
		assert.True(t, a.Unlocked)
		require.NotNil(t, a.UnlockedAt)
		assert.True(t, a.UnlockedAt.Equal(today(23, 30)))
	}
	assert.Equal(t, ids(unlocked), ids(store.saved))
	assert.Equal(t, []string{"achievement-first_task", "achievement-early_bird", "achievement-night_owl"}, notifier.tags())
}

func TestCheckAchievements_TaskDueTodayUnlocksPerfectionist(t *testing.T) {
	engine := newTestEngine(today(23, 30), &fakeStore{}, &fakeCounter{}, nil)

	tasks := []models.Task{
		completedTask("1", today(7, 30), models.PriorityHigh, timePtr(today(18, 0))),
		completedTask("2", today(23, 10), models.PriorityLow, nil),
	}

	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), engine.GetUserStats(tasks), tasks)

	assert.Equal(t, []string{
		AchievementFirstTask, AchievementEarlyBird, AchievementNightOwl, AchievementPerfectionist,
	}, ids(unlocked))
}

func TestCheckAchievements_PerfectionistNeedsEveryDueTaskDone(t *testing.T) {
	engine := newTestEngine(today(20, 0), &fakeStore{}, &fakeCounter{}, nil)

	tasks := []models.Task{
		completedTask("1", today(12, 0), models.PriorityHigh, timePtr(today(18, 0))),
		{ID: "2", Title: "open", DueDate: timePtr(today(21, 0))},
	}

	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), engine.GetUserStats(tasks), tasks)

	assert.NotContains(t, ids(unlocked), AchievementPerfectionist)
}

func TestCheckAchievements_Monotonic(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(today(12, 0), store, &fakeCounter{}, nil)
	state := NewUnlockState()

	tasks := []models.Task{completedTask("1", today(9, 0), models.PriorityLow, nil)}
	first := engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)
	require.Equal(t, []string{AchievementFirstTask}, ids(first))

	tasks = append(tasks, completedTask("2", today(10, 0), models.PriorityLow, nil))
	second := engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)

	assert.Empty(t, second)
	assert.Len(t, store.saved, 1)
	assert.True(t, state.IsUnlocked(AchievementFirstTask))
}

func TestCheckAchievements_NeverReturnsAnIDTwice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		engine := newTestEngine(today(23, 59), &fakeStore{}, &fakeCounter{}, nil)
		state := NewUnlockState()
		seen := make(map[string]bool)

		var tasks []models.Task
		rounds := rapid.IntRange(1, 5).Draw(t, "rounds")
		for r := 0; r < rounds; r++ {
			n := rapid.IntRange(0, 4).Draw(t, "n")
			for i := 0; i < n; i++ {
				hour := rapid.IntRange(0, 23).Draw(t, "hour")
				tasks = append(tasks, completedTask(fmt.Sprintf("%d-%d", r, i), today(hour, 0), models.PriorityLow, nil))
			}

			for _, a := range engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks) {
				if seen[a.ID] {
					t.Fatalf("%s unlocked twice", a.ID)
				}
				seen[a.ID] = true
			}
		}
	})
}

func TestCheckAchievements_PersistFailureStillUnlocks(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := newTestEngine(today(12, 0), &fakeStore{err: errBoom}, &fakeCounter{}, notifier)
	state := NewUnlockState()

	tasks := []models.Task{completedTask("1", today(9, 0), models.PriorityLow, nil)}
	unlocked := engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)

	assert.Equal(t, []string{AchievementFirstTask}, ids(unlocked))
	assert.True(t, state.IsUnlocked(AchievementFirstTask))
	assert.Equal(t, []string{"achievement-first_task"}, notifier.tags())
}

func TestCheckAchievements_NotifyFailureDoesNotStopEvaluation(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(today(23, 30), store, &fakeCounter{}, &recordingNotifier{err: errBoom})

	tasks := []models.Task{
		completedTask("1", today(7, 0), models.PriorityLow, nil),
		completedTask("2", today(22, 15), models.PriorityLow, nil),
	}
	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), engine.GetUserStats(tasks), tasks)

	assert.Equal(t, []string{AchievementFirstTask, AchievementEarlyBird, AchievementNightOwl}, ids(unlocked))
	assert.Len(t, store.saved, 3)
}

func TestCheckAchievements_DailyHero(t *testing.T) {
	engine := newTestEngine(today(20, 0), &fakeStore{}, &fakeCounter{}, nil)

	var tasks []models.Task
	for i := 0; i < 4; i++ {
		tasks = append(tasks, completedTask(fmt.Sprint(i), today(10+i, 0), models.PriorityLow, nil))
	}
	tasks = append(tasks, completedTask("yesterday", daysAgo(1, 10), models.PriorityLow, nil))

	state := NewUnlockState()
	unlocked := engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)
	assert.NotContains(t, ids(unlocked), AchievementDailyHero)

	tasks = append(tasks, completedTask("5", today(15, 0), models.PriorityLow, nil))
	unlocked = engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)
	assert.Equal(t, []string{AchievementDailyHero}, ids(unlocked))
}

func TestCheckAchievements_WeekWarriorCountsRecentlyCreated(t *testing.T) {
	engine := newTestEngine(today(20, 0), &fakeStore{}, &fakeCounter{}, nil)

	var tasks []models.Task
	for i := 0; i < 20; i++ {
		task := completedTask(fmt.Sprint(i), today(12, 0), models.PriorityLow, nil)
		task.CreatedAt = daysAgo(i%7, 9)
		tasks = append(tasks, task)
	}
	tasks[0].CreatedAt = daysAgo(8, 9)

	state := NewUnlockState()
	unlocked := engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)
	assert.NotContains(t, ids(unlocked), AchievementWeekWarrior)

	tasks[0].CreatedAt = daysAgo(1, 9)
	unlocked = engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)
	assert.Equal(t, []string{AchievementWeekWarrior}, ids(unlocked))
}

func TestCheckAchievements_StreakMaster(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{}, nil)

	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), models.UserStats{CurrentStreak: 7}, nil)

	assert.Equal(t, []string{AchievementStreakMaster}, ids(unlocked))
}

func TestCheckAchievements_AIFriend(t *testing.T) {
	counter := &fakeCounter{n: 9}
	engine := newTestEngine(today(12, 0), &fakeStore{}, counter, nil)
	state := NewUnlockState()

	assert.Empty(t, engine.CheckAchievements(context.Background(), state, models.UserStats{}, nil))

	counter.n = 10
	unlocked := engine.CheckAchievements(context.Background(), state, models.UserStats{}, nil)
	assert.Equal(t, []string{AchievementAIFriend}, ids(unlocked))
}

func TestCheckAchievements_AIUsageReadFailureCountsAsZero(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{n: 50, err: errBoom}, nil)

	assert.Empty(t, engine.CheckAchievements(context.Background(), NewUnlockState(), models.UserStats{}, nil))
}

func TestCheckAchievements_AIUsageReadOncePerCall(t *testing.T) {
	counter := &fakeCounter{}
	engine := newTestEngine(today(12, 0), &fakeStore{}, counter, nil)

	engine.CheckAchievements(context.Background(), NewUnlockState(), models.UserStats{}, nil)

	assert.Equal(t, 1, counter.reads)
}

func TestCheckAchievements_Planner(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{}, nil)

	var tasks []models.Task
	for i := 0; i < 50; i++ {
		tasks = append(tasks, models.Task{ID: fmt.Sprint(i), DueDate: timePtr(daysAgo(-3, 9))})
	}

	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), engine.GetUserStats(tasks), tasks)
	assert.Equal(t, []string{AchievementPlanner}, ids(unlocked))
}

func TestCheckAchievements_Legend(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{}, nil)

	unlocked := engine.CheckAchievements(context.Background(), NewUnlockState(), models.UserStats{TasksCompleted: 1000}, nil)
	assert.Equal(t, []string{AchievementLegend}, ids(unlocked))
}

func TestLoadState_RestoresPersistedUnlocks(t *testing.T) {
	store := &fakeStore{}
	first := newTestEngine(today(9, 0), store, &fakeCounter{}, nil)
	tasks := []models.Task{completedTask("1", today(8, 30), models.PriorityLow, nil)}
	first.CheckAchievements(context.Background(), NewUnlockState(), first.GetUserStats(tasks), tasks)

	second := newTestEngine(today(12, 0), store, &fakeCounter{}, nil)
	state, err := second.LoadState(context.Background())
	require.NoError(t, err)

	assert.True(t, state.IsUnlocked(AchievementFirstTask))
	assert.Empty(t, second.CheckAchievements(context.Background(), state, second.GetUserStats(tasks), tasks))

	merged := second.Achievements(state)
	require.Len(t, merged, len(Catalog()))
	assert.True(t, merged[0].Unlocked)
	require.NotNil(t, merged[0].UnlockedAt)
	assert.True(t, merged[0].UnlockedAt.Equal(today(9, 0)))
	assert.False(t, merged[1].Unlocked)
}

func TestLoadState_StoreFailure(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{err: errBoom}, &fakeCounter{}, nil)

	_, err := engine.LoadState(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestUnlockState_RestoreKeepsEarliest(t *testing.T) {
	state := NewUnlockState()
	state.Restore([]models.Achievement{
		{ID: AchievementNightOwl, UnlockedAt: timePtr(today(23, 0))},
		{ID: AchievementNightOwl, UnlockedAt: timePtr(daysAgo(2, 23))},
		{ID: AchievementNightOwl, UnlockedAt: timePtr(today(23, 30))},
	})

	records := state.Records()
	require.Len(t, records, 1)
	assert.True(t, records[0].UnlockedAt.Equal(daysAgo(2, 23)))
}

func TestUnlockState_Reset(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{}, nil)
	state := NewUnlockState()
	tasks := []models.Task{completedTask("1", today(9, 0), models.PriorityLow, nil)}

	require.NotEmpty(t, engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks))
	state.Reset()

	assert.False(t, state.IsUnlocked(AchievementFirstTask))
	assert.Equal(t, []string{AchievementFirstTask}, ids(engine.CheckAchievements(context.Background(), state, engine.GetUserStats(tasks), tasks)))
}

func TestCatalog(t *testing.T) {
	defs := Catalog()
	require.Len(t, defs, 10)

	points := map[string]int{}
	for _, d := range defs {
		points[d.ID] = d.Points
	}
	assert.Equal(t, map[string]int{
		AchievementFirstTask:     10,
		AchievementDailyHero:     50,
		AchievementWeekWarrior:   100,
		AchievementStreakMaster:  75,
		AchievementEarlyBird:     25,
		AchievementNightOwl:      25,
		AchievementPerfectionist: 100,
		AchievementAIFriend:      30,
		AchievementPlanner:       75,
		AchievementLegend:        500,
	}, points)

	defs[0].Title = "changed"
	assert.NotEqual(t, "changed", Catalog()[0].Title)
}

func TestAchievementNotification(t *testing.T) {
	n := AchievementNotification(models.Achievement{
		ID: AchievementFirstTask, Title: "צעדים ראשונים", Description: "השלמת את המשימה הראשונה שלך", Icon: "🎯", Points: 10,
	})

	assert.Equal(t, "🏆 הישג חדש!", n.Title)
	assert.Equal(t, "🎯 צעדים ראשונים\nהשלמת את המשימה הראשונה שלך\n+10 נקודות!", n.Body)
	assert.Equal(t, "achievement-first_task", n.Tag)
	assert.Equal(t, NotificationIcon, n.Icon)
	assert.True(t, n.RequireInteraction)
}

func TestIncrementAIUsage(t *testing.T) {
	engine := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{}, nil)

	n, err := engine.IncrementAIUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, engine.AIUsageCount(context.Background()))

	failing := newTestEngine(today(12, 0), &fakeStore{}, &fakeCounter{err: errBoom}, nil)
	_, err = failing.IncrementAIUsage(context.Background())
	assert.ErrorIs(t, err, errBoom)

	noCounter := NewAchievementEngine(nil, nil, nil)
	_, err = noCounter.IncrementAIUsage(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, noCounter.AIUsageCount(context.Background()))
}
