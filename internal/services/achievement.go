package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/models"
	"github.com/atiaron/taskflow/internal/notify"
)

const (
	AchievementFirstTask     = "first_task"
	AchievementDailyHero     = "daily_hero"
	AchievementWeekWarrior   = "week_warrior"
	AchievementStreakMaster  = "streak_master"
	AchievementEarlyBird     = "early_bird"
	AchievementNightOwl      = "night_owl"
	AchievementPerfectionist = "perfectionist"
	AchievementAIFriend      = "ai_friend"
	AchievementPlanner       = "planner"
	AchievementLegend        = "legend"

	NotificationIcon = "/icon-192x192.png"
)

// AchievementStore persists unlocks. AppendAchievement is called once per new unlock.
type AchievementStore interface {
	AppendAchievement(ctx context.Context, a models.Achievement) error
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
}

// UsageCounter tracks how many times the AI assistant has been used.
type UsageCounter interface {
	IncrementAIUsage(ctx context.Context) (int, error)
	AIUsageCount(ctx context.Context) (int, error)
}

// AchievementDefinition is an immutable catalog entry.
type AchievementDefinition struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Points      int

	condition func(ec *evalContext) bool
}

type evalContext struct {
	stats     models.UserStats
	tasks     []models.Task
	completed []models.Task
	now       time.Time
	loc       *time.Location
	aiUsage   func() int
}

var catalog = []AchievementDefinition{
	{
		ID: AchievementFirstTask, Title: "צעדים ראשונים", Description: "השלמת את המשימה הראשונה שלך",
		Icon: "🎯", Points: 10,
		condition: func(ec *evalContext) bool { return len(ec.completed) >= 1 },
	},
	{
		ID: AchievementDailyHero, Title: "גיבור יומי", Description: "השלמת 5 משימות ביום אחד",
		Icon: "🦸‍♂️", Points: 50,
		condition: func(ec *evalContext) bool {
			n := 0
			for _, t := range ec.completed {
				if at, ok := t.CompletionTime(); ok && sameDay(at, ec.now, ec.loc) {
					n++
				}
			}
			return n >= 5
		},
	},
	{
		ID: AchievementWeekWarrior, Title: "לוחם השבוע", Description: "השלמת 20 משימות בשבוע",
		Icon: "⚔️", Points: 100,
		condition: func(ec *evalContext) bool {
			weekAgo := ec.now.AddDate(0, 0, -7)
			n := 0
			for _, t := range ec.completed {
				if !t.CreatedAt.IsZero() && !t.CreatedAt.Before(weekAgo) {
					n++
				}
			}
			return n >= 20
		},
	},
	{
		ID: AchievementStreakMaster, Title: "מאסטר הרצף", Description: "רצף של 7 ימים עם לפחות משימה אחת",
		Icon: "🔥", Points: 75,
		condition: func(ec *evalContext) bool { return ec.stats.CurrentStreak >= 7 },
	},
	{
		ID: AchievementEarlyBird, Title: "ציפור מוקדמת", Description: "השלמת משימה לפני 8:00 בבוקר",
		Icon: "🌅", Points: 25,
		condition: func(ec *evalContext) bool {
			for _, t := range ec.completed {
				if at, ok := t.CompletionTime(); ok && at.In(ec.loc).Hour() < 8 {
					return true
				}
			}
			return false
		},
	},
	{
		ID: AchievementNightOwl, Title: "ינשוף לילה", Description: "השלמת משימה אחרי 22:00",
		Icon: "🦉", Points: 25,
		condition: func(ec *evalContext) bool {
			for _, t := range ec.completed {
				if at, ok := t.CompletionTime(); ok && at.In(ec.loc).Hour() >= 22 {
					return true
				}
			}
			return false
		},
	},
	{
		ID: AchievementPerfectionist, Title: "פרפקציוניסט", Description: "השלמת כל המשימות ביום",
		Icon: "💎", Points: 100,
		condition: func(ec *evalContext) bool {
			dueToday := 0
			for _, t := range ec.tasks {
				if t.DueDate == nil || !sameDay(*t.DueDate, ec.now, ec.loc) {
					continue
				}
				if !t.Completed {
					return false
				}
				dueToday++
			}
			return dueToday > 0
		},
	},
	{
		ID: AchievementAIFriend, Title: "חבר של AI", Description: "השתמשת בעוזר החכם 10 פעמים",
		Icon: "🤖", Points: 30,
		condition: func(ec *evalContext) bool { return ec.aiUsage() >= 10 },
	},
	{
		ID: AchievementPlanner, Title: "תכנן מקצועי", Description: "תכננת 50 משימות עם תאריכי יעד",
		Icon: "📅", Points: 75,
		condition: func(ec *evalContext) bool {
			n := 0
			for _, t := range ec.tasks {
				if t.DueDate != nil {
					n++
				}
			}
			return n >= 50
		},
	},
	{
		ID: AchievementLegend, Title: "אגדה חיה", Description: "השלמת 1000 משימות",
		Icon: "👑", Points: 500,
		condition: func(ec *evalContext) bool { return ec.stats.TasksCompleted >= 1000 },
	},
}

// Catalog returns a copy of the achievement definitions in evaluation order.
func Catalog() []AchievementDefinition {
	out := make([]AchievementDefinition, len(catalog))
	copy(out, catalog)
	return out
}

func (d AchievementDefinition) toModel() models.Achievement {
	return models.Achievement{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Icon:        d.Icon,
		Points:      d.Points,
	}
}

// UnlockState is the caller-owned record of which achievements are unlocked.
// Once an id is unlocked it stays unlocked until Reset.
type UnlockState struct {
	mu       sync.Mutex
	unlocked map[string]time.Time
}

func NewUnlockState() *UnlockState {
	return &UnlockState{unlocked: make(map[string]time.Time)}
}

// Restore marks previously persisted unlocks. The earliest entry per id wins.
func (s *UnlockState) Restore(saved []models.Achievement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range saved {
		var at time.Time
		if a.UnlockedAt != nil {
			at = *a.UnlockedAt
		}
		if prev, ok := s.unlocked[a.ID]; ok && (at.IsZero() || !prev.IsZero() && !at.Before(prev)) {
			continue
		}
		s.unlocked[a.ID] = at
	}
}

func (s *UnlockState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlocked = make(map[string]time.Time)
}

func (s *UnlockState) IsUnlocked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unlocked[id]
	return ok
}

// tryUnlock sets id as unlocked at t unless it already is.
func (s *UnlockState) tryUnlock(id string, t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.unlocked[id]; ok {
		return false
	}
	s.unlocked[id] = t
	return true
}

func (s *UnlockState) Records() []models.UnlockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UnlockRecord, 0, len(s.unlocked))
	for _, def := range catalog {
		if at, ok := s.unlocked[def.ID]; ok {
			out = append(out, models.UnlockRecord{AchievementID: def.ID, UnlockedAt: at})
		}
	}
	return out
}

func (s *UnlockState) unlockedAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.unlocked[id]
	return at, ok
}

type EngineOption func(*AchievementEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *AchievementEngine) { e.now = now }
}

func WithLocation(loc *time.Location) EngineOption {
	return func(e *AchievementEngine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

type AchievementEngine struct {
	store    AchievementStore
	counter  UsageCounter
	notifier notify.Notifier
	now      func() time.Time
	loc      *time.Location
	logger   *logger.Log
}

func NewAchievementEngine(store AchievementStore, counter UsageCounter, notifier notify.Notifier, opts ...EngineOption) *AchievementEngine {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	e := &AchievementEngine{
		store:    store,
		counter:  counter,
		notifier: notifier,
		now:      time.Now,
		loc:      time.Local,
		logger:   logger.New().With(zap.String("component", "achievements")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadState builds an UnlockState from the persisted unlock log.
func (e *AchievementEngine) LoadState(ctx context.Context) (*UnlockState, error) {
	state := NewUnlockState()
	if e.store == nil {
		return state, nil
	}
	saved, err := e.store.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	state.Restore(saved)
	return state, nil
}

// CheckAchievements unlocks every still-locked achievement whose condition now
// holds and returns only those unlocked by this call. Persistence and
// notification failures are logged; they never undo an unlock.
func (e *AchievementEngine) CheckAchievements(ctx context.Context, state *UnlockState, stats models.UserStats, tasks []models.Task) []models.Achievement {
	now := e.now()

	completed := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		}
	}

	usage := -1
	ec := &evalContext{
		stats:     stats,
		tasks:     tasks,
		completed: completed,
		now:       now,
		loc:       e.loc,
		aiUsage: func() int {
			if usage < 0 {
				usage = e.AIUsageCount(ctx)
			}
			return usage
		},
	}

	var unlocked []models.Achievement
	for _, def := range catalog {
		if state.IsUnlocked(def.ID) {
			continue
		}
		if !def.condition(ec) {
			continue
		}
		if !state.tryUnlock(def.ID, now) {
			continue
		}

		a := def.toModel()
		a.Unlocked = true
		at := now
		a.UnlockedAt = &at
		unlocked = append(unlocked, a)

		e.logger.Info("achievement unlocked", zap.String("id", a.ID), zap.Int("points", a.Points))
		e.persist(ctx, a)
		e.announce(ctx, a)
	}

	return unlocked
}

func (e *AchievementEngine) persist(ctx context.Context, a models.Achievement) {
	if e.store == nil {
		return
	}
	if err := e.store.AppendAchievement(ctx, a); err != nil {
		e.logger.WithError(err).Warn("failed to save achievement", zap.String("id", a.ID))
	}
}

func (e *AchievementEngine) announce(ctx context.Context, a models.Achievement) {
	if err := e.notifier.Show(ctx, AchievementNotification(a)); err != nil {
		e.logger.WithError(err).Warn("failed to show achievement notification", zap.String("id", a.ID))
	}
}

// AchievementNotification renders the unlock announcement for a.
func AchievementNotification(a models.Achievement) models.Notification {
	return models.Notification{
		Title:              "🏆 הישג חדש!",
		Body:               fmt.Sprintf("%s %s\n%s\n+%d נקודות!", a.Icon, a.Title, a.Description, a.Points),
		Icon:               NotificationIcon,
		Tag:                "achievement-" + a.ID,
		RequireInteraction: true,
	}
}

// GetUserStats recomputes aggregate stats from the task list.
func (e *AchievementEngine) GetUserStats(tasks []models.Task) models.UserStats {
	return computeUserStats(tasks, e.now(), e.loc)
}

// Achievements lists the full catalog merged with state.
func (e *AchievementEngine) Achievements(state *UnlockState) []models.Achievement {
	out := make([]models.Achievement, 0, len(catalog))
	for _, def := range catalog {
		a := def.toModel()
		if at, ok := state.unlockedAt(def.ID); ok {
			a.Unlocked = true
			if !at.IsZero() {
				t := at
				a.UnlockedAt = &t
			}
		}
		out = append(out, a)
	}
	return out
}

func (e *AchievementEngine) IncrementAIUsage(ctx context.Context) (int, error) {
	if e.counter == nil {
		return 0, fmt.Errorf("no usage counter configured")
	}
	n, err := e.counter.IncrementAIUsage(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to increment ai usage: %w", err)
	}
	return n, nil
}

// AIUsageCount reads the usage counter; a failed read counts as zero.
func (e *AchievementEngine) AIUsageCount(ctx context.Context) int {
	if e.counter == nil {
		return 0
	}
	n, err := e.counter.AIUsageCount(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("failed to read ai usage count")
		return 0
	}
	return n
}
