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
	DefaultReminderLead = 60 * time.Minute

	reminderKind = "reminder"
	deadlineKind = "deadline"
)

var (
	actionCompleteButton = models.NotificationAction{Action: ActionComplete, Title: "✅ סמן כהושלם"}
	actionSnoozeButton   = models.NotificationAction{Action: ActionSnooze, Title: "⏰ דחה ב-15 דקות"}
	actionOpenButton     = models.NotificationAction{Action: ActionOpen, Title: "📖 פתח אפליקציה"}
)

// Timer is the handle returned by the scheduler's timer factory.
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once d has elapsed.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type ReminderOption func(*ReminderScheduler)

func WithReminderClock(now func() time.Time) ReminderOption {
	return func(s *ReminderScheduler) { s.now = now }
}

func WithReminderTimers(after AfterFunc) ReminderOption {
	return func(s *ReminderScheduler) { s.after = after }
}

func WithReminderLead(lead time.Duration) ReminderOption {
	return func(s *ReminderScheduler) {
		if lead > 0 {
			s.lead = lead
		}
	}
}

// ReminderScheduler keeps one reminder and one deadline alert armed per open
// task with a due date, and shows them through the notifier when they fire.
type ReminderScheduler struct {
	notifier notify.Notifier
	now      func() time.Time
	after    AfterFunc
	lead     time.Duration
	logger   *logger.Log

	mu      sync.Mutex
	timers  map[string]map[string]armedTimer
	seq     uint64
	stopped bool
}

type armedTimer struct {
	timer Timer
	seq   uint64
}

func NewReminderScheduler(notifier notify.Notifier, opts ...ReminderOption) *ReminderScheduler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &ReminderScheduler{
		notifier: notifier,
		now:      time.Now,
		after:    realAfterFunc,
		lead:     DefaultReminderLead,
		logger:   logger.New().With(zap.String("component", "reminders")),
		timers:   make(map[string]map[string]armedTimer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule re-arms the task's alerts with the default lead time.
func (s *ReminderScheduler) Schedule(task models.Task) {
	s.ScheduleBefore(task, s.lead)
}

// ScheduleBefore replaces any alerts armed for task. Completed tasks and tasks
// without a due date end up with none; alerts whose time has passed are skipped.
func (s *ReminderScheduler) ScheduleBefore(task models.Task, lead time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(task.ID)
	if s.stopped || task.Completed || task.DueDate == nil {
		return
	}

	now := s.now()
	due := *task.DueDate

	if wait := due.Add(-lead).Sub(now); wait > 0 {
		s.armLocked(task.ID, reminderKind, wait, reminderNotification(task, lead))
		s.logger.Debug(fmt.Sprintf("reminder scheduled for %s at %s", task.Title, due.Add(-lead).Format(time.RFC3339)))
	}
	if wait := due.Sub(now); wait > 0 {
		s.armLocked(task.ID, deadlineKind, wait, deadlineNotification(task))
	}
}

// ScheduleAll arms alerts for every open task, used when the server starts.
func (s *ReminderScheduler) ScheduleAll(tasks []models.Task) {
	for _, t := range tasks {
		s.Schedule(t)
	}
}

// Cancel drops every alert armed for taskID.
func (s *ReminderScheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(taskID)
}

// Pending counts armed alerts by kind.
func (s *ReminderScheduler) Pending() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, kinds := range s.timers {
		for kind := range kinds {
			counts[kind]++
		}
	}
	return counts
}

// Stop cancels everything and refuses further scheduling.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.timers {
		s.cancelLocked(id)
	}
	s.stopped = true
}

func (s *ReminderScheduler) armLocked(taskID, kind string, wait time.Duration, note models.Notification) {
	s.seq++
	seq := s.seq
	timer := s.after(wait, func() { s.fire(taskID, kind, seq, note) })

	kinds, ok := s.timers[taskID]
	if !ok {
		kinds = make(map[string]armedTimer)
		s.timers[taskID] = kinds
	}
	kinds[kind] = armedTimer{timer: timer, seq: seq}
}

func (s *ReminderScheduler) cancelLocked(taskID string) {
	for _, armed := range s.timers[taskID] {
		armed.timer.Stop()
	}
	delete(s.timers, taskID)
}

func (s *ReminderScheduler) fire(taskID, kind string, seq uint64, note models.Notification) {
	s.mu.Lock()
	kinds := s.timers[taskID]
	// A timer replaced or cancelled after it already fired must stay quiet.
	if armed, ok := kinds[kind]; !ok || armed.seq != seq {
		s.mu.Unlock()
		return
	}
	delete(kinds, kind)
	if len(kinds) == 0 {
		delete(s.timers, taskID)
	}
	s.mu.Unlock()

	if err := s.notifier.Show(context.Background(), note); err != nil {
		s.logger.WithError(err).Warn("failed to show reminder", zap.String("tag", note.Tag))
	}
}

func reminderNotification(task models.Task, lead time.Duration) models.Notification {
	return models.Notification{
		Title:              "⏰ תזכורת משימה",
		Body:               fmt.Sprintf("\"%s\" מתקרבת! (בעוד %d דקות)", task.Title, int(lead.Minutes())),
		Icon:               NotificationIcon,
		Tag:                "reminder-" + task.ID,
		RequireInteraction: true,
		Actions:            []models.NotificationAction{actionCompleteButton, actionSnoozeButton, actionOpenButton},
	}
}

func deadlineNotification(task models.Task) models.Notification {
	return models.Notification{
		Title:              "🚨 מועד אחרון!",
		Body:               fmt.Sprintf("\"%s\" אמור להיות מוגש עכשיו!", task.Title),
		Icon:               NotificationIcon,
		Tag:                "deadline-" + task.ID,
		RequireInteraction: true,
		Actions:            []models.NotificationAction{actionCompleteButton, actionSnoozeButton},
	}
}
