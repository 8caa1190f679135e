package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/models"
	"github.com/atiaron/taskflow/internal/notify"
)

const (
	ActionComplete = "complete"
	ActionSnooze   = "snooze"
	ActionOpen     = "open"

	snoozeInterval = 15 * time.Minute
)

var ErrUnknownAction = errors.New("unknown notification action")

var celebrations = []string{
	"אתה מדהים! 🌟",
	"עוד אחת בכיס! 💪",
	"פרודקטיביות ברמה גבוהה! 🚀",
	"כמו שצריך! 👏",
	"תמשיך ככה! 🔥",
	"מצוין! 🎯",
	"אלוף! 🏆",
	"מטריף! ⭐",
}

// TaskStore is the slice of the task repository the notification actions need.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
}

// NotificationActions handles the buttons on task reminder notifications.
type NotificationActions struct {
	tasks     TaskStore
	notifier  notify.Notifier
	reminders *ReminderScheduler
	pick      func(n int) int
	logger    *logger.Log
}

// NewNotificationActions builds the action handler. reminders may be nil.
func NewNotificationActions(tasks TaskStore, notifier notify.Notifier, reminders *ReminderScheduler) *NotificationActions {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &NotificationActions{
		tasks:     tasks,
		notifier:  notifier,
		reminders: reminders,
		pick:      rand.IntN,
		logger:    logger.New().With(zap.String("component", "notification-actions")),
	}
}

// Handle runs action against taskID and returns the task as it stands afterwards.
// "open" only brings the app forward, so it returns nil.
func (n *NotificationActions) Handle(ctx context.Context, action, taskID string) (*models.Task, error) {
	switch action {
	case ActionComplete:
		return n.complete(ctx, taskID)
	case ActionSnooze:
		return n.snooze(ctx, taskID)
	case ActionOpen:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func (n *NotificationActions) complete(ctx context.Context, taskID string) (*models.Task, error) {
	done := true
	task, err := n.tasks.UpdateTask(ctx, taskID, models.TaskPatch{Completed: &done})
	if err != nil {
		return nil, fmt.Errorf("failed to complete task %s: %w", taskID, err)
	}
	if n.reminders != nil {
		n.reminders.Cancel(task.ID)
	}

	n.show(ctx, models.Notification{
		Title: "🎉 כל הכבוד!",
		Body:  fmt.Sprintf("השלמת את \"%s\"! %s", task.Title, celebrations[n.pick(len(celebrations))]),
		Icon:  NotificationIcon,
		Tag:   "celebration-" + task.ID,
	})
	return task, nil
}

// snooze pushes the due date back and re-arms a reminder that short distance
// ahead of it; tasks without a due date are left alone.
func (n *NotificationActions) snooze(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := n.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	if task.DueDate == nil {
		return task, nil
	}

	due := task.DueDate.Add(snoozeInterval)
	task, err = n.tasks.UpdateTask(ctx, taskID, models.TaskPatch{DueDate: &due})
	if err != nil {
		return nil, fmt.Errorf("failed to snooze task %s: %w", taskID, err)
	}
	if n.reminders != nil {
		n.reminders.ScheduleBefore(*task, snoozeInterval)
	}

	n.show(ctx, models.Notification{
		Title: "⏰ משימה נדחתה",
		Body:  fmt.Sprintf("\"%s\" נדחתה ב-15 דקות", task.Title),
		Icon:  NotificationIcon,
		Tag:   "snooze-" + task.ID,
	})
	return task, nil
}

func (n *NotificationActions) show(ctx context.Context, note models.Notification) {
	if err := n.notifier.Show(ctx, note); err != nil {
		n.logger.WithError(err).Warn("failed to show notification", zap.String("tag", note.Tag))
	}
}
