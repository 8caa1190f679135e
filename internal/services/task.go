package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/closestmatch"

	"github.com/atiaron/taskflow/internal/database"
	"github.com/atiaron/taskflow/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrEmptyTitle   = errors.New("task title is required")
)

const taskColumns = `id, title, description, priority, completed, due_date, created_at, updated_at, tags`

type TaskService struct {
	db        *database.DB
	now       func() time.Time
	reminders *ReminderScheduler
}

type TaskOption func(*TaskService)

// WithReminders keeps the scheduler's alerts in step with task writes.
func WithReminders(r *ReminderScheduler) TaskOption {
	return func(s *TaskService) { s.reminders = r }
}

func NewTaskService(db *database.DB, opts ...TaskOption) *TaskService {
	s := &TaskService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTask stores a new open task.
func (s *TaskService) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: req.Description,
		Priority:    models.ParsePriority(string(priority)),
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        req.Tags,
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (:id, :title, :description, :priority, :completed, :due_date, :created_at, :updated_at, :tags)
	`
	if _, err := s.db.NamedExecContext(ctx, query, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if s.reminders != nil {
		s.reminders.Schedule(*task)
	}
	return task, nil
}

// GetTask retrieves a task by id
func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	query := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	err := s.db.GetContext(ctx, &task, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// ListTasks returns every task, oldest first.
func (s *TaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at ASC`
	if err := s.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// PendingTasks returns the open tasks.
func (s *TaskService) PendingTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	query := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE completed = ? ORDER BY created_at ASC`)
	if err := s.db.SelectContext(ctx, &tasks, query, false); err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	return tasks, nil
}

// completesOnly reports whether patch does nothing but mark a task completed.
func completesOnly(patch models.TaskPatch) bool {
	return patch.Completed != nil && *patch.Completed &&
		patch.Title == nil && patch.Description == nil && patch.Priority == nil &&
		patch.DueDate == nil && !patch.ClearDue && patch.Tags == nil
}

// UpdateTask applies patch and bumps updated_at, which becomes the
// completion time when the task is (or stays) completed. Completing an
// already completed task is a no-op so its completion time stays put.
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed && completesOnly(patch) {
		return task, nil
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = models.ParsePriority(string(*patch.Priority))
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.ClearDue {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	if patch.Tags != nil {
		task.Tags = *patch.Tags
	}
	task.UpdatedAt = s.now()

	query := `
		UPDATE tasks
		SET title = :title, description = :description, priority = :priority, completed = :completed,
			due_date = :due_date, updated_at = :updated_at, tags = :tags
		WHERE id = :id
	`
	if _, err := s.db.NamedExecContext(ctx, query, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if s.reminders != nil && (patch.Completed != nil || patch.DueDate != nil || patch.ClearDue) {
		s.reminders.Schedule(*task)
	}
	return task, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, id string) (*models.Task, error) {
	done := true
	return s.UpdateTask(ctx, id, models.TaskPatch{Completed: &done})
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTaskNotFound
	}
	if s.reminders != nil {
		s.reminders.Cancel(id)
	}
	return nil
}

// FindByTitle resolves a loosely typed title to a task: an exact or substring
// match first, then the fuzzy closest title.
func (s *TaskService) FindByTitle(ctx context.Context, query string) (*models.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrTaskNotFound
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string]models.Task, len(tasks))
	titles := make([]string, 0, len(tasks))
	needle := strings.ToLower(query)
	for _, t := range tasks {
		if strings.EqualFold(t.Title, query) {
			return &t, nil
		}
		if _, seen := byTitle[t.Title]; !seen {
			byTitle[t.Title] = t
			titles = append(titles, t.Title)
		}
	}
	for _, title := range titles {
		if strings.Contains(strings.ToLower(title), needle) {
			t := byTitle[title]
			return &t, nil
		}
	}

	if len(titles) == 0 {
		return nil, ErrTaskNotFound
	}
	cm := closestmatch.New(titles, []int{2, 3})
	best := cm.Closest(query)
	t, ok := byTitle[best]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}
