package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts English and Hebrew spellings; anything else is medium.
func ParsePriority(s string) Priority {
	switch s {
	case "high", "גבוהה", "גבוה", "דחוף":
		return PriorityHigh
	case "low", "נמוכה", "נמוך":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Task is owned by the task store. UpdatedAt doubles as the completion time
// once Completed is true.
type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Completed   bool       `json:"completed" db:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	Tags        Tags       `json:"tags,omitempty" db:"tags"`
}

// CompletionTime reports when the task was completed. ok is false for open
// tasks and for completed tasks without a timestamp.
func (t Task) CompletionTime() (time.Time, bool) {
	if !t.Completed || t.UpdatedAt.IsZero() {
		return time.Time{}, false
	}
	return t.UpdatedAt, true
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ClearDue    bool       `json:"clearDueDate,omitempty"`
	Tags        *Tags      `json:"tags,omitempty"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        Tags       `json:"tags"`
}

// Tags is stored as a JSON array column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	if len(raw) == 0 {
		*t = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*t = out
	return nil
}
