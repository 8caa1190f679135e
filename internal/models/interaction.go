package models

import "time"

const (
	InteractionTaskCreation = "task_creation"
	InteractionChat         = "chat"
)

// Interaction is one entry of the user's interaction log.
type Interaction struct {
	ID        string    `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
