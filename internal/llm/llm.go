package llm

import (
	"context"

	"github.com/atiaron/taskflow/internal/models"
)

// LLM defines the interface for language model providers
type LLM interface {

	// Chat sends a conversation and returns the assistant's reply text
	Chat(ctx context.Context, messages []models.ChatMessage) (string, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}
