package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atiaron/taskflow/internal/database"
	"github.com/atiaron/taskflow/internal/models"
)

type InteractionService struct {
	db  *database.DB
	now func() time.Time
}

func NewInteractionService(db *database.DB) *InteractionService {
	return &InteractionService{db: db, now: time.Now}
}

// RecordInteraction appends one entry to the interaction log.
func (s *InteractionService) RecordInteraction(ctx context.Context, kind, content string) (*models.Interaction, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, fmt.Errorf("interaction type is required")
	}

	in := &models.Interaction{
		ID:        uuid.NewString(),
		Type:      kind,
		Content:   content,
		CreatedAt: s.now(),
	}

	query := `INSERT INTO interactions (id, type, content, created_at) VALUES (:id, :type, :content, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, in); err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}
	return in, nil
}

// ListInteractions returns the most recent entries in chronological order.
// limit <= 0 returns everything.
func (s *InteractionService) ListInteractions(ctx context.Context, limit int) ([]models.Interaction, error) {
	var out []models.Interaction
	var err error
	if limit > 0 {
		query := s.db.Rebind(`
			SELECT id, type, content, created_at FROM (
				SELECT id, type, content, created_at FROM interactions ORDER BY created_at DESC LIMIT ?
			) recent ORDER BY created_at ASC
		`)
		err = s.db.SelectContext(ctx, &out, query, limit)
	} else {
		err = s.db.SelectContext(ctx, &out, `SELECT id, type, content, created_at FROM interactions ORDER BY created_at ASC`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return out, nil
}
