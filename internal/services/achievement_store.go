package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atiaron/taskflow/internal/database"
	"github.com/atiaron/taskflow/internal/models"
)

const aiUsageCounter = "ai_usage_count"

// AchievementRepository is the sqlx-backed AchievementStore and UsageCounter.
type AchievementRepository struct {
	db *database.DB
}

func NewAchievementRepository(db *database.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

type unlockRow struct {
	AchievementID string    `db:"achievement_id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Icon          string    `db:"icon"`
	Points        int       `db:"points"`
	UnlockedAt    time.Time `db:"unlocked_at"`
}

// AppendAchievement adds a to the unlock log.
func (r *AchievementRepository) AppendAchievement(ctx context.Context, a models.Achievement) error {
	unlockedAt := time.Now()
	if a.UnlockedAt != nil {
		unlockedAt = *a.UnlockedAt
	}

	query := r.db.Rebind(`
		INSERT INTO achievement_unlocks (id, achievement_id, title, description, icon, points, unlocked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), a.ID, a.Title, a.Description, a.Icon, a.Points, unlockedAt)
	if err != nil {
		return fmt.Errorf("failed to save achievement %s: %w", a.ID, err)
	}
	return nil
}

// ListAchievements returns the unlock log, oldest first.
func (r *AchievementRepository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	query := `
		SELECT achievement_id, title, description, icon, points, unlocked_at
		FROM achievement_unlocks
		ORDER BY unlocked_at ASC
	`

	var rows []unlockRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	out := make([]models.Achievement, 0, len(rows))
	for _, row := range rows {
		at := row.UnlockedAt
		out = append(out, models.Achievement{
			ID:          row.AchievementID,
			Title:       row.Title,
			Description: row.Description,
			Icon:        row.Icon,
			Points:      row.Points,
			Unlocked:    true,
			UnlockedAt:  &at,
		})
	}
	return out, nil
}

func (r *AchievementRepository) IncrementAIUsage(ctx context.Context) (int, error) {
	query := r.db.Rebind(`
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
	`)
	if _, err := r.db.ExecContext(ctx, query, aiUsageCounter); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", aiUsageCounter, err)
	}
	return r.AIUsageCount(ctx)
}

func (r *AchievementRepository) AIUsageCount(ctx context.Context) (int, error) {
	var value int
	err := r.db.GetContext(ctx, &value, r.db.Rebind(`SELECT value FROM counters WHERE name = ?`), aiUsageCounter)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", aiUsageCounter, err)
	}
	return value, nil
}
