package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atiaron/taskflow/internal/models"
)

func TestAchievementRepository_UnlockLog(t *testing.T) {
	ctx := context.Background()
	repo := NewAchievementRepository(newTestDB(t))

	saved, err := repo.ListAchievements(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)

	def := Catalog()[0]
	require.NoError(t, repo.AppendAchievement(ctx, models.Achievement{
		ID: def.ID, Title: def.Title, Description: def.Description, Icon: def.Icon, Points: def.Points,
		Unlocked: true, UnlockedAt: timePtr(today(9, 0)),
	}))

	saved, err = repo.ListAchievements(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, def.ID, saved[0].ID)
	assert.Equal(t, def.Points, saved[0].Points)
	assert.True(t, saved[0].Unlocked)
	require.NotNil(t, saved[0].UnlockedAt)
	assert.True(t, saved[0].UnlockedAt.Equal(today(9, 0)))
}

func TestAchievementRepository_AIUsage(t *testing.T) {
	ctx := context.Background()
	repo := NewAchievementRepository(newTestDB(t))

	n, err := repo.AIUsageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for i := 1; i <= 3; i++ {
		n, err = repo.IncrementAIUsage(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
}

func TestAchievementEngine_WithRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAchievementRepository(newTestDB(t))
	engine := newTestEngine(today(23, 30), repo, repo, nil)

	for i := 0; i < 10; i++ {
		_, err := engine.IncrementAIUsage(ctx)
		require.NoError(t, err)
	}

	tasks := []models.Task{completedTask("1", today(7, 0), models.PriorityLow, nil)}
	unlocked := engine.CheckAchievements(ctx, NewUnlockState(), engine.GetUserStats(tasks), tasks)
	assert.Equal(t, []string{AchievementFirstTask, AchievementEarlyBird, AchievementAIFriend}, ids(unlocked))

	state, err := engine.LoadState(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Records(), 3)
}
