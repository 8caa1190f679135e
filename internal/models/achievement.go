package models

import (
	"time"
)

// Achievement is a catalog entry merged with its unlock state.
type Achievement struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Icon        string     `json:"icon" db:"icon"`
	Points      int        `json:"points" db:"points"`
	Unlocked    bool       `json:"unlocked" db:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty" db:"unlocked_at"`
}

// UnlockRecord is the mutable half of an achievement.
type UnlockRecord struct {
	AchievementID string    `json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

type UserStats struct {
	Level          int `json:"level"`
	TotalPoints    int `json:"totalPoints"`
	TasksCompleted int `json:"tasksCompleted"`
	CurrentStreak  int `json:"currentStreak"`
	LongestStreak  int `json:"longestStreak"`
	WeeklyGoal     int `json:"weeklyGoal"`
	MonthlyGoal    int `json:"monthlyGoal"`
}

type LevelProgress struct {
	Current    int     `json:"current"`
	Needed     int     `json:"needed"`
	Percentage float64 `json:"percentage"`
}
