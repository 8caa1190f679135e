package services

import (
	"sort"
	"time"

	"github.com/atiaron/taskflow/internal/models"
)

const (
	pointsPerLevel = 100

	WeeklyGoal  = 20
	MonthlyGoal = 80

	// currentStreak never looks further back than this many days.
	streakLookbackDays = 30
)

// Level returns the 1-based level for a point total.
func Level(points int) int {
	if points < 0 {
		points = 0
	}
	return points/pointsPerLevel + 1
}

// GetProgressToNextLevel describes how far points are into the current level band.
func GetProgressToNextLevel(points int) models.LevelProgress {
	if points < 0 {
		points = 0
	}
	inLevel := points % pointsPerLevel
	return models.LevelProgress{
		Current:    inLevel,
		Needed:     pointsPerLevel - inLevel,
		Percentage: float64(inLevel) / pointsPerLevel * 100,
	}
}

// TaskPoints scores one completed task: a base of 10, a priority bonus, and
// timeliness bonuses when both a due date and a completion time are known.
func TaskPoints(t models.Task) int {
	points := 10

	switch t.Priority {
	case models.PriorityHigh:
		points += 15
	case models.PriorityMedium:
		points += 10
	default:
		points += 5
	}

	if completedAt, ok := t.CompletionTime(); ok && t.DueDate != nil {
		due := *t.DueDate
		if !completedAt.After(due) {
			points += 5
		}
		if completedAt.Before(due) {
			points += 10
		}
	}

	return points
}

func totalPoints(tasks []models.Task) int {
	total := 0
	for _, t := range tasks {
		if t.Completed {
			total += TaskPoints(t)
		}
	}
	return total
}

// calendarDay truncates t to midnight of its date in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	return calendarDay(a, loc).Equal(calendarDay(b, loc))
}

// completionDays returns the set of calendar days holding at least one completion.
func completionDays(tasks []models.Task, loc *time.Location) map[time.Time]struct{} {
	days := make(map[time.Time]struct{})
	for _, t := range tasks {
		if at, ok := t.CompletionTime(); ok {
			days[calendarDay(at, loc)] = struct{}{}
		}
	}
	return days
}

// CurrentStreak counts consecutive completion days ending today. A day with
// no completion stops the walk, so a quiet today yields 0.
func CurrentStreak(tasks []models.Task, now time.Time, loc *time.Location) int {
	days := completionDays(tasks, loc)
	today := calendarDay(now, loc)

	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		day := today.AddDate(0, 0, -i)
		if _, ok := days[day]; !ok {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive calendar days with a completion.
func LongestStreak(tasks []models.Task, loc *time.Location) int {
	days := completionDays(tasks, loc)
	if len(days) == 0 {
		return 0
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func computeUserStats(tasks []models.Task, now time.Time, loc *time.Location) models.UserStats {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	points := totalPoints(tasks)

	return models.UserStats{
		Level:          Level(points),
		TotalPoints:    points,
		TasksCompleted: completed,
		CurrentStreak:  CurrentStreak(tasks, now, loc),
		LongestStreak:  LongestStreak(tasks, loc),
		WeeklyGoal:     WeeklyGoal,
		MonthlyGoal:    MonthlyGoal,
	}
}
