package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atiaron/taskflow/internal/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show level, points and streaks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := App.Tasks.ListTasks(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching tasks: %w", err)
		}

		stats := App.Engine.GetUserStats(tasks)
		progress := services.GetProgressToNextLevel(stats.TotalPoints)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Level:           %d\n", stats.Level)
		fmt.Fprintf(out, "Points:          %d (%d/100, %.0f%% to next level)\n", stats.TotalPoints, progress.Current, progress.Percentage)
		fmt.Fprintf(out, "Completed:       %d\n", stats.TasksCompleted)
		fmt.Fprintf(out, "Current streak:  %d\n", stats.CurrentStreak)
		fmt.Fprintf(out, "Longest streak:  %d\n", stats.LongestStreak)
		fmt.Fprintf(out, "Goals:           %d weekly, %d monthly\n", stats.WeeklyGoal, stats.MonthlyGoal)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
