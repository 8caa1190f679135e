package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atiaron/taskflow/internal/models"
)

var achievementsCheck bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and their unlock state",
	Long: `List every achievement in the catalog.

With --check, evaluate the current task list first and persist anything
that unlocks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if achievementsCheck {
			tasks, err := App.Tasks.ListTasks(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching tasks: %w", err)
			}
			unlocked := App.Engine.CheckAchievements(cmd.Context(), App.Unlocks, App.Engine.GetUserStats(tasks), tasks)
			fmt.Fprintf(out, "Newly unlocked: %d\n\n", len(unlocked))
		}

		for _, a := range App.Engine.Achievements(App.Unlocks) {
			printAchievement(cmd, a)
		}
		return nil
	},
}

func printAchievement(cmd *cobra.Command, a models.Achievement) {
	mark := " "
	if a.Unlocked {
		mark = "x"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-18s %s %s (+%d)\n", mark, a.ID, a.Icon, a.Title, a.Points)
}

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsCheck, "check", false, "evaluate and unlock before listing")
	rootCmd.AddCommand(achievementsCmd)
}
