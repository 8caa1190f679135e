package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atiaron/taskflow/internal/services"
)

var patternsPrompt string

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Learn and print behavior patterns",
	Long: `Mine the task history and interaction log for behavior patterns and
print them as JSON. With --prompt, print the personalized system prompt the
assistant would receive for that message instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := App.Tasks.ListTasks(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching tasks: %w", err)
		}
		interactions, err := App.Interactions.ListInteractions(cmd.Context(), 0)
		if err != nil {
			return fmt.Errorf("fetching interactions: %w", err)
		}

		patterns := App.Analyzer.LearnUserPatterns(App.Memory, tasks, interactions)

		if patternsPrompt != "" {
			pending, err := App.Tasks.PendingTasks(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching pending tasks: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), App.Analyzer.BuildPersonalizedPrompt(App.Memory, patternsPrompt, services.PromptContext{
				PendingTasks: pending,
			}))
			return nil
		}

		data, err := json.MarshalIndent(patterns, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	patternsCmd.Flags().StringVar(&patternsPrompt, "prompt", "", "render the assistant prompt for this message")
	rootCmd.AddCommand(patternsCmd)
}
