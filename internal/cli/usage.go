package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usageIncrement bool

var aiUsageCmd = &cobra.Command{
	Use:   "ai-usage",
	Short: "Show or bump the assistant usage counter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if usageIncrement {
			n, err := App.Engine.IncrementAIUsage(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "AI usage: %d\n", n)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "AI usage: %d\n", App.Engine.AIUsageCount(cmd.Context()))
		return nil
	},
}

func init() {
	aiUsageCmd.Flags().BoolVar(&usageIncrement, "increment", false, "record one more assistant use")
	rootCmd.AddCommand(aiUsageCmd)
}
