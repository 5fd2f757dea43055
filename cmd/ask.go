package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded in stored intelligence",
	Long:  `Retrieves relevant intelligence records and uses the configured LLM to answer the question. The exchange is logged.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		eng, database, err := openEngine(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer database.Close()

		answer, err := eng.Answer(ctx, owner, args[0])
		if err != nil {
			return err
		}

		fmt.Println(answer)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past question/answer exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		eng, database, err := openEngine(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer database.Close()

		history, err := eng.History(ctx, owner, limit)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		for _, ex := range history {
			fmt.Printf("[%s] Q: %s\n", ex.CreatedAt.Format("2006-01-02 15:04"), ex.Query)
			fmt.Printf("          A: %s\n", ex.Response)
			if ex.ContextUsed {
				fmt.Printf("          (grounded in %d record(s))\n", ex.Hits)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("owner", "", "scope retrieval to this owner's records plus shared ones")
	historyCmd.Flags().String("owner", "", "whose history to show")
	historyCmd.Flags().Int("limit", 20, "maximum number of exchanges")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
}
