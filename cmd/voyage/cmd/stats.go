package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show trip totals",
	Long:  `Show the totals across the collection: destination count, how many are visited versus still planned, and the combined budget.`,
	Run:   runWithApp(statsHandler),
}

func statsHandler(ctx context.Context, a *app.App, args []string) error {
	if err := requireSignIn(a); err != nil {
		return err
	}
	if err := a.Destinations.Refresh(ctx); err != nil {
		return err
	}

	stats := a.Destinations.Stats()
	fmt.Printf("Destinations: %d\n", stats.Total)
	fmt.Printf("Visited:      %d\n", stats.Visited)
	fmt.Printf("Planned:      %d\n", stats.Planned)
	fmt.Printf("Total budget: %.2f\n", stats.TotalBudget)
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
