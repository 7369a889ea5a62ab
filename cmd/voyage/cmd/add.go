package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
	"github.com/nfrund/voyage/internal/domain"
)

var (
	addName     string
	addDate     string
	addExpenses domain.Expenses
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a destination",
	Long: `Add a destination to the plan. The total budget is computed from the
expense breakdown; categories you leave out count as zero.

Examples:
  voyage add --name Kyoto --date 2026-04-01 --flights 1200 --accommodation 800
  voyage add --name Lisbon --date 2026-06-10`,
	Run: runWithApp(addHandler),
}

func addHandler(ctx context.Context, a *app.App, args []string) error {
	if err := requireSignIn(a); err != nil {
		return err
	}
	if err := a.Destinations.Refresh(ctx); err != nil {
		return err
	}

	created, err := a.Destinations.Create(ctx, domain.DestinationDraft{
		Name:        addName,
		PlannedDate: addDate,
		Expenses:    addExpenses,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added %s (%s), budget %.2f.\n", created.Name, shortID(created.ID), created.TotalBudget)
	return nil
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Destination name")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Planned date (e.g. 2026-04-01)")
	addCmd.Flags().Float64Var(&addExpenses.Flights, "flights", 0, "Flight costs")
	addCmd.Flags().Float64Var(&addExpenses.Accommodation, "accommodation", 0, "Accommodation costs")
	addCmd.Flags().Float64Var(&addExpenses.Food, "food", 0, "Food costs")
	addCmd.Flags().Float64Var(&addExpenses.Activities, "activities", 0, "Activity costs")
	addCmd.Flags().Float64Var(&addExpenses.Transportation, "transportation", 0, "Local transportation costs")
	addCmd.Flags().Float64Var(&addExpenses.Shopping, "shopping", 0, "Shopping costs")
	addCmd.Flags().Float64Var(&addExpenses.Others, "others", 0, "Other costs")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("date")
}
