package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
	"github.com/nfrund/voyage/internal/domain"
)

// budgetCmd represents the budget command
var budgetCmd = &cobra.Command{
	Use:   "budget <id> <amount>",
	Short: "Set a destination's total budget",
	Args:  cobra.ExactArgs(2),
	Run:   runWithApp(budgetHandler),
}

func budgetHandler(ctx context.Context, a *app.App, args []string) error {
	if err := requireSignIn(a); err != nil {
		return err
	}

	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount < 0 {
		return domain.NewFault(domain.FaultValidation, fmt.Sprintf("'%s' is not a valid budget amount.", args[1]))
	}

	if err := a.Destinations.Refresh(ctx); err != nil {
		return err
	}

	dest, err := resolveDestination(a, args[0])
	if err != nil {
		return err
	}

	if err := a.Destinations.Update(ctx, dest.ID, domain.DestinationPatch{TotalBudget: &amount}); err != nil {
		return err
	}

	fmt.Printf("Budget for %s set to %.2f.\n", dest.Name, amount)
	return nil
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}
