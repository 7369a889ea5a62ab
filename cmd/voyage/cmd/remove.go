package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a destination",
	Args:  cobra.ExactArgs(1),
	Run:   runWithApp(removeHandler),
}

func removeHandler(ctx context.Context, a *app.App, args []string) error {
	if err := requireSignIn(a); err != nil {
		return err
	}
	if err := a.Destinations.Refresh(ctx); err != nil {
		return err
	}

	dest, err := resolveDestination(a, args[0])
	if err != nil {
		return err
	}

	if err := a.Destinations.Remove(ctx, dest.ID); err != nil {
		return err
	}

	fmt.Printf("Removed %s.\n", dest.Name)
	return nil
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
