package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
	"github.com/nfrund/voyage/internal/domain"
)

// visitCmd represents the visit command
var visitCmd = &cobra.Command{
	Use:   "visit <id>",
	Short: "Toggle a destination between planned and visited",
	Args:  cobra.ExactArgs(1),
	Run:   runWithApp(visitHandler),
}

func visitHandler(ctx context.Context, a *app.App, args []string) error {
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

	visited := !dest.Visited
	if err := a.Destinations.Update(ctx, dest.ID, domain.DestinationPatch{Visited: &visited}); err != nil {
		return err
	}

	if visited {
		fmt.Printf("Marked %s as visited.\n", dest.Name)
	} else {
		fmt.Printf("Moved %s back to planned.\n", dest.Name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(visitCmd)
}
