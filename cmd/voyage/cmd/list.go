package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all destinations",
	Long: `Fetch the destination collection from the server and print it.

Each line shows the short id to use with visit, budget and remove.`,
	Run: runWithApp(listHandler),
}

func listHandler(ctx context.Context, a *app.App, args []string) error {
	if err := requireSignIn(a); err != nil {
		return err
	}
	if err := a.Destinations.Refresh(ctx); err != nil {
		return err
	}

	items := a.Destinations.Snapshot()
	if len(items) == 0 {
		fmt.Println("No destinations yet. Add one with 'voyage add'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDATE\tBUDGET\tSTATUS")
	for _, d := range items {
		status := "planned"
		if d.Visited {
			status = "visited"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", shortID(d.ID), d.Name, d.PlannedDate, d.TotalBudget, status)
	}
	return w.Flush()
}

// shortID truncates server ids for display; resolveDestination accepts the
// prefix back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(listCmd)
}
