package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
	"github.com/nfrund/voyage/internal/config"
	"github.com/nfrund/voyage/internal/domain"
	"github.com/nfrund/voyage/internal/gate"
	"github.com/nfrund/voyage/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "voyage",
	Short: "Voyage travel planner",
	Long: `Voyage is a command-line travel planning tracker.

Sign in once with "voyage login"; the session credential is stored on disk
and reused by every following command until "voyage logout".

Use "voyage [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	logging.New()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runWithApp wires the application for a single command invocation and maps
// any returned fault to a user-facing message and a non-zero exit.
func runWithApp(fn func(ctx context.Context, a *app.App, args []string) error) func(*cobra.Command, []string) {
	return func(cobraCmd *cobra.Command, args []string) {
		ctx := cobraCmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a := app.New(config.New())
		defer a.Close()
		a.Start(ctx)

		if err := fn(ctx, a, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", domain.FaultMessage(err))
			os.Exit(1)
		}
	}
}

// requireSignIn gives anonymous invocations a uniform message before any
// protected operation runs.
func requireSignIn(a *app.App) error {
	if !gate.Allow(a.Session.Snapshot()) {
		return domain.NewFault(domain.FaultAuth, "You are not signed in. Run 'voyage login' first.")
	}
	return nil
}

// resolveDestination finds a record by exact id first, then by unique id
// prefix, so users can paste the short form from "voyage list".
func resolveDestination(a *app.App, ref string) (domain.Destination, error) {
	if d, ok := a.Destinations.Get(ref); ok {
		return d, nil
	}

	var match *domain.Destination
	for _, d := range a.Destinations.Snapshot() {
		if len(ref) >= 4 && len(d.ID) >= len(ref) && d.ID[:len(ref)] == ref {
			if match != nil {
				return domain.Destination{}, domain.NewFault(domain.FaultValidation, fmt.Sprintf("'%s' matches more than one destination.", ref))
			}
			copied := d
			match = &copied
		}
	}
	if match == nil {
		return domain.Destination{}, domain.NewFault(domain.FaultValidation, fmt.Sprintf("No destination matches '%s'.", ref))
	}
	return *match, nil
}
