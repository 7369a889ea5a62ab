package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
)

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Run:   runWithApp(whoamiHandler),
}

func whoamiHandler(ctx context.Context, a *app.App, args []string) error {
	if err := requireSignIn(a); err != nil {
		return err
	}

	profile := a.Session.Snapshot().Profile
	fmt.Printf("%s <%s>\n", profile.Username, profile.Email)
	return nil
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
