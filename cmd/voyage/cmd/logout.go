package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored credential",
	Run:   runWithApp(logoutHandler),
}

func logoutHandler(ctx context.Context, a *app.App, args []string) error {
	a.Session.Logout(ctx)
	fmt.Println("Signed out.")
	return nil
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
