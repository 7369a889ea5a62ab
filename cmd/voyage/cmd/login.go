package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
	"github.com/nfrund/voyage/internal/domain"
)

var (
	loginEmail    string
	loginPassword string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session credential",
	Long: `Sign in with email and password. On success the session credential is
stored on disk and reused by every following command.

Examples:
  voyage login --email you@example.com --password secret`,
	Run: runWithApp(loginHandler),
}

func loginHandler(ctx context.Context, a *app.App, args []string) error {
	err := a.Session.Login(ctx, domain.LoginInput{
		Email:    loginEmail,
		Password: loginPassword,
	})
	if err != nil {
		return err
	}

	snap := a.Session.Snapshot()
	fmt.Printf("Signed in as %s.\n", snap.Profile.Username)
	return nil
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}
