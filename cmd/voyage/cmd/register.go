package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/voyage/internal/app"
	"github.com/nfrund/voyage/internal/domain"
)

var (
	registerUsername string
	registerEmail    string
	registerPassword string
	registerConfirm  string
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Long: `Create a new account. The password is validated locally before anything
is sent: it must be at least 6 characters and match the confirmation.

Examples:
  voyage register --username wanderer --email you@example.com --password secret --confirm secret`,
	Run: runWithApp(registerHandler),
}

func registerHandler(ctx context.Context, a *app.App, args []string) error {
	err := a.Session.Register(ctx, domain.RegisterInput{
		Username:        registerUsername,
		Email:           registerEmail,
		Password:        registerPassword,
		ConfirmPassword: registerConfirm,
	})
	if err != nil {
		return err
	}

	snap := a.Session.Snapshot()
	fmt.Printf("Welcome, %s. Your account is ready.\n", snap.Profile.Username)
	return nil
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Display name")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Account password (minimum 6 characters)")
	registerCmd.Flags().StringVarP(&registerConfirm, "confirm", "c", "", "Password confirmation")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("confirm")
}
