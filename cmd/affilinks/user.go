package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/config"
	"github.com/joestump/affilinks/internal/db"
	"github.com/joestump/affilinks/internal/store"
	"github.com/joestump/affilinks/internal/validation"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a local email/password account",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := validation.SignupForm{Email: email, Password: password, ConfirmPassword: password}
			if err := validation.Struct(form); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u, err := store.NewUserStore(database).Create(cmd.Context(), email, name, hash, "local")
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("a user with email %s already exists", store.NormalizeEmail(email))
			}
			if err != nil {
				return err
			}

			role := "user"
			if auth.NewAdminSet(cfg.AdminEmails...).Contains(u.Email) {
				role = "admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", role, u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password, at least 6 characters (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
