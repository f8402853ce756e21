package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"organizer/internal/repository"
	"organizer/internal/service"
)

func newUserCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newCreateAdminCommand(g))
	return cmd
}

func newCreateAdminCommand(g *globals) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator or promote an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}

			cfg, log, closeLog, err := g.load()
			if err != nil {
				return err
			}
			defer closeLog()

			db, err := repository.NewDB(cfg.Database, log)
			if err != nil {
				return err
			}
			defer repository.Close(db)

			users := service.NewUserService(repository.NewUserRepository(db))
			user, created, err := users.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			verb := "Promoted"
			if created {
				verb = "Created"
			}
			log.Info("admin account ready", "user_id", user.ID, "email", user.Email, "created", created)
			fmt.Fprintf(cmd.OutOrStdout(), "%s administrator %s (id %d)\n", verb, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}
