package commands

import (
	"fmt"

	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/spf13/cobra"
)

func MigrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the rentals tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			if err := database.AutoMigrate(env.DB); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(database.Models()))
			return nil
		},
	}
}
