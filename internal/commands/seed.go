package commands

import (
	"fmt"
	"os"

	"github.com/localnerve/jam-build-rentals/data"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/spf13/cobra"
)

func SeedCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample properties owned by a landlord",
		Long: `Load sample properties and their units. The owner must already hold the
landlord role or above. Properties whose title and address already exist are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			file, _ := cmd.Flags().GetString("file")

			payload := data.SeedProperties
			if file != "" {
				var err error
				if payload, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("failed to read seed file: %w", err)
				}
			}

			env, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			role, err := services.NewRoleService(env.DB, env.Log).GetRole(cmd.Context(), owner)
			if err != nil {
				return err
			}
			actor := &models.SessionUser{ID: owner, Role: role}

			created, err := services.NewPropertyService(env.DB, env.Log).Seed(cmd.Context(), actor, payload)
			if err != nil {
				return fmt.Errorf("seeded %d properties before failing: %w", created, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d properties\n", created)
			return nil
		},
	}

	cmd.Flags().String("owner", "", "User id that will own the properties")
	cmd.Flags().String("file", "", "JSON file of properties (defaults to the built-in sample set)")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}
