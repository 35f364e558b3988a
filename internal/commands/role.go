package commands

import (
	"fmt"

	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/spf13/cobra"
)

func RoleCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Read or change the role a user holds",
	}
	cmd.AddCommand(roleGetCmd(open), roleSetCmd(open))
	return cmd
}

func roleGetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "get <userId>",
		Short: "Print a user's role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			role, err := services.NewRoleService(env.DB, env.Log).GetRole(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), role)
			return nil
		},
	}
}

func roleSetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "set <userId> <role>",
		Short: "Grant a role (tenant, landlord, admin, super_admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			row, err := services.NewRoleService(env.DB, env.Log).SetRole(cmd.Context(), operator, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", row.UserID, row.Role)
			return nil
		},
	}
}
