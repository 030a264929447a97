package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/wire"
)

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	add := &cobra.Command{
		Use:   "add [username]",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			displayName, _ := cmd.Flags().GetString("display-name")
			user, err := wire.UserService().CreateUser(cmd.Context(), primary.CreateUserRequest{
				Username:    args[0],
				DisplayName: displayName,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created user %d: %s\n", user.ID, user.Username)
			return nil
		},
	}
	add.Flags().StringP("display-name", "n", "", "Display name")
	cmd.AddCommand(add)

	return cmd
}
