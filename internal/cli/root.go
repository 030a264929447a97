// Package cli contains the levelup cobra commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/config"
	"github.com/example/levelup/internal/wire"
)

// LoadConfig reads the --config file, .env and LEVELUP_* variables and hands
// the result to wire. Install it as the root PersistentPreRunE.
func LoadConfig(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	wire.SetConfig(cfg)
	return nil
}

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "Username acting on the journey")
	_ = cmd.MarkFlagRequired("user")
}

// currentUserID resolves --user to a user id.
func currentUserID(ctx context.Context, cmd *cobra.Command) (int64, error) {
	username, _ := cmd.Flags().GetString("user")
	user, err := wire.UserService().GetUserByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("unknown user %q (create one with `levelup user add`): %w", username, err)
	}
	return user.ID, nil
}
