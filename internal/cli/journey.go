package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/wire"
)

// JourneyCmd returns the journey command
func JourneyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journey",
		Short: "Materialize and inspect journeys",
		Long:  "Create journeys from templates and report per-user progress and signal coverage",
	}

	cmd.AddCommand(
		journeyCreateCmd(),
		journeyListCmd(),
		journeySlotsCmd(),
		journeyProgressCmd(),
		journeyCoverageCmd(),
		journeyConfigCmd(),
		journeyActivateCmd("activate", true),
		journeyActivateCmd("deactivate", false),
	)
	return cmd
}

func journeyCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [template]",
		Short: "Create a journey from a template (idempotent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.JourneyAdapter(cmd.OutOrStdout()).Create(cmd.Context(), args[0])
			return err
		},
	}
}

func journeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List journeys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.JourneyAdapter(cmd.OutOrStdout()).List(cmd.Context())
		},
	}
}

func journeySlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots [journey-id]",
		Short: "Show a journey's story slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "journey")
			if err != nil {
				return err
			}
			return wire.JourneyAdapter(cmd.OutOrStdout()).Slots(cmd.Context(), id)
		},
	}
}

func journeyProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress [journey-id]",
		Short: "Show which slots a user has completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "journey")
			if err != nil {
				return err
			}
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return wire.JourneyAdapter(cmd.OutOrStdout()).Progress(cmd.Context(), id, userID)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func journeyCoverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage [journey-id]",
		Short: "Show a user's signal coverage and gaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "journey")
			if err != nil {
				return err
			}
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return wire.JourneyAdapter(cmd.OutOrStdout()).Coverage(cmd.Context(), id, userID)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func journeyConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [journey-id]",
		Short: "Show the template a journey was created from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "journey")
			if err != nil {
				return err
			}
			return wire.JourneyAdapter(cmd.OutOrStdout()).Config(cmd.Context(), id)
		},
	}
}

func journeyActivateCmd(use string, active bool) *cobra.Command {
	short := "Mark a journey active"
	if !active {
		short = "Mark a journey inactive"
	}
	return &cobra.Command{
		Use:   use + " [journey-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "journey")
			if err != nil {
				return err
			}
			return wire.JourneyAdapter(cmd.OutOrStdout()).SetActive(cmd.Context(), id, active)
		},
	}
}
