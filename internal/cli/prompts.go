package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/wire"
)

// PromptsCmd returns the prompts command
func PromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage SPARC micro prompts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed [template]",
		Short: "Store a template's micro prompts (idempotent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.JourneyAdapter(cmd.OutOrStdout()).SeedPrompts(cmd.Context(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list [section]",
		Short: "List prompts for a SPARC section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.JourneyAdapter(cmd.OutOrStdout()).Prompts(cmd.Context(), args[0])
		},
	})

	return cmd
}
