package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/core/journey"
	"github.com/example/levelup/internal/wire"
)

// SignalsCmd returns the signals command
func SignalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Inspect the competency signal catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := wire.ConfigService().LoadSignalCatalog(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%-22s %-28s %s\n", "ID", "NAME", "ROLES")
			fmt.Fprintln(out, "────────────────────────────────────────────────────────────────")
			for _, s := range catalog.Signals {
				fmt.Fprintf(out, "%-22s %-28s %s\n", s.ID, s.Name, strings.Join(s.Roles, ","))
			}
			fmt.Fprintln(out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [signal-id]",
		Short: "Show one signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := wire.ConfigService().LoadSignalCatalog(cmd.Context())
			if err != nil {
				return err
			}

			return printSignal(cmd.OutOrStdout(), catalog, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "templates",
		Short: "List available journey templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := wire.ConfigService().ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	})

	return cmd
}

func printSignal(out io.Writer, catalog *journey.SignalCatalog, id string) error {
	s, ok := catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown signal %q (known: %s)", id, strings.Join(catalog.IDs(), ", "))
	}

	fmt.Fprintf(out, "%s (%s)\n", s.Name, s.ID)
	if s.Description != "" {
		fmt.Fprintf(out, "  %s\n", s.Description)
	}
	fmt.Fprintf(out, "  roles: %s\n", strings.Join(s.Roles, ", "))
	return nil
}
