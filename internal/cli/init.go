package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/db"
	"github.com/example/levelup/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the levelup database",
		Long:  `Create the levelup database (default ~/.levelup/levelup.db) and bring its schema up to date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := wire.Config().Database.Path
			fmt.Printf("Initializing levelup database at %s\n", path)

			if err := wire.Init(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			fmt.Printf("✓ Schema at version %d\n", db.LatestVersion())
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  levelup seed")
			fmt.Println("  levelup journey create ic-swe-journey")
			return nil
		},
	}
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load development fixtures",
		Long:  `Create the development users, store a template's micro prompts (--prompts) and build a task journey (--tasks).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.SeedFixtures(wire.Database()); err != nil {
				return err
			}
			fmt.Println("✓ Seeded development users (alex, sam)")

			if template, _ := cmd.Flags().GetString("prompts"); template != "" {
				if err := wire.JourneyAdapter(cmd.OutOrStdout()).SeedPrompts(cmd.Context(), template); err != nil {
					return err
				}
			}
			if name, _ := cmd.Flags().GetString("tasks"); name != "" {
				if _, err := wire.TaskAdapter(cmd.OutOrStdout()).Seed(cmd.Context(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("prompts", "ic-swe-journey", "Template whose micro prompts to seed (empty to skip)")
	cmd.Flags().String("tasks", "a-year-of-conversations", "Task journey document to build (empty to skip)")
	return cmd
}
