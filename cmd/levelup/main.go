package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/cli"
	"github.com/example/levelup/internal/version"
	"github.com/example/levelup/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "levelup",
		Short:   "levelup - interview story journeys",
		Version: version.String(),
		Long: `levelup turns journey templates into story slots and tracks the stories
you write against them, along with the competency signals they demonstrate.`,
		PersistentPreRunE: cli.LoadConfig,
		SilenceUsage:      true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./levelup.yaml when present)")

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.UserCmd())

	// Journeys and stories
	rootCmd.AddCommand(cli.JourneyCmd())
	rootCmd.AddCommand(cli.StoryCmd())
	rootCmd.AddCommand(cli.PromptsCmd())
	rootCmd.AddCommand(cli.SignalsCmd())
	rootCmd.AddCommand(cli.TasksCmd())

	rootCmd.AddCommand(cli.ServeCmd())

	err := rootCmd.Execute()
	_ = wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
