package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/wire"
)

// StoryCmd returns the story command
func StoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Write interview stories",
		Long:  "Create stories against journey slots, fill in their sections and tag the signals they show",
	}

	cmd.AddCommand(
		storyCreateCmd(),
		storySectionCmd(),
		storyTagCmd(),
		storyCompleteCmd(),
		storyShowCmd(),
		storyListCmd(),
	)
	return cmd
}

func storyCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Start a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			journeyID, _ := cmd.Flags().GetInt64("journey")
			req := primary.CreateStoryRequest{
				UserID:     userID,
				JourneyID:  journeyID,
				StoryTitle: args[0],
			}
			req.Year, _ = cmd.Flags().GetString("year")
			req.Stakeholders, _ = cmd.Flags().GetString("stakeholders")
			req.Stakes, _ = cmd.Flags().GetString("stakes")
			if cmd.Flags().Changed("slot") {
				slotID, _ := cmd.Flags().GetInt64("slot")
				req.SlotID = &slotID
			}

			_, err = wire.StoryAdapter(cmd.OutOrStdout()).Create(cmd.Context(), req)
			return err
		},
	}
	addUserFlag(cmd)
	cmd.Flags().Int64P("journey", "j", 0, "Journey ID")
	cmd.Flags().Int64P("slot", "s", 0, "Story slot ID")
	cmd.Flags().String("year", "", "Year the story happened")
	cmd.Flags().String("stakeholders", "", "Who was involved")
	cmd.Flags().String("stakes", "", "What was at stake")
	_ = cmd.MarkFlagRequired("journey")
	return cmd
}

func storySectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section [story-id] [section] [content]",
		Short: "Write one section of a story",
		Long: `Write one section of a story. Pass "-" as content to read it from stdin.

SPARC sections: situation, problem, actions, results, coda
STAR sections:  situation, task, action, result
Any framework:  sixty_second_version, bullet_outline`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			content, err := argOrStdin(cmd, args[2])
			if err != nil {
				return err
			}
			return wire.StoryAdapter(cmd.OutOrStdout()).Section(cmd.Context(), userID, storyID, args[1], content)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func storyTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag [story-id] [signal=strength]...",
		Short: "Tag signals a story demonstrates (strength 1-3)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			tags, err := parseTags(args[1:])
			if err != nil {
				return err
			}
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return wire.StoryAdapter(cmd.OutOrStdout()).Tag(cmd.Context(), userID, storyID, tags)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func storyCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [story-id]",
		Short: "Mark a story complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return wire.StoryAdapter(cmd.OutOrStdout()).Complete(cmd.Context(), userID, storyID)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func storyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [story-id]",
		Short: "Show a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			_, err = wire.StoryAdapter(cmd.OutOrStdout()).Show(cmd.Context(), userID, storyID)
			return err
		},
	}
	addUserFlag(cmd)
	return cmd
}

func storyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's stories in a journey",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			journeyID, _ := cmd.Flags().GetInt64("journey")
			return wire.JourneyAdapter(cmd.OutOrStdout()).Stories(cmd.Context(), journeyID, userID)
		},
	}
	addUserFlag(cmd)
	cmd.Flags().Int64P("journey", "j", 0, "Journey ID")
	_ = cmd.MarkFlagRequired("journey")
	return cmd
}

// argOrStdin returns arg, or the trimmed contents of stdin when arg is "-".
func argOrStdin(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
