package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/wire"
)

// TasksCmd returns the tasks command
func TasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Enroll in journeys and answer their questions",
		Long:  "Seed question-based journeys, enroll users and record their answers task by task",
	}

	cmd.AddCommand(
		tasksSeedCmd(),
		tasksDocumentsCmd(),
		tasksEnrollCmd(),
		tasksEnrollmentsCmd(),
		tasksShowCmd(),
		tasksRespondCmd(),
	)
	return cmd
}

func tasksSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [name]",
		Short: "Create a task journey from a document (idempotent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.TaskAdapter(cmd.OutOrStdout()).Seed(cmd.Context(), args[0])
			return err
		},
	}
}

func tasksDocumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "List task journey documents that can be seeded",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TaskAdapter(cmd.OutOrStdout()).Documents(cmd.Context())
		},
	}
}

func tasksEnrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll [journey-id]",
		Short: "Enroll a user in a journey",
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
			return wire.TaskAdapter(cmd.OutOrStdout()).Enroll(cmd.Context(), userID, id)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func tasksEnrollmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrollments",
		Short: "List a user's journeys with their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return wire.TaskAdapter(cmd.OutOrStdout()).Enrollments(cmd.Context(), userID)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func tasksShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [journey-id]",
		Short: "Show a journey's tasks and which ones a user finished",
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
			return wire.TaskAdapter(cmd.OutOrStdout()).Tasks(cmd.Context(), id, userID)
		},
	}
	addUserFlag(cmd)
	return cmd
}

func tasksRespondCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respond [journey-id] [task-id] [response]",
		Short: "Answer a task's question",
		Long:  `Answer a task's question and mark the task complete. Pass "-" as the response to read it from stdin.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			journeyID, err := parseID(args[0], "journey")
			if err != nil {
				return err
			}
			taskID, err := parseID(args[1], "task")
			if err != nil {
				return err
			}
			userID, err := currentUserID(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			text, err := argOrStdin(cmd, args[2])
			if err != nil {
				return err
			}
			return wire.TaskAdapter(cmd.OutOrStdout()).Respond(cmd.Context(), primary.RecordResponseRequest{
				UserID:    userID,
				JourneyID: journeyID,
				TaskID:    taskID,
				Text:      text,
			})
		},
	}
	addUserFlag(cmd)
	return cmd
}
