package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/levelup/internal/ports/primary"
)

// TaskAdapter translates CLI operations to TaskJourneyService calls.
type TaskAdapter struct {
	service primary.TaskJourneyService
	out     io.Writer
}

// NewTaskAdapter creates a TaskAdapter writing to out.
func NewTaskAdapter(service primary.TaskJourneyService, out io.Writer) *TaskAdapter {
	return &TaskAdapter{service: service, out: out}
}

// Seed builds a task journey from a named document.
func (a *TaskAdapter) Seed(ctx context.Context, name string) (int64, error) {
	report, err := a.service.SeedTaskJourney(ctx, name)
	if err != nil {
		return 0, err
	}
	if report.Created {
		fmt.Fprintf(a.out, "%s Created journey %d: %s (%d tasks)\n", doneMark, report.JourneyID, report.Title, report.Tasks)
	} else {
		fmt.Fprintf(a.out, "%s Journey %d already exists: %s (%d tasks)\n", doneMark, report.JourneyID, report.Title, report.Tasks)
	}
	return report.JourneyID, nil
}

// Documents prints the task journey documents that can be seeded.
func (a *TaskAdapter) Documents(ctx context.Context) error {
	names, err := a.service.ListTaskJourneyDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list task journeys: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(a.out, "No task journeys found")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

// Enroll starts a journey for the user.
func (a *TaskAdapter) Enroll(ctx context.Context, userID, journeyID int64) error {
	e, err := a.service.Enroll(ctx, userID, journeyID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Enrolled in %s since %s\n", doneMark, e.JourneyTitle, e.StartDate)
	return nil
}

// Enrollments prints every journey the user is enrolled in.
func (a *TaskAdapter) Enrollments(ctx context.Context, userID int64) error {
	enrollments, err := a.service.ListEnrollments(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list enrollments: %w", err)
	}
	if len(enrollments) == 0 {
		fmt.Fprintln(a.out, "No enrollments found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-8s %-10s %-6s %s\n", "ID", "KIND", "STATUS", "DONE", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, e := range enrollments {
		fmt.Fprintf(a.out, "%-6d %-8s %-10s %-6s %s\n",
			e.JourneyID, e.Kind, e.Status, fmt.Sprintf("%d%%", e.PercentComplete), e.JourneyTitle)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Tasks prints a journey's tasks with the user's completion state.
func (a *TaskAdapter) Tasks(ctx context.Context, journeyID, userID int64) error {
	progress, err := a.service.GetTaskProgress(ctx, journeyID, userID)
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	a.printProgress(progress)
	return nil
}

// Respond records the user's answer to a task.
func (a *TaskAdapter) Respond(ctx context.Context, req primary.RecordResponseRequest) error {
	progress, err := a.service.RecordResponse(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Response saved for task %d\n", doneMark, req.TaskID)
	fmt.Fprintf(a.out, "%d/%d tasks complete (%d%%)\n", progress.CompletedTasks, progress.TotalTasks, progress.PercentComplete)
	return nil
}

func (a *TaskAdapter) printProgress(p *primary.TaskProgress) {
	chapter := ""
	for _, t := range p.Tasks {
		if t.Chapter != chapter {
			chapter = t.Chapter
			fmt.Fprintf(a.out, "\n%s\n", chapter)
		}
		mark := pendingMark
		if t.IsComplete {
			mark = doneMark
		}
		fmt.Fprintf(a.out, "%s %3d %-6d %s\n", mark, t.Order, t.ID, t.Title)
	}
	fmt.Fprintf(a.out, "\n%d/%d tasks complete (%d%%)\n", p.CompletedTasks, p.TotalTasks, p.PercentComplete)
}
