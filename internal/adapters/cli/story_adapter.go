package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/levelup/internal/ports/primary"
)

// StoryAdapter translates CLI operations to StoryService calls on behalf of
// one user.
type StoryAdapter struct {
	service primary.StoryService
	out     io.Writer
}

// NewStoryAdapter creates a StoryAdapter writing to out.
func NewStoryAdapter(service primary.StoryService, out io.Writer) *StoryAdapter {
	return &StoryAdapter{service: service, out: out}
}

// Create starts a story.
func (a *StoryAdapter) Create(ctx context.Context, req primary.CreateStoryRequest) (*primary.Story, error) {
	st, err := a.service.CreateStory(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Created story %d: %s (%s)\n", doneMark, st.ID, st.StoryTitle, st.Framework)
	return st, nil
}

// Section writes one narrative section.
func (a *StoryAdapter) Section(ctx context.Context, userID, storyID int64, section, content string) error {
	err := a.service.UpdateSection(ctx, primary.UpdateSectionRequest{
		UserID:  userID,
		StoryID: storyID,
		Section: section,
		Content: content,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Story %d %s updated\n", doneMark, storyID, section)
	return nil
}

// Tag upserts signal tags and prints the story's resulting tags.
func (a *StoryAdapter) Tag(ctx context.Context, userID, storyID int64, tags []primary.SignalTag) error {
	result, err := a.service.TagSignals(ctx, primary.TagSignalsRequest{
		UserID:  userID,
		StoryID: storyID,
		Tags:    tags,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Story %d tags:\n", doneMark, storyID)
	for _, t := range result {
		fmt.Fprintf(a.out, "  %-20s %d\n", t.SignalName, t.Strength)
	}
	return nil
}

// Complete marks a story complete.
func (a *StoryAdapter) Complete(ctx context.Context, userID, storyID int64) error {
	if err := a.service.CompleteStory(ctx, userID, storyID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Story %d marked as complete\n", doneMark, storyID)
	return nil
}

// Show prints a story with the sections its framework uses.
func (a *StoryAdapter) Show(ctx context.Context, userID, storyID int64) (*primary.Story, error) {
	st, err := a.service.GetStory(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	title := color.New(color.Bold).Sprint(st.StoryTitle)
	fmt.Fprintf(a.out, "\nStory %d: %s\n", st.ID, title)
	if st.Year != "" {
		fmt.Fprintf(a.out, "Year:      %s\n", st.Year)
	}
	if st.SlotKey != "" {
		fmt.Fprintf(a.out, "Slot:      %s (%s)\n", st.SlotKey, st.SlotTitle)
	}
	fmt.Fprintf(a.out, "Framework: %s\n", st.Framework)
	status := pendingMark + " in progress"
	if st.IsComplete {
		status = doneMark + " complete"
	}
	fmt.Fprintf(a.out, "Status:    %s\n", status)

	for _, sec := range sectionsFor(st) {
		if sec.text == "" {
			continue
		}
		fmt.Fprintf(a.out, "\n%s\n%s\n", color.New(color.FgCyan).Sprint(sec.label), sec.text)
	}

	if len(st.Signals) > 0 {
		fmt.Fprintln(a.out, "\nSignals:")
		for _, t := range st.Signals {
			fmt.Fprintf(a.out, "  %-20s %d\n", t.SignalName, t.Strength)
		}
	}
	fmt.Fprintln(a.out)
	return st, nil
}

type labeled struct {
	label string
	text  string
}

func sectionsFor(st *primary.Story) []labeled {
	if st.Framework == "STAR" {
		return []labeled{
			{"Situation", st.StarSituation},
			{"Task", st.StarTask},
			{"Action", st.StarAction},
			{"Result", st.StarResult},
		}
	}
	return []labeled{
		{"Situation", st.Situation},
		{"Problem", st.Problem},
		{"Actions", st.Actions},
		{"Results", st.Results},
		{"Coda", st.Coda},
	}
}
