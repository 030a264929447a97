// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters format output and delegate everything
// else to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/example/levelup/internal/ports/primary"
)

const rule = "────────────────────────────────────────────────────────────────"

var (
	doneMark    = color.New(color.FgGreen).Sprint("✓")
	pendingMark = color.New(color.FgHiBlack).Sprint("·")
	warnMark    = color.New(color.FgYellow).Sprint("!")
)

// JourneyAdapter translates CLI operations to JourneyService calls.
type JourneyAdapter struct {
	service primary.JourneyService
	out     io.Writer
}

// NewJourneyAdapter creates a JourneyAdapter writing to out.
func NewJourneyAdapter(service primary.JourneyService, out io.Writer) *JourneyAdapter {
	return &JourneyAdapter{service: service, out: out}
}

// Create materializes a template and reports per-slot failures.
func (a *JourneyAdapter) Create(ctx context.Context, templateName string) (int64, error) {
	report, err := a.service.MaterializeJourney(ctx, templateName)
	if err != nil {
		return 0, err
	}

	if report.Created {
		fmt.Fprintf(a.out, "%s Created journey %d: %s\n", doneMark, report.JourneyID, report.Title)
	} else {
		fmt.Fprintf(a.out, "%s Journey %d already exists: %s\n", doneMark, report.JourneyID, report.Title)
	}
	for _, f := range report.Failed() {
		fmt.Fprintf(a.out, "  %s slot %s was not stored: %v\n", warnMark, f.SlotKey, f.Err)
	}
	if len(report.UndeclaredSignals) > 0 {
		fmt.Fprintf(a.out, "  %s signals not in the catalog: %s\n", warnMark, strings.Join(report.UndeclaredSignals, ", "))
	}
	return report.JourneyID, nil
}

// List prints every journey.
func (a *JourneyAdapter) List(ctx context.Context) error {
	journeys, err := a.service.ListJourneys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list journeys: %w", err)
	}

	if len(journeys) == 0 {
		fmt.Fprintln(a.out, "No journeys found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-8s %-7s %s\n", "ID", "ACTIVE", "WEEKS", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, j := range journeys {
		active := "no"
		if j.IsActive {
			active = "yes"
		}
		fmt.Fprintf(a.out, "%-6d %-8s %-7d %s\n", j.ID, active, j.DurationWeeks, j.Title)
	}
	fmt.Fprintln(a.out)
	return nil
}

// SetActive toggles a journey's activation flag.
func (a *JourneyAdapter) SetActive(ctx context.Context, journeyID int64, active bool) error {
	if err := a.service.SetJourneyActive(ctx, journeyID, active); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(a.out, "%s Journey %d %s\n", doneMark, journeyID, state)
	return nil
}

// Slots prints a journey's slots in display order.
func (a *JourneyAdapter) Slots(ctx context.Context, journeyID int64) error {
	slots, err := a.service.GetStorySlots(ctx, journeyID)
	if err != nil {
		return fmt.Errorf("failed to get story slots: %w", err)
	}

	if len(slots) == 0 {
		fmt.Fprintf(a.out, "No story slots for journey %d\n", journeyID)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-18s %-6s %-5s %s\n", "ID", "KEY", "FRAME", "MIN", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, s := range slots {
		fmt.Fprintf(a.out, "%-6d %-18s %-6s %-5d %s\n", s.ID, s.SlotKey, s.Framework, s.EstimatedMinutes, s.Title)
		if len(s.Signals) > 0 {
			fmt.Fprintf(a.out, "       signals: %s\n", strings.Join(s.Signals, ", "))
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Progress prints each slot with the user's completion state.
func (a *JourneyAdapter) Progress(ctx context.Context, journeyID, userID int64) error {
	slots, err := a.service.GetSlotsWithProgress(ctx, journeyID, userID)
	if err != nil {
		return fmt.Errorf("failed to get progress: %w", err)
	}

	done := 0
	for _, s := range slots {
		mark := pendingMark
		if s.IsComplete {
			mark = doneMark
			done++
		}
		line := fmt.Sprintf("%s %-18s %s", mark, s.SlotKey, s.Title)
		if s.Story != nil {
			line += fmt.Sprintf(" (story %d: %s)", s.Story.ID, s.Story.StoryTitle)
		}
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintf(a.out, "\n%d/%d slots complete\n", done, len(slots))
	return nil
}

// Coverage prints the coverage report: per-signal aggregates, then gaps.
func (a *JourneyAdapter) Coverage(ctx context.Context, journeyID, userID int64) error {
	report, err := a.service.GetCoverageReport(ctx, journeyID, userID)
	if err != nil {
		return fmt.Errorf("failed to get coverage: %w", err)
	}

	names := make([]string, 0, len(report.Coverage))
	for name := range report.Coverage {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Fprintln(a.out, "No signals covered yet")
	} else {
		fmt.Fprintf(a.out, "\n%-20s %-6s %s\n", "SIGNAL", "COUNT", "AVG")
		fmt.Fprintln(a.out, rule)
		for _, name := range names {
			c := report.Coverage[name]
			fmt.Fprintf(a.out, "%-20s %-6d %.1f\n", name, c.Count, c.AvgStrength)
		}
	}

	if len(report.Gaps) > 0 {
		fmt.Fprintf(a.out, "\n%s Gaps: %s\n", warnMark, strings.Join(report.Gaps, ", "))
	}
	fmt.Fprintf(a.out, "%d/%d slots complete (%d%%)\n", report.CompletedSlots, report.TotalSlots, report.PercentDone)
	return nil
}

// Config prints the template reference stored for a journey.
func (a *JourneyAdapter) Config(ctx context.Context, journeyID int64) error {
	cfg, err := a.service.GetJourneyConfig(ctx, journeyID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Template: %s\n", cfg.ConfigFile)
	fmt.Fprintf(a.out, "Version:  %s\n", cfg.Version)
	fmt.Fprintf(a.out, "Stored:   %s\n", cfg.CreatedAt)
	return nil
}

// SeedPrompts stores a template's micro prompts.
func (a *JourneyAdapter) SeedPrompts(ctx context.Context, templateName string) error {
	n, err := a.service.SeedMicroPrompts(ctx, templateName)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Seeded %d micro prompts from %s\n", doneMark, n, templateName)
	return nil
}

// Prompts prints the active prompts for a section.
func (a *JourneyAdapter) Prompts(ctx context.Context, section string) error {
	prompts, err := a.service.GetMicroPrompts(ctx, section)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		fmt.Fprintf(a.out, "No prompts for %s\n", section)
		return nil
	}
	for _, p := range prompts {
		fmt.Fprintf(a.out, "%d. %s\n", p.DisplayOrder, p.PromptText)
	}
	return nil
}

// Stories lists the user's stories in a journey.
func (a *JourneyAdapter) Stories(ctx context.Context, journeyID, userID int64) error {
	stories, err := a.service.GetUserArtifacts(ctx, userID, journeyID)
	if err != nil {
		return fmt.Errorf("failed to list stories: %w", err)
	}
	if len(stories) == 0 {
		fmt.Fprintln(a.out, "No stories found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-4s %-18s %s\n", "ID", "", "SLOT", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, st := range stories {
		mark := pendingMark
		if st.IsComplete {
			mark = doneMark
		}
		slot := st.SlotKey
		if slot == "" {
			slot = "-"
		}
		fmt.Fprintf(a.out, "%-6d %-4s %-18s %s\n", st.ID, mark, slot, st.StoryTitle)
	}
	fmt.Fprintln(a.out)
	return nil
}
