package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/levelup/internal/ports/primary"
)

// mockJourneyService implements primary.JourneyService for testing.
type mockJourneyService struct {
	materializeFn func(ctx context.Context, name string) (*primary.MaterializeReport, error)
	listFn        func(ctx context.Context) ([]*primary.Journey, error)
	slotsFn       func(ctx context.Context, journeyID int64) ([]*primary.StorySlot, error)
	progressFn    func(ctx context.Context, journeyID, userID int64) ([]*primary.SlotProgress, error)
	reportFn      func(ctx context.Context, journeyID, userID int64) (*primary.CoverageReport, error)
	artifactsFn   func(ctx context.Context, userID, journeyID int64) ([]*primary.Story, error)
	promptsFn     func(ctx context.Context, section string) ([]*primary.MicroPrompt, error)

	lastActive *bool
}

func (m *mockJourneyService) CreateJourneyFromConfig(ctx context.Context, name string) (int64, error) {
	r, err := m.MaterializeJourney(ctx, name)
	if err != nil {
		return 0, err
	}
	return r.JourneyID, nil
}

func (m *mockJourneyService) MaterializeJourney(ctx context.Context, name string) (*primary.MaterializeReport, error) {
	if m.materializeFn != nil {
		return m.materializeFn(ctx, name)
	}
	return &primary.MaterializeReport{JourneyID: 1, TemplateName: name, Title: "Test Journey", Created: true}, nil
}

func (m *mockJourneyService) ListJourneys(ctx context.Context) ([]*primary.Journey, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*primary.Journey{}, nil
}

func (m *mockJourneyService) SetJourneyActive(ctx context.Context, journeyID int64, active bool) error {
	m.lastActive = &active
	return nil
}

func (m *mockJourneyService) GetJourneyConfig(ctx context.Context, journeyID int64) (*primary.JourneyConfig, error) {
	return &primary.JourneyConfig{JourneyID: journeyID, ConfigFile: "ic-swe-journey", Version: "1.0"}, nil
}

func (m *mockJourneyService) GetStorySlots(ctx context.Context, journeyID int64) ([]*primary.StorySlot, error) {
	if m.slotsFn != nil {
		return m.slotsFn(ctx, journeyID)
	}
	return []*primary.StorySlot{}, nil
}

func (m *mockJourneyService) GetSlotsWithProgress(ctx context.Context, journeyID, userID int64) ([]*primary.SlotProgress, error) {
	if m.progressFn != nil {
		return m.progressFn(ctx, journeyID, userID)
	}
	return []*primary.SlotProgress{}, nil
}

func (m *mockJourneyService) GetSignalCoverage(ctx context.Context, journeyID, userID int64) (map[string]primary.SignalCoverage, error) {
	return map[string]primary.SignalCoverage{}, nil
}

func (m *mockJourneyService) GetCoverageReport(ctx context.Context, journeyID, userID int64) (*primary.CoverageReport, error) {
	if m.reportFn != nil {
		return m.reportFn(ctx, journeyID, userID)
	}
	return &primary.CoverageReport{JourneyID: journeyID, Coverage: map[string]primary.SignalCoverage{}}, nil
}

func (m *mockJourneyService) GetUserArtifacts(ctx context.Context, userID, journeyID int64) ([]*primary.Story, error) {
	if m.artifactsFn != nil {
		return m.artifactsFn(ctx, userID, journeyID)
	}
	return []*primary.Story{}, nil
}

func (m *mockJourneyService) SeedMicroPrompts(ctx context.Context, name string) (int, error) {
	return 3, nil
}

func (m *mockJourneyService) GetMicroPrompts(ctx context.Context, section string) ([]*primary.MicroPrompt, error) {
	if m.promptsFn != nil {
		return m.promptsFn(ctx, section)
	}
	return []*primary.MicroPrompt{}, nil
}

func TestJourneyAdapter_Create(t *testing.T) {
	var out bytes.Buffer
	adapter := NewJourneyAdapter(&mockJourneyService{}, &out)

	id, err := adapter.Create(context.Background(), "ic-swe-journey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if !strings.Contains(out.String(), "Created journey 1: Test Journey") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestJourneyAdapter_CreateExistingWithFailures(t *testing.T) {
	var out bytes.Buffer
	svc := &mockJourneyService{
		materializeFn: func(ctx context.Context, name string) (*primary.MaterializeReport, error) {
			return &primary.MaterializeReport{
				JourneyID: 4,
				Title:     "Existing",
				Slots: []primary.SlotResult{
					{SlotKey: "big-impact", SlotID: 10},
					{SlotKey: "mentoring", Err: errors.New("constraint failed")},
				},
			}, nil
		},
	}
	adapter := NewJourneyAdapter(svc, &out)

	if _, err := adapter.Create(context.Background(), "ic-swe-journey"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Journey 4 already exists") {
		t.Errorf("missing existing line: %s", got)
	}
	if !strings.Contains(got, "slot mentoring was not stored: constraint failed") {
		t.Errorf("missing failure line: %s", got)
	}
	if strings.Contains(got, "big-impact") {
		t.Errorf("successful slot should not be reported: %s", got)
	}
}

func TestJourneyAdapter_CreateWarnsUndeclaredSignals(t *testing.T) {
	var out bytes.Buffer
	svc := &mockJourneyService{
		materializeFn: func(ctx context.Context, name string) (*primary.MaterializeReport, error) {
			return &primary.MaterializeReport{
				JourneyID:         2,
				Title:             "Stray",
				Created:           true,
				UndeclaredSignals: []string{"telepathy", "foresight"},
			}, nil
		},
	}
	adapter := NewJourneyAdapter(svc, &out)

	if _, err := adapter.Create(context.Background(), "stray"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "signals not in the catalog: telepathy, foresight") {
		t.Errorf("missing warning: %s", out.String())
	}
}

func TestJourneyAdapter_CreateError(t *testing.T) {
	var out bytes.Buffer
	svc := &mockJourneyService{
		materializeFn: func(ctx context.Context, name string) (*primary.MaterializeReport, error) {
			return nil, errors.New("template missing")
		},
	}
	adapter := NewJourneyAdapter(svc, &out)

	if _, err := adapter.Create(context.Background(), "nope"); err == nil {
		t.Fatal("expected error")
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %s", out.String())
	}
}

func TestJourneyAdapter_List(t *testing.T) {
	var out bytes.Buffer
	adapter := NewJourneyAdapter(&mockJourneyService{}, &out)

	if err := adapter.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No journeys found") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	adapter = NewJourneyAdapter(&mockJourneyService{
		listFn: func(ctx context.Context) ([]*primary.Journey, error) {
			return []*primary.Journey{{ID: 2, Title: "IC Prep", DurationWeeks: 6, IsActive: true}}, nil
		},
	}, &out)
	if err := adapter.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "IC Prep") || !strings.Contains(out.String(), "yes") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestJourneyAdapter_SetActive(t *testing.T) {
	var out bytes.Buffer
	svc := &mockJourneyService{}
	adapter := NewJourneyAdapter(svc, &out)

	if err := adapter.SetActive(context.Background(), 3, false); err != nil {
		t.Fatal(err)
	}
	if svc.lastActive == nil || *svc.lastActive {
		t.Errorf("expected SetJourneyActive(false)")
	}
	if !strings.Contains(out.String(), "Journey 3 deactivated") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestJourneyAdapter_Slots(t *testing.T) {
	var out bytes.Buffer
	adapter := NewJourneyAdapter(&mockJourneyService{
		slotsFn: func(ctx context.Context, journeyID int64) ([]*primary.StorySlot, error) {
			return []*primary.StorySlot{
				{ID: 1, SlotKey: "big-impact", Title: "Biggest Impact", Framework: "SPARC", Signals: []string{"ownership", "execution"}},
			}, nil
		},
	}, &out)

	if err := adapter.Slots(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "signals: ownership, execution") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestJourneyAdapter_Progress(t *testing.T) {
	var out bytes.Buffer
	adapter := NewJourneyAdapter(&mockJourneyService{
		progressFn: func(ctx context.Context, journeyID, userID int64) ([]*primary.SlotProgress, error) {
			return []*primary.SlotProgress{
				{StorySlot: primary.StorySlot{SlotKey: "big-impact", Title: "Impact"}, IsComplete: true,
					Story: &primary.Story{ID: 9, StoryTitle: "Migration"}},
				{StorySlot: primary.StorySlot{SlotKey: "hard-problem", Title: "Hard"}},
			}, nil
		},
	}, &out)

	if err := adapter.Progress(context.Background(), 1, 1); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "1/2 slots complete") {
		t.Errorf("missing summary: %s", got)
	}
	if !strings.Contains(got, "(story 9: Migration)") {
		t.Errorf("missing story: %s", got)
	}
}

func TestJourneyAdapter_Coverage(t *testing.T) {
	var out bytes.Buffer
	adapter := NewJourneyAdapter(&mockJourneyService{
		reportFn: func(ctx context.Context, journeyID, userID int64) (*primary.CoverageReport, error) {
			return &primary.CoverageReport{
				Coverage: map[string]primary.SignalCoverage{
					"ownership": {Count: 2, AvgStrength: 2.5},
				},
				Gaps:           []string{"execution", "craft"},
				CompletedSlots: 1,
				TotalSlots:     8,
				PercentDone:    12,
			}, nil
		},
	}, &out)

	if err := adapter.Coverage(context.Background(), 1, 1); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"ownership", "2.5", "Gaps: execution, craft", "1/8 slots complete (12%)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %s", want, got)
		}
	}
}

func TestJourneyAdapter_PromptsAndStories(t *testing.T) {
	var out bytes.Buffer
	adapter := NewJourneyAdapter(&mockJourneyService{
		promptsFn: func(ctx context.Context, section string) ([]*primary.MicroPrompt, error) {
			return []*primary.MicroPrompt{{Section: section, PromptText: "Where were you?", DisplayOrder: 1}}, nil
		},
		artifactsFn: func(ctx context.Context, userID, journeyID int64) ([]*primary.Story, error) {
			return []*primary.Story{{ID: 5, StoryTitle: "Unlinked"}}, nil
		},
	}, &out)

	if err := adapter.Prompts(context.Background(), "situation"); err != nil {
		t.Fatal(err)
	}
	if err := adapter.Stories(context.Background(), 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := adapter.SeedPrompts(context.Background(), "ic-swe-journey"); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"1. Where were you?", "Unlinked", "Seeded 3 micro prompts"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %s", want, got)
		}
	}
}
