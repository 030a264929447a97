package primary

import "context"

// JourneyService defines the primary port for journey materialization and
// progress reporting.
type JourneyService interface {
	// CreateJourneyFromConfig materializes the named template and returns the journey ID.
	// Repeated calls return the same ID.
	CreateJourneyFromConfig(ctx context.Context, templateName string) (int64, error)

	// MaterializeJourney is CreateJourneyFromConfig with a per-slot report.
	MaterializeJourney(ctx context.Context, templateName string) (*MaterializeReport, error)

	// ListJourneys retrieves all journeys.
	ListJourneys(ctx context.Context) ([]*Journey, error)

	// SetJourneyActive toggles a journey's activation flag.
	SetJourneyActive(ctx context.Context, journeyID int64, active bool) error

	// GetJourneyConfig returns the template a journey was materialized from.
	GetJourneyConfig(ctx context.Context, journeyID int64) (*JourneyConfig, error)

	// GetStorySlots returns a journey's slots in display order.
	GetStorySlots(ctx context.Context, journeyID int64) ([]*StorySlot, error)

	// GetSlotsWithProgress returns slots annotated with the user's completion state.
	GetSlotsWithProgress(ctx context.Context, journeyID, userID int64) ([]*SlotProgress, error)

	// GetSignalCoverage aggregates the user's signal tags for the journey.
	GetSignalCoverage(ctx context.Context, journeyID, userID int64) (map[string]SignalCoverage, error)

	// GetCoverageReport returns coverage plus the journey's uncovered signals.
	GetCoverageReport(ctx context.Context, journeyID, userID int64) (*CoverageReport, error)

	// GetUserArtifacts returns the user's stories for the journey.
	GetUserArtifacts(ctx context.Context, userID, journeyID int64) ([]*Story, error)

	// SeedMicroPrompts stores the template's SPARC prompts and returns how many were new.
	SeedMicroPrompts(ctx context.Context, templateName string) (int, error)

	// GetMicroPrompts returns active prompts for a SPARC section.
	GetMicroPrompts(ctx context.Context, section string) ([]*MicroPrompt, error)
}

// Journey represents a journey at the port boundary.
type Journey struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	DurationWeeks int    `json:"duration_weeks"`
	Cadence       string `json:"cadence"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// MaterializeReport describes the outcome of a materialization.
type MaterializeReport struct {
	JourneyID    int64        `json:"journey_id"`
	TemplateName string       `json:"template"`
	Title        string       `json:"title"`
	Created      bool         `json:"created"`
	Slots        []SlotResult `json:"slots,omitempty"`
	// UndeclaredSignals lists slot signals missing from the catalog.
	UndeclaredSignals []string `json:"undeclared_signals,omitempty"`
}

// Failed returns the slot results that carry an error.
func (r *MaterializeReport) Failed() []SlotResult {
	var failed []SlotResult
	for _, s := range r.Slots {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// SlotResult is the outcome of persisting one slot.
type SlotResult struct {
	SlotKey string `json:"slot_key"`
	SlotID  int64  `json:"slot_id,omitempty"`
	Err     error  `json:"-"`
}

// JourneyConfig is the stored template reference for a journey.
type JourneyConfig struct {
	JourneyID    int64  `json:"journey_id"`
	ConfigFile   string `json:"config_file"`
	ParsedConfig string `json:"parsed_config"`
	Version      string `json:"version"`
	CreatedAt    string `json:"created_at"`
}

// StorySlot represents a slot at the port boundary.
type StorySlot struct {
	ID               int64    `json:"id"`
	JourneyID        int64    `json:"journey_id"`
	SlotKey          string   `json:"slot_key"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Signals          []string `json:"signals"`
	Framework        string   `json:"framework"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	DisplayOrder     int      `json:"display_order"`
}

// SlotProgress is a slot with the user's completion state.
type SlotProgress struct {
	StorySlot
	IsComplete bool   `json:"isComplete"`
	Story      *Story `json:"story,omitempty"`
}

// SignalCoverage is the aggregate for one signal. AvgStrength is unrounded.
type SignalCoverage struct {
	Count       int     `json:"count"`
	AvgStrength float64 `json:"avg_strength"`
}

// CoverageReport pairs coverage with the journey's uncovered signals.
type CoverageReport struct {
	JourneyID      int64                     `json:"journey_id"`
	Coverage       map[string]SignalCoverage `json:"coverage"`
	Gaps           []string                  `json:"gaps"`
	CompletedSlots int                       `json:"completed_slots"`
	TotalSlots     int                       `json:"total_slots"`
	PercentDone    int                       `json:"percent_complete"`
}

// MicroPrompt is a guiding question for one narrative section.
type MicroPrompt struct {
	ID           int64  `json:"id"`
	Section      string `json:"section"`
	PromptText   string `json:"prompt_text"`
	DisplayOrder int    `json:"display_order"`
}
