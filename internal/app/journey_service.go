package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/example/levelup/internal/core/journey"
	"github.com/example/levelup/internal/core/progress"
	"github.com/example/levelup/internal/core/story"
	"github.com/example/levelup/internal/metrics"
	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/ports/secondary"
)

// MaterializeOptions controls how slot rows are written.
type MaterializeOptions struct {
	// Lenient inserts slots concurrently outside a transaction and tolerates
	// individual failures. Strict (the default) writes the journey and every
	// slot in one transaction.
	Lenient bool
	// Concurrency bounds concurrent slot inserts in lenient mode.
	Concurrency int
}

// JourneyRepositories groups the stores the journey service reads and writes.
type JourneyRepositories struct {
	Tx       secondary.Transactor
	Journeys secondary.JourneyRepository
	Configs  secondary.JourneyConfigRepository
	Slots    secondary.StorySlotRepository
	Stories  secondary.StoryRepository
	Coverage secondary.CoverageReader
	Prompts  secondary.MicroPromptRepository
}

// JourneyServiceImpl implements the JourneyService interface.
type JourneyServiceImpl struct {
	config  primary.ConfigService
	repos   JourneyRepositories
	opts    MaterializeOptions
	logger  *zap.Logger
	metrics *metrics.Metrics

	// One materialization per template name at a time.
	inflight singleflight.Group
}

// NewJourneyService creates a new JourneyService with injected dependencies.
func NewJourneyService(config primary.ConfigService, repos JourneyRepositories, opts MaterializeOptions, logger *zap.Logger, m *metrics.Metrics) *JourneyServiceImpl {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &JourneyServiceImpl{
		config:  config,
		repos:   repos,
		opts:    opts,
		logger:  logger,
		metrics: m,
	}
}

// CreateJourneyFromConfig materializes templateName and returns the journey ID.
func (s *JourneyServiceImpl) CreateJourneyFromConfig(ctx context.Context, templateName string) (int64, error) {
	report, err := s.MaterializeJourney(ctx, templateName)
	if err != nil {
		return 0, err
	}
	return report.JourneyID, nil
}

// MaterializeJourney turns a template into a journey with its story slots.
// A journey whose title already exists is returned as is; template edits made
// after the first materialization are not applied.
func (s *JourneyServiceImpl) MaterializeJourney(ctx context.Context, templateName string) (*primary.MaterializeReport, error) {
	v, err, _ := s.inflight.Do(templateName, func() (any, error) {
		// Callers joining the flight share its result, so it must not
		// end with the first caller's deadline.
		return s.materialize(context.WithoutCancel(ctx), templateName)
	})
	if err != nil {
		s.metrics.RecordMaterialization("failed")
		return nil, err
	}
	return v.(*primary.MaterializeReport), nil
}

func (s *JourneyServiceImpl) materialize(ctx context.Context, templateName string) (*primary.MaterializeReport, error) {
	tmpl, err := s.config.LoadTemplate(ctx, templateName)
	if err != nil {
		return nil, err
	}

	existing, err := s.repos.Journeys.FindByTitle(ctx, tmpl.Journey.Title)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "look up journey", Err: err}
	}
	if existing != nil {
		s.metrics.RecordMaterialization("existing")
		return existingReport(templateName, existing), nil
	}

	planned := journey.PlanSlots(tmpl)
	var report *primary.MaterializeReport
	if s.opts.Lenient {
		report, err = s.materializeLenient(ctx, tmpl, planned)
	} else {
		report, err = s.materializeStrict(ctx, tmpl, planned)
	}

	if errors.Is(err, secondary.ErrDuplicate) {
		// Lost a race with another writer for the same title.
		existing, lookupErr := s.repos.Journeys.FindByTitle(ctx, tmpl.Journey.Title)
		if lookupErr != nil {
			return nil, &primary.PersistenceError{Op: "look up journey", Err: lookupErr}
		}
		if existing != nil {
			s.metrics.RecordMaterialization("existing")
			return existingReport(templateName, existing), nil
		}
	}
	if err != nil {
		return nil, err
	}

	s.storeConfigReference(ctx, report.JourneyID, tmpl)
	report.UndeclaredSignals = s.undeclaredSignals(ctx, tmpl)

	s.metrics.RecordMaterialization("created")
	s.logger.Info("journey materialized",
		zap.String("journey", tmpl.Journey.Title),
		zap.Int64("journey_id", report.JourneyID),
		zap.Int("slots_created", len(report.Slots)-len(report.Failed())),
		zap.Int("slots_failed", len(report.Failed())))
	return report, nil
}

// undeclaredSignals reports template signals the catalog does not know.
// Coverage still counts them, but they can never be tagged.
func (s *JourneyServiceImpl) undeclaredSignals(ctx context.Context, tmpl *journey.Template) []string {
	catalog, err := s.config.LoadSignalCatalog(ctx)
	if err != nil {
		s.logger.Debug("skipping signal check", zap.Error(err))
		return nil
	}

	var missing []string
	for _, id := range journey.DeclaredSignals(tmpl) {
		if !catalog.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		s.logger.Warn("template references undeclared signals",
			zap.String("journey", tmpl.Journey.Title),
			zap.Strings("signals", missing))
	}
	return missing
}

func existingReport(templateName string, record *secondary.JourneyRecord) *primary.MaterializeReport {
	return &primary.MaterializeReport{
		JourneyID:    record.ID,
		TemplateName: templateName,
		Title:        record.Title,
		Created:      false,
	}
}

func (s *JourneyServiceImpl) insertJourney(ctx context.Context, tmpl *journey.Template) (int64, error) {
	record := &secondary.JourneyRecord{
		Title:         tmpl.Journey.Title,
		Description:   tmpl.Journey.Description,
		DurationWeeks: tmpl.Journey.DurationWeeks,
		Cadence:       "flexible",
		IsActive:      true,
	}
	if err := s.repos.Journeys.Create(ctx, record); err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (s *JourneyServiceImpl) insertSlot(ctx context.Context, journeyID int64, p journey.PlannedSlot) (int64, error) {
	record := &secondary.StorySlotRecord{
		JourneyID:        journeyID,
		SlotKey:          p.Key,
		Title:            p.Title,
		Description:      p.Description,
		Signals:          p.Signals,
		Framework:        p.Framework,
		EstimatedMinutes: p.EstimatedMinutes,
		DisplayOrder:     p.DisplayOrder,
	}
	if err := s.repos.Slots.Create(ctx, record); err != nil {
		return 0, err
	}
	return record.ID, nil
}

// materializeStrict writes the journey and all slots atomically.
func (s *JourneyServiceImpl) materializeStrict(ctx context.Context, tmpl *journey.Template, planned []journey.PlannedSlot) (*primary.MaterializeReport, error) {
	report := &primary.MaterializeReport{
		TemplateName: tmpl.Name,
		Title:        tmpl.Journey.Title,
		Created:      true,
		Slots:        make([]primary.SlotResult, len(planned)),
	}

	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		journeyID, err := s.insertJourney(ctx, tmpl)
		if err != nil {
			if errors.Is(err, secondary.ErrDuplicate) {
				return err
			}
			return &primary.PersistenceError{Op: "create journey", Err: err}
		}
		report.JourneyID = journeyID

		for i, p := range planned {
			slotID, err := s.insertSlot(ctx, journeyID, p)
			if err != nil {
				return &primary.PersistenceError{Op: fmt.Sprintf("create story slot %s", p.Key), Err: err}
			}
			report.Slots[i] = primary.SlotResult{SlotKey: p.Key, SlotID: slotID}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// materializeLenient creates the journey, then fans slot inserts out. Each
// slot's outcome lands in its own result; the call fails only when the
// journey row itself cannot be written.
func (s *JourneyServiceImpl) materializeLenient(ctx context.Context, tmpl *journey.Template, planned []journey.PlannedSlot) (*primary.MaterializeReport, error) {
	journeyID, err := s.insertJourney(ctx, tmpl)
	if err != nil {
		if errors.Is(err, secondary.ErrDuplicate) {
			return nil, err
		}
		return nil, &primary.PersistenceError{Op: "create journey", Err: err}
	}

	results := make([]primary.SlotResult, len(planned))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for i, p := range planned {
		g.Go(func() error {
			slotID, err := s.insertSlot(ctx, journeyID, p)
			results[i] = primary.SlotResult{SlotKey: p.Key, SlotID: slotID, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err != nil {
			s.metrics.RecordSlotInsertFailure()
			s.logger.Warn("story slot insert failed",
				zap.Int64("journey_id", journeyID),
				zap.String("slot", r.SlotKey),
				zap.Error(r.Err))
		}
	}

	return &primary.MaterializeReport{
		JourneyID:    journeyID,
		TemplateName: tmpl.Name,
		Title:        tmpl.Journey.Title,
		Created:      true,
		Slots:        results,
	}, nil
}

// storeConfigReference records the raw template for a journey. Failures are
// logged and never fail the materialization.
func (s *JourneyServiceImpl) storeConfigReference(ctx context.Context, journeyID int64, tmpl *journey.Template) {
	record := &secondary.JourneyConfigRecord{
		JourneyID:    journeyID,
		ConfigFile:   tmpl.Name,
		ParsedConfig: string(tmpl.Raw),
		Version:      tmpl.Version,
		IsActive:     true,
	}
	if err := s.repos.Configs.Upsert(ctx, record); err != nil {
		s.logger.Warn("failed to store journey config reference",
			zap.Int64("journey_id", journeyID),
			zap.String("template", tmpl.Name),
			zap.Error(err))
	}
}

// ListJourneys retrieves all journeys.
func (s *JourneyServiceImpl) ListJourneys(ctx context.Context) ([]*primary.Journey, error) {
	records, err := s.repos.Journeys.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	journeys := make([]*primary.Journey, len(records))
	for i, r := range records {
		journeys[i] = recordToJourney(r)
	}
	return journeys, nil
}

// SetJourneyActive toggles a journey's activation flag.
func (s *JourneyServiceImpl) SetJourneyActive(ctx context.Context, journeyID int64, active bool) error {
	if err := s.repos.Journeys.SetActive(ctx, journeyID, active); err != nil {
		return mapRepoErr(fmt.Sprintf("journey %d", journeyID), "update journey", err)
	}
	return nil
}

// GetJourneyConfig returns the template a journey was materialized from.
func (s *JourneyServiceImpl) GetJourneyConfig(ctx context.Context, journeyID int64) (*primary.JourneyConfig, error) {
	record, err := s.repos.Configs.GetByJourneyID(ctx, journeyID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("config for journey %d", journeyID), "get journey config", err)
	}
	return &primary.JourneyConfig{
		JourneyID:    record.JourneyID,
		ConfigFile:   record.ConfigFile,
		ParsedConfig: record.ParsedConfig,
		Version:      record.Version,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// GetStorySlots returns a journey's slots in display order. Unknown journeys
// have no slots.
func (s *JourneyServiceImpl) GetStorySlots(ctx context.Context, journeyID int64) ([]*primary.StorySlot, error) {
	records, err := s.repos.Slots.ListByJourney(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list story slots: %w", err)
	}
	slots := make([]*primary.StorySlot, len(records))
	for i, r := range records {
		slots[i] = recordToSlot(r)
	}
	return slots, nil
}

// GetSlotsWithProgress returns every slot with the user's completion state.
func (s *JourneyServiceImpl) GetSlotsWithProgress(ctx context.Context, journeyID, userID int64) ([]*primary.SlotProgress, error) {
	slots, err := s.GetStorySlots(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	stories, err := s.repos.Stories.ListByUserAndJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user stories: %w", err)
	}

	byID := make(map[int64]*secondary.StoryRecord, len(stories))
	artifacts := make([]progress.Artifact, len(stories))
	for i, st := range stories {
		byID[st.ID] = st
		artifacts[i] = progress.Artifact{ID: st.ID, SlotID: st.SlotID, IsComplete: st.IsComplete}
	}
	chosen := progress.SelectArtifacts(artifacts)

	result := make([]*primary.SlotProgress, len(slots))
	for i, slot := range slots {
		sp := &primary.SlotProgress{StorySlot: *slot}
		if a, ok := chosen[slot.ID]; ok {
			sp.IsComplete = a.IsComplete
			sp.Story = recordToStory(byID[a.ID])
		}
		result[i] = sp
	}
	return result, nil
}

// GetSignalCoverage aggregates the user's tags in the journey by signal.
// Signals nobody tagged are absent from the map.
func (s *JourneyServiceImpl) GetSignalCoverage(ctx context.Context, journeyID, userID int64) (map[string]primary.SignalCoverage, error) {
	rows, err := s.repos.Coverage.SignalCoverage(ctx, journeyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute signal coverage: %w", err)
	}
	coverage := make(map[string]primary.SignalCoverage, len(rows))
	for _, r := range rows {
		coverage[r.SignalName] = primary.SignalCoverage{Count: r.StoryCount, AvgStrength: r.AvgStrength}
	}
	return coverage, nil
}

// GetCoverageReport combines coverage, uncovered signals and slot completion.
// Averages are rounded for display.
func (s *JourneyServiceImpl) GetCoverageReport(ctx context.Context, journeyID, userID int64) (*primary.CoverageReport, error) {
	slots, err := s.GetSlotsWithProgress(ctx, journeyID, userID)
	if err != nil {
		return nil, err
	}
	coverage, err := s.GetSignalCoverage(ctx, journeyID, userID)
	if err != nil {
		return nil, err
	}

	var declared [][]string
	completed := 0
	for _, sp := range slots {
		declared = append(declared, sp.Signals)
		if sp.IsComplete {
			completed++
		}
	}

	raw := make(map[string]progress.Coverage, len(coverage))
	display := make(map[string]primary.SignalCoverage, len(coverage))
	for name, c := range coverage {
		raw[name] = progress.Coverage{Count: c.Count, AvgStrength: c.AvgStrength}
		display[name] = primary.SignalCoverage{Count: c.Count, AvgStrength: progress.RoundStrength(c.AvgStrength)}
	}

	summary := progress.Summarize(len(slots), completed)
	return &primary.CoverageReport{
		JourneyID:      journeyID,
		Coverage:       display,
		Gaps:           progress.Gaps(journey.UnionSignals(declared...), raw),
		CompletedSlots: summary.Completed,
		TotalSlots:     summary.Total,
		PercentDone:    summary.Percent,
	}, nil
}

// GetUserArtifacts returns the user's stories for the journey in slot order.
func (s *JourneyServiceImpl) GetUserArtifacts(ctx context.Context, userID, journeyID int64) ([]*primary.Story, error) {
	records, err := s.repos.Stories.ListByUserAndJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user stories: %w", err)
	}
	stories := make([]*primary.Story, len(records))
	for i, r := range records {
		stories[i] = recordToStory(r)
	}
	return stories, nil
}

// SeedMicroPrompts stores the template's SPARC prompts, skipping ones already
// present, and returns how many rows were inserted.
func (s *JourneyServiceImpl) SeedMicroPrompts(ctx context.Context, templateName string) (int, error) {
	tmpl, err := s.config.LoadTemplate(ctx, templateName)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, section := range story.SPARCSections {
		for i, text := range tmpl.Journey.MicroPrompts[section] {
			ok, err := s.repos.Prompts.InsertIfAbsent(ctx, &secondary.MicroPromptRecord{
				Section:      section,
				PromptText:   text,
				DisplayOrder: i + 1,
				IsActive:     true,
			})
			if err != nil {
				return inserted, &primary.PersistenceError{Op: "seed micro prompt", Err: err}
			}
			if ok {
				inserted++
			}
		}
	}

	s.logger.Info("micro prompts seeded", zap.String("template", templateName), zap.Int("inserted", inserted))
	return inserted, nil
}

// GetMicroPrompts returns active prompts for a SPARC section.
func (s *JourneyServiceImpl) GetMicroPrompts(ctx context.Context, section string) ([]*primary.MicroPrompt, error) {
	if !story.IsSPARCSection(section) {
		return nil, fmt.Errorf("%w: invalid section %q", primary.ErrInvalidInput, section)
	}

	records, err := s.repos.Prompts.ListActiveBySection(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("failed to list micro prompts: %w", err)
	}
	prompts := make([]*primary.MicroPrompt, len(records))
	for i, r := range records {
		prompts[i] = &primary.MicroPrompt{
			ID:           r.ID,
			Section:      r.Section,
			PromptText:   r.PromptText,
			DisplayOrder: r.DisplayOrder,
		}
	}
	return prompts, nil
}

// mapRepoErr turns secondary.ErrNotFound into primary.ErrNotFound and wraps
// anything else as a persistence failure.
func mapRepoErr(what, op string, err error) error {
	if errors.Is(err, secondary.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, primary.ErrNotFound)
	}
	return &primary.PersistenceError{Op: op, Err: err}
}

func recordToJourney(r *secondary.JourneyRecord) *primary.Journey {
	return &primary.Journey{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		DurationWeeks: r.DurationWeeks,
		Cadence:       r.Cadence,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
	}
}

func recordToSlot(r *secondary.StorySlotRecord) *primary.StorySlot {
	signals := r.Signals
	if signals == nil {
		signals = []string{}
	}
	return &primary.StorySlot{
		ID:               r.ID,
		JourneyID:        r.JourneyID,
		SlotKey:          r.SlotKey,
		Title:            r.Title,
		Description:      r.Description,
		Signals:          signals,
		Framework:        r.Framework,
		EstimatedMinutes: r.EstimatedMinutes,
		DisplayOrder:     r.DisplayOrder,
	}
}

var _ primary.JourneyService = (*JourneyServiceImpl)(nil)
