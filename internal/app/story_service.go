package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/levelup/internal/core/story"
	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/ports/secondary"
)

// StoryServiceImpl implements the StoryService interface.
type StoryServiceImpl struct {
	config      primary.ConfigService
	tx          secondary.Transactor
	journeyRepo secondary.JourneyRepository
	slotRepo    secondary.StorySlotRepository
	storyRepo   secondary.StoryRepository
	tagRepo     secondary.SignalTagRepository
}

// NewStoryService creates a new StoryService with injected dependencies.
func NewStoryService(
	config primary.ConfigService,
	tx secondary.Transactor,
	journeyRepo secondary.JourneyRepository,
	slotRepo secondary.StorySlotRepository,
	storyRepo secondary.StoryRepository,
	tagRepo secondary.SignalTagRepository,
) *StoryServiceImpl {
	return &StoryServiceImpl{
		config:      config,
		tx:          tx,
		journeyRepo: journeyRepo,
		slotRepo:    slotRepo,
		storyRepo:   storyRepo,
		tagRepo:     tagRepo,
	}
}

// CreateStory starts a story. The framework is inherited from the slot.
func (s *StoryServiceImpl) CreateStory(ctx context.Context, req primary.CreateStoryRequest) (*primary.Story, error) {
	guardCtx := story.CreateContext{
		UserID:    req.UserID,
		JourneyID: req.JourneyID,
		SlotID:    req.SlotID,
	}

	if _, err := s.journeyRepo.GetByID(ctx, req.JourneyID); err == nil {
		guardCtx.JourneyExists = true
	} else if !errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}

	framework := story.FrameworkSPARC
	if req.SlotID != nil {
		slot, err := s.slotRepo.GetByID(ctx, *req.SlotID)
		switch {
		case err == nil:
			guardCtx.SlotExists = true
			guardCtx.SlotJourneyID = slot.JourneyID
			framework = story.NormalizeFramework(slot.Framework)
		case !errors.Is(err, secondary.ErrNotFound):
			return nil, fmt.Errorf("failed to get story slot: %w", err)
		}
	}

	if result := story.CanCreateStory(guardCtx); !result.Allowed {
		return nil, invalid(result)
	}

	record := &secondary.StoryRecord{
		UserID:       req.UserID,
		JourneyID:    req.JourneyID,
		SlotID:       req.SlotID,
		StoryTitle:   req.StoryTitle,
		Year:         req.Year,
		Stakeholders: req.Stakeholders,
		Stakes:       req.Stakes,
		Framework:    framework,
	}
	if err := s.storyRepo.Create(ctx, record); err != nil {
		return nil, &primary.PersistenceError{Op: "create story", Err: err}
	}

	created, err := s.storyRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created story: %w", err)
	}
	return recordToStory(created), nil
}

// GetStory retrieves a story with its signal tags.
func (s *StoryServiceImpl) GetStory(ctx context.Context, userID, storyID int64) (*primary.Story, error) {
	record, err := s.ownedStory(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signal tags: %w", err)
	}

	st := recordToStory(record)
	st.Signals = recordsToTags(tags)
	return st, nil
}

// UpdateSection writes one narrative section of the story.
func (s *StoryServiceImpl) UpdateSection(ctx context.Context, req primary.UpdateSectionRequest) error {
	record, err := s.ownedStory(ctx, req.UserID, req.StoryID)
	if err != nil {
		return err
	}

	result := story.CanUpdateSection(story.SectionContext{
		StoryID:   record.ID,
		Framework: record.Framework,
		Section:   req.Section,
		Content:   req.Content,
	})
	if !result.Allowed {
		return invalid(result)
	}

	column, _ := story.SectionColumn(record.Framework, req.Section)
	if err := s.storyRepo.UpdateSection(ctx, record.ID, column, req.Content); err != nil {
		return mapRepoErr(fmt.Sprintf("story %d", record.ID), "update story section", err)
	}
	return nil
}

// TagSignals upserts the requested tags and returns the story's full tag set.
func (s *StoryServiceImpl) TagSignals(ctx context.Context, req primary.TagSignalsRequest) ([]primary.SignalTag, error) {
	record, err := s.ownedStory(ctx, req.UserID, req.StoryID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.config.LoadSignalCatalog(ctx)
	if err != nil {
		return nil, err
	}

	tags := make([]story.Tag, len(req.Tags))
	for i, t := range req.Tags {
		tags[i] = story.Tag{SignalName: t.SignalName, Strength: t.Strength}
	}
	result := story.CanTagSignals(story.TagContext{
		StoryID:     record.ID,
		Tags:        tags,
		KnownSignal: catalog.Has,
	})
	if !result.Allowed {
		return nil, invalid(result)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, t := range tags {
			if err := s.tagRepo.Upsert(ctx, &secondary.SignalTagRecord{
				StoryID:    record.ID,
				SignalName: t.SignalName,
				Strength:   t.Strength,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &primary.PersistenceError{Op: "tag signals", Err: err}
	}

	stored, err := s.tagRepo.ListByStory(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signal tags: %w", err)
	}
	return recordsToTags(stored), nil
}

// CompleteStory marks a story complete. Completing twice is not an error.
func (s *StoryServiceImpl) CompleteStory(ctx context.Context, userID, storyID int64) error {
	record, err := s.ownedStory(ctx, userID, storyID)
	if err != nil {
		return err
	}
	if err := s.storyRepo.MarkComplete(ctx, record.ID); err != nil {
		return mapRepoErr(fmt.Sprintf("story %d", record.ID), "complete story", err)
	}
	return nil
}

// ownedStory loads a story and checks it belongs to userID. Stories owned by
// someone else are reported as not found.
func (s *StoryServiceImpl) ownedStory(ctx context.Context, userID, storyID int64) (*secondary.StoryRecord, error) {
	record, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("story %d", storyID), "get story", err)
	}

	result := story.CanAccessStory(story.OwnershipContext{
		StoryID: storyID,
		OwnerID: record.UserID,
		UserID:  userID,
	})
	if !result.Allowed {
		return nil, fmt.Errorf("%w: %s", primary.ErrNotFound, result.Reason)
	}
	return record, nil
}

// invalid converts a denied guard result into an ErrInvalidInput error.
func invalid(result story.GuardResult) error {
	return fmt.Errorf("%w: %s", primary.ErrInvalidInput, result.Reason)
}

func recordsToTags(records []*secondary.SignalTagRecord) []primary.SignalTag {
	tags := make([]primary.SignalTag, len(records))
	for i, r := range records {
		tags[i] = primary.SignalTag{SignalName: r.SignalName, Strength: r.Strength}
	}
	return tags
}

func recordToStory(r *secondary.StoryRecord) *primary.Story {
	if r == nil {
		return nil
	}
	return &primary.Story{
		ID:                 r.ID,
		UserID:             r.UserID,
		JourneyID:          r.JourneyID,
		SlotID:             r.SlotID,
		StoryTitle:         r.StoryTitle,
		Year:               r.Year,
		Stakeholders:       r.Stakeholders,
		Stakes:             r.Stakes,
		Situation:          r.Situation,
		Problem:            r.Problem,
		Actions:            r.Actions,
		Results:            r.Results,
		Coda:               r.Coda,
		StarSituation:      r.StarSituation,
		StarTask:           r.StarTask,
		StarAction:         r.StarAction,
		StarResult:         r.StarResult,
		SixtySecondVersion: r.SixtySecondVersion,
		BulletOutline:      r.BulletOutline,
		Framework:          r.Framework,
		IsComplete:         r.IsComplete,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		SlotKey:            r.SlotKey,
		SlotTitle:          r.SlotTitle,
	}
}

var _ primary.StoryService = (*StoryServiceImpl)(nil)
