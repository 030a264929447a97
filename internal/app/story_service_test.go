package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/levelup/internal/ports/primary"
)

// setupStory materializes the test template and returns the journey, its
// slots and a story service sharing the fixture.
func setupStory(t *testing.T) (*journeyFixture, *StoryServiceImpl, int64, []*primary.StorySlot) {
	t.Helper()
	f := newJourneyFixture()
	ctx := context.Background()

	js := f.service(MaterializeOptions{})
	journeyID, err := js.CreateJourneyFromConfig(ctx, "ic-swe-journey")
	require.NoError(t, err)
	slots, err := js.GetStorySlots(ctx, journeyID)
	require.NoError(t, err)

	return f, f.storyService(), journeyID, slots
}

func TestCreateStory(t *testing.T) {
	_, svc, journeyID, slots := setupStory(t)
	ctx := context.Background()

	st, err := svc.CreateStory(ctx, primary.CreateStoryRequest{
		UserID:     1,
		JourneyID:  journeyID,
		SlotID:     &slots[2].ID,
		StoryTitle: "Rebuilt the deploy pipeline",
		Year:       "2023",
	})
	require.NoError(t, err)

	assert.NotZero(t, st.ID)
	assert.Equal(t, "STAR", st.Framework, "framework is inherited from the slot")
	assert.Equal(t, "2023", st.Year)
	assert.False(t, st.IsComplete)

	unlinked, err := svc.CreateStory(ctx, primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID})
	require.NoError(t, err)
	assert.Equal(t, "SPARC", unlinked.Framework)
	assert.Nil(t, unlinked.SlotID)
}

func TestCreateStory_Rejected(t *testing.T) {
	f, svc, journeyID, _ := setupStory(t)
	ctx := context.Background()

	other := f.service(MaterializeOptions{})
	f.source.templates["other"] = []byte(`{"journey":{"title":"Other","story_slots":[{"id":"x"}]}}`)
	otherID, err := other.CreateJourneyFromConfig(ctx, "other")
	require.NoError(t, err)
	otherSlots, err := other.GetStorySlots(ctx, otherID)
	require.NoError(t, err)

	missingSlot := int64(999)
	tests := []struct {
		name string
		req  primary.CreateStoryRequest
	}{
		{"no user", primary.CreateStoryRequest{JourneyID: journeyID}},
		{"unknown journey", primary.CreateStoryRequest{UserID: 1, JourneyID: 999}},
		{"unknown slot", primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID, SlotID: &missingSlot}},
		{"slot from another journey", primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID, SlotID: &otherSlots[0].ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateStory(ctx, tt.req)
			assert.ErrorIs(t, err, primary.ErrInvalidInput)
		})
	}
}

func TestUpdateSection(t *testing.T) {
	f, svc, journeyID, slots := setupStory(t)
	ctx := context.Background()

	sparc, err := svc.CreateStory(ctx, primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID, SlotID: &slots[0].ID})
	require.NoError(t, err)
	star, err := svc.CreateStory(ctx, primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID, SlotID: &slots[2].ID})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateSection(ctx, primary.UpdateSectionRequest{UserID: 1, StoryID: sparc.ID, Section: "situation", Content: "Legacy billing"}))
	require.NoError(t, svc.UpdateSection(ctx, primary.UpdateSectionRequest{UserID: 1, StoryID: star.ID, Section: "task", Content: "Own the migration"}))
	require.NoError(t, svc.UpdateSection(ctx, primary.UpdateSectionRequest{UserID: 1, StoryID: star.ID, Section: "bullet_outline", Content: "- one"}))

	assert.Equal(t, "Legacy billing", f.stories.stories[sparc.ID].Situation)
	assert.Equal(t, "Own the migration", f.stories.stories[star.ID].StarTask)
	assert.Equal(t, "- one", f.stories.stories[star.ID].BulletOutline)

	tests := []struct {
		name    string
		req     primary.UpdateSectionRequest
		wantErr error
	}{
		{"invalid SPARC section", primary.UpdateSectionRequest{UserID: 1, StoryID: sparc.ID, Section: "task", Content: "x"}, primary.ErrInvalidInput},
		{"SPARC section on STAR story", primary.UpdateSectionRequest{UserID: 1, StoryID: star.ID, Section: "coda", Content: "x"}, primary.ErrInvalidInput},
		{"blank content", primary.UpdateSectionRequest{UserID: 1, StoryID: sparc.ID, Section: "problem", Content: "   "}, primary.ErrInvalidInput},
		{"someone else's story", primary.UpdateSectionRequest{UserID: 2, StoryID: sparc.ID, Section: "problem", Content: "x"}, primary.ErrNotFound},
		{"missing story", primary.UpdateSectionRequest{UserID: 1, StoryID: 999, Section: "problem", Content: "x"}, primary.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.UpdateSection(ctx, tt.req), tt.wantErr)
		})
	}
}

func TestTagSignals(t *testing.T) {
	f, svc, journeyID, slots := setupStory(t)
	ctx := context.Background()

	st, err := svc.CreateStory(ctx, primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID, SlotID: &slots[0].ID})
	require.NoError(t, err)
	f.tx.calls = 0

	tags, err := svc.TagSignals(ctx, primary.TagSignalsRequest{
		UserID:  1,
		StoryID: st.ID,
		Tags:    []primary.SignalTag{{SignalName: "ownership", Strength: 3}, {SignalName: "craft", Strength: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []primary.SignalTag{{SignalName: "craft", Strength: 1}, {SignalName: "ownership", Strength: 3}}, tags)

	tags, err = svc.TagSignals(ctx, primary.TagSignalsRequest{
		UserID:  1,
		StoryID: st.ID,
		Tags:    []primary.SignalTag{{SignalName: "craft", Strength: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, []primary.SignalTag{{SignalName: "craft", Strength: 2}, {SignalName: "ownership", Strength: 3}}, tags, "re-tagging updates strength")
	assert.Equal(t, 2, f.tx.calls, "each tagging call runs in its own transaction")

	got, err := svc.GetStory(ctx, 1, st.ID)
	require.NoError(t, err)
	assert.Len(t, got.Signals, 2)
}

func TestTagSignals_Rejected(t *testing.T) {
	f, svc, journeyID, _ := setupStory(t)
	ctx := context.Background()

	st, err := svc.CreateStory(ctx, primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID})
	require.NoError(t, err)

	tests := []struct {
		name string
		tags []primary.SignalTag
	}{
		{"no tags", nil},
		{"strength zero", []primary.SignalTag{{SignalName: "craft", Strength: 0}}},
		{"strength four", []primary.SignalTag{{SignalName: "craft", Strength: 4}}},
		{"unknown signal", []primary.SignalTag{{SignalName: "telepathy", Strength: 2}}},
		{"blank name", []primary.SignalTag{{SignalName: "", Strength: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TagSignals(ctx, primary.TagSignalsRequest{UserID: 1, StoryID: st.ID, Tags: tt.tags})
			assert.ErrorIs(t, err, primary.ErrInvalidInput)
		})
	}
	assert.Empty(t, f.tags.tags[st.ID], "rejected tags are never written")
}

func TestTagSignals_PersistenceFailure(t *testing.T) {
	f, svc, journeyID, _ := setupStory(t)
	ctx := context.Background()

	st, err := svc.CreateStory(ctx, primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID})
	require.NoError(t, err)

	f.tags.upsertErr = errors.New("database is locked")
	_, err = svc.TagSignals(ctx, primary.TagSignalsRequest{UserID: 1, StoryID: st.ID, Tags: []primary.SignalTag{{SignalName: "craft", Strength: 2}}})

	var persistErr *primary.PersistenceError
	assert.ErrorAs(t, err, &persistErr)
}

func TestCompleteStory(t *testing.T) {
	_, svc, journeyID, _ := setupStory(t)
	ctx := context.Background()

	st, err := svc.CreateStory(ctx, primary.CreateStoryRequest{UserID: 1, JourneyID: journeyID})
	require.NoError(t, err)

	require.NoError(t, svc.CompleteStory(ctx, 1, st.ID))
	require.NoError(t, svc.CompleteStory(ctx, 1, st.ID), "completing twice is fine")

	got, err := svc.GetStory(ctx, 1, st.ID)
	require.NoError(t, err)
	assert.True(t, got.IsComplete)

	assert.ErrorIs(t, svc.CompleteStory(ctx, 2, st.ID), primary.ErrNotFound)
}
