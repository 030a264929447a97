package sqlite_test

import (
	"context"
	"math"
	"testing"

	"github.com/example/levelup/internal/adapters/sqlite"
	"github.com/example/levelup/internal/ports/secondary"
)

func TestSignalTagRepository_UpsertUpdatesStrength(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewSignalTagRepository(database)
	ctx := context.Background()

	userID := seedUser(t, database, "alex")
	journeyID := seedJourney(t, database, "Tags")
	storyID := seedStory(t, database, userID, journeyID, 0, false)

	if err := repo.Upsert(ctx, &secondary.SignalTagRecord{StoryID: storyID, SignalName: "ownership", Strength: 1}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.Upsert(ctx, &secondary.SignalTagRecord{StoryID: storyID, SignalName: "ownership", Strength: 3}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if err := repo.Upsert(ctx, &secondary.SignalTagRecord{StoryID: storyID, SignalName: "craft", Strength: 2}); err != nil {
		t.Fatalf("Upsert(craft) failed: %v", err)
	}

	tags, err := repo.ListByStory(ctx, storyID)
	if err != nil {
		t.Fatalf("ListByStory failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("tag count = %d, want 2", len(tags))
	}
	if tags[0].SignalName != "craft" || tags[1].SignalName != "ownership" {
		t.Errorf("tags not ordered by name: %s, %s", tags[0].SignalName, tags[1].SignalName)
	}
	if tags[1].Strength != 3 {
		t.Errorf("ownership strength = %d, want 3", tags[1].Strength)
	}
	if tags[1].UpdatedAt == "" {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestSignalTagRepository_CascadeOnStoryDelete(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewSignalTagRepository(database)
	ctx := context.Background()

	userID := seedUser(t, database, "alex")
	journeyID := seedJourney(t, database, "Cascade")
	storyID := seedStory(t, database, userID, journeyID, 0, false)
	seedTag(t, database, storyID, "craft", 2)

	if _, err := database.Exec("DELETE FROM user_stories WHERE id = ?", storyID); err != nil {
		t.Fatalf("delete story: %v", err)
	}

	tags, err := repo.ListByStory(ctx, storyID)
	if err != nil {
		t.Fatalf("ListByStory failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tags survived story deletion: %d", len(tags))
	}
}

func TestCoverageReader_SignalCoverage(t *testing.T) {
	database := setupTestDB(t)
	reader := sqlite.NewCoverageReader(database)
	ctx := context.Background()

	alex := seedUser(t, database, "alex")
	sam := seedUser(t, database, "sam")
	journeyID := seedJourney(t, database, "Coverage")
	otherJourney := seedJourney(t, database, "Other")

	first := seedStory(t, database, alex, journeyID, 0, true)
	second := seedStory(t, database, alex, journeyID, 0, true)
	seedTag(t, database, first, "craft", 2)
	seedTag(t, database, second, "craft", 3)
	seedTag(t, database, first, "ownership", 1)

	// Noise that must not be counted.
	samStory := seedStory(t, database, sam, journeyID, 0, true)
	seedTag(t, database, samStory, "craft", 1)
	elsewhere := seedStory(t, database, alex, otherJourney, 0, true)
	seedTag(t, database, elsewhere, "craft", 1)

	got, err := reader.SignalCoverage(ctx, journeyID, alex)
	if err != nil {
		t.Fatalf("SignalCoverage failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}

	byName := map[string]*secondary.SignalCoverageRecord{}
	for _, r := range got {
		byName[r.SignalName] = r
	}
	craft := byName["craft"]
	if craft == nil || craft.StoryCount != 2 || math.Abs(craft.AvgStrength-2.5) > 1e-9 {
		t.Errorf("craft = %+v, want count 2 avg 2.5", craft)
	}
	if own := byName["ownership"]; own == nil || own.StoryCount != 1 || own.AvgStrength != 1 {
		t.Errorf("ownership = %+v, want count 1 avg 1", own)
	}
}

func TestCoverageReader_NoTags(t *testing.T) {
	database := setupTestDB(t)
	reader := sqlite.NewCoverageReader(database)

	got, err := reader.SignalCoverage(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("SignalCoverage failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SignalCoverage = %v, want empty", got)
	}
}
