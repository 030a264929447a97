package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/levelup/internal/adapters/sqlite"
	"github.com/example/levelup/internal/ports/secondary"
)

func TestMicroPromptRepository_InsertIfAbsent(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewMicroPromptRepository(database)
	ctx := context.Background()

	inserted, err := repo.InsertIfAbsent(ctx, &secondary.MicroPromptRecord{Section: "situation", PromptText: "Where?", DisplayOrder: 1})
	if err != nil {
		t.Fatalf("InsertIfAbsent failed: %v", err)
	}
	if !inserted {
		t.Error("first insert should report inserted")
	}

	inserted, err = repo.InsertIfAbsent(ctx, &secondary.MicroPromptRecord{Section: "situation", PromptText: "Where?", DisplayOrder: 5})
	if err != nil {
		t.Fatalf("second InsertIfAbsent failed: %v", err)
	}
	if inserted {
		t.Error("duplicate insert should be ignored")
	}

	// Same text in a different section is a different prompt.
	inserted, err = repo.InsertIfAbsent(ctx, &secondary.MicroPromptRecord{Section: "problem", PromptText: "Where?", DisplayOrder: 1})
	if err != nil || !inserted {
		t.Errorf("insert in other section = %v, %v", inserted, err)
	}
}

func TestMicroPromptRepository_ListActiveBySection(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewMicroPromptRepository(database)
	ctx := context.Background()

	for _, p := range []secondary.MicroPromptRecord{
		{Section: "results", PromptText: "Second", DisplayOrder: 2},
		{Section: "results", PromptText: "First", DisplayOrder: 1},
		{Section: "coda", PromptText: "Elsewhere", DisplayOrder: 1},
	} {
		p := p
		if _, err := repo.InsertIfAbsent(ctx, &p); err != nil {
			t.Fatalf("InsertIfAbsent failed: %v", err)
		}
	}
	if _, err := database.Exec("INSERT INTO micro_prompts (section, prompt_text, display_order, is_active) VALUES ('results', 'Retired', 0, 0)"); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListActiveBySection(ctx, "results")
	if err != nil {
		t.Fatalf("ListActiveBySection failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].PromptText != "First" || got[1].PromptText != "Second" {
		t.Errorf("order = %q, %q", got[0].PromptText, got[1].PromptText)
	}
}
