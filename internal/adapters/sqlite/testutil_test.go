// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// setupTestDB goes through db.OpenMemory, which applies db.GetSchemaSQL(), so
// tests always run against the authoritative schema.
//
// Do not declare CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/example/levelup/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.OpenMemory(db.DriverCGO)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedUser inserts a user and returns its ID.
func seedUser(t *testing.T, database *sql.DB, username string) int64 {
	t.Helper()
	res, err := database.Exec("INSERT INTO users (username, display_name) VALUES (?, ?)", username, username)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedJourney inserts a journey and returns its ID.
func seedJourney(t *testing.T, database *sql.DB, title string) int64 {
	t.Helper()
	res, err := database.Exec(
		"INSERT INTO journeys (title, duration_weeks, cadence, is_active) VALUES (?, 4, 'flexible', 1)",
		title,
	)
	if err != nil {
		t.Fatalf("failed to seed journey: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedSlot inserts a story slot and returns its ID.
func seedSlot(t *testing.T, database *sql.DB, journeyID int64, key string, order int, signals string) int64 {
	t.Helper()
	res, err := database.Exec(
		"INSERT INTO story_slots (journey_id, slot_key, title, signals, display_order) VALUES (?, ?, ?, ?, ?)",
		journeyID, key, "Slot "+key, signals, order,
	)
	if err != nil {
		t.Fatalf("failed to seed slot: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedStory inserts a story and returns its ID. slotID 0 means no slot.
func seedStory(t *testing.T, database *sql.DB, userID, journeyID, slotID int64, complete bool) int64 {
	t.Helper()
	var slot any
	if slotID != 0 {
		slot = slotID
	}
	res, err := database.Exec(
		"INSERT INTO user_stories (user_id, journey_id, slot_id, story_title, is_complete) VALUES (?, ?, ?, 'A story', ?)",
		userID, journeyID, slot, complete,
	)
	if err != nil {
		t.Fatalf("failed to seed story: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedTag inserts a signal tag.
func seedTag(t *testing.T, database *sql.DB, storyID int64, signal string, strength int) {
	t.Helper()
	if _, err := database.Exec(
		"INSERT INTO story_signals (story_id, signal_name, strength) VALUES (?, ?, ?)",
		storyID, signal, strength,
	); err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}
}
