package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with development users.
// Safe to run repeatedly.
func SeedFixtures(database *sql.DB) error {
	users := []struct{ username, displayName string }{
		{"alex", "Alex"},
		{"sam", "Sam"},
	}
	for _, u := range users {
		if _, err := database.Exec(
			"INSERT OR IGNORE INTO users (username, display_name) VALUES (?, ?)",
			u.username, u.displayName,
		); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	return nil
}
