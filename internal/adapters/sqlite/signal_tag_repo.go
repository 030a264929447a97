package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/levelup/internal/ports/secondary"
)

// SignalTagRepository implements secondary.SignalTagRepository with SQLite.
type SignalTagRepository struct {
	db *sql.DB
}

// NewSignalTagRepository creates a new SQLite signal tag repository.
func NewSignalTagRepository(db *sql.DB) *SignalTagRepository {
	return &SignalTagRepository{db: db}
}

// Upsert inserts a tag or updates the strength of the existing one.
func (r *SignalTagRepository) Upsert(ctx context.Context, tag *secondary.SignalTagRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO story_signals (story_id, signal_name, strength, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(story_id, signal_name) DO UPDATE SET
			strength = excluded.strength,
			updated_at = CURRENT_TIMESTAMP`,
		tag.StoryID, tag.SignalName, tag.Strength,
	)
	if err != nil {
		return fmt.Errorf("failed to tag story %d with %s: %w", tag.StoryID, tag.SignalName, err)
	}
	return nil
}

// ListByStory retrieves a story's tags ordered by signal name.
func (r *SignalTagRepository) ListByStory(ctx context.Context, storyID int64) ([]*secondary.SignalTagRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, story_id, signal_name, strength, created_at, updated_at
		 FROM story_signals WHERE story_id = ? ORDER BY signal_name ASC`,
		storyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list signal tags: %w", err)
	}
	defer rows.Close()

	tags := []*secondary.SignalTagRecord{}
	for rows.Next() {
		var (
			strength  sql.NullInt64
			createdAt sql.NullTime
			updatedAt sql.NullTime
		)
		record := &secondary.SignalTagRecord{}
		if err := rows.Scan(&record.ID, &record.StoryID, &record.SignalName, &strength, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signal tag: %w", err)
		}
		record.Strength = int(strength.Int64)
		record.CreatedAt = formatTime(createdAt)
		record.UpdatedAt = formatTime(updatedAt)
		tags = append(tags, record)
	}

	return tags, rows.Err()
}

var _ secondary.SignalTagRepository = (*SignalTagRepository)(nil)
