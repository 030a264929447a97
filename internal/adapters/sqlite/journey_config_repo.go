package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/levelup/internal/ports/secondary"
)

// JourneyConfigRepository implements secondary.JourneyConfigRepository with SQLite.
type JourneyConfigRepository struct {
	db *sql.DB
}

// NewJourneyConfigRepository creates a new SQLite journey config repository.
func NewJourneyConfigRepository(db *sql.DB) *JourneyConfigRepository {
	return &JourneyConfigRepository{db: db}
}

// Upsert stores the config reference for a journey, replacing any earlier one.
func (r *JourneyConfigRepository) Upsert(ctx context.Context, cfg *secondary.JourneyConfigRecord) error {
	version := cfg.Version
	if version == "" {
		version = "1.0"
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO journey_configs (journey_id, config_file, parsed_config, version, is_active)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT(journey_id) DO UPDATE SET
			config_file = excluded.config_file,
			parsed_config = excluded.parsed_config,
			version = excluded.version,
			updated_at = CURRENT_TIMESTAMP`,
		cfg.JourneyID, cfg.ConfigFile, cfg.ParsedConfig, version,
	)
	if err != nil {
		return fmt.Errorf("failed to store journey config: %w", err)
	}

	return nil
}

// GetByJourneyID retrieves the config reference for a journey.
func (r *JourneyConfigRepository) GetByJourneyID(ctx context.Context, journeyID int64) (*secondary.JourneyConfigRecord, error) {
	var (
		version   sql.NullString
		isActive  sql.NullBool
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	record := &secondary.JourneyConfigRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, journey_id, config_file, parsed_config, version, is_active, created_at, updated_at
		 FROM journey_configs WHERE journey_id = ?`,
		journeyID,
	).Scan(&record.ID, &record.JourneyID, &record.ConfigFile, &record.ParsedConfig,
		&version, &isActive, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("config for journey %d: %w", journeyID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journey config: %w", err)
	}

	record.Version = version.String
	record.IsActive = isActive.Bool
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)

	return record, nil
}

var _ secondary.JourneyConfigRepository = (*JourneyConfigRepository)(nil)
