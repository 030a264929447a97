package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/levelup/internal/ports/secondary"
)

// JourneyRepository implements secondary.JourneyRepository with SQLite.
type JourneyRepository struct {
	db *sql.DB
}

// NewJourneyRepository creates a new SQLite journey repository.
func NewJourneyRepository(db *sql.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

const journeyColumns = "id, title, description, duration_weeks, cadence, is_active, is_default, created_at, updated_at"

// Create persists a new journey.
func (r *JourneyRepository) Create(ctx context.Context, journey *secondary.JourneyRecord) error {
	cadence := journey.Cadence
	if cadence == "" {
		cadence = "flexible"
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO journeys (title, description, duration_weeks, cadence, is_active, is_default)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		journey.Title, nullString(journey.Description), journey.DurationWeeks, cadence, journey.IsActive, journey.IsDefault,
	)
	if err != nil {
		return wrapInsertErr("journey", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read journey id: %w", err)
	}
	journey.ID = id
	journey.Cadence = cadence

	return nil
}

// GetByID retrieves a journey by its ID.
func (r *JourneyRepository) GetByID(ctx context.Context, id int64) (*secondary.JourneyRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+journeyColumns+" FROM journeys WHERE id = ?", id,
	)
	record, err := scanJourney(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journey %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}
	return record, nil
}

// FindByTitle returns the journey with the exact title, or nil.
func (r *JourneyRepository) FindByTitle(ctx context.Context, title string) (*secondary.JourneyRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+journeyColumns+" FROM journeys WHERE title = ?", title,
	)
	record, err := scanJourney(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find journey by title: %w", err)
	}
	return record, nil
}

// List retrieves all journeys ordered by ID.
func (r *JourneyRepository) List(ctx context.Context) ([]*secondary.JourneyRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+journeyColumns+" FROM journeys ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	journeys := []*secondary.JourneyRecord{}
	for rows.Next() {
		record, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journey: %w", err)
		}
		journeys = append(journeys, record)
	}

	return journeys, rows.Err()
}

// SetActive toggles the activation flag.
func (r *JourneyRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE journeys SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		active, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update journey: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("journey %d: %w", id, secondary.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJourney(row rowScanner) (*secondary.JourneyRecord, error) {
	var (
		desc      sql.NullString
		isActive  sql.NullBool
		isDefault sql.NullBool
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	record := &secondary.JourneyRecord{}
	err := row.Scan(&record.ID, &record.Title, &desc, &record.DurationWeeks, &record.Cadence,
		&isActive, &isDefault, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	record.IsActive = isActive.Bool
	record.IsDefault = isDefault.Bool
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)

	return record, nil
}

var _ secondary.JourneyRepository = (*JourneyRepository)(nil)
