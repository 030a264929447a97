package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/levelup/internal/ports/secondary"
)

// StorySlotRepository implements secondary.StorySlotRepository with SQLite.
type StorySlotRepository struct {
	db *sql.DB
}

// NewStorySlotRepository creates a new SQLite story slot repository.
func NewStorySlotRepository(db *sql.DB) *StorySlotRepository {
	return &StorySlotRepository{db: db}
}

const slotColumns = "id, journey_id, slot_key, title, description, signals, framework, estimated_minutes, display_order, created_at"

// Create persists a new slot. Signals are stored as a JSON array.
func (r *StorySlotRepository) Create(ctx context.Context, slot *secondary.StorySlotRecord) error {
	signals := slot.Signals
	if signals == nil {
		signals = []string{}
	}
	encoded, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("failed to encode slot signals: %w", err)
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO story_slots (journey_id, slot_key, title, description, signals, framework, estimated_minutes, display_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		slot.JourneyID, slot.SlotKey, slot.Title, nullString(slot.Description), string(encoded),
		slot.Framework, slot.EstimatedMinutes, slot.DisplayOrder,
	)
	if err != nil {
		return wrapInsertErr("story slot "+slot.SlotKey, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read story slot id: %w", err)
	}
	slot.ID = id

	return nil
}

// GetByID retrieves a slot by its ID.
func (r *StorySlotRepository) GetByID(ctx context.Context, id int64) (*secondary.StorySlotRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM story_slots WHERE id = ?", id,
	)
	record, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("story slot %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story slot: %w", err)
	}
	return record, nil
}

// ListByJourney retrieves a journey's slots ordered by display order.
func (r *StorySlotRepository) ListByJourney(ctx context.Context, journeyID int64) ([]*secondary.StorySlotRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+slotColumns+" FROM story_slots WHERE journey_id = ? ORDER BY display_order ASC, id ASC",
		journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list story slots: %w", err)
	}
	defer rows.Close()

	slots := []*secondary.StorySlotRecord{}
	for rows.Next() {
		record, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story slot: %w", err)
		}
		slots = append(slots, record)
	}

	return slots, rows.Err()
}

func scanSlot(row rowScanner) (*secondary.StorySlotRecord, error) {
	var (
		desc      sql.NullString
		signals   sql.NullString
		framework sql.NullString
		minutes   sql.NullInt64
		createdAt sql.NullTime
	)

	record := &secondary.StorySlotRecord{}
	err := row.Scan(&record.ID, &record.JourneyID, &record.SlotKey, &record.Title, &desc,
		&signals, &framework, &minutes, &record.DisplayOrder, &createdAt)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	record.Framework = framework.String
	record.EstimatedMinutes = int(minutes.Int64)
	record.CreatedAt = formatTime(createdAt)
	record.Signals = []string{}
	if signals.Valid && signals.String != "" {
		if err := json.Unmarshal([]byte(signals.String), &record.Signals); err != nil {
			return nil, fmt.Errorf("failed to decode signals for slot %d: %w", record.ID, err)
		}
	}

	return record, nil
}

var _ secondary.StorySlotRepository = (*StorySlotRepository)(nil)
