package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/levelup/internal/ports/secondary"
)

// MicroPromptRepository implements secondary.MicroPromptRepository with SQLite.
type MicroPromptRepository struct {
	db *sql.DB
}

// NewMicroPromptRepository creates a new SQLite micro prompt repository.
func NewMicroPromptRepository(db *sql.DB) *MicroPromptRepository {
	return &MicroPromptRepository{db: db}
}

// InsertIfAbsent inserts the prompt unless (section, prompt_text) already exists.
func (r *MicroPromptRepository) InsertIfAbsent(ctx context.Context, prompt *secondary.MicroPromptRecord) (bool, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT OR IGNORE INTO micro_prompts (section, prompt_text, display_order, is_active) VALUES (?, ?, ?, 1)",
		prompt.Section, prompt.PromptText, prompt.DisplayOrder,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert micro prompt: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err == nil {
		prompt.ID = id
	}
	prompt.IsActive = true
	return true, nil
}

// ListActiveBySection retrieves active prompts for a section ordered by display order.
func (r *MicroPromptRepository) ListActiveBySection(ctx context.Context, section string) ([]*secondary.MicroPromptRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, section, prompt_text, display_order, is_active
		 FROM micro_prompts WHERE section = ? AND is_active = 1
		 ORDER BY display_order ASC, id ASC`,
		section,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list micro prompts: %w", err)
	}
	defer rows.Close()

	prompts := []*secondary.MicroPromptRecord{}
	for rows.Next() {
		var isActive sql.NullBool
		record := &secondary.MicroPromptRecord{}
		if err := rows.Scan(&record.ID, &record.Section, &record.PromptText, &record.DisplayOrder, &isActive); err != nil {
			return nil, fmt.Errorf("failed to scan micro prompt: %w", err)
		}
		record.IsActive = isActive.Bool
		prompts = append(prompts, record)
	}

	return prompts, rows.Err()
}

var _ secondary.MicroPromptRepository = (*MicroPromptRepository)(nil)
