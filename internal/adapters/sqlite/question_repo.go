package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/levelup/internal/ports/secondary"
)

// QuestionRepository implements secondary.QuestionRepository with SQLite.
type QuestionRepository struct {
	db *sql.DB
	x  *sqlx.DB
}

// NewQuestionRepository creates a new SQLite question repository.
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db, x: newSqlx(db)}
}

// EnsureCategory returns the category id for name. New categories are
// appended after the existing ones.
func (r *QuestionRepository) EnsureCategory(ctx context.Context, name string) (int64, error) {
	q := conn(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO question_categories (name, display_order)
		 VALUES (?, (SELECT COALESCE(MAX(display_order), 0) + 1 FROM question_categories))`,
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create category %q: %w", name, err)
	}

	var id int64
	if err := q.QueryRowContext(ctx, "SELECT id FROM question_categories WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read category %q: %w", name, err)
	}
	return id, nil
}

// Create persists a question and its details. Call it inside a transaction
// so a failed detail insert leaves no orphan question.
func (r *QuestionRepository) Create(ctx context.Context, question *secondary.QuestionRecord) error {
	q := conn(ctx, r.db)

	var categoryID, week sql.NullInt64
	if question.CategoryID != 0 {
		categoryID = sql.NullInt64{Int64: question.CategoryID, Valid: true}
	}
	if question.Week != 0 {
		week = sql.NullInt64{Int64: int64(question.Week), Valid: true}
	}

	result, err := q.ExecContext(ctx,
		"INSERT INTO questions (category_id, week_number, title, main_prompt) VALUES (?, ?, ?, ?)",
		categoryID, week, question.Title, question.Prompt,
	)
	if err != nil {
		return wrapInsertErr("question", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read question id: %w", err)
	}

	for i, detail := range question.Details {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO question_details (question_id, detail_text, display_order) VALUES (?, ?, ?)",
			id, detail, i+1,
		); err != nil {
			return wrapInsertErr("question detail", err)
		}
	}

	question.ID = id
	return nil
}

// GetByID retrieves a question with its category name and details.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*secondary.QuestionRecord, error) {
	q := conn(ctx, r.db)

	var (
		categoryID sql.NullInt64
		category   sql.NullString
		week       sql.NullInt64
		createdAt  sql.NullTime
	)
	record := &secondary.QuestionRecord{}
	err := q.QueryRowContext(ctx,
		`SELECT q.id, q.category_id, c.name, q.week_number, q.title, q.main_prompt, q.created_at
		 FROM questions q LEFT JOIN question_categories c ON q.category_id = c.id
		 WHERE q.id = ?`,
		id,
	).Scan(&record.ID, &categoryID, &category, &week, &record.Title, &record.Prompt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("question %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	record.CategoryID = categoryID.Int64
	record.Category = category.String
	record.Week = int(week.Int64)
	record.CreatedAt = formatTime(createdAt)

	rows, err := q.QueryContext(ctx,
		"SELECT detail_text FROM question_details WHERE question_id = ? ORDER BY display_order ASC, id ASC",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list question details: %w", err)
	}
	defer rows.Close()

	record.Details = []string{}
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("failed to scan question detail: %w", err)
		}
		record.Details = append(record.Details, detail)
	}
	return record, rows.Err()
}

// UpsertResponse stores a user's answer, replacing the previous one.
func (r *QuestionRepository) UpsertResponse(ctx context.Context, response *secondary.ResponseRecord) error {
	q := conn(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO question_responses (question_id, user_id, response_text)
		 VALUES (?, ?, ?)
		 ON CONFLICT(question_id, user_id) DO UPDATE SET
			response_text = excluded.response_text,
			updated_at = CURRENT_TIMESTAMP`,
		response.QuestionID, response.UserID, response.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to store response to question %d: %w", response.QuestionID, err)
	}

	// LastInsertId is unreliable when the upsert took the update branch.
	var createdAt, updatedAt sql.NullTime
	err = q.QueryRowContext(ctx,
		"SELECT id, created_at, updated_at FROM question_responses WHERE question_id = ? AND user_id = ?",
		response.QuestionID, response.UserID,
	).Scan(&response.ID, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("failed to read response id: %w", err)
	}
	response.CreatedAt = formatTime(createdAt)
	response.UpdatedAt = formatTime(updatedAt)
	return nil
}

// ListResponses returns the user's answers to the given questions.
func (r *QuestionRepository) ListResponses(ctx context.Context, userID int64, questionIDs []int64) (map[int64]*secondary.ResponseRecord, error) {
	responses := make(map[int64]*secondary.ResponseRecord, len(questionIDs))
	if len(questionIDs) == 0 {
		return responses, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, question_id, user_id, response_text, created_at, updated_at
		 FROM question_responses WHERE user_id = ? AND question_id IN (?)`,
		userID, questionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build response query: %w", err)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, r.x.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var createdAt, updatedAt sql.NullTime
		record := &secondary.ResponseRecord{}
		if err := rows.Scan(&record.ID, &record.QuestionID, &record.UserID, &record.Text, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		record.CreatedAt = formatTime(createdAt)
		record.UpdatedAt = formatTime(updatedAt)
		responses[record.QuestionID] = record
	}
	return responses, rows.Err()
}

var _ secondary.QuestionRepository = (*QuestionRepository)(nil)
