package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/levelup/internal/ports/secondary"
)

// JourneyTaskRepository implements secondary.JourneyTaskRepository with SQLite.
type JourneyTaskRepository struct {
	db *sql.DB
	x  *sqlx.DB
}

// NewJourneyTaskRepository creates a new SQLite journey task repository.
func NewJourneyTaskRepository(db *sql.DB) *JourneyTaskRepository {
	return &JourneyTaskRepository{db: db, x: newSqlx(db)}
}

type taskRow struct {
	ID               int64          `db:"id"`
	JourneyID        int64          `db:"journey_id"`
	Order            int            `db:"task_order"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	Type             string         `db:"task_type"`
	QuestionID       sql.NullInt64  `db:"question_id"`
	EstimatedMinutes sql.NullInt64  `db:"estimated_time_minutes"`
	PageNumber       sql.NullInt64  `db:"page_number"`
	ChapterName      sql.NullString `db:"chapter_name"`
}

const taskSelect = `SELECT id, journey_id, task_order, title, description, task_type, question_id,
	estimated_time_minutes, page_number, chapter_name FROM journey_tasks`

func (row taskRow) record() *secondary.JourneyTaskRecord {
	r := &secondary.JourneyTaskRecord{
		ID:               row.ID,
		JourneyID:        row.JourneyID,
		Order:            row.Order,
		Title:            row.Title,
		Description:      row.Description.String,
		Type:             row.Type,
		EstimatedMinutes: int(row.EstimatedMinutes.Int64),
		PageNumber:       int(row.PageNumber.Int64),
		ChapterName:      row.ChapterName.String,
	}
	if row.QuestionID.Valid {
		id := row.QuestionID.Int64
		r.QuestionID = &id
	}
	return r
}

// Create persists a new task.
func (r *JourneyTaskRepository) Create(ctx context.Context, task *secondary.JourneyTaskRecord) error {
	var questionID sql.NullInt64
	if task.QuestionID != nil {
		questionID = sql.NullInt64{Int64: *task.QuestionID, Valid: true}
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO journey_tasks (journey_id, task_order, title, description, task_type, question_id,
			estimated_time_minutes, page_number, chapter_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.JourneyID, task.Order, task.Title, nullString(task.Description), task.Type, questionID,
		task.EstimatedMinutes, task.PageNumber, nullString(task.ChapterName),
	)
	if err != nil {
		return wrapInsertErr(fmt.Sprintf("journey task %d", task.Order), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read journey task id: %w", err)
	}
	task.ID = id
	return nil
}

// GetByID retrieves a task by its ID.
func (r *JourneyTaskRepository) GetByID(ctx context.Context, id int64) (*secondary.JourneyTaskRecord, error) {
	var row taskRow
	err := r.x.GetContext(ctx, &row, taskSelect+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journey task %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journey task: %w", err)
	}
	return row.record(), nil
}

// ListByJourney retrieves a journey's tasks ordered by task order.
func (r *JourneyTaskRepository) ListByJourney(ctx context.Context, journeyID int64) ([]*secondary.JourneyTaskRecord, error) {
	var rows []taskRow
	if err := r.x.SelectContext(ctx, &rows, taskSelect+" WHERE journey_id = ? ORDER BY task_order ASC", journeyID); err != nil {
		return nil, fmt.Errorf("failed to list journey tasks: %w", err)
	}

	tasks := make([]*secondary.JourneyTaskRecord, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.record())
	}
	return tasks, nil
}

// CountByJourney counts a journey's tasks. It runs inside the caller's
// transaction when there is one.
func (r *JourneyTaskRepository) CountByJourney(ctx context.Context, journeyID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM journey_tasks WHERE journey_id = ?", journeyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count journey tasks: %w", err)
	}
	return n, nil
}

var _ secondary.JourneyTaskRepository = (*JourneyTaskRepository)(nil)
