package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/levelup/internal/ports/secondary"
)

// EnrollmentRepository implements secondary.EnrollmentRepository with SQLite.
type EnrollmentRepository struct {
	db *sql.DB
	x  *sqlx.DB
}

// NewEnrollmentRepository creates a new SQLite enrollment repository.
func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, x: newSqlx(db)}
}

type enrollmentRow struct {
	ID                   int64           `db:"id"`
	UserID               int64           `db:"user_id"`
	JourneyID            int64           `db:"journey_id"`
	JourneyTitle         sql.NullString  `db:"journey_title"`
	EnrolledAt           sql.NullTime    `db:"enrolled_at"`
	StartDate            sql.NullString  `db:"start_date"`
	Status               sql.NullString  `db:"status"`
	CompletionPercentage sql.NullFloat64 `db:"completion_percentage"`
	CompletedAt          sql.NullTime    `db:"completed_at"`
}

// start_date goes through strftime so both drivers return plain text.
const enrollmentSelect = `SELECT e.id, e.user_id, e.journey_id, j.title AS journey_title, e.enrolled_at,
	strftime('%Y-%m-%d', e.start_date) AS start_date, e.status, e.completion_percentage, e.completed_at
	FROM user_journeys e
	JOIN journeys j ON e.journey_id = j.id`

func (row enrollmentRow) record() *secondary.EnrollmentRecord {
	return &secondary.EnrollmentRecord{
		ID:                   row.ID,
		UserID:               row.UserID,
		JourneyID:            row.JourneyID,
		JourneyTitle:         row.JourneyTitle.String,
		EnrolledAt:           formatTime(row.EnrolledAt),
		StartDate:            row.StartDate.String,
		Status:               row.Status.String,
		CompletionPercentage: row.CompletionPercentage.Float64,
		CompletedAt:          formatTime(row.CompletedAt),
	}
}

// Enroll inserts the enrollment unless it exists, then loads the stored row.
func (r *EnrollmentRepository) Enroll(ctx context.Context, e *secondary.EnrollmentRecord) (bool, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT OR IGNORE INTO user_journeys (user_id, journey_id, start_date, status)
		 VALUES (?, ?, ?, 'active')`,
		e.UserID, e.JourneyID, e.StartDate,
	)
	if err != nil {
		return false, fmt.Errorf("failed to enroll user %d: %w", e.UserID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	stored, err := r.Get(ctx, e.UserID, e.JourneyID)
	if err != nil {
		return false, err
	}
	*e = *stored
	return rowsAffected > 0, nil
}

// Get retrieves a user's enrollment in a journey.
func (r *EnrollmentRepository) Get(ctx context.Context, userID, journeyID int64) (*secondary.EnrollmentRecord, error) {
	var row enrollmentRow
	err := conn(ctx, r.db).QueryRowContext(ctx,
		enrollmentSelect+" WHERE e.user_id = ? AND e.journey_id = ?",
		userID, journeyID,
	).Scan(&row.ID, &row.UserID, &row.JourneyID, &row.JourneyTitle, &row.EnrolledAt,
		&row.StartDate, &row.Status, &row.CompletionPercentage, &row.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("enrollment of user %d in journey %d: %w", userID, journeyID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return row.record(), nil
}

// ListByUser retrieves a user's enrollments, oldest first.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int64) ([]*secondary.EnrollmentRecord, error) {
	var rows []enrollmentRow
	if err := r.x.SelectContext(ctx, &rows, enrollmentSelect+" WHERE e.user_id = ? ORDER BY e.id ASC", userID); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	enrollments := make([]*secondary.EnrollmentRecord, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.record())
	}
	return enrollments, nil
}

// UpdateCompletion stores the completion percentage. The first completion
// sets completed_at; later updates keep it.
func (r *EnrollmentRepository) UpdateCompletion(ctx context.Context, id int64, percent float64, completed bool) error {
	query := "UPDATE user_journeys SET completion_percentage = ? WHERE id = ?"
	if completed {
		query = `UPDATE user_journeys SET completion_percentage = ?, status = 'completed',
			completed_at = COALESCE(completed_at, CURRENT_TIMESTAMP) WHERE id = ?`
	}

	result, err := conn(ctx, r.db).ExecContext(ctx, query, percent, id)
	if err != nil {
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("enrollment %d: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// CompleteTask marks a task completed. Re-completing keeps the original
// completion time and relinks the response.
func (r *EnrollmentRepository) CompleteTask(ctx context.Context, progress *secondary.TaskProgressRecord) error {
	var responseID sql.NullInt64
	if progress.ResponseID != nil {
		responseID = sql.NullInt64{Int64: *progress.ResponseID, Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO user_task_progress (user_journey_id, task_id, user_id, status, started_at, completed_at, question_response_id)
		 VALUES (?, ?, ?, 'completed', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, ?)
		 ON CONFLICT(user_journey_id, task_id) DO UPDATE SET
			status = 'completed',
			completed_at = COALESCE(user_task_progress.completed_at, CURRENT_TIMESTAMP),
			question_response_id = excluded.question_response_id,
			updated_at = CURRENT_TIMESTAMP`,
		progress.EnrollmentID, progress.TaskID, progress.UserID, responseID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete task %d: %w", progress.TaskID, err)
	}
	return nil
}

// ListTaskProgress retrieves progress rows for an enrollment keyed by task.
func (r *EnrollmentRepository) ListTaskProgress(ctx context.Context, enrollmentID int64) (map[int64]*secondary.TaskProgressRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, user_journey_id, task_id, user_id, status, question_response_id, started_at, completed_at
		 FROM user_task_progress WHERE user_journey_id = ?`,
		enrollmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list task progress: %w", err)
	}
	defer rows.Close()

	progress := make(map[int64]*secondary.TaskProgressRecord)
	for rows.Next() {
		var (
			status      sql.NullString
			responseID  sql.NullInt64
			startedAt   sql.NullTime
			completedAt sql.NullTime
		)
		record := &secondary.TaskProgressRecord{}
		if err := rows.Scan(&record.ID, &record.EnrollmentID, &record.TaskID, &record.UserID,
			&status, &responseID, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task progress: %w", err)
		}
		record.Status = status.String
		if responseID.Valid {
			id := responseID.Int64
			record.ResponseID = &id
		}
		record.StartedAt = formatTime(startedAt)
		record.CompletedAt = formatTime(completedAt)
		progress[record.TaskID] = record
	}
	return progress, rows.Err()
}

// CountCompletedTasks counts completed tasks for an enrollment.
func (r *EnrollmentRepository) CountCompletedTasks(ctx context.Context, enrollmentID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_task_progress WHERE user_journey_id = ? AND status = 'completed'",
		enrollmentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return n, nil
}

var _ secondary.EnrollmentRepository = (*EnrollmentRepository)(nil)
