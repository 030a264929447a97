package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/levelup/internal/ports/secondary"
)

// StoryRepository implements secondary.StoryRepository with SQLite.
type StoryRepository struct {
	db *sql.DB
	x  *sqlx.DB
}

// NewStoryRepository creates a new SQLite story repository.
func NewStoryRepository(db *sql.DB) *StoryRepository {
	return &StoryRepository{db: db, x: newSqlx(db)}
}

// newSqlx wraps db for sqlx reads. Both SQLite drivers use ? placeholders,
// so the bind type of sqlite3 is correct for either.
func newSqlx(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "sqlite3")
}

// sectionColumns are the narrative columns UpdateSection may write.
var sectionColumns = map[string]bool{
	"situation":            true,
	"problem":              true,
	"actions":              true,
	"results":              true,
	"coda":                 true,
	"star_situation":       true,
	"star_task":            true,
	"star_action":          true,
	"star_result":          true,
	"sixty_second_version": true,
	"bullet_outline":       true,
}

// storyRow maps a user_stories row (optionally joined with story_slots).
type storyRow struct {
	ID                 int64          `db:"id"`
	UserID             int64          `db:"user_id"`
	JourneyID          int64          `db:"journey_id"`
	SlotID             sql.NullInt64  `db:"slot_id"`
	StoryTitle         sql.NullString `db:"story_title"`
	Year               sql.NullString `db:"year"`
	Stakeholders       sql.NullString `db:"stakeholders"`
	Stakes             sql.NullString `db:"stakes"`
	Situation          sql.NullString `db:"situation"`
	Problem            sql.NullString `db:"problem"`
	Actions            sql.NullString `db:"actions"`
	Results            sql.NullString `db:"results"`
	Coda               sql.NullString `db:"coda"`
	StarSituation      sql.NullString `db:"star_situation"`
	StarTask           sql.NullString `db:"star_task"`
	StarAction         sql.NullString `db:"star_action"`
	StarResult         sql.NullString `db:"star_result"`
	SixtySecondVersion sql.NullString `db:"sixty_second_version"`
	BulletOutline      sql.NullString `db:"bullet_outline"`
	Framework          sql.NullString `db:"framework"`
	IsComplete         sql.NullBool   `db:"is_complete"`
	CreatedAt          sql.NullTime   `db:"created_at"`
	UpdatedAt          sql.NullTime   `db:"updated_at"`

	SlotKey          sql.NullString `db:"slot_key"`
	SlotTitle        sql.NullString `db:"slot_title"`
	SlotDisplayOrder sql.NullInt64  `db:"slot_display_order"`
}

const storySelect = `SELECT s.id, s.user_id, s.journey_id, s.slot_id, s.story_title, s.year,
	s.stakeholders, s.stakes, s.situation, s.problem, s.actions, s.results, s.coda,
	s.star_situation, s.star_task, s.star_action, s.star_result,
	s.sixty_second_version, s.bullet_outline, s.framework, s.is_complete,
	s.created_at, s.updated_at,
	sl.slot_key AS slot_key, sl.title AS slot_title, sl.display_order AS slot_display_order
	FROM user_stories s
	LEFT JOIN story_slots sl ON s.slot_id = sl.id`

func (row storyRow) record() *secondary.StoryRecord {
	r := &secondary.StoryRecord{
		ID:                 row.ID,
		UserID:             row.UserID,
		JourneyID:          row.JourneyID,
		StoryTitle:         row.StoryTitle.String,
		Year:               row.Year.String,
		Stakeholders:       row.Stakeholders.String,
		Stakes:             row.Stakes.String,
		Situation:          row.Situation.String,
		Problem:            row.Problem.String,
		Actions:            row.Actions.String,
		Results:            row.Results.String,
		Coda:               row.Coda.String,
		StarSituation:      row.StarSituation.String,
		StarTask:           row.StarTask.String,
		StarAction:         row.StarAction.String,
		StarResult:         row.StarResult.String,
		SixtySecondVersion: row.SixtySecondVersion.String,
		BulletOutline:      row.BulletOutline.String,
		Framework:          row.Framework.String,
		IsComplete:         row.IsComplete.Bool,
		CreatedAt:          formatTime(row.CreatedAt),
		UpdatedAt:          formatTime(row.UpdatedAt),
		SlotKey:            row.SlotKey.String,
		SlotTitle:          row.SlotTitle.String,
	}
	if row.SlotID.Valid {
		id := row.SlotID.Int64
		r.SlotID = &id
	}
	if row.SlotDisplayOrder.Valid {
		order := int(row.SlotDisplayOrder.Int64)
		r.SlotDisplayOrder = &order
	}
	return r
}

// Create persists a new story.
func (r *StoryRepository) Create(ctx context.Context, story *secondary.StoryRecord) error {
	var slotID sql.NullInt64
	if story.SlotID != nil {
		slotID = sql.NullInt64{Int64: *story.SlotID, Valid: true}
	}
	framework := story.Framework
	if framework == "" {
		framework = "SPARC"
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO user_stories (user_id, journey_id, slot_id, story_title, year, stakeholders, stakes, framework)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		story.UserID, story.JourneyID, slotID, nullString(story.StoryTitle), nullString(story.Year),
		nullString(story.Stakeholders), nullString(story.Stakes), framework,
	)
	if err != nil {
		return wrapInsertErr("story", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read story id: %w", err)
	}
	story.ID = id
	story.Framework = framework

	return nil
}

// GetByID retrieves a story by its ID, joined with its slot.
func (r *StoryRepository) GetByID(ctx context.Context, id int64) (*secondary.StoryRecord, error) {
	var row storyRow
	err := r.x.GetContext(ctx, &row, storySelect+" WHERE s.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("story %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return row.record(), nil
}

// UpdateSection writes content into one narrative column.
func (r *StoryRepository) UpdateSection(ctx context.Context, id int64, column, content string) error {
	if !sectionColumns[column] {
		return fmt.Errorf("unknown story column %q", column)
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE user_stories SET "+column+" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		content, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update story section: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("story %d: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// MarkComplete sets the completion flag.
func (r *StoryRepository) MarkComplete(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE user_stories SET is_complete = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete story: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("story %d: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// ListByUserAndJourney retrieves a user's stories for a journey ordered by
// slot display order. Stories without a slot come last, oldest first.
func (r *StoryRepository) ListByUserAndJourney(ctx context.Context, userID, journeyID int64) ([]*secondary.StoryRecord, error) {
	var rows []storyRow
	err := r.x.SelectContext(ctx, &rows,
		storySelect+` WHERE s.user_id = ? AND s.journey_id = ?
		ORDER BY sl.display_order IS NULL, sl.display_order ASC, s.id ASC`,
		userID, journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	stories := make([]*secondary.StoryRecord, 0, len(rows))
	for _, row := range rows {
		stories = append(stories, row.record())
	}
	return stories, nil
}

var _ secondary.StoryRepository = (*StoryRepository)(nil)
