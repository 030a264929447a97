package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/levelup/internal/ports/secondary"
)

// CoverageReader implements secondary.CoverageReader on sqlx.
type CoverageReader struct {
	x *sqlx.DB
}

// NewCoverageReader creates a new SQLite coverage read model.
func NewCoverageReader(db *sql.DB) *CoverageReader {
	return &CoverageReader{x: newSqlx(db)}
}

type coverageRow struct {
	SignalName  string          `db:"signal_name"`
	StoryCount  int             `db:"story_count"`
	AvgStrength sql.NullFloat64 `db:"avg_strength"`
}

// SignalCoverage aggregates a user's signal tags within a journey.
// Count is the number of distinct stories; the average is unrounded.
func (r *CoverageReader) SignalCoverage(ctx context.Context, journeyID, userID int64) ([]*secondary.SignalCoverageRecord, error) {
	var rows []coverageRow
	err := r.x.SelectContext(ctx, &rows, `
		SELECT ss.signal_name AS signal_name,
			COUNT(DISTINCT ss.story_id) AS story_count,
			AVG(ss.strength) AS avg_strength
		FROM story_signals ss
		JOIN user_stories us ON ss.story_id = us.id
		WHERE us.user_id = ? AND us.journey_id = ?
		GROUP BY ss.signal_name
		ORDER BY ss.signal_name`,
		userID, journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate signal coverage: %w", err)
	}

	records := make([]*secondary.SignalCoverageRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, &secondary.SignalCoverageRecord{
			SignalName:  row.SignalName,
			StoryCount:  row.StoryCount,
			AvgStrength: row.AvgStrength.Float64,
		})
	}
	return records, nil
}

var _ secondary.CoverageReader = (*CoverageReader)(nil)
