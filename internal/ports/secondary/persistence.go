// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// Transactor runs fn inside a single storage transaction. Repositories called
// with the ctx passed to fn participate in that transaction. Nested calls join
// the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the secondary port for user persistence.
type UserRepository interface {
	// Create persists a new user and sets its ID.
	Create(ctx context.Context, user *UserRecord) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*UserRecord, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
}

// UserRecord represents a user as stored in persistence.
type UserRecord struct {
	ID          int64
	Username    string
	DisplayName string
	CreatedAt   string
}

// JourneyRepository defines the secondary port for journey persistence.
type JourneyRepository interface {
	// Create persists a new journey and sets its ID.
	// Returns ErrDuplicate when the title is already taken.
	Create(ctx context.Context, journey *JourneyRecord) error

	// GetByID retrieves a journey by ID.
	GetByID(ctx context.Context, id int64) (*JourneyRecord, error)

	// FindByTitle returns the journey with exactly this title, or nil when none exists.
	FindByTitle(ctx context.Context, title string) (*JourneyRecord, error)

	// List retrieves all journeys ordered by ID.
	List(ctx context.Context) ([]*JourneyRecord, error)

	// SetActive toggles the activation flag.
	SetActive(ctx context.Context, id int64, active bool) error
}

// JourneyRecord represents a journey as stored in persistence.
type JourneyRecord struct {
	ID            int64
	Title         string
	Description   string
	DurationWeeks int
	Cadence       string
	IsActive      bool
	IsDefault     bool
	CreatedAt     string
	UpdatedAt     string
}

// JourneyConfigRepository stores the raw template a journey was built from.
type JourneyConfigRepository interface {
	// Upsert inserts or replaces the config reference for a journey.
	Upsert(ctx context.Context, cfg *JourneyConfigRecord) error

	// GetByJourneyID retrieves the config reference for a journey.
	GetByJourneyID(ctx context.Context, journeyID int64) (*JourneyConfigRecord, error)
}

// JourneyConfigRecord represents a journey_configs row.
type JourneyConfigRecord struct {
	ID           int64
	JourneyID    int64
	ConfigFile   string
	ParsedConfig string
	Version      string
	IsActive     bool
	CreatedAt    string
	UpdatedAt    string
}

// StorySlotRepository defines the secondary port for story slot persistence.
type StorySlotRepository interface {
	// Create persists a new slot and sets its ID.
	// Returns ErrDuplicate when (journey_id, slot_key) already exists.
	Create(ctx context.Context, slot *StorySlotRecord) error

	// GetByID retrieves a slot by ID.
	GetByID(ctx context.Context, id int64) (*StorySlotRecord, error)

	// ListByJourney retrieves a journey's slots ordered by display order.
	ListByJourney(ctx context.Context, journeyID int64) ([]*StorySlotRecord, error)
}

// StorySlotRecord represents a story_slots row. Signals is stored serialized.
type StorySlotRecord struct {
	ID               int64
	JourneyID        int64
	SlotKey          string
	Title            string
	Description      string
	Signals          []string
	Framework        string
	EstimatedMinutes int
	DisplayOrder     int
	CreatedAt        string
}

// StoryRepository defines the secondary port for user story persistence.
type StoryRepository interface {
	// Create persists a new story and sets its ID.
	Create(ctx context.Context, story *StoryRecord) error

	// GetByID retrieves a story by ID.
	GetByID(ctx context.Context, id int64) (*StoryRecord, error)

	// UpdateSection writes content into a single narrative column.
	UpdateSection(ctx context.Context, id int64, column, content string) error

	// MarkComplete sets the completion flag.
	MarkComplete(ctx context.Context, id int64) error

	// ListByUserAndJourney retrieves a user's stories for a journey joined with
	// slot metadata, ordered by slot display order. Stories without a slot sort last.
	ListByUserAndJourney(ctx context.Context, userID, journeyID int64) ([]*StoryRecord, error)
}

// StoryRecord represents a user_stories row.
type StoryRecord struct {
	ID           int64
	UserID       int64
	JourneyID    int64
	SlotID       *int64
	StoryTitle   string
	Year         string
	Stakeholders string
	Stakes       string

	Situation string
	Problem   string
	Actions   string
	Results   string
	Coda      string

	StarSituation string
	StarTask      string
	StarAction    string
	StarResult    string

	SixtySecondVersion string
	BulletOutline      string

	Framework  string
	IsComplete bool
	CreatedAt  string
	UpdatedAt  string

	// Populated by joined reads only.
	SlotKey          string
	SlotTitle        string
	SlotDisplayOrder *int
}

// SignalTagRepository defines the secondary port for story signal tags.
type SignalTagRepository interface {
	// Upsert inserts a tag or updates the strength of an existing (story, signal) tag.
	Upsert(ctx context.Context, tag *SignalTagRecord) error

	// ListByStory retrieves a story's tags ordered by signal name.
	ListByStory(ctx context.Context, storyID int64) ([]*SignalTagRecord, error)
}

// SignalTagRecord represents a story_signals row.
type SignalTagRecord struct {
	ID         int64
	StoryID    int64
	SignalName string
	Strength   int
	CreatedAt  string
	UpdatedAt  string
}

// CoverageReader is the read model behind signal coverage.
type CoverageReader interface {
	// SignalCoverage aggregates a user's tags in a journey by signal.
	// Signals with no tags are absent.
	SignalCoverage(ctx context.Context, journeyID, userID int64) ([]*SignalCoverageRecord, error)
}

// SignalCoverageRecord is one aggregated coverage row.
type SignalCoverageRecord struct {
	SignalName  string
	StoryCount  int
	AvgStrength float64
}

// MicroPromptRepository defines the secondary port for micro prompts.
type MicroPromptRepository interface {
	// InsertIfAbsent inserts the prompt unless (section, prompt_text) exists.
	// Reports whether a row was inserted.
	InsertIfAbsent(ctx context.Context, prompt *MicroPromptRecord) (bool, error)

	// ListActiveBySection retrieves active prompts ordered by display order.
	ListActiveBySection(ctx context.Context, section string) ([]*MicroPromptRecord, error)
}

// MicroPromptRecord represents a micro_prompts row.
type MicroPromptRecord struct {
	ID           int64
	Section      string
	PromptText   string
	DisplayOrder int
	IsActive     bool
}
