package primary

import "context"

// StoryService defines the primary port for editing user stories.
type StoryService interface {
	// CreateStory starts a story for a user in a journey.
	CreateStory(ctx context.Context, req CreateStoryRequest) (*Story, error)

	// GetStory retrieves a story with its signal tags.
	GetStory(ctx context.Context, userID, storyID int64) (*Story, error)

	// UpdateSection writes one narrative section.
	UpdateSection(ctx context.Context, req UpdateSectionRequest) error

	// TagSignals upserts signal tags on a story.
	TagSignals(ctx context.Context, req TagSignalsRequest) ([]SignalTag, error)

	// CompleteStory marks a story complete.
	CompleteStory(ctx context.Context, userID, storyID int64) error
}

// CreateStoryRequest contains parameters for creating a story.
type CreateStoryRequest struct {
	UserID       int64
	JourneyID    int64
	SlotID       *int64
	StoryTitle   string
	Year         string
	Stakeholders string
	Stakes       string
}

// UpdateSectionRequest contains parameters for a section edit.
type UpdateSectionRequest struct {
	UserID  int64
	StoryID int64
	Section string
	Content string
}

// TagSignalsRequest contains parameters for tagging.
type TagSignalsRequest struct {
	UserID  int64
	StoryID int64
	Tags    []SignalTag
}

// SignalTag links a story to a signal.
type SignalTag struct {
	SignalName string `json:"signalName"`
	Strength   int    `json:"strength"`
}

// Story represents a user story at the port boundary.
type Story struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	JourneyID    int64  `json:"journey_id"`
	SlotID       *int64 `json:"slot_id"`
	StoryTitle   string `json:"story_title"`
	Year         string `json:"year"`
	Stakeholders string `json:"stakeholders"`
	Stakes       string `json:"stakes"`

	Situation string `json:"situation"`
	Problem   string `json:"problem"`
	Actions   string `json:"actions"`
	Results   string `json:"results"`
	Coda      string `json:"coda"`

	StarSituation string `json:"star_situation,omitempty"`
	StarTask      string `json:"star_task,omitempty"`
	StarAction    string `json:"star_action,omitempty"`
	StarResult    string `json:"star_result,omitempty"`

	SixtySecondVersion string `json:"sixty_second_version"`
	BulletOutline      string `json:"bullet_outline"`

	Framework  string `json:"framework"`
	IsComplete bool   `json:"is_complete"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`

	SlotKey   string      `json:"slot_key,omitempty"`
	SlotTitle string      `json:"slot_title,omitempty"`
	Signals   []SignalTag `json:"signals,omitempty"`
}
