package primary

import "context"

// TaskJourneyService defines the primary port for question-based journeys:
// enrollment, answering task prompts and task progress.
type TaskJourneyService interface {
	// CreateTaskJourney builds a journey with one task per question.
	// A journey whose title already exists is returned as is.
	CreateTaskJourney(ctx context.Context, req CreateTaskJourneyRequest) (*TaskJourneyReport, error)

	// SeedTaskJourney builds the journey described by a named document.
	SeedTaskJourney(ctx context.Context, name string) (*TaskJourneyReport, error)

	// ListTaskJourneyDocuments returns the names of available documents.
	ListTaskJourneyDocuments(ctx context.Context) ([]string, error)

	// Enroll starts a journey for a user. Enrolling twice is a no-op.
	Enroll(ctx context.Context, userID, journeyID int64) (*Enrollment, error)

	// ListEnrollments returns every journey the user is enrolled in with its
	// progress, whether task-based or story-based.
	ListEnrollments(ctx context.Context, userID int64) ([]*Enrollment, error)

	// GetTaskProgress returns the journey's tasks in order with the user's
	// answers and a completion summary.
	GetTaskProgress(ctx context.Context, journeyID, userID int64) (*TaskProgress, error)

	// RecordResponse stores the user's answer to a question task and marks
	// the task complete.
	RecordResponse(ctx context.Context, req RecordResponseRequest) (*TaskProgress, error)
}

// Journey kinds reported on enrollments.
const (
	KindTasks   = "tasks"
	KindStories = "stories"
)

// CreateTaskJourneyRequest describes a journey built from ad-hoc questions.
type CreateTaskJourneyRequest struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	DurationWeeks int            `json:"durationWeeks"`
	Cadence       string         `json:"cadence"`
	Questions     []TaskQuestion `json:"questions"`
}

// TaskQuestion is one prompt of a task journey.
type TaskQuestion struct {
	Category string   `json:"category"`
	Week     int      `json:"week"`
	Title    string   `json:"title"`
	Prompt   string   `json:"prompt"`
	Details  []string `json:"details,omitempty"`
}

// TaskJourneyReport describes the outcome of creating a task journey.
type TaskJourneyReport struct {
	JourneyID int64  `json:"journey_id"`
	Title     string `json:"title"`
	Created   bool   `json:"created"`
	Tasks     int    `json:"tasks"`
}

// Enrollment is a user's participation in a journey.
type Enrollment struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	JourneyID       int64  `json:"journey_id"`
	JourneyTitle    string `json:"journey_title"`
	Kind            string `json:"kind"`
	Status          string `json:"status"`
	StartDate       string `json:"start_date"`
	EnrolledAt      string `json:"enrolled_at"`
	CompletedAt     string `json:"completed_at,omitempty"`
	PercentComplete int    `json:"percent_complete"`
}

// JourneyTask is one task with the user's progress on it.
type JourneyTask struct {
	ID               int64    `json:"id"`
	Order            int      `json:"order"`
	Title            string   `json:"title"`
	Prompt           string   `json:"prompt"`
	Type             string   `json:"type"`
	Chapter          string   `json:"chapter,omitempty"`
	Details          []string `json:"details,omitempty"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	IsComplete       bool     `json:"is_complete"`
	CompletedAt      string   `json:"completed_at,omitempty"`
	Response         string   `json:"response,omitempty"`
}

// TaskProgress is a user's progress through a task journey.
type TaskProgress struct {
	JourneyID       int64         `json:"journey_id"`
	UserID          int64         `json:"user_id"`
	Status          string        `json:"status"`
	Tasks           []JourneyTask `json:"tasks"`
	CompletedTasks  int           `json:"completed_tasks"`
	TotalTasks      int           `json:"total_tasks"`
	PercentComplete int           `json:"percent_complete"`
}

// RecordResponseRequest contains parameters for answering a task.
type RecordResponseRequest struct {
	UserID    int64
	JourneyID int64
	TaskID    int64
	Text      string
}
