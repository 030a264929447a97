package secondary

import "context"

// QuestionRepository stores question prompts, their categories and the
// answers users give.
type QuestionRepository interface {
	// EnsureCategory returns the id of the named category, creating it when
	// absent.
	EnsureCategory(ctx context.Context, name string) (int64, error)

	// Create persists a question with its details and sets its ID.
	Create(ctx context.Context, question *QuestionRecord) error

	// GetByID retrieves a question with its category name and details.
	GetByID(ctx context.Context, id int64) (*QuestionRecord, error)

	// UpsertResponse stores a user's answer, replacing any earlier answer to
	// the same question, and sets the response ID.
	UpsertResponse(ctx context.Context, response *ResponseRecord) error

	// ListResponses returns a user's answers keyed by question ID.
	ListResponses(ctx context.Context, userID int64, questionIDs []int64) (map[int64]*ResponseRecord, error)
}

// QuestionRecord represents a questions row.
type QuestionRecord struct {
	ID         int64
	CategoryID int64
	Category   string
	Week       int
	Title      string
	Prompt     string
	Details    []string
	CreatedAt  string
}

// ResponseRecord represents a question_responses row.
type ResponseRecord struct {
	ID         int64
	QuestionID int64
	UserID     int64
	Text       string
	CreatedAt  string
	UpdatedAt  string
}

// JourneyTaskRepository defines the secondary port for journey tasks.
type JourneyTaskRepository interface {
	// Create persists a task and sets its ID.
	// Returns ErrDuplicate when (journey_id, task_order) already exists.
	Create(ctx context.Context, task *JourneyTaskRecord) error

	// GetByID retrieves a task by ID.
	GetByID(ctx context.Context, id int64) (*JourneyTaskRecord, error)

	// ListByJourney retrieves a journey's tasks ordered by task order.
	ListByJourney(ctx context.Context, journeyID int64) ([]*JourneyTaskRecord, error)

	// CountByJourney counts a journey's tasks.
	CountByJourney(ctx context.Context, journeyID int64) (int, error)
}

// JourneyTaskRecord represents a journey_tasks row.
type JourneyTaskRecord struct {
	ID               int64
	JourneyID        int64
	Order            int
	Title            string
	Description      string
	Type             string
	QuestionID       *int64
	EstimatedMinutes int
	PageNumber       int
	ChapterName      string
}

// EnrollmentRepository stores user_journeys rows and per-task progress.
type EnrollmentRepository interface {
	// Enroll inserts the enrollment unless (user_id, journey_id) exists.
	// Reports whether a row was inserted; e is filled from storage either way.
	Enroll(ctx context.Context, e *EnrollmentRecord) (bool, error)

	// Get retrieves a user's enrollment in a journey.
	Get(ctx context.Context, userID, journeyID int64) (*EnrollmentRecord, error)

	// ListByUser retrieves a user's enrollments, oldest first.
	ListByUser(ctx context.Context, userID int64) ([]*EnrollmentRecord, error)

	// UpdateCompletion stores the completion percentage. A completed
	// enrollment gets status completed and a completion time.
	UpdateCompletion(ctx context.Context, id int64, percent float64, completed bool) error

	// CompleteTask marks a task completed for the enrollment, linking the
	// response that completed it.
	CompleteTask(ctx context.Context, progress *TaskProgressRecord) error

	// ListTaskProgress retrieves progress rows keyed by task ID.
	ListTaskProgress(ctx context.Context, enrollmentID int64) (map[int64]*TaskProgressRecord, error)

	// CountCompletedTasks counts completed tasks for the enrollment.
	CountCompletedTasks(ctx context.Context, enrollmentID int64) (int, error)
}

// EnrollmentRecord represents a user_journeys row joined with its journey.
type EnrollmentRecord struct {
	ID                   int64
	UserID               int64
	JourneyID            int64
	JourneyTitle         string
	EnrolledAt           string
	StartDate            string
	Status               string
	CompletionPercentage float64
	CompletedAt          string
}

// TaskProgressRecord represents a user_task_progress row.
type TaskProgressRecord struct {
	ID           int64
	EnrollmentID int64
	TaskID       int64
	UserID       int64
	Status       string
	ResponseID   *int64
	StartedAt    string
	CompletedAt  string
}
