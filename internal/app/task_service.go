package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/levelup/internal/core/journey"
	"github.com/example/levelup/internal/core/progress"
	"github.com/example/levelup/internal/core/task"
	"github.com/example/levelup/internal/metrics"
	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/ports/secondary"
)

// TaskRepositories groups the persistence ports used by TaskServiceImpl.
type TaskRepositories struct {
	Tx          secondary.Transactor
	Journeys    secondary.JourneyRepository
	Questions   secondary.QuestionRepository
	Tasks       secondary.JourneyTaskRepository
	Enrollments secondary.EnrollmentRepository
}

// TaskServiceImpl implements the TaskJourneyService interface.
type TaskServiceImpl struct {
	source  secondary.TaskJourneySource
	repos   TaskRepositories
	stories primary.JourneyService
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTaskService creates a new TaskJourneyService. stories reports slot
// progress for enrollments in story journeys.
func NewTaskService(
	source secondary.TaskJourneySource,
	repos TaskRepositories,
	stories primary.JourneyService,
	logger *zap.Logger,
	m *metrics.Metrics,
) *TaskServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskServiceImpl{
		source:  source,
		repos:   repos,
		stories: stories,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// CreateTaskJourney builds a journey from the request's questions.
func (s *TaskServiceImpl) CreateTaskJourney(ctx context.Context, req primary.CreateTaskJourneyRequest) (*primary.TaskJourneyReport, error) {
	def := task.Definition{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		DurationWeeks: req.DurationWeeks,
		Cadence:       req.Cadence,
	}
	for _, q := range req.Questions {
		def.Questions = append(def.Questions, task.Question{
			Category: q.Category,
			Week:     q.Week,
			Title:    q.Title,
			Prompt:   q.Prompt,
			Details:  q.Details,
		})
	}
	return s.create(ctx, def)
}

// SeedTaskJourney builds the journey described by the named document.
func (s *TaskServiceImpl) SeedTaskJourney(ctx context.Context, name string) (*primary.TaskJourneyReport, error) {
	data, err := s.source.ReadTaskJourney(ctx, name)
	if errors.Is(err, secondary.ErrDocumentNotFound) {
		return nil, &journey.TemplateNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task journey %s: %w", name, err)
	}

	doc, err := task.ParseDocument(name, data)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, doc.Journey)
}

// ListTaskJourneyDocuments returns the names of available documents.
func (s *TaskServiceImpl) ListTaskJourneyDocuments(ctx context.Context) ([]string, error) {
	return s.source.ListTaskJourneys(ctx)
}

func (s *TaskServiceImpl) create(ctx context.Context, def task.Definition) (*primary.TaskJourneyReport, error) {
	if result := task.CanDefine(def); !result.Allowed {
		return nil, rejected(result)
	}
	def = task.Normalize(def)

	if report, err := s.existing(ctx, def.Title); report != nil || err != nil {
		return report, err
	}

	var report *primary.TaskJourneyReport
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		record := &secondary.JourneyRecord{
			Title:         def.Title,
			Description:   def.Description,
			DurationWeeks: def.DurationWeeks,
			Cadence:       def.Cadence,
			IsActive:      true,
		}
		if err := s.repos.Journeys.Create(ctx, record); err != nil {
			return err
		}

		categories := make(map[string]int64)
		for _, name := range task.Categories(def) {
			id, err := s.repos.Questions.EnsureCategory(ctx, name)
			if err != nil {
				return err
			}
			categories[name] = id
		}

		planned := task.PlanTasks(def)
		for _, p := range planned {
			q := &secondary.QuestionRecord{
				CategoryID: categories[p.Question.Category],
				Week:       p.Question.Week,
				Title:      p.Question.Title,
				Prompt:     p.Question.Prompt,
				Details:    p.Question.Details,
			}
			if err := s.repos.Questions.Create(ctx, q); err != nil {
				return err
			}
			if err := s.repos.Tasks.Create(ctx, &secondary.JourneyTaskRecord{
				JourneyID:        record.ID,
				Order:            p.Order,
				Title:            p.Title,
				Description:      p.Description,
				Type:             p.Type,
				QuestionID:       &q.ID,
				EstimatedMinutes: p.EstimatedMinutes,
				PageNumber:       p.PageNumber,
				ChapterName:      p.ChapterName,
			}); err != nil {
				return err
			}
		}

		report = &primary.TaskJourneyReport{JourneyID: record.ID, Title: record.Title, Created: true, Tasks: len(planned)}
		return nil
	})

	if errors.Is(err, secondary.ErrDuplicate) {
		// Lost a race with another writer for the same title.
		if report, lookupErr := s.existing(ctx, def.Title); report != nil || lookupErr != nil {
			return report, lookupErr
		}
	}
	if err != nil {
		return nil, &primary.PersistenceError{Op: "create task journey", Err: err}
	}

	s.logger.Info("task journey created",
		zap.String("journey", report.Title),
		zap.Int64("journey_id", report.JourneyID),
		zap.Int("tasks", report.Tasks))
	return report, nil
}

func (s *TaskServiceImpl) existing(ctx context.Context, title string) (*primary.TaskJourneyReport, error) {
	record, err := s.repos.Journeys.FindByTitle(ctx, title)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "look up journey", Err: err}
	}
	if record == nil {
		return nil, nil
	}
	n, err := s.repos.Tasks.CountByJourney(ctx, record.ID)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "count journey tasks", Err: err}
	}
	return &primary.TaskJourneyReport{JourneyID: record.ID, Title: record.Title, Tasks: n}, nil
}

// Enroll starts a journey for a user on today's date.
func (s *TaskServiceImpl) Enroll(ctx context.Context, userID, journeyID int64) (*primary.Enrollment, error) {
	guardCtx := task.EnrollContext{UserID: userID, JourneyID: journeyID}
	j, err := s.repos.Journeys.GetByID(ctx, journeyID)
	switch {
	case err == nil:
		guardCtx.JourneyExists = true
		guardCtx.JourneyActive = j.IsActive
	case !errors.Is(err, secondary.ErrNotFound):
		return nil, &primary.PersistenceError{Op: "get journey", Err: err}
	}
	if result := task.CanEnroll(guardCtx); !result.Allowed {
		return nil, rejected(result)
	}

	record := &secondary.EnrollmentRecord{
		UserID:    userID,
		JourneyID: journeyID,
		StartDate: s.now().Format(time.DateOnly),
	}
	created, err := s.repos.Enrollments.Enroll(ctx, record)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "enroll", Err: err}
	}

	if created {
		s.metrics.RecordEnrollment("created")
		s.logger.Info("user enrolled",
			zap.Int64("user_id", userID),
			zap.Int64("journey_id", journeyID))
	} else {
		s.metrics.RecordEnrollment("existing")
	}
	return s.toEnrollment(ctx, record)
}

// ListEnrollments returns the user's enrollments, oldest first.
func (s *TaskServiceImpl) ListEnrollments(ctx context.Context, userID int64) ([]*primary.Enrollment, error) {
	records, err := s.repos.Enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "list enrollments", Err: err}
	}

	enrollments := make([]*primary.Enrollment, 0, len(records))
	for _, r := range records {
		e, err := s.toEnrollment(ctx, r)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, nil
}

// toEnrollment reports stored task completion for task journeys and slot
// completion for story journeys.
func (s *TaskServiceImpl) toEnrollment(ctx context.Context, r *secondary.EnrollmentRecord) (*primary.Enrollment, error) {
	e := &primary.Enrollment{
		ID:              r.ID,
		UserID:          r.UserID,
		JourneyID:       r.JourneyID,
		JourneyTitle:    r.JourneyTitle,
		Kind:            primary.KindTasks,
		Status:          r.Status,
		StartDate:       r.StartDate,
		EnrolledAt:      r.EnrolledAt,
		CompletedAt:     r.CompletedAt,
		PercentComplete: int(r.CompletionPercentage),
	}

	n, err := s.repos.Tasks.CountByJourney(ctx, r.JourneyID)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "count journey tasks", Err: err}
	}
	if n > 0 {
		return e, nil
	}

	e.Kind = primary.KindStories
	slots, err := s.stories.GetSlotsWithProgress(ctx, r.JourneyID, r.UserID)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, sp := range slots {
		if sp.IsComplete {
			completed++
		}
	}
	e.PercentComplete = progress.Summarize(len(slots), completed).Percent
	return e, nil
}

// GetTaskProgress returns the journey's tasks with the user's answers.
func (s *TaskServiceImpl) GetTaskProgress(ctx context.Context, journeyID, userID int64) (*primary.TaskProgress, error) {
	enrollment, err := s.repos.Enrollments.Get(ctx, userID, journeyID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("enrollment in journey %d", journeyID), "get enrollment", err)
	}
	tasks, err := s.repos.Tasks.ListByJourney(ctx, journeyID)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "list journey tasks", Err: err}
	}
	rows, err := s.repos.Enrollments.ListTaskProgress(ctx, enrollment.ID)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "list task progress", Err: err}
	}

	var questionIDs []int64
	for _, t := range tasks {
		if t.QuestionID != nil {
			questionIDs = append(questionIDs, *t.QuestionID)
		}
	}
	responses, err := s.repos.Questions.ListResponses(ctx, userID, questionIDs)
	if err != nil {
		return nil, &primary.PersistenceError{Op: "list responses", Err: err}
	}

	result := &primary.TaskProgress{
		JourneyID: journeyID,
		UserID:    userID,
		Status:    enrollment.Status,
		Tasks:     make([]primary.JourneyTask, 0, len(tasks)),
	}
	completed := 0
	for _, t := range tasks {
		jt := primary.JourneyTask{
			ID:               t.ID,
			Order:            t.Order,
			Title:            t.Title,
			Prompt:           t.Description,
			Type:             t.Type,
			Chapter:          t.ChapterName,
			EstimatedMinutes: t.EstimatedMinutes,
		}
		if t.QuestionID != nil {
			q, err := s.repos.Questions.GetByID(ctx, *t.QuestionID)
			if err != nil {
				return nil, mapRepoErr(fmt.Sprintf("question %d", *t.QuestionID), "get question", err)
			}
			jt.Details = q.Details
			if r, ok := responses[*t.QuestionID]; ok {
				jt.Response = r.Text
			}
		}
		if p, ok := rows[t.ID]; ok && p.Status == task.StatusCompleted {
			jt.IsComplete = true
			jt.CompletedAt = p.CompletedAt
			completed++
		}
		result.Tasks = append(result.Tasks, jt)
	}

	summary := progress.Summarize(len(tasks), completed)
	result.CompletedTasks = summary.Completed
	result.TotalTasks = summary.Total
	result.PercentComplete = summary.Percent
	return result, nil
}

// RecordResponse stores an answer, completes the task and refreshes the
// enrollment's completion in one transaction.
func (s *TaskServiceImpl) RecordResponse(ctx context.Context, req primary.RecordResponseRequest) (*primary.TaskProgress, error) {
	text := strings.TrimSpace(req.Text)

	enrollment, err := s.repos.Enrollments.Get(ctx, req.UserID, req.JourneyID)
	if err != nil && !errors.Is(err, secondary.ErrNotFound) {
		return nil, &primary.PersistenceError{Op: "get enrollment", Err: err}
	}
	t, err := s.repos.Tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("task %d", req.TaskID), "get task", err)
	}

	result := task.CanRespond(task.ResponseContext{
		JourneyID:      req.JourneyID,
		TaskID:         req.TaskID,
		Enrolled:       enrollment != nil,
		TaskJourneyID:  t.JourneyID,
		TaskType:       t.Type,
		TaskHasPrompt:  t.QuestionID != nil,
		ResponseLength: len(text),
	})
	if !result.Allowed {
		return nil, rejected(result)
	}

	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		response := &secondary.ResponseRecord{QuestionID: *t.QuestionID, UserID: req.UserID, Text: text}
		if err := s.repos.Questions.UpsertResponse(ctx, response); err != nil {
			return err
		}
		if err := s.repos.Enrollments.CompleteTask(ctx, &secondary.TaskProgressRecord{
			EnrollmentID: enrollment.ID,
			TaskID:       t.ID,
			UserID:       req.UserID,
			ResponseID:   &response.ID,
		}); err != nil {
			return err
		}

		completed, err := s.repos.Enrollments.CountCompletedTasks(ctx, enrollment.ID)
		if err != nil {
			return err
		}
		total, err := s.repos.Tasks.CountByJourney(ctx, req.JourneyID)
		if err != nil {
			return err
		}
		summary := progress.Summarize(total, completed)
		return s.repos.Enrollments.UpdateCompletion(ctx, enrollment.ID, float64(summary.Percent), completed >= total)
	})
	if err != nil {
		return nil, &primary.PersistenceError{Op: "record response", Err: err}
	}

	s.metrics.RecordTaskResponse()
	return s.GetTaskProgress(ctx, req.JourneyID, req.UserID)
}

// rejected converts a denied task guard into an ErrInvalidInput error.
func rejected(result task.GuardResult) error {
	return fmt.Errorf("%w: %s", primary.ErrInvalidInput, result.Reason)
}

var _ primary.TaskJourneyService = (*TaskServiceImpl)(nil)
