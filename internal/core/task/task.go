// Package task contains the rules for task journeys: ordered question tasks
// a user works through after enrolling, answering each prompt once.
// Nothing in this package performs I/O.
package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/levelup/internal/core/journey"
)

// Task types.
const (
	TypeQuestion = "question"
)

// Task progress statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
)

// Defaults applied to definitions that omit the corresponding field.
const (
	DefaultCadence          = "weekly"
	DefaultEstimatedMinutes = 30
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Question is one prompt of a task journey. Week doubles as the task order
// when set.
type Question struct {
	Category string   `json:"category"`
	Week     int      `json:"week"`
	Title    string   `json:"title"`
	Prompt   string   `json:"prompt"`
	Details  []string `json:"details,omitempty"`
}

// Definition describes a journey built from an ad-hoc set of questions.
type Definition struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DurationWeeks int        `json:"duration_weeks"`
	Cadence       string     `json:"cadence"`
	Questions     []Question `json:"questions"`
}

// Document is the on-disk form of a task journey.
type Document struct {
	Version string     `json:"version"`
	Journey Definition `json:"journey"`
}

// ParseDocument decodes a task journey document and checks its definition.
func ParseDocument(name string, data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &journey.ConfigParseError{Document: name, Err: err}
	}
	if err := CanDefine(doc.Journey).Error(); err != nil {
		return nil, &journey.ConfigParseError{Document: name, Err: err}
	}
	return &doc, nil
}

// CanDefine evaluates whether a definition can become a journey.
// Rules:
// - title is required
// - at least one question
// - every question has a title and a prompt
// - task orders are unique
func CanDefine(def Definition) GuardResult {
	if strings.TrimSpace(def.Title) == "" {
		return deny("journey title is required")
	}
	if len(def.Questions) == 0 {
		return deny("journey %q has no questions", def.Title)
	}
	if def.DurationWeeks < 0 {
		return deny("duration_weeks must not be negative")
	}

	seen := make(map[int]int, len(def.Questions))
	for i, q := range def.Questions {
		if strings.TrimSpace(q.Title) == "" {
			return deny("question %d has no title", i+1)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			return deny("question %q has no prompt", q.Title)
		}
		if q.Week < 0 {
			return deny("question %q has a negative week", q.Title)
		}
		order := taskOrder(q, i)
		if prev, dup := seen[order]; dup {
			return deny("questions %d and %d share task order %d", prev+1, i+1, order)
		}
		seen[order] = i
	}
	return GuardResult{Allowed: true}
}

// PlannedTask is a question task with every default resolved.
type PlannedTask struct {
	Order            int
	Title            string
	Description      string
	Type             string
	EstimatedMinutes int
	PageNumber       int
	ChapterName      string
	Question         Question
}

// PlanTasks resolves the tasks for a definition in question order.
func PlanTasks(def Definition) []PlannedTask {
	planned := make([]PlannedTask, len(def.Questions))
	for i, q := range def.Questions {
		order := taskOrder(q, i)
		planned[i] = PlannedTask{
			Order:            order,
			Title:            q.Title,
			Description:      q.Prompt,
			Type:             TypeQuestion,
			EstimatedMinutes: DefaultEstimatedMinutes,
			PageNumber:       order,
			ChapterName:      q.Category,
			Question:         q,
		}
	}
	return planned
}

// Normalize fills in cadence and duration for a definition.
// Duration falls back to one week per question.
func Normalize(def Definition) Definition {
	if def.Cadence == "" {
		def.Cadence = DefaultCadence
	}
	if def.DurationWeeks == 0 {
		def.DurationWeeks = len(def.Questions)
	}
	return def
}

// Categories returns question categories in first-seen order, skipping blanks.
func Categories(def Definition) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, q := range def.Questions {
		if q.Category == "" || seen[q.Category] {
			continue
		}
		seen[q.Category] = true
		names = append(names, q.Category)
	}
	return names
}

func taskOrder(q Question, index int) int {
	if q.Week > 0 {
		return q.Week
	}
	return index + 1
}

// EnrollContext provides context for enrollment guards.
type EnrollContext struct {
	UserID        int64
	JourneyID     int64
	JourneyExists bool
	JourneyActive bool
}

// CanEnroll evaluates whether a user can enroll in a journey.
func CanEnroll(ctx EnrollContext) GuardResult {
	if ctx.UserID == 0 {
		return deny("user is required")
	}
	if !ctx.JourneyExists {
		return deny("journey %d does not exist", ctx.JourneyID)
	}
	if !ctx.JourneyActive {
		return deny("journey %d is not active", ctx.JourneyID)
	}
	return GuardResult{Allowed: true}
}

// ResponseContext provides context for response guards.
type ResponseContext struct {
	JourneyID      int64
	TaskID         int64
	Enrolled       bool
	TaskJourneyID  int64
	TaskType       string
	TaskHasPrompt  bool
	ResponseLength int
}

// CanRespond evaluates whether a response can be recorded for a task.
// Rules:
// - the user is enrolled in the journey
// - the task belongs to the journey
// - the task is a question task backed by a prompt
// - the response is not blank
func CanRespond(ctx ResponseContext) GuardResult {
	if !ctx.Enrolled {
		return deny("not enrolled in journey %d", ctx.JourneyID)
	}
	if ctx.TaskJourneyID != ctx.JourneyID {
		return deny("task %d does not belong to journey %d", ctx.TaskID, ctx.JourneyID)
	}
	if ctx.TaskType != TypeQuestion || !ctx.TaskHasPrompt {
		return deny("task %d takes no response", ctx.TaskID)
	}
	if ctx.ResponseLength == 0 {
		return deny("response text is required")
	}
	return GuardResult{Allowed: true}
}
