// Package story contains the pure rules for editing user stories:
// narrative sections per framework, signal tag bounds, and ownership.
package story

import (
	"fmt"
	"strings"
)

// Narrative frameworks.
const (
	FrameworkSPARC = "SPARC"
	FrameworkSTAR  = "STAR"
)

// Strength bounds for a signal tag (inclusive).
const (
	MinStrength = 1
	MaxStrength = 3
)

// SPARCSections lists the five SPARC sections in narrative order.
var SPARCSections = []string{"situation", "problem", "actions", "results", "coda"}

// STARSections lists the STAR sections in narrative order.
var STARSections = []string{"situation", "task", "action", "result"}

// CompressionFields are practice fields accepted for any framework.
var CompressionFields = []string{"sixty_second_version", "bullet_outline"}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
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

// IsSPARCSection reports whether section is one of the SPARC sections.
func IsSPARCSection(section string) bool {
	return contains(SPARCSections, section)
}

// NormalizeFramework maps an unset framework to SPARC.
func NormalizeFramework(framework string) string {
	if framework == "" {
		return FrameworkSPARC
	}
	return strings.ToUpper(framework)
}

// SectionColumn maps a section of the given framework to its storage column.
// STAR sections live in star_-prefixed columns; compression fields are valid
// for every framework.
func SectionColumn(framework, section string) (string, bool) {
	if contains(CompressionFields, section) {
		return section, true
	}
	switch NormalizeFramework(framework) {
	case FrameworkSPARC:
		if contains(SPARCSections, section) {
			return section, true
		}
	case FrameworkSTAR:
		if contains(STARSections, section) {
			return "star_" + section, true
		}
	}
	return "", false
}

// CreateContext provides context for story creation guards.
// Populated by the caller with pre-fetched lookups.
type CreateContext struct {
	UserID        int64
	JourneyID     int64
	JourneyExists bool
	SlotID        *int64
	SlotExists    bool
	SlotJourneyID int64
}

// CanCreateStory evaluates whether a story can be started.
// Rules:
// - the journey must exist
// - a referenced slot must exist and belong to that journey
func CanCreateStory(ctx CreateContext) GuardResult {
	if ctx.UserID <= 0 {
		return deny("a user is required to create a story")
	}
	if !ctx.JourneyExists {
		return deny("journey %d does not exist", ctx.JourneyID)
	}
	if ctx.SlotID != nil {
		if !ctx.SlotExists {
			return deny("story slot %d does not exist", *ctx.SlotID)
		}
		if ctx.SlotJourneyID != ctx.JourneyID {
			return deny("story slot %d belongs to journey %d, not journey %d", *ctx.SlotID, ctx.SlotJourneyID, ctx.JourneyID)
		}
	}
	return GuardResult{Allowed: true}
}

// OwnershipContext identifies the caller and the story owner.
type OwnershipContext struct {
	StoryID int64
	OwnerID int64
	UserID  int64
}

// CanAccessStory evaluates whether the user may read or edit the story.
func CanAccessStory(ctx OwnershipContext) GuardResult {
	if ctx.OwnerID != ctx.UserID {
		return deny("story %d does not belong to user %d", ctx.StoryID, ctx.UserID)
	}
	return GuardResult{Allowed: true}
}

// SectionContext provides context for section update guards.
type SectionContext struct {
	StoryID   int64
	Framework string
	Section   string
	Content   string
}

// CanUpdateSection evaluates whether the section edit is valid.
// Rules:
// - the section must belong to the story's framework (or be a compression field)
// - content must not be blank
func CanUpdateSection(ctx SectionContext) GuardResult {
	if _, ok := SectionColumn(ctx.Framework, ctx.Section); !ok {
		return deny("invalid section %q for %s story %d", ctx.Section, NormalizeFramework(ctx.Framework), ctx.StoryID)
	}
	if strings.TrimSpace(ctx.Content) == "" {
		return deny("section %q content cannot be empty", ctx.Section)
	}
	return GuardResult{Allowed: true}
}

// Tag is one requested signal tag.
type Tag struct {
	SignalName string
	Strength   int
}

// TagContext provides context for signal tagging guards.
type TagContext struct {
	StoryID int64
	Tags    []Tag
	// KnownSignal reports whether a signal is in the catalog.
	KnownSignal func(string) bool
}

// CanTagSignals evaluates whether the tags can be stored.
// Rules:
// - at least one tag
// - each strength within 1..3
// - each signal declared in the catalog
func CanTagSignals(ctx TagContext) GuardResult {
	if len(ctx.Tags) == 0 {
		return deny("at least one signal is required to tag story %d", ctx.StoryID)
	}
	for _, tag := range ctx.Tags {
		if tag.SignalName == "" {
			return deny("signal name is required")
		}
		if tag.Strength < MinStrength || tag.Strength > MaxStrength {
			return deny("signal %q strength %d out of range %d-%d", tag.SignalName, tag.Strength, MinStrength, MaxStrength)
		}
		if ctx.KnownSignal != nil && !ctx.KnownSignal(tag.SignalName) {
			return deny("unknown signal %q", tag.SignalName)
		}
	}
	return GuardResult{Allowed: true}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
