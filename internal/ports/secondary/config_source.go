package secondary

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by a ConfigSource for a missing document.
var ErrDocumentNotFound = errors.New("document not found")

// ConfigSource reads declarative journey documents.
type ConfigSource interface {
	// ReadSignalCatalog returns the raw competency signal catalog.
	ReadSignalCatalog(ctx context.Context) ([]byte, error)

	// ReadTemplate returns the raw journey template with the given name.
	ReadTemplate(ctx context.Context, name string) ([]byte, error)

	// ListTemplates returns available template names, sorted.
	ListTemplates(ctx context.Context) ([]string, error)
}

// TaskJourneySource reads question-based journey documents.
type TaskJourneySource interface {
	// ReadTaskJourney returns the raw task journey document with the given name.
	ReadTaskJourney(ctx context.Context, name string) ([]byte, error)

	// ListTaskJourneys returns available task journey names, sorted.
	ListTaskJourneys(ctx context.Context) ([]string, error)
}
