package primary

import (
	"context"

	"github.com/example/levelup/internal/core/journey"
)

// ConfigService defines the primary port for the journey document cache.
// Returned pointers are shared and must be treated as read-only.
type ConfigService interface {
	// LoadSignalCatalog returns the cached signal catalog, loading it on first use.
	LoadSignalCatalog(ctx context.Context) (*journey.SignalCatalog, error)

	// LoadTemplate returns the cached template, loading it on first use.
	LoadTemplate(ctx context.Context, name string) (*journey.Template, error)

	// ListTemplates returns the names of available templates.
	ListTemplates(ctx context.Context) ([]string, error)

	// Reset drops every cached document.
	Reset()

	// Invalidate drops one cached template.
	Invalidate(name string)
}
