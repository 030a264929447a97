package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/example/levelup/internal/core/journey"
	"github.com/example/levelup/internal/metrics"
	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/ports/secondary"
)

// ConfigServiceImpl implements the ConfigService interface.
// Documents are loaded lazily and cached until Reset or Invalidate. Loads
// hold the mutex so concurrent callers see one shared instance.
type ConfigServiceImpl struct {
	source  secondary.ConfigSource
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	catalog   *journey.SignalCatalog
	templates map[string]*journey.Template
}

// NewConfigService creates a new ConfigService reading from source.
func NewConfigService(source secondary.ConfigSource, logger *zap.Logger, m *metrics.Metrics) *ConfigServiceImpl {
	return &ConfigServiceImpl{
		source:    source,
		logger:    logger,
		metrics:   m,
		templates: make(map[string]*journey.Template),
	}
}

// LoadSignalCatalog returns the cached catalog, reading it on first use.
func (s *ConfigServiceImpl) LoadSignalCatalog(ctx context.Context) (*journey.SignalCatalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog != nil {
		s.metrics.RecordCacheHit(metrics.KindCatalog)
		return s.catalog, nil
	}
	s.metrics.RecordCacheMiss(metrics.KindCatalog)

	data, err := s.source.ReadSignalCatalog(ctx)
	if errors.Is(err, secondary.ErrDocumentNotFound) {
		return nil, &journey.ConfigNotFoundError{Document: journey.SignalCatalogDocument}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read signal catalog: %w", err)
	}

	catalog, err := journey.ParseSignalCatalog(data)
	if err != nil {
		return nil, err
	}

	s.catalog = catalog
	s.logger.Debug("signal catalog loaded", zap.Int("signals", len(catalog.Signals)))
	return catalog, nil
}

// LoadTemplate returns the cached template called name, reading it on first use.
func (s *ConfigServiceImpl) LoadTemplate(ctx context.Context, name string) (*journey.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tmpl, ok := s.templates[name]; ok {
		s.metrics.RecordCacheHit(metrics.KindTemplate)
		return tmpl, nil
	}
	s.metrics.RecordCacheMiss(metrics.KindTemplate)

	data, err := s.source.ReadTemplate(ctx, name)
	if errors.Is(err, secondary.ErrDocumentNotFound) {
		return nil, &journey.TemplateNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl, err := journey.ParseTemplate(name, data)
	if err != nil {
		return nil, err
	}

	s.templates[name] = tmpl
	s.logger.Debug("journey template loaded",
		zap.String("template", name),
		zap.Int("slots", len(tmpl.Journey.StorySlots)))
	return tmpl, nil
}

// ListTemplates returns the template names the source offers.
func (s *ConfigServiceImpl) ListTemplates(ctx context.Context) ([]string, error) {
	names, err := s.source.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return names, nil
}

// Reset drops every cached document.
func (s *ConfigServiceImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = nil
	s.templates = make(map[string]*journey.Template)
}

// Invalidate drops the cached template called name.
func (s *ConfigServiceImpl) Invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, name)
}

var _ primary.ConfigService = (*ConfigServiceImpl)(nil)
