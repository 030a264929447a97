package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached journey documents.
type CacheInvalidator interface {
	Reset()
	Invalidate(name string)
}

// TemplateWatcher invalidates cached documents when files under a journeys
// directory change.
type TemplateWatcher struct {
	dir     string
	cache   CacheInvalidator
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewTemplateWatcher creates a watcher for dir. Call Start to begin watching.
func NewTemplateWatcher(dir string, cache CacheInvalidator, logger *zap.Logger) (*TemplateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &TemplateWatcher{
		dir:     dir,
		cache:   cache,
		logger:  logger,
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Start watches the signals and templates subdirectories until ctx is
// cancelled or Stop is called.
func (tw *TemplateWatcher) Start(ctx context.Context) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.running {
		return nil
	}

	for _, sub := range []string{"signals", TemplatesDir} {
		p := filepath.Join(tw.dir, sub)
		if err := tw.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	tw.running = true
	go tw.run(ctx)
	tw.logger.Info("watching journey documents", zap.String("dir", tw.dir))
	return nil
}

// Stop ends watching and releases the underlying watcher.
func (tw *TemplateWatcher) Stop() error {
	tw.mu.Lock()
	running := tw.running
	tw.running = false
	tw.mu.Unlock()

	err := tw.watcher.Close()
	if running {
		<-tw.done
	}
	return err
}

func (tw *TemplateWatcher) run(ctx context.Context) {
	defer close(tw.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			tw.handle(event)

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn("journey watcher error", zap.Error(err))
		}
	}
}

func (tw *TemplateWatcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	name, ok := TemplateNameFromPath(event.Name)
	if !ok {
		return
	}

	if filepath.Base(filepath.Dir(event.Name)) == "signals" {
		// Slot validation depends on the catalog, so drop everything.
		tw.cache.Reset()
		tw.logger.Info("signal catalog changed, cache reset", zap.String("path", event.Name))
		return
	}

	tw.cache.Invalidate(name)
	tw.logger.Info("journey template changed", zap.String("template", name), zap.String("op", event.Op.String()))
}
