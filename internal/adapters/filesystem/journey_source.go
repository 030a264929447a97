// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/example/levelup/internal/ports/secondary"
)

// Document locations inside a journeys tree.
const (
	SignalCatalogPath = "signals/competency-signals.json"
	TemplatesDir      = "templates"
	TasksDir          = "tasks"
	templateExt       = ".json"
)

// JourneySource implements secondary.ConfigSource over an fs.FS laid out as
//
//	signals/competency-signals.json
//	templates/<name>.json
//	tasks/<name>.json
type JourneySource struct {
	fsys fs.FS
}

// NewJourneySource reads documents from fsys.
func NewJourneySource(fsys fs.FS) *JourneySource {
	return &JourneySource{fsys: fsys}
}

// NewDirJourneySource reads documents from a directory on disk.
func NewDirJourneySource(dir string) (*JourneySource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open journeys directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("journeys path %s is not a directory", dir)
	}
	return NewJourneySource(os.DirFS(dir)), nil
}

// ReadSignalCatalog returns the raw signal catalog.
func (s *JourneySource) ReadSignalCatalog(ctx context.Context) ([]byte, error) {
	return s.read(SignalCatalogPath)
}

// ReadTemplate returns the raw template called name.
// Names that are not a single path element are treated as missing.
func (s *JourneySource) ReadTemplate(ctx context.Context, name string) ([]byte, error) {
	if !ValidTemplateName(name) {
		return nil, fmt.Errorf("template %q: %w", name, secondary.ErrDocumentNotFound)
	}
	return s.read(path.Join(TemplatesDir, name+templateExt))
}

// ListTemplates returns template names sorted alphabetically.
func (s *JourneySource) ListTemplates(ctx context.Context) ([]string, error) {
	return s.list(TemplatesDir)
}

// ReadTaskJourney returns the raw task journey document called name.
func (s *JourneySource) ReadTaskJourney(ctx context.Context, name string) ([]byte, error) {
	if !ValidTemplateName(name) {
		return nil, fmt.Errorf("task journey %q: %w", name, secondary.ErrDocumentNotFound)
	}
	return s.read(path.Join(TasksDir, name+templateExt))
}

// ListTaskJourneys returns task journey names sorted alphabetically.
func (s *JourneySource) ListTaskJourneys(ctx context.Context) ([]string, error) {
	return s.list(TasksDir)
}

func (s *JourneySource) list(dir string) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), templateExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), templateExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *JourneySource) read(p string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, secondary.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// ValidTemplateName reports whether name can address a template file.
func ValidTemplateName(name string) bool {
	return name != "" && fs.ValidPath(name) && !strings.Contains(name, "/") && name != "."
}

// TemplateNameFromPath maps a file path to a template name when the file is
// a template document.
func TemplateNameFromPath(p string) (string, bool) {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if !strings.HasSuffix(base, templateExt) {
		return "", false
	}
	return strings.TrimSuffix(base, templateExt), true
}

var (
	_ secondary.ConfigSource      = (*JourneySource)(nil)
	_ secondary.TaskJourneySource = (*JourneySource)(nil)
)
