// Package journey contains the pure model of declarative journey documents:
// the competency signal catalog and named journey templates.
// Nothing in this package performs I/O.
package journey

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Defaults applied to slots that omit the corresponding field.
const (
	DefaultFramework        = "SPARC"
	DefaultEstimatedMinutes = 45
	DefaultConfigVersion    = "1.0"
)

// SignalCatalogDocument names the catalog document in errors and logs.
const SignalCatalogDocument = "competency-signals"

// Signal is one competency a story can be tagged against.
type Signal struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Roles       []string `json:"roles"`
}

// CompanyArchetype describes a kind of employer a user can prepare for.
type CompanyArchetype struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Emphasis    []string `json:"emphasis,omitempty"`
}

// Role describes a target role (IC, EM, ...).
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SignalCatalog is the reference list of signals. It is loaded once and
// never mutated afterwards.
type SignalCatalog struct {
	Signals           []Signal           `json:"signals"`
	CompanyArchetypes []CompanyArchetype `json:"company_archetypes"`
	Roles             []Role             `json:"roles"`

	index map[string]int
}

// Lookup returns the signal with the given identifier.
func (c *SignalCatalog) Lookup(id string) (Signal, bool) {
	i, ok := c.index[id]
	if !ok {
		return Signal{}, false
	}
	return c.Signals[i], true
}

// Has reports whether id is a declared signal.
func (c *SignalCatalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IDs returns signal identifiers in catalog order.
func (c *SignalCatalog) IDs() []string {
	ids := make([]string, len(c.Signals))
	for i, s := range c.Signals {
		ids[i] = s.ID
	}
	return ids
}

// SlotDefinition is one story slot declared by a template.
// Zero values for Framework, EstimatedMinutes and DisplayOrder mean "unset".
type SlotDefinition struct {
	Key              string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Signals          []string `json:"signals"`
	Framework        string   `json:"framework,omitempty"`
	EstimatedMinutes int      `json:"estimated_minutes,omitempty"`
	DisplayOrder     int      `json:"display_order,omitempty"`
}

// Definition is the `journey` object of a template document.
type Definition struct {
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	DurationWeeks int                 `json:"duration_weeks"`
	StorySlots    []SlotDefinition    `json:"story_slots"`
	MicroPrompts  map[string][]string `json:"sparc_micro_prompts,omitempty"`
}

// Template is a named, versioned journey document.
type Template struct {
	Name    string     `json:"-"`
	Version string     `json:"version,omitempty"`
	Journey Definition `json:"journey"`

	// Raw is the document exactly as read, kept for introspection.
	Raw []byte `json:"-"`
}

// ParseSignalCatalog decodes and validates a catalog document.
func ParseSignalCatalog(data []byte) (*SignalCatalog, error) {
	var catalog SignalCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, &ConfigParseError{Document: SignalCatalogDocument, Err: err}
	}

	catalog.index = make(map[string]int, len(catalog.Signals))
	for i, s := range catalog.Signals {
		if s.ID == "" {
			return nil, &ConfigParseError{
				Document: SignalCatalogDocument,
				Err:      fmt.Errorf("signal at position %d has no id", i),
			}
		}
		if _, dup := catalog.index[s.ID]; dup {
			return nil, &ConfigParseError{
				Document: SignalCatalogDocument,
				Err:      fmt.Errorf("signal %q declared twice", s.ID),
			}
		}
		catalog.index[s.ID] = i
	}

	return &catalog, nil
}

// ParseTemplate decodes and validates the template document called name.
func ParseTemplate(name string, data []byte) (*Template, error) {
	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, &ConfigParseError{Document: name, Err: err}
	}
	if err := validateDefinition(tmpl.Journey); err != nil {
		return nil, &ConfigParseError{Document: name, Err: err}
	}

	tmpl.Name = name
	if tmpl.Version == "" {
		tmpl.Version = DefaultConfigVersion
	}
	tmpl.Raw = append([]byte(nil), data...)
	return &tmpl, nil
}

func validateDefinition(def Definition) error {
	if def.Title == "" {
		return errors.New("journey.title is required")
	}

	seen := make(map[string]bool, len(def.StorySlots))
	for i, slot := range def.StorySlots {
		if slot.Key == "" {
			return fmt.Errorf("story slot at position %d has no id", i)
		}
		if seen[slot.Key] {
			return fmt.Errorf("story slot %q declared twice", slot.Key)
		}
		seen[slot.Key] = true
		if slot.EstimatedMinutes < 0 || slot.DisplayOrder < 0 {
			return fmt.Errorf("story slot %q has a negative duration or order", slot.Key)
		}
	}

	return nil
}
