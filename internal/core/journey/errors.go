package journey

import "fmt"

// ConfigNotFoundError reports a missing configuration document.
type ConfigNotFoundError struct {
	Document string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config document %q not found", e.Document)
}

// ConfigParseError reports a document that exists but cannot be used.
type ConfigParseError struct {
	Document string
	Err      error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("config document %q is malformed: %v", e.Document, e.Err)
}

func (e *ConfigParseError) Unwrap() error {
	return e.Err
}

// TemplateNotFoundError reports an unknown journey template name.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("journey template %q not found", e.Name)
}
