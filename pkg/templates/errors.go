package templates

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTemplateNotFound indicates the requested template key is unknown.
	ErrTemplateNotFound = errors.New("templates: template not found")
	// ErrLanguageNotFound indicates neither the requested locale nor any
	// fallback has a variant for the resolved template.
	ErrLanguageNotFound = errors.New("templates: language not found")
	// ErrGroupNotFound indicates the requested group key is unknown.
	ErrGroupNotFound = errors.New("templates: group not found")
	// ErrRenderingFailed wraps failures raised by the compiler while rendering.
	ErrRenderingFailed = errors.New("templates: rendering failed")
	// ErrTemplateBuilding wraps failures raised while compiling variants.
	ErrTemplateBuilding = errors.New("templates: unable to build template")
	// ErrGroupIntegrity indicates one or more groups reference missing templates.
	ErrGroupIntegrity = errors.New("templates: group references missing templates")
	// ErrDuplicateLocaleMapping is returned in strict mode when two variants
	// of a template tag the same locale.
	ErrDuplicateLocaleMapping = errors.New("templates: duplicate locale mapping")
	// ErrBuilderConsumed is returned when Build runs on an already built builder.
	ErrBuilderConsumed = errors.New("templates: builder already consumed")
	// ErrCompilerRequired is returned when a builder has no compiler configured.
	ErrCompilerRequired = errors.New("templates: compiler is required")
	// ErrInvalidContent indicates a variant failed validation.
	ErrInvalidContent = errors.New("templates: invalid content")
	// ErrDuplicateHandle indicates two variants resolved to the same handle name.
	ErrDuplicateHandle = errors.New("templates: duplicate handle name")
)

// Violation describes a group member pointing at a template key the builder
// does not hold.
type Violation struct {
	Group    string `json:"group"`
	Member   string `json:"member"`
	Template string `json:"template"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s.%s -> %s", v.Group, v.Member, v.Template)
}

// GroupIntegrityError carries every violation found during Build.
type GroupIntegrityError struct {
	Violations []Violation
}

func (e *GroupIntegrityError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("templates: cannot build template groups, missing templates: %s", strings.Join(parts, ", "))
}

func (e *GroupIntegrityError) Unwrap() error {
	return ErrGroupIntegrity
}

// TemplateBuildError reports a variant that could not be compiled. Err is
// the underlying diagnostic.
type TemplateBuildError struct {
	Template string
	Handle   string
	Err      error
}

func (e *TemplateBuildError) Error() string {
	if e.Handle == "" {
		return fmt.Sprintf("templates: unable to build template %q: %v", e.Template, e.Err)
	}
	return fmt.Sprintf("templates: unable to build template %q (handle %q): %v", e.Template, e.Handle, e.Err)
}

func (e *TemplateBuildError) Unwrap() []error {
	return []error{ErrTemplateBuilding, e.Err}
}

// DuplicateLocaleError reports a locale tagged by two variants of the same
// template when strict locales are enabled.
type DuplicateLocaleError struct {
	Template string
	Locale   string
	Previous string
	Handle   string
}

func (e *DuplicateLocaleError) Error() string {
	return fmt.Sprintf("templates: template %q maps locale %q twice (%s, %s)", e.Template, e.Locale, e.Previous, e.Handle)
}

func (e *DuplicateLocaleError) Unwrap() error {
	return ErrDuplicateLocaleMapping
}

// LanguageNotFoundError lists the locales that were tried for a template.
type LanguageNotFoundError struct {
	Template string
	Locales  []string
}

func (e *LanguageNotFoundError) Error() string {
	return fmt.Sprintf("templates: no variant of %q for locales [%s]", e.Template, strings.Join(e.Locales, ", "))
}

func (e *LanguageNotFoundError) Unwrap() error {
	return ErrLanguageNotFound
}

// RenderError wraps a compiler or output filter failure.
type RenderError struct {
	Template string
	Locale   string
	Handle   string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("templates: rendering %q (%s) failed: %v", e.Template, e.Locale, e.Err)
}

func (e *RenderError) Unwrap() []error {
	return []error{ErrRenderingFailed, e.Err}
}

func templateNotFound(key string) error {
	return fmt.Errorf("%w: %q", ErrTemplateNotFound, key)
}

func groupNotFound(key string) error {
	return fmt.Errorf("%w: %q", ErrGroupNotFound, key)
}
