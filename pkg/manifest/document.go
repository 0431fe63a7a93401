package manifest

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-templateset/pkg/templates"
)

// ErrInvalidManifest marks documents that cannot be parsed or fail
// validation. It matches templates.ErrInvalidContent.
var ErrInvalidManifest = fmt.Errorf("%w: invalid manifest", templates.ErrInvalidContent)

// Document is the decoded form of one manifest file.
type Document struct {
	Templates map[string]TemplateSpec      `json:"templates" yaml:"templates" toml:"templates"`
	Groups    map[string]map[string]string `json:"groups" yaml:"groups" toml:"groups"`
}

// TemplateSpec lists the locale variants of one template.
type TemplateSpec struct {
	Variants []VariantSpec `json:"variants" yaml:"variants" toml:"variants"`
}

// VariantSpec describes one Content. Exactly one of Body and File is set.
type VariantSpec struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Locales []string `json:"locales" yaml:"locales" toml:"locales"`
	Body    string   `json:"body,omitempty" yaml:"body,omitempty" toml:"body,omitempty"`
	File    string   `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
}

// Validate implements validation.Validatable.
func (d Document) Validate() error {
	for key := range d.Templates {
		if strings.TrimSpace(key) == "" {
			return errors.New("templates: keys must not be blank")
		}
	}
	for key, members := range d.Groups {
		if strings.TrimSpace(key) == "" {
			return errors.New("groups: keys must not be blank")
		}
		for member, target := range members {
			if strings.TrimSpace(member) == "" || strings.TrimSpace(target) == "" {
				return fmt.Errorf("groups: %s: members and targets must not be blank", key)
			}
		}
	}
	return validation.ValidateStruct(&d,
		validation.Field(&d.Templates),
	)
}

// Validate implements validation.Validatable.
func (s TemplateSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Variants, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (v VariantSpec) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Locales,
			validation.Required,
			validation.Each(validation.By(notBlank)),
		),
		validation.Field(&v.Body, validation.By(v.exclusiveSource)),
	)
}

func (v VariantSpec) exclusiveSource(any) error {
	hasBody := strings.TrimSpace(v.Body) != ""
	hasFile := strings.TrimSpace(v.File) != ""
	switch {
	case hasBody && hasFile:
		return errors.New("body and file are mutually exclusive")
	case !hasBody && !hasFile:
		return errors.New("body or file is required")
	}
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}
