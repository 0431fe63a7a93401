package templates

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Content is one raw, uncompiled body together with the locales it serves.
// Name is optional; when set it becomes the compiled handle name instead of
// a generated one.
type Content struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Body    string   `json:"body" yaml:"body"`
	Locales []string `json:"locales" yaml:"locales"`
}

// NewContent builds a validated Content for the supplied locales.
func NewContent(body string, locales ...string) (Content, error) {
	c := Content{Body: body, Locales: append([]string(nil), locales...)}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	return c, nil
}

// MustContent is NewContent for static setup code. It panics on invalid input.
func MustContent(body string, locales ...string) Content {
	c, err := NewContent(body, locales...)
	if err != nil {
		panic(err)
	}
	return c
}

// WithName returns a copy of the content carrying an explicit handle name.
func (c Content) WithName(name string) Content {
	c.Name = strings.TrimSpace(name)
	c.Locales = append([]string(nil), c.Locales...)
	return c
}

// Validate implements validation.Validatable.
func (c Content) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Locales,
			validation.Required,
			validation.Each(validation.By(notBlank)),
		),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

// Template is a named bag of content variants. The key lives in the Builder;
// a Template only tracks its variants in insertion order.
type Template struct {
	contents []Content
}

// NewTemplate returns an empty template.
func NewTemplate() *Template {
	return &Template{}
}

// AddContent appends a variant and returns the template for chaining. Locale
// overlap between variants is not checked here: when two variants tag the
// same locale, the later one wins at build time.
func (t *Template) AddContent(c Content) *Template {
	c.Locales = append([]string(nil), c.Locales...)
	t.contents = append(t.contents, c)
	return t
}

// Add appends an unnamed variant for the given locales.
func (t *Template) Add(body string, locales ...string) *Template {
	return t.AddContent(Content{Body: body, Locales: locales})
}

// Contents returns a copy of the variants in insertion order.
func (t *Template) Contents() []Content {
	if t == nil {
		return nil
	}
	out := make([]Content, len(t.contents))
	for i, c := range t.contents {
		c.Locales = append([]string(nil), c.Locales...)
		out[i] = c
	}
	return out
}

// Locales returns the sorted set of locales served by any variant.
func (t *Template) Locales() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, c := range t.contents {
		for _, locale := range c.Locales {
			seen[locale] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for locale := range seen {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of variants.
func (t *Template) Len() int {
	if t == nil {
		return 0
	}
	return len(t.contents)
}

// Clone returns a deep copy.
func (t *Template) Clone() *Template {
	if t == nil {
		return NewTemplate()
	}
	return &Template{contents: t.Contents()}
}
