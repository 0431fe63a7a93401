package templates

import (
	"fmt"
	"sort"
)

const handlePrefix = "template#"

// Builder is the mutable staging area for templates and groups. A Builder is
// single-use: the first call to Build consumes it whether or not the build
// succeeds.
type Builder struct {
	templates map[string]*Template
	groups    map[string]Group

	compiler       Compiler
	logger         Logger
	filters        []OutputFilter
	skipGroupCheck bool
	strictLocales  bool
	consumed       bool
}

// NewBuilder returns an empty builder configured with opts.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		templates: make(map[string]*Template),
		groups:    make(map[string]Group),
		logger:    noopLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Configure applies additional options to a builder that has not been built.
func (b *Builder) Configure(opts ...Option) *Builder {
	if b.consumed {
		return b
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// AddTemplate stores t under key, replacing any previous template. Calls on a
// consumed builder are ignored.
func (b *Builder) AddTemplate(key string, t *Template) *Builder {
	if b.consumed {
		return b
	}
	if t == nil {
		t = NewTemplate()
	}
	b.templates[key] = t
	return b
}

// AddGroup stores a copy of g under key, replacing any previous group. Calls
// on a consumed builder are ignored.
func (b *Builder) AddGroup(key string, g Group) *Builder {
	if b.consumed {
		return b
	}
	b.groups[key] = g.Clone()
	return b
}

// Consumed reports whether Build has already run.
func (b *Builder) Consumed() bool {
	return b.consumed
}

// Template returns the staged template for key. The returned template is
// live: mutating it changes what Build compiles.
func (b *Builder) Template(key string) (*Template, bool) {
	t, ok := b.templates[key]
	return t, ok
}

// RemoveTemplate removes and returns the staged template for key.
func (b *Builder) RemoveTemplate(key string) (*Template, bool) {
	t, ok := b.templates[key]
	if ok {
		delete(b.templates, key)
	}
	return t, ok
}

// Group returns a copy of the staged group for key.
func (b *Builder) Group(key string) (Group, bool) {
	g, ok := b.groups[key]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// RemoveGroup removes and returns the staged group for key.
func (b *Builder) RemoveGroup(key string) (Group, bool) {
	g, ok := b.groups[key]
	if ok {
		delete(b.groups, key)
	}
	return g, ok
}

// CheckGroupConfigValidity reports every group member that references a
// template the builder does not hold. All groups and members are checked;
// the result is sorted by group then member and is empty when the
// configuration is valid.
func (b *Builder) CheckGroupConfigValidity() []Violation {
	violations := []Violation{}
	for _, groupKey := range sortedKeys(b.groups) {
		group := b.groups[groupKey]
		for _, member := range group.Members() {
			templateKey := group[member]
			if _, ok := b.templates[templateKey]; ok {
				continue
			}
			violations = append(violations, Violation{
				Group:    groupKey,
				Member:   member,
				Template: templateKey,
			})
		}
	}
	return violations
}

// Build validates the staged configuration, compiles every variant and
// returns the immutable Repository. The builder is consumed by the call.
// Any failure aborts the whole build; no partial repository is returned.
func (b *Builder) Build() (*Repository, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	if b.compiler == nil {
		return nil, ErrCompilerRequired
	}

	if !b.skipGroupCheck {
		if violations := b.CheckGroupConfigValidity(); len(violations) > 0 {
			b.logger.Warn("template build rejected", "violations", len(violations))
			return nil, &GroupIntegrityError{Violations: violations}
		}
	}

	compiler := b.compiler
	if sets, ok := compiler.(SetCompiler); ok {
		compiler = sets.NewSet()
	}

	index, err := b.compile(compiler)
	if err != nil {
		b.logger.Error("template build failed", "error", err)
		return nil, err
	}

	groups := make(map[string]Group, len(b.groups))
	for key, group := range b.groups {
		groups[key] = group.Clone()
	}

	repo := &Repository{
		compiler: compiler,
		index:    index,
		groups:   groups,
		filters:  append([]OutputFilter(nil), b.filters...),
	}

	b.logger.Info("template repository built",
		"templates", len(index),
		"groups", len(groups),
	)

	return repo, nil
}

// compile registers every variant with compiler. A template only gets an
// index entry once a variant maps a locale, so templates without variants
// are unknown to the repository.
func (b *Builder) compile(compiler Compiler) (map[string]map[string]string, error) {
	index := make(map[string]map[string]string, len(b.templates))
	handles := make(map[string]string)
	next := 1

	for _, templateKey := range sortedKeys(b.templates) {
		var locales map[string]string

		for _, content := range b.templates[templateKey].contents {
			if err := content.Validate(); err != nil {
				return nil, &TemplateBuildError{
					Template: templateKey,
					Handle:   content.Name,
					Err:      fmt.Errorf("%w: %v", ErrInvalidContent, err),
				}
			}

			name := content.Name
			if name == "" {
				name = fmt.Sprintf("%s%d", handlePrefix, next)
				next++
			}
			if owner, taken := handles[name]; taken {
				return nil, &TemplateBuildError{
					Template: templateKey,
					Handle:   name,
					Err:      fmt.Errorf("%w: already used by template %q", ErrDuplicateHandle, owner),
				}
			}
			handles[name] = templateKey

			if err := compiler.Compile(name, content.Body); err != nil {
				return nil, &TemplateBuildError{Template: templateKey, Handle: name, Err: err}
			}
			b.logger.Debug("template variant compiled",
				"template", templateKey,
				"handle", name,
				"locales", content.Locales,
			)

			for _, locale := range content.Locales {
				if locales == nil {
					locales = make(map[string]string)
					index[templateKey] = locales
				}
				if previous, exists := locales[locale]; exists && b.strictLocales {
					return nil, &DuplicateLocaleError{
						Template: templateKey,
						Locale:   locale,
						Previous: previous,
						Handle:   name,
					}
				}
				locales[locale] = name
			}
		}
	}

	return index, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
