package templates

// Repository is the immutable result of a successful Build. It holds no
// mutable state after construction, so a single instance can serve any
// number of concurrent renders.
type Repository struct {
	compiler Compiler
	index    map[string]map[string]string
	groups   map[string]Group
	filters  []OutputFilter
}

// RenderTemplate renders the variant of templateKey for locale. When the
// template has no variant for locale, each fallback is tried in order.
func (r *Repository) RenderTemplate(data Context, templateKey, locale string, fallback ...string) (string, error) {
	return r.RenderTemplateChain(data, templateKey, localeChain(locale, fallback))
}

// RenderTemplateChain renders templateKey using the first locale in chain
// that has a variant.
func (r *Repository) RenderTemplateChain(data Context, templateKey string, chain []string) (string, error) {
	locales, ok := r.index[templateKey]
	if !ok {
		return "", templateNotFound(templateKey)
	}

	locale, handle, ok := resolve(locales, chain)
	if !ok {
		return "", &LanguageNotFoundError{
			Template: templateKey,
			Locales:  append([]string(nil), chain...),
		}
	}

	rendered, err := r.compiler.Render(handle, data)
	if err != nil {
		return "", &RenderError{Template: templateKey, Locale: locale, Handle: handle, Err: err}
	}

	for _, filter := range r.filters {
		rendered, err = filter(rendered)
		if err != nil {
			return "", &RenderError{Template: templateKey, Locale: locale, Handle: handle, Err: err}
		}
	}
	return rendered, nil
}

// RenderGroup renders every member of groupKey with the same data and
// locale resolution. The first failing member aborts the call and no
// partial result is returned.
func (r *Repository) RenderGroup(data Context, groupKey, locale string, fallback ...string) (map[string]string, error) {
	return r.RenderGroupChain(data, groupKey, localeChain(locale, fallback))
}

// RenderGroupChain is RenderGroup with an explicit locale chain.
func (r *Repository) RenderGroupChain(data Context, groupKey string, chain []string) (map[string]string, error) {
	group, ok := r.groups[groupKey]
	if !ok {
		return nil, groupNotFound(groupKey)
	}

	result := make(map[string]string, len(group))
	for _, member := range group.Members() {
		rendered, err := r.RenderTemplateChain(data, group[member], chain)
		if err != nil {
			return nil, err
		}
		result[member] = rendered
	}
	return result, nil
}

// Templates returns the sorted template keys.
func (r *Repository) Templates() []string {
	return sortedKeys(r.index)
}

// Groups returns the sorted group keys.
func (r *Repository) Groups() []string {
	return sortedKeys(r.groups)
}

// HasTemplate reports whether templateKey was built.
func (r *Repository) HasTemplate(templateKey string) bool {
	_, ok := r.index[templateKey]
	return ok
}

// HasGroup reports whether groupKey exists.
func (r *Repository) HasGroup(groupKey string) bool {
	_, ok := r.groups[groupKey]
	return ok
}

// Group returns a copy of the group stored under groupKey.
func (r *Repository) Group(groupKey string) (Group, bool) {
	group, ok := r.groups[groupKey]
	if !ok {
		return nil, false
	}
	return group.Clone(), true
}

// Locales returns the sorted locales that templateKey has variants for.
func (r *Repository) Locales(templateKey string) []string {
	locales, ok := r.index[templateKey]
	if !ok {
		return nil
	}
	return sortedKeys(locales)
}

// Handle returns the compiled handle name serving templateKey in locale,
// without applying any fallback.
func (r *Repository) Handle(templateKey, locale string) (string, bool) {
	handle, ok := r.index[templateKey][locale]
	return handle, ok
}

func resolve(locales map[string]string, chain []string) (string, string, bool) {
	for _, locale := range chain {
		if handle, ok := locales[locale]; ok {
			return locale, handle, true
		}
	}
	return "", "", false
}

func localeChain(locale string, fallback []string) []string {
	chain := make([]string, 0, len(fallback)+1)
	chain = append(chain, locale)
	return append(chain, fallback...)
}
