// Package locale expands locale keys into fallback chains understood by
// templates.Repository.RenderTemplateChain. Keys are treated as BCP 47 tags
// when they parse and passed through verbatim when they do not.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Chain returns the lookup order for locale followed by fallbacks. Each
// entry is followed by its BCP 47 parents ("cs-CZ" then "cs"). Blank and
// repeated entries are dropped.
func Chain(locale string, fallbacks ...string) []string {
	out := make([]string, 0, 2*(len(fallbacks)+1))
	seen := make(map[string]struct{}, cap(out))

	add := func(value string) {
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}

	for _, entry := range append([]string{locale}, fallbacks...) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		add(entry)
		for _, parent := range Parents(entry) {
			add(parent)
		}
	}
	return out
}

// Parents returns the BCP 47 parents of locale, nearest first, excluding the
// root. Unparsable keys have no parents.
func Parents(locale string) []string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil
	}

	var out []string
	for parent := tag.Parent(); !parent.IsRoot(); parent = parent.Parent() {
		out = append(out, parent.String())
	}
	return out
}

// Normalize returns the canonical BCP 47 form of locale, or the trimmed input
// when it does not parse.
func Normalize(locale string) string {
	trimmed := strings.TrimSpace(locale)
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return tag.String()
}

// Base returns the primary language subtag ("cs" for "cs-CZ"), or the
// normalized input when it does not parse.
func Base(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return Normalize(locale)
	}
	base, _ := tag.Base()
	return base.String()
}
