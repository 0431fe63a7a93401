package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-templateset/pkg/templates"
)

// Kind tells whether a selection targets a template or a group.
type Kind string

const (
	KindTemplate Kind = "template"
	KindGroup    Kind = "group"
)

// ErrNothingToRender is returned when the catalog holds no templates.
var ErrNothingToRender = errors.New("prompt: repository holds no templates")

// Catalog is the read-only view of a repository the prompts need.
// *templates.Repository satisfies it.
type Catalog interface {
	Templates() []string
	Groups() []string
	Locales(templateKey string) []string
	Group(groupKey string) (templates.Group, bool)
}

// Selection is what the user picked. Fields already set on the preset passed
// to Choose are not asked again.
type Selection struct {
	Kind      Kind
	Key       string
	Locale    string
	Fallbacks []string
}

// Choose asks for whatever preset leaves open: target kind and key, the
// locale, then optional fallback locales.
func Choose(ctx context.Context, driver Driver, catalog Catalog, preset Selection) (Selection, error) {
	sel := preset
	if len(catalog.Templates()) == 0 {
		return Selection{}, ErrNothingToRender
	}

	if sel.Key == "" {
		if sel.Kind == "" {
			kind, err := chooseKind(ctx, driver, catalog)
			if err != nil {
				return Selection{}, err
			}
			sel.Kind = kind
		}

		options := catalog.Templates()
		if sel.Kind == KindGroup {
			options = catalog.Groups()
		}
		idx, err := driver.Select(ctx, SelectConfig{
			Message: fmt.Sprintf("Which %s?", sel.Kind),
			Options: options,
		})
		if err != nil {
			return Selection{}, err
		}
		if idx < 0 || idx >= len(options) {
			return Selection{}, fmt.Errorf("prompt: invalid %s selection", sel.Kind)
		}
		sel.Key = options[idx]
	}
	if sel.Kind == "" {
		sel.Kind = KindTemplate
	}

	available := availableLocales(catalog, sel)
	if sel.Locale == "" {
		if len(available) == 0 {
			return Selection{}, fmt.Errorf("prompt: %s %q has no locales", sel.Kind, sel.Key)
		}
		idx, err := driver.Select(ctx, SelectConfig{
			Message: "Locale",
			Options: available,
		})
		if err != nil {
			return Selection{}, err
		}
		if idx < 0 || idx >= len(available) {
			return Selection{}, errors.New("prompt: invalid locale selection")
		}
		sel.Locale = available[idx]
	}

	if len(sel.Fallbacks) == 0 {
		rest := without(available, sel.Locale)
		if len(rest) > 0 {
			picked, err := driver.MultiSelect(ctx, SelectConfig{
				Message: "Fallback locales",
				Help:    "Tried in order when a template has no variant for the locale.",
				Options: rest,
			})
			if err != nil {
				return Selection{}, err
			}
			for _, idx := range picked {
				if idx >= 0 && idx < len(rest) {
					sel.Fallbacks = append(sel.Fallbacks, rest[idx])
				}
			}
		}
	}

	return sel, nil
}

func chooseKind(ctx context.Context, driver Driver, catalog Catalog) (Kind, error) {
	if len(catalog.Groups()) == 0 {
		return KindTemplate, nil
	}
	options := []string{string(KindTemplate), string(KindGroup)}
	idx, err := driver.Select(ctx, SelectConfig{
		Message: "Render a template or a group?",
		Options: options,
	})
	if err != nil {
		return "", err
	}
	if idx == 1 {
		return KindGroup, nil
	}
	return KindTemplate, nil
}

// availableLocales lists the locales of a template, or the union over the
// member templates of a group.
func availableLocales(catalog Catalog, sel Selection) []string {
	if sel.Kind != KindGroup {
		return catalog.Locales(sel.Key)
	}

	group, ok := catalog.Group(sel.Key)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for _, member := range group.Members() {
		for _, locale := range catalog.Locales(group[member]) {
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

func without(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value != drop {
			out = append(out, value)
		}
	}
	return out
}
