package i18n

import (
	"strings"

	"github.com/goliatone/go-templateset/pkg/locale"
)

// ChainTranslator is a Translator that also resolves against an explicit
// locale lookup order.
type ChainTranslator interface {
	Translator
	TranslateChain(chain []string, key string, params ...any) (string, error)
}

// FuncsConfig configures the template helpers returned by TemplateFuncs.
type FuncsConfig struct {
	// FuncName customizes the translator helper name (defaults to "translate").
	FuncName string
	// Fallbacks are appended to every lookup chain, after the parents of the
	// requested locale.
	Fallbacks []string
	// OnMissing controls the string returned when a translation is missing.
	// The default returns the key.
	OnMissing MissingTranslationHandler
}

// TemplateFuncs returns helpers suitable for pongo.WithTemplateFunc:
//
//	translate(locale, key, ...params) string
//	locale_chain(locale) []string
//
// Both expand locale with locale.Chain and cfg.Fallbacks, so a template
// rendered for "cs-CZ" reads "cs-CZ", "cs" and then the fallbacks.
func TemplateFuncs(t Translator, cfg FuncsConfig) map[string]any {
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}

	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = func(_ string, key string, _ []any, _ error) string { return key }
	}

	fallbacks := append([]string(nil), cfg.Fallbacks...)
	chainFor := func(localeKey string) []string {
		return locale.Chain(localeKey, fallbacks...)
	}

	return map[string]any{
		name: func(localeKey, key string, params ...any) string {
			key = strings.TrimSpace(key)
			if key == "" {
				return ""
			}
			localeKey = locale.Normalize(localeKey)
			if t == nil {
				return onMissing(localeKey, key, params, ErrMissingTranslator)
			}

			var (
				msg string
				err error
			)
			if chained, ok := t.(ChainTranslator); ok {
				msg, err = chained.TranslateChain(chainFor(localeKey), key, params...)
			} else {
				msg, err = t.Translate(localeKey, key, params...)
			}
			if err != nil || strings.TrimSpace(msg) == "" {
				return onMissing(localeKey, key, params, err)
			}
			return msg
		},
		"locale_chain": chainFor,
	}
}
