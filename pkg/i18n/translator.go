// Package i18n backs template translation helpers with go-i18n message
// bundles. Message files may be TOML, YAML or JSON.
package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-templateset/pkg/locale"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("i18n: translator not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, params ...any) (string, error)
}

// MissingTranslationHandler decides what a template sees when a key has no
// translation.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

// Bundle is a Translator over a go-i18n bundle.
type Bundle struct {
	bundle        *goi18n.Bundle
	defaultLocale string
}

var _ ChainTranslator = (*Bundle)(nil)

// New creates an empty bundle. Unparsable default locales fall back to
// English.
func New(defaultLocale string) *Bundle {
	tag, err := language.Parse(strings.TrimSpace(defaultLocale))
	if err != nil {
		tag = language.English
	}
	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	return &Bundle{
		bundle:        bundle,
		defaultLocale: tag.String(),
	}
}

// DefaultLocale returns the canonical default locale.
func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// LoadFS loads message files such as "active.en.toml" from fsys.
func (b *Bundle) LoadFS(fsys fs.FS, paths ...string) error {
	for _, path := range paths {
		if _, err := b.bundle.LoadMessageFileFS(fsys, path); err != nil {
			return fmt.Errorf("i18n: load %s: %w", path, err)
		}
	}
	return nil
}

// AddMessages registers messages for locale directly, mostly for tests and
// programmatic setups.
func (b *Bundle) AddMessages(localeKey string, messages map[string]string) error {
	tag, err := language.Parse(strings.TrimSpace(localeKey))
	if err != nil {
		return fmt.Errorf("i18n: parse locale %q: %w", localeKey, err)
	}
	out := make([]*goi18n.Message, 0, len(messages))
	for id, other := range messages {
		out = append(out, &goi18n.Message{ID: id, Other: other})
	}
	return b.bundle.AddMessages(tag, out...)
}

// Translate renders key for localeKey, walking its locale chain and then the
// default locale. A single map[string]any param is used as template data;
// a "count" entry selects plural forms.
func (b *Bundle) Translate(localeKey, key string, params ...any) (string, error) {
	return b.TranslateChain(locale.Chain(localeKey), key, params...)
}

// TranslateChain renders key for the first locale in chain that has it. The
// default locale is always tried last.
func (b *Bundle) TranslateChain(chain []string, key string, params ...any) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("i18n: message key is required")
	}

	langs := append(append(make([]string, 0, len(chain)+1), chain...), b.defaultLocale)
	localizer := goi18n.NewLocalizer(b.bundle, langs...)
	cfg := &goi18n.LocalizeConfig{MessageID: key}
	if data := templateData(params); data != nil {
		cfg.TemplateData = data
		if count, ok := data["count"]; ok {
			cfg.PluralCount = count
		}
	}

	msg, err := localizer.Localize(cfg)
	if err != nil {
		return "", fmt.Errorf("i18n: localize %q (%s): %w", key, strings.Join(chain, ","), err)
	}
	return msg, nil
}

func templateData(params []any) map[string]any {
	for _, param := range params {
		if data, ok := param.(map[string]any); ok {
			return data
		}
	}
	return nil
}
