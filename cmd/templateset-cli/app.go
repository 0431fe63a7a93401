package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-templateset/internal/logging"
	"github.com/goliatone/go-templateset/internal/prompt"
	"github.com/goliatone/go-templateset/pkg/compiler/pongo"
	"github.com/goliatone/go-templateset/pkg/i18n"
	"github.com/goliatone/go-templateset/pkg/locale"
	"github.com/goliatone/go-templateset/pkg/manifest"
	"github.com/goliatone/go-templateset/pkg/sanitize"
	"github.com/goliatone/go-templateset/pkg/templates"
)

type options struct {
	manifests     string
	template      string
	group         string
	locale        string
	fallbacks     []string
	dataFile      string
	sanitize      string
	messages      string
	defaultLocale string
	output        string
	logLevel      string
	logFormat     string
	strictLocales bool
	interactive   bool
	list          bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	flagSet := pflag.NewFlagSet("templateset-cli", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.manifests, "manifests", "m", ".", "directory holding *.templates.{json,yaml,yml,toml} manifests")
	flagSet.StringVarP(&opts.template, "template", "t", "", "template key to render")
	flagSet.StringVarP(&opts.group, "group", "g", "", "group key to render")
	flagSet.StringVarP(&opts.locale, "locale", "l", "", "requested locale")
	flagSet.StringArrayVar(&opts.fallbacks, "fallback", nil, "fallback locale, tried in order (repeatable)")
	flagSet.StringVarP(&opts.dataFile, "data", "d", "", "JSON, YAML or TOML file with the render context")
	flagSet.StringVar(&opts.sanitize, "sanitize", "none", "output sanitizer: none, ugc or strict")
	flagSet.StringVar(&opts.messages, "messages", "", "directory with go-i18n message files exposed through translate()")
	flagSet.StringVar(&opts.defaultLocale, "default-locale", "en", "default locale of the message bundle")
	flagSet.StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	flagSet.StringVar(&opts.logLevel, "log-level", "error", "log level: trace, debug, info, warn, error")
	flagSet.StringVar(&opts.logFormat, "log-format", "console", "log format: json, console or pretty")
	flagSet.BoolVar(&opts.strictLocales, "strict-locales", false, "fail when two variants of a template claim the same locale")
	flagSet.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for anything not given on the command line")
	flagSet.BoolVar(&opts.list, "list", false, "list templates and groups, then exit")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Render localized templates from manifest files.\n\nUsage:\n  templateset-cli [flags]\n\nFlags:\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return options{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver prompt.Driver) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	provider, err := logging.NewProvider(logging.Config{Level: opts.logLevel, Format: opts.logFormat})
	if err != nil {
		return err
	}
	logger := logging.ModuleLogger(provider, logging.CLIModule)

	repo, err := buildRepository(opts, provider)
	if err != nil {
		return err
	}
	logger.Debug("repository ready", "templates", len(repo.Templates()), "groups", len(repo.Groups()))

	if opts.list {
		return writeListing(stdout, repo)
	}

	sel := prompt.Selection{Key: opts.template, Kind: prompt.KindTemplate, Locale: opts.locale, Fallbacks: opts.fallbacks}
	if opts.group != "" {
		sel.Kind, sel.Key = prompt.KindGroup, opts.group
	}
	if opts.template != "" && opts.group != "" {
		return errors.New("--template and --group are mutually exclusive")
	}
	if opts.interactive {
		if opts.template == "" && opts.group == "" {
			sel.Kind = ""
		}
		if sel, err = prompt.Choose(ctx, driver, repo, sel); err != nil {
			return err
		}
	}
	if sel.Key == "" {
		return errors.New("one of --template, --group, --list or --interactive is required")
	}
	if sel.Locale == "" {
		return errors.New("--locale is required")
	}

	data, err := loadData(opts.dataFile)
	if err != nil {
		return err
	}
	if _, ok := data["locale"]; !ok {
		data["locale"] = sel.Locale
	}

	chain := locale.Chain(sel.Locale, sel.Fallbacks...)
	logger.Debug("rendering", "kind", string(sel.Kind), "key", sel.Key, "chain", chain)

	if sel.Kind == prompt.KindGroup {
		out, err := repo.RenderGroupChain(data, sel.Key, chain)
		if err != nil {
			return err
		}
		return writeGroup(stdout, opts.output, out)
	}

	out, err := repo.RenderTemplateChain(data, sel.Key, chain)
	if err != nil {
		return err
	}
	return writeTemplate(stdout, opts.output, out)
}

func buildRepository(opts options, provider logging.LoggerProvider) (*templates.Repository, error) {
	engineOpts := []pongo.Option{pongo.WithBaseDir(opts.manifests)}
	if opts.messages != "" {
		bundle, err := loadMessages(opts.messages, opts.defaultLocale)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, pongo.WithTemplateFunc(i18n.TemplateFuncs(bundle, i18n.FuncsConfig{Fallbacks: opts.fallbacks})))
	}

	engine, err := pongo.New(engineOpts...)
	if err != nil {
		return nil, err
	}

	filter, err := sanitize.ByName(opts.sanitize)
	if err != nil {
		return nil, err
	}

	builderOpts := []templates.Option{
		templates.WithCompiler(engine),
		templates.WithLogger(logging.ModuleLogger(provider, logging.BuilderModule)),
		templates.WithOutputFilter(filter),
	}
	if opts.strictLocales {
		builderOpts = append(builderOpts, templates.WithStrictLocales())
	}

	builder, err := manifest.LoadFS(os.DirFS(opts.manifests), builderOpts...)
	if err != nil {
		return nil, err
	}
	return builder.Build()
}

func loadMessages(dir, defaultLocale string) (*i18n.Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read messages %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".toml", ".yaml", ".yml", ".json":
			files = append(files, entry.Name())
		}
	}

	bundle := i18n.New(defaultLocale)
	if err := bundle.LoadFS(os.DirFS(dir), files...); err != nil {
		return nil, err
	}
	return bundle, nil
}

func loadData(path string) (templates.Context, error) {
	data := templates.Context{}
	if strings.TrimSpace(path) == "" {
		return data, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data %s: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &data)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	case ".toml":
		err = toml.Unmarshal(raw, &data)
	default:
		return nil, fmt.Errorf("data file %s: unsupported extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse data %s: %w", path, err)
	}
	return data, nil
}

func writeListing(out io.Writer, repo *templates.Repository) error {
	for _, key := range repo.Templates() {
		if _, err := fmt.Fprintf(out, "template %s [%s]\n", key, strings.Join(repo.Locales(key), ", ")); err != nil {
			return err
		}
	}
	for _, key := range repo.Groups() {
		group, _ := repo.Group(key)
		members := make([]string, 0, len(group))
		for _, member := range group.Members() {
			members = append(members, member+"="+group[member])
		}
		if _, err := fmt.Fprintf(out, "group %s {%s}\n", key, strings.Join(members, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeTemplate(out io.Writer, format, rendered string) error {
	switch format {
	case "json":
		return writeJSON(out, map[string]string{"output": rendered})
	case "", "text":
		_, err := fmt.Fprintln(out, rendered)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeGroup(out io.Writer, format string, rendered map[string]string) error {
	switch format {
	case "json":
		return writeJSON(out, rendered)
	case "", "text":
		members := make([]string, 0, len(rendered))
		for member := range rendered {
			members = append(members, member)
		}
		sort.Strings(members)
		for _, member := range members {
			if _, err := fmt.Fprintf(out, "== %s ==\n%s\n", member, rendered[member]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
