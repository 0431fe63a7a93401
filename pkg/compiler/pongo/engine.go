package pongo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-templateset/pkg/locale"
	"github.com/goliatone/go-templateset/pkg/templates"
)

const setName = "templateset"

// ErrTemplateNotCompiled is returned when rendering a handle that was never
// compiled.
var ErrTemplateNotCompiled = errors.New("pongo: template not compiled")

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	templateFn map[string]any
	globalData map[string]any
}

// WithBaseDir resolves {% include %} and {% extends %} against a directory on
// disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS resolves {% include %} and {% extends %} against an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithTemplateFunc registers helper functions or filters when the engine loads.
// pongo2.FilterFunction values become filters, other callables become globals.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine compiles template bodies into a pongo2 template set and renders them
// by handle name.
//
// Variables missing from the render context expand to the empty string, as
// pongo2 does; a missing key never fails a render. Only execution errors such
// as a failing filter or a missing include are reported.
//
// Engine implements templates.SetCompiler: every Build compiles into its own
// set from NewSet, so one engine can back any number of repositories.
type Engine struct {
	mu sync.RWMutex

	loaders     []pongo2.TemplateLoader
	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
}

var _ templates.SetCompiler = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" || cfg.templates == nil {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := newEngine(loaders, nil)
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("pongo: apply global data: %w", err)
	}
	for _, name := range sortedNames(cfg.templateFn) {
		if err := engine.registerTemplateFunc(name, cfg.templateFn[name]); err != nil {
			return nil, fmt.Errorf("pongo: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Must is New for static setup code.
func Must(options ...Option) *Engine {
	engine, err := New(options...)
	if err != nil {
		panic(err)
	}
	return engine
}

func newEngine(loaders []pongo2.TemplateLoader, globals pongo2.Context) *Engine {
	set := pongo2.NewSet(setName, loaders...)
	set.Globals = make(pongo2.Context, len(globals))
	set.Globals.Update(globals)
	return &Engine{
		loaders:     loaders,
		templateSet: set,
		templates:   make(map[string]*pongo2.Template),
	}
}

// NewSet returns an engine with no compiled templates that shares this
// engine's loaders and a snapshot of its globals. Templates compiled into
// either engine afterwards are invisible to the other.
func (e *Engine) NewSet() templates.Compiler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return newEngine(e.loaders, e.templateSet.Globals)
}

// Compile parses body and stores it under name, replacing any template
// previously compiled under the same name.
func (e *Engine) Compile(name, body string) error {
	if e == nil || e.templateSet == nil {
		return errors.New("pongo: engine is nil")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("pongo: template name is required")
	}

	tmpl, err := e.templateSet.FromString(body)
	if err != nil {
		return fmt.Errorf("pongo: compile template %q: %w", name, err)
	}

	e.mu.Lock()
	e.templates[name] = tmpl
	e.mu.Unlock()
	return nil
}

// Render executes the template compiled under name.
func (e *Engine) Render(name string, data templates.Context) (string, error) {
	return e.RenderTo(name, data)
}

// RenderTo executes the template compiled under name and additionally writes
// the result to every writer in out.
func (e *Engine) RenderTo(name string, data templates.Context, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("pongo: engine is nil")
	}

	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotCompiled, name)
	}

	return e.execute(tmpl, data, fmt.Sprintf("template %q", name), out...)
}

// RenderString parses and renders templateContent without storing it.
func (e *Engine) RenderString(templateContent string, data templates.Context, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("pongo: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template string: %w", err)
	}
	return e.execute(tmpl, data, "template string", out...)
}

// Names returns the sorted handle names compiled so far.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterFilter registers a filter. pongo2 filters are process-wide, so a
// name that already exists is rejected.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the globals visible to every template of
// this engine and of sets created from it afterwards.
func (e *Engine) GlobalContext(data map[string]any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("pongo: engine is nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.templateSet.Globals.Update(toContext(data))
	return nil
}

func (e *Engine) execute(tmpl *pongo2.Template, data templates.Context, label string, out ...io.Writer) (string, error) {
	var buf bytes.Buffer

	e.mu.RLock()
	err := tmpl.ExecuteWriter(toContext(data), &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("pongo: execute %s: %w", label, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if reflect.ValueOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("pongo: %T is not a function", fn)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.templateSet.Globals[trimmed] = fn
	return nil
}

// toContext copies data into a pongo2.Context, dropping blank keys. Values
// pass through untouched; pongo2 resolves struct fields and map keys itself.
func toContext(data map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data))
	for key, value := range data {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	return ctx
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// registerDefaultFilters installs the locale filters once per process:
// locale_tag normalizes a locale key, locale_base strips it to its language.
func registerDefaultFilters() {
	if !pongo2.FilterExists("locale_tag") {
		_ = pongo2.RegisterFilter("locale_tag", localeFilter(locale.Normalize))
	}
	if !pongo2.FilterExists("locale_base") {
		_ = pongo2.RegisterFilter("locale_base", localeFilter(locale.Base))
	}
}

func localeFilter(fn func(string) string) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(fn(in.String())), nil
	}
}
