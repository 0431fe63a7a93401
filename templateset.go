// Package templateset is the quick-start surface of the module: a
// localized template repository with a pongo2 compiler wired in.
//
//	repo, err := templateset.Load("./templates")
//	out, err := repo.RenderTemplate(templateset.Context{"name": "Ada"}, "welcome", "cs", "en")
//
// Callers that need helper functions (for example pkg/i18n) build their own
// engine and pass it with templates.WithCompiler; later options win.
package templateset

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-templateset/pkg/compiler/pongo"
	"github.com/goliatone/go-templateset/pkg/manifest"
	"github.com/goliatone/go-templateset/pkg/templates"
)

// Builder aliases templates.Builder.
type Builder = templates.Builder

// Repository aliases templates.Repository.
type Repository = templates.Repository

// Template aliases templates.Template.
type Template = templates.Template

// Content aliases templates.Content.
type Content = templates.Content

// Group aliases templates.Group.
type Group = templates.Group

// Context aliases templates.Context.
type Context = templates.Context

// Option aliases templates.Option.
type Option = templates.Option

// NewBuilder returns a builder compiling through a fresh pongo2 engine.
// Includes resolve against the working directory.
func NewBuilder(opts ...Option) *Builder {
	return templates.NewBuilder(withDefaultCompiler(pongo.Must(), opts)...)
}

// NewTemplate returns an empty template.
func NewTemplate() *Template {
	return templates.NewTemplate()
}

// NewGroupBuilder returns an empty group builder.
func NewGroupBuilder() *templates.GroupBuilder {
	return templates.NewGroupBuilder()
}

// LoadFS reads every manifest in fsys and builds a repository. Includes and
// extends inside template bodies resolve against fsys.
func LoadFS(fsys fs.FS, opts ...Option) (*Repository, error) {
	engine, err := pongo.New(pongo.WithFS(fsys))
	if err != nil {
		return nil, fmt.Errorf("templateset: create engine: %w", err)
	}
	return load(fsys, withDefaultCompiler(engine, opts))
}

// Load is LoadFS over a directory on disk.
func Load(dir string, opts ...Option) (*Repository, error) {
	engine, err := pongo.New(pongo.WithBaseDir(dir))
	if err != nil {
		return nil, fmt.Errorf("templateset: create engine: %w", err)
	}
	return load(os.DirFS(dir), withDefaultCompiler(engine, opts))
}

func load(fsys fs.FS, opts []Option) (*Repository, error) {
	builder, err := manifest.LoadFS(fsys, opts...)
	if err != nil {
		return nil, err
	}
	return builder.Build()
}

func withDefaultCompiler(compiler templates.Compiler, opts []Option) []Option {
	out := make([]Option, 0, len(opts)+1)
	out = append(out, templates.WithCompiler(compiler))
	return append(out, opts...)
}
