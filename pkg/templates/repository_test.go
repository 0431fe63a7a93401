package templates_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-templateset/pkg/compiler/pongo"
	"github.com/goliatone/go-templateset/pkg/templates"
	"github.com/goliatone/go-templateset/pkg/testsupport"
)

func TestRepository_RenderTemplate(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.RenderTemplate(sampleContext(), "template_a", "cs")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "template_a cs john" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRepository_RenderTemplateWithFallback(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.RenderTemplate(sampleContext(), "template_a", "de", "en")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "template_a en john" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRepository_RenderTemplateWithoutMatchingLanguage(t *testing.T) {
	repo := newRepository(t)

	_, err := repo.RenderTemplate(sampleContext(), "template_a", "de", "fr")
	if !errors.Is(err, templates.ErrLanguageNotFound) {
		t.Fatalf("expected ErrLanguageNotFound, got %v", err)
	}

	var lnf *templates.LanguageNotFoundError
	if !errors.As(err, &lnf) {
		t.Fatalf("expected LanguageNotFoundError, got %T", err)
	}
	if diff := cmp.Diff([]string{"de", "fr"}, lnf.Locales); diff != "" {
		t.Fatalf("tried locales mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_RenderTemplateOnlyLocaleNoFallback(t *testing.T) {
	repo := newRepository(t)

	if _, err := repo.RenderTemplate(sampleContext(), "template_b", "cs"); !errors.Is(err, templates.ErrLanguageNotFound) {
		t.Fatalf("expected ErrLanguageNotFound, got %v", err)
	}

	got, err := repo.RenderTemplate(sampleContext(), "template_b", "cs", "en")
	if err != nil {
		t.Fatalf("render with fallback: %v", err)
	}
	if got != "template_b en doe" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRepository_RenderTemplateNotFound(t *testing.T) {
	repo := newRepository(t)

	for _, key := range []string{"", "missing", "TEMPLATE_A", "group_a"} {
		if _, err := repo.RenderTemplate(sampleContext(), key, "en", "cs"); !errors.Is(err, templates.ErrTemplateNotFound) {
			t.Fatalf("key %q: expected ErrTemplateNotFound, got %v", key, err)
		}
	}
}

func TestRepository_RenderTemplateChain(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.RenderTemplateChain(sampleContext(), "template_b", []string{"de", "fr", "en", "cs"})
	if err != nil {
		t.Fatalf("render chain: %v", err)
	}
	if got != "template_b en doe" {
		t.Fatalf("unexpected output %q", got)
	}

	if _, err := repo.RenderTemplateChain(sampleContext(), "template_b", nil); !errors.Is(err, templates.ErrLanguageNotFound) {
		t.Fatalf("expected ErrLanguageNotFound for empty chain, got %v", err)
	}
}

func TestRepository_RenderGroup(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.RenderGroup(sampleContext(), "group_a", "en")
	if err != nil {
		t.Fatalf("render group: %v", err)
	}
	want := map[string]string{
		"A": "template_a en john",
		"B": "template_b en doe",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("group output mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_RenderGroupWithFallback(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.RenderGroup(sampleContext(), "group_a", "cs", "en")
	if err != nil {
		t.Fatalf("render group: %v", err)
	}
	want := map[string]string{
		"A": "template_a cs john",
		"B": "template_b en doe",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("group output mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_RenderGroupWhenInvalidLanguage(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.RenderGroup(sampleContext(), "group_a", "cs", "fr")
	if got != nil {
		t.Fatalf("expected no partial result, got %v", got)
	}
	if !errors.Is(err, templates.ErrLanguageNotFound) {
		t.Fatalf("expected ErrLanguageNotFound, got %v", err)
	}
}

func TestRepository_RenderGroupNotFound(t *testing.T) {
	repo := newRepository(t)

	if _, err := repo.RenderGroup(sampleContext(), "template_a", "en"); !errors.Is(err, templates.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestRepository_RenderGroupOneEntryPerMember(t *testing.T) {
	repo, err := templates.NewBuilder(templates.WithCompiler(pongo.Must())).
		AddTemplate("t", templates.NewTemplate().Add("shared {{ name }}", "en")).
		AddGroup("g", templates.NewGroupBuilder().
			AddMember("first", "t").
			AddMember("second", "t").
			AddMember("third", "t").
			Build()).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := repo.RenderGroup(sampleContext(), "g", "en")
	if err != nil {
		t.Fatalf("render group: %v", err)
	}
	want := map[string]string{"first": "shared john", "second": "shared john", "third": "shared john"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("group output mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_RenderingFailed(t *testing.T) {
	diagnostic := errors.New("missing key")
	compiler := testsupport.NewStubCompiler()
	compiler.RenderErr = diagnostic

	repo, err := templates.NewBuilder(templates.WithCompiler(compiler)).
		AddTemplate("ok", templates.NewTemplate().Add("fine {{name}}", "en")).
		AddTemplate("bad", templates.NewTemplate().Add("boom !fail", "en")).
		AddGroup("g", templates.Group{"a": "ok", "b": "bad"}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = repo.RenderTemplate(sampleContext(), "bad", "en")
	if !errors.Is(err, templates.ErrRenderingFailed) || !errors.Is(err, diagnostic) {
		t.Fatalf("expected wrapped rendering failure, got %v", err)
	}
	var re *templates.RenderError
	if !errors.As(err, &re) || re.Template != "bad" || re.Locale != "en" {
		t.Fatalf("unexpected render error %#v", re)
	}

	got, err := repo.RenderGroup(sampleContext(), "g", "en")
	if got != nil || !errors.Is(err, templates.ErrRenderingFailed) {
		t.Fatalf("expected group render to fail fast, got %v / %v", got, err)
	}
}

func TestRepository_ContextPerCall(t *testing.T) {
	repo := newRepository(t)

	first, err := repo.RenderTemplate(templates.Context{"name": "ada"}, "template_a", "en")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := repo.RenderTemplate(templates.Context{"name": "grace"}, "template_a", "en")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if first != "template_a en ada" || second != "template_a en grace" {
		t.Fatalf("expected each call to use its own context, got %q and %q", first, second)
	}
}

func TestRepository_Idempotent(t *testing.T) {
	repo := newRepository(t)

	a1, err1 := repo.RenderTemplate(sampleContext(), "template_a", "de", "en")
	a2, err2 := repo.RenderTemplate(sampleContext(), "template_a", "de", "en")
	if err1 != nil || err2 != nil || a1 != a2 {
		t.Fatalf("expected identical template renders, got %q/%v and %q/%v", a1, err1, a2, err2)
	}

	g1, err1 := repo.RenderGroup(sampleContext(), "group_a", "cs", "en")
	g2, err2 := repo.RenderGroup(sampleContext(), "group_a", "cs", "en")
	if err1 != nil || err2 != nil {
		t.Fatalf("render group: %v / %v", err1, err2)
	}
	if diff := cmp.Diff(g1, g2); diff != "" {
		t.Fatalf("expected identical group renders (-first +second):\n%s", diff)
	}
}

func TestRepository_OutputFilters(t *testing.T) {
	repo, err := templates.NewBuilder(
		templates.WithCompiler(pongo.Must()),
		templates.WithOutputFilter(func(s string) (string, error) { return strings.ToUpper(s), nil }),
		templates.WithOutputFilter(func(s string) (string, error) { return "[" + s + "]", nil }),
	).AddTemplate("t", templates.NewTemplate().Add("hi {{ name }}", "en")).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := repo.RenderTemplate(sampleContext(), "t", "en")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[HI JOHN]" {
		t.Fatalf("expected filters in order, got %q", got)
	}
}

func TestRepository_OutputFilterFailure(t *testing.T) {
	filterErr := errors.New("rejected")
	repo, err := templates.NewBuilder(
		templates.WithCompiler(pongo.Must()),
		templates.WithOutputFilter(func(string) (string, error) { return "", filterErr }),
	).AddTemplate("t", templates.NewTemplate().Add("hi", "en")).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = repo.RenderTemplate(nil, "t", "en")
	if !errors.Is(err, templates.ErrRenderingFailed) || !errors.Is(err, filterErr) {
		t.Fatalf("expected filter failure to surface as rendering failure, got %v", err)
	}
}

func TestRepository_Introspection(t *testing.T) {
	repo := newRepository(t)

	if diff := cmp.Diff([]string{"template_a", "template_b"}, repo.Templates()); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"group_a"}, repo.Groups()); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cs", "en"}, repo.Locales("template_a")); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
	if repo.Locales("missing") != nil {
		t.Fatal("expected nil locales for unknown template")
	}
	if !repo.HasTemplate("template_b") || repo.HasTemplate("group_a") {
		t.Fatal("unexpected HasTemplate result")
	}
	if !repo.HasGroup("group_a") || repo.HasGroup("template_a") {
		t.Fatal("unexpected HasGroup result")
	}

	group, ok := repo.Group("group_a")
	if !ok {
		t.Fatal("expected group_a")
	}
	group["C"] = "template_a"
	again, _ := repo.Group("group_a")
	if len(again) != 2 {
		t.Fatal("expected Group to return a copy")
	}
}

func TestRepository_BuilderMutationAfterBuildDoesNotLeak(t *testing.T) {
	group := templates.Group{"A": "t"}
	b := templates.NewBuilder(templates.WithCompiler(pongo.Must())).
		AddTemplate("t", templates.NewTemplate().Add("t", "en")).
		AddGroup("g", group)

	repo, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	group["B"] = "t"
	b.AddGroup("other", templates.Group{"x": "t"})

	got, err := repo.RenderGroup(nil, "g", "en")
	if err != nil {
		t.Fatalf("render group: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected repository groups to be isolated, got %v", got)
	}
	if repo.HasGroup("other") {
		t.Fatal("expected consumed builder mutations to be ignored")
	}
}

func TestRepository_SharedEngineKeepsHandlesPerBuild(t *testing.T) {
	engine := pongo.Must()

	first, err := templates.NewBuilder(templates.WithCompiler(engine)).
		AddTemplate("a", templates.NewTemplate().Add("first {{ name }}", "en")).
		Build()
	if err != nil {
		t.Fatalf("build first: %v", err)
	}

	second, err := templates.NewBuilder(templates.WithCompiler(engine)).
		AddTemplate("z", templates.NewTemplate().Add("SECOND", "en")).
		Build()
	if err != nil {
		t.Fatalf("build second: %v", err)
	}

	got, err := first.RenderTemplate(templates.Context{"name": "x"}, "a", "en")
	if err != nil {
		t.Fatalf("render first: %v", err)
	}
	if got != "first x" {
		t.Fatalf("expected first repository to keep its template, got %q", got)
	}

	got, err = second.RenderTemplate(nil, "z", "en")
	if err != nil {
		t.Fatalf("render second: %v", err)
	}
	if got != "SECOND" {
		t.Fatalf("unexpected second output %q", got)
	}

	if names := engine.Names(); len(names) != 0 {
		t.Fatalf("expected builds to leave the shared engine untouched, got %v", names)
	}
}

func TestRepository_TemplateWithoutVariantsIsUnknown(t *testing.T) {
	repo, err := templates.NewBuilder(templates.WithCompiler(pongo.Must())).
		AddTemplate("empty", templates.NewTemplate()).
		AddTemplate("full", templates.NewTemplate().Add("full", "en")).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = repo.RenderTemplate(nil, "empty", "en")
	if !errors.Is(err, templates.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if errors.Is(err, templates.ErrLanguageNotFound) {
		t.Fatalf("did not expect ErrLanguageNotFound, got %v", err)
	}
	if repo.HasTemplate("empty") {
		t.Fatal("expected empty template to be absent")
	}
	if diff := cmp.Diff([]string{"full"}, repo.Templates()); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_MissingContextKeyRendersEmpty(t *testing.T) {
	repo, err := templates.NewBuilder(templates.WithCompiler(pongo.Must())).
		AddTemplate("greeting", templates.NewTemplate().Add("hi {{ name }}", "en")).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := repo.RenderTemplate(templates.Context{}, "greeting", "en")
	if err != nil {
		t.Fatalf("expected missing key to render, got %v", err)
	}
	if got != "hi " {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRepository_ConcurrentReaders(t *testing.T) {
	repo := newRepository(t)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			got, err := repo.RenderGroup(templates.Context{"name": name, "surname": "x"}, "group_a", "cs", "en")
			if err != nil {
				errs <- err
				return
			}
			if got["A"] != "template_a cs "+name {
				errs <- fmt.Errorf("unexpected output %q", got["A"])
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}

func newRepository(t *testing.T) *templates.Repository {
	t.Helper()

	engine, err := pongo.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	b := templates.NewBuilder(templates.WithCompiler(engine))
	b.AddTemplate("template_a", templates.NewTemplate().
		AddContent(templates.MustContent("template_a cs {{name}}", "cs")).
		AddContent(templates.MustContent("template_a en {{name}}", "en")))
	b.AddTemplate("template_b", templates.NewTemplate().
		AddContent(templates.MustContent("template_b en {{surname}}", "en")))
	b.AddGroup("group_a", templates.NewGroupBuilder().
		AddMember("A", "template_a").
		AddMember("B", "template_b").
		Build())

	repo, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return repo
}

func sampleContext() templates.Context {
	return templates.Context{"name": "john", "surname": "doe"}
}
