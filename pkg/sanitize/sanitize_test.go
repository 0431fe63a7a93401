package sanitize_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-templateset/pkg/compiler/pongo"
	"github.com/goliatone/go-templateset/pkg/sanitize"
	"github.com/goliatone/go-templateset/pkg/templates"
)

func TestUGC_StripsScripts(t *testing.T) {
	got, err := sanitize.UGC()(`<p>Hello <b>Ada</b></p><script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if strings.Contains(got, "script") {
		t.Fatalf("expected script removed, got %q", got)
	}
	if !strings.Contains(got, "<b>Ada</b>") {
		t.Fatalf("expected formatting kept, got %q", got)
	}
}

func TestStrict_RemovesMarkup(t *testing.T) {
	got, err := sanitize.Strict()(`<p>Hello <b>Ada</b></p>`)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "Hello Ada" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "none", " NONE "} {
		filter, err := sanitize.ByName(name)
		if err != nil || filter != nil {
			t.Fatalf("%q: expected nil filter, got %v", name, err)
		}
	}
	for _, name := range []string{"ugc", "strict"} {
		filter, err := sanitize.ByName(name)
		if err != nil || filter == nil {
			t.Fatalf("%q: expected filter, got %v", name, err)
		}
	}
	if _, err := sanitize.ByName("loose"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestFilterAppliedByRepository(t *testing.T) {
	repo, err := templates.NewBuilder(
		templates.WithCompiler(pongo.Must()),
		templates.WithOutputFilter(sanitize.UGC()),
	).AddTemplate("comment", templates.NewTemplate().Add("<p>{{ body|safe }}</p>", "en")).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := repo.RenderTemplate(templates.Context{"body": `hi<img src=x onerror="alert(1)">`}, "comment", "en")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(got, "onerror") {
		t.Fatalf("expected event handler removed, got %q", got)
	}
}
