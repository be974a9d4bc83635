package modules

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
)

func render(t *testing.T, id string, props module.Props) string {
	t.Helper()

	renderer, ok := DefaultRegistry().Lookup(id)
	if !ok {
		t.Fatalf("Lookup(%q) missed", id)
	}
	var buf bytes.Buffer
	if err := renderer(props).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render %q: %v", id, err)
	}
	return buf.String()
}

func TestDefaultRegistryIDs(t *testing.T) {
	t.Parallel()

	want := []string{CTAID, ContactID, FAQID, FeaturesID, GalleryID, HeroID, PostsID, TextID}
	if diff := cmp.Diff(want, DefaultRegistry().IDs()); diff != "" {
		t.Fatalf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestEveryRendererHandlesEmptyProps(t *testing.T) {
	t.Parallel()

	for _, id := range DefaultRegistry().IDs() {
		t.Run(id, func(t *testing.T) {
			t.Parallel()

			got := render(t, id, nil)
			if !strings.HasPrefix(got, `<section class="module module-`+id+`"`) || !strings.HasSuffix(got, "</section>") {
				t.Fatalf("unexpected shell %q", got)
			}
		})
	}
}

func TestHeroEscapesAndSanitizes(t *testing.T) {
	t.Parallel()

	got := render(t, HeroID, module.Props{
		"title":    `<script>alert(1)</script>`,
		"subtitle": "Tours & more",
		"ctaLabel": "Book",
		"ctaHref":  "javascript:alert(1)",
	})
	if strings.Contains(got, "<script>") {
		t.Fatalf("title not escaped: %q", got)
	}
	if !strings.Contains(got, "Tours &amp; more") {
		t.Fatalf("subtitle not escaped: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Fatalf("unsafe href kept: %q", got)
	}
}

func TestFAQRendersItemsInOrder(t *testing.T) {
	t.Parallel()

	got := render(t, FAQID, module.Props{
		"title": "Questions",
		"items": []any{
			map[string]any{"question": "First?", "answer": "Yes"},
			map[string]any{"answer": "orphan"},
			map[string]any{"question": "Second?", "answer": "No"},
		},
	})
	first := strings.Index(got, "First?")
	second := strings.Index(got, "Second?")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("unexpected faq output %q", got)
	}
	if strings.Contains(got, "orphan") {
		t.Fatalf("item without question rendered: %q", got)
	}
}

func TestTextAcceptsParagraphList(t *testing.T) {
	t.Parallel()

	got := render(t, TextID, module.Props{"body": []any{"one", "two"}})
	if strings.Count(got, "<p>") != 2 {
		t.Fatalf("paragraphs = %d, want 2: %q", strings.Count(got, "<p>"), got)
	}
}

func TestContactLinks(t *testing.T) {
	t.Parallel()

	got := render(t, ContactID, module.Props{"email": "hi@acme.test", "phone": "+90 555"})
	if !strings.Contains(got, `href="mailto:hi@acme.test"`) {
		t.Fatalf("missing mailto link: %q", got)
	}
	if !strings.Contains(got, `href="tel:&#43;90 555"`) && !strings.Contains(got, `href="tel:+90 555"`) {
		t.Fatalf("missing tel link: %q", got)
	}
}
