package handler

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kalagasite/internal/content"
)

func TestFieldHelpersTolerateMissingValues(t *testing.T) {
	doc := map[string]any{
		"hero":  map[string]any{"title": "Title", "count": float64(3)},
		"items": []any{"a", "b"},
	}

	if got := fieldText(doc, "hero.title"); got != "Title" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := fieldText(doc, "hero.count"); got != "3" {
		t.Fatalf("unexpected number formatting %q", got)
	}
	if got := fieldText(doc, "hero.missing.deeper"); got != "" {
		t.Fatalf("expected empty text for missing path, got %q", got)
	}
	if got := fieldText(doc, "hero"); got != "" {
		t.Fatalf("expected objects to render empty, got %q", got)
	}
	if got := fieldItems(doc, "items"); len(got) != 2 {
		t.Fatalf("unexpected items %v", got)
	}
	if got := fieldItems(nil, "items"); got != nil {
		t.Fatalf("expected nil items for nil node, got %v", got)
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(renderMarkdown("**bold** <script>alert(1)</script>"))
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected markdown to render, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be stripped, got %q", out)
	}
	if renderMarkdown(nil) != "" {
		t.Fatal("expected empty output for nil")
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := formatTimestamp("not a time"); got != "not a time" {
		t.Fatalf("expected raw value back, got %q", got)
	}
	if got := formatTimestamp("2024-05-01T10:00:00.000Z"); got == "" || got == "2024-05-01T10:00:00.000Z" {
		t.Fatalf("expected a formatted time, got %q", got)
	}
}

func TestBuildControlsUsesAbsolutePaths(t *testing.T) {
	services, _ := content.LookupSection(content.SectionServices)
	controls := buildControls(services.Fields, services.Default(), "")

	var categories formControl
	for _, c := range controls {
		if c.Path == "categories" {
			categories = c
		}
	}
	if len(categories.Groups) != 4 || categories.Groups[0].Key != "wellness" {
		t.Fatalf("unexpected groups %+v", categories.Groups)
	}

	wellness := categories.Groups[0]
	if wellness.Controls[0].Path != "categories.wellness.title" {
		t.Fatalf("unexpected group control path %s", wellness.Controls[0].Path)
	}
	list := wellness.Controls[1]
	if list.Kind != string(content.KindObjectList) || len(list.Items) == 0 {
		t.Fatalf("expected wellness services list, got %+v", list)
	}
	benefits := list.Items[0].Controls[2]
	if benefits.Path != "categories.wellness.services[0].benefits" {
		t.Fatalf("unexpected nested path %s", benefits.Path)
	}
	if len(benefits.Items) > 0 && benefits.Items[0].Path != "categories.wellness.services[0].benefits[0]" {
		t.Fatalf("unexpected benefit item path %s", benefits.Items[0].Path)
	}
}

func TestBlankItemShape(t *testing.T) {
	fields := []content.Field{
		{Label: "Title", Path: "title", Kind: content.KindText},
		{Label: "Benefits", Path: "benefits", Kind: content.KindTextList},
		{Label: "Dosage", Path: "dosage.description", Kind: content.KindTextarea},
	}
	want := content.Tree{
		"title":    "",
		"benefits": []any{},
		"dosage":   map[string]any{"description": ""},
	}
	if diff := cmp.Diff(want, blankItem(fields)); diff != "" {
		t.Fatalf("unexpected blank item (-want +got):\n%s", diff)
	}
}
