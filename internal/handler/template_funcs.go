package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/service"
	"github.com/kalagasite/internal/view"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// TemplateFuncs returns the helpers every page template relies on. The
// lookup helpers never fail, so a document missing a nested key renders as
// empty instead of aborting the page.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"field":           fieldValue,
		"text":            fieldText,
		"items":           fieldItems,
		"markdown":        renderMarkdown,
		"navIcon":         navIcon,
		"formatTime":      formatTime,
		"formatTimestamp": formatTimestamp,
		"add": func(a, b int) int {
			return a + b
		},
	}
}

func fieldValue(node any, path string) any {
	tree, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	value, _ := content.Lookup(tree, path)
	return value
}

func fieldText(node any, path string) string {
	return scalarText(fieldValue(node, path))
}

func fieldItems(node any, path string) []any {
	list, _ := fieldValue(node, path).([]any)
	return list
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		return ""
	}
	return fmt.Sprint(value)
}

func renderMarkdown(value any) template.HTML {
	source := strings.TrimSpace(scalarText(value))
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

func navIcon(key string) template.HTML {
	return template.HTML(view.NavIconSVG(key))
}

func formatTime(value any) string {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return ""
		}
		t = *v
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006 15:04:05")
}

func formatTimestamp(raw string) string {
	t, err := time.Parse(service.TimestampLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return raw
		}
	}
	return formatTime(t)
}
