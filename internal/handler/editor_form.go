package handler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kalagasite/internal/content"
)

// formControl 是编辑页面上的一个控件，路径均为文档根开始的绝对路径
type formControl struct {
	Label  string
	Path   string
	Kind   string
	Value  string
	Upload bool
	// Blank 是点击 Add 时追加的空元素（JSON）
	Blank  string
	Items  []formItem
	Groups []formGroup
}

type formItem struct {
	Index    int
	Path     string
	Value    string
	Controls []formControl
}

type formGroup struct {
	Key      string
	Controls []formControl
}

func buildControls(fields []content.Field, node any, prefix string) []formControl {
	controls := make([]formControl, 0, len(fields))
	for _, field := range fields {
		path := joinPath(prefix, field.Path)
		value := fieldValue(node, field.Path)
		control := formControl{Label: field.Label, Path: path, Kind: string(field.Kind)}

		switch field.Kind {
		case content.KindText, content.KindTextarea:
			control.Value = scalarText(value)
			control.Upload = field.Kind == content.KindText && strings.Contains(strings.ToLower(field.Path), "image")
		case content.KindTextList:
			list, _ := value.([]any)
			control.Blank = `""`
			for i, item := range list {
				control.Items = append(control.Items, formItem{
					Index: i,
					Path:  indexPath(path, i),
					Value: scalarText(item),
				})
			}
		case content.KindObjectList:
			list, _ := value.([]any)
			control.Blank = blankItemJSON(field.Item)
			for i, item := range list {
				itemPath := indexPath(path, i)
				control.Items = append(control.Items, formItem{
					Index:    i,
					Path:     itemPath,
					Controls: buildControls(field.Item, item, itemPath),
				})
			}
		case content.KindObjectMap:
			groups, _ := value.(map[string]any)
			for _, key := range content.OrderedKeys(groups, field.Keys) {
				control.Groups = append(control.Groups, formGroup{
					Key:      key,
					Controls: buildControls(field.Item, groups[key], joinPath(path, key)),
				})
			}
		}
		controls = append(controls, control)
	}
	return controls
}

// blankItem builds an empty element shaped after the item fields.
func blankItem(fields []content.Field) content.Tree {
	item := content.Tree{}
	for _, field := range fields {
		path, err := content.ParsePath(field.Path)
		if err != nil {
			continue
		}
		var value any = ""
		switch field.Kind {
		case content.KindTextList, content.KindObjectList:
			value = []any{}
		case content.KindObjectMap:
			value = map[string]any{}
		}
		if next, err := content.Set(item, path, value); err == nil {
			item = next
		}
	}
	return item
}

func blankItemJSON(fields []content.Field) string {
	raw, err := json.Marshal(blankItem(fields))
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func joinPath(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return prefix + "." + path
}

func indexPath(path string, index int) string {
	return fmt.Sprintf("%s[%d]", path, index)
}
