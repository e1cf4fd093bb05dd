package content

// WithDefaults fills every key that is absent (or null) in doc from def.
// Lists present in doc are kept as they are, even when empty, so an admin who
// removed every item does not get the defaults back. When doc holds a value
// of a different shape than def, the default shape wins.
func WithDefaults(doc, def Tree) Tree {
	return merge(doc, def, false)
}

// WithDisplayDefaults is WithDefaults for rendering a stored document: a list
// the document does not carry renders empty instead of showing the default
// items. Scalars and objects still come from def so the page keeps its shape.
func WithDisplayDefaults(doc, def Tree) Tree {
	return merge(doc, def, true)
}

func merge(doc, def Tree, emptyLists bool) Tree {
	if doc == nil {
		return def
	}
	if def == nil {
		return doc
	}
	merged, _ := mergeValue(doc, def, emptyLists).(map[string]any)
	return merged
}

func mergeValue(value, def any, emptyLists bool) any {
	if value == nil {
		if !emptyLists {
			return def
		}
		switch def.(type) {
		case []any:
			return []any{}
		case map[string]any:
			value = map[string]any{}
		default:
			return def
		}
	}

	switch d := def.(type) {
	case map[string]any:
		m, ok := value.(map[string]any)
		if !ok {
			return def
		}
		out := make(map[string]any, len(m)+len(d))
		for key, v := range m {
			out[key] = v
		}
		for key, dv := range d {
			out[key] = mergeValue(m[key], dv, emptyLists)
		}
		return out
	case []any:
		if list, ok := value.([]any); ok {
			return list
		}
		return def
	case nil:
		return value
	default:
		switch value.(type) {
		case map[string]any, []any:
			return def
		}
		return value
	}
}
