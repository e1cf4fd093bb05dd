package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tree is a schemaless content document. Values are map[string]any, []any,
// string, float64, bool or nil once normalized.
//
// Trees are treated as immutable: every mutation below returns a new root
// and copies only the nodes on the way to the changed leaf.
type Tree = map[string]any

type leafFunc func(current any, exists bool) (any, error)

// Get returns the value addressed by path.
func Get(tree Tree, path Path) (any, bool) {
	var node any = tree
	for _, seg := range path {
		if seg.IsIndex {
			list, ok := node.([]any)
			if !ok || seg.Index >= len(list) {
				return nil, false
			}
			node = list[seg.Index]
			continue
		}
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg.Key]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Lookup is Get with a textual path; malformed paths report absence.
func Lookup(tree Tree, raw string) (any, bool) {
	path, err := ParsePath(raw)
	if err != nil {
		return nil, false
	}
	return Get(tree, path)
}

// Set replaces the value at path.
func Set(tree Tree, path Path, value any) (Tree, error) {
	normalized, err := Normalize(value)
	if err != nil {
		return nil, err
	}
	return apply(tree, path, func(any, bool) (any, error) {
		return normalized, nil
	})
}

// Append adds item to the end of the list at path, creating the list when absent.
func Append(tree Tree, path Path, item any) (Tree, error) {
	normalized, err := Normalize(item)
	if err != nil {
		return nil, err
	}
	return apply(tree, path, func(current any, exists bool) (any, error) {
		if !exists || current == nil {
			return []any{normalized}, nil
		}
		list, ok := current.([]any)
		if !ok {
			return nil, ErrNotAList
		}
		next := make([]any, len(list), len(list)+1)
		copy(next, list)
		return append(next, normalized), nil
	})
}

// Remove deletes the list element at index; later elements shift down by one.
func Remove(tree Tree, path Path, index int) (Tree, error) {
	return apply(tree, path, func(current any, exists bool) (any, error) {
		list, ok := current.([]any)
		if !exists || !ok {
			return nil, ErrNotAList
		}
		if index < 0 || index >= len(list) {
			return nil, ErrIndexOutOfRange
		}
		next := make([]any, 0, len(list)-1)
		next = append(next, list[:index]...)
		return append(next, list[index+1:]...), nil
	})
}

func apply(tree Tree, path Path, fn leafFunc) (Tree, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if path[0].IsIndex {
		return nil, fmt.Errorf("%w: path must start with a key", ErrInvalidPath)
	}

	updated, err := update(tree, true, path, fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	root, _ := updated.(map[string]any)
	return root, nil
}

func update(node any, exists bool, path Path, fn leafFunc) (any, error) {
	if len(path) == 0 {
		return fn(node, exists)
	}

	seg := path[0]
	if seg.IsIndex {
		list, ok := node.([]any)
		if !ok {
			return nil, ErrNotAList
		}
		if seg.Index >= len(list) {
			return nil, ErrIndexOutOfRange
		}
		child, err := update(list[seg.Index], true, path[1:], fn)
		if err != nil {
			return nil, err
		}
		next := make([]any, len(list))
		copy(next, list)
		next[seg.Index] = child
		return next, nil
	}

	var m map[string]any
	switch typed := node.(type) {
	case map[string]any:
		m = typed
	case nil:
	default:
		return nil, ErrTypeMismatch
	}

	current, ok := m[seg.Key]
	child, err := update(current, ok, path[1:], fn)
	if err != nil {
		return nil, err
	}
	next := make(map[string]any, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	next[seg.Key] = child
	return next, nil
}

// Normalize converts decoded YAML/JSON values into the canonical Tree value set.
// The result never aliases the input's maps or slices.
func Normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, float64:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(key)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("normalize number %q: %w", v, err)
		}
		return f, nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize %T: %w", value, err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("normalize %T: %w", value, err)
	}
	return decoded, nil
}

// NormalizeTree normalizes a value that must be an object.
func NormalizeTree(value any) (Tree, error) {
	n, err := Normalize(value)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return Tree{}, nil
	}
	tree, ok := n.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document root is %T", ErrTypeMismatch, n)
	}
	return tree, nil
}

// Clone returns a deep copy of tree.
func Clone(tree Tree) Tree {
	if tree == nil {
		return nil
	}
	cloned, err := NormalizeTree(tree)
	if err != nil {
		return Tree{}
	}
	return cloned
}
