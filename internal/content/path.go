package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPath 表示路径语法不合法
	ErrInvalidPath = errors.New("invalid content path")
	// ErrIndexOutOfRange 表示列表下标越界
	ErrIndexOutOfRange = errors.New("list index out of range")
	// ErrNotAList 表示路径指向的值不是列表
	ErrNotAList = errors.New("value is not a list")
	// ErrTypeMismatch 表示路径中间节点不是对象
	ErrTypeMismatch = errors.New("value is not an object")
)

// Segment is one step of a Path: either an object key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a value inside a document, e.g. categories.wellness.services[2].benefits[1].
type Path []Segment

// ParsePath parses the dotted/indexed notation used by the admin editors.
func ParsePath(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var path Path
	for _, part := range strings.Split(trimmed, ".") {
		if part == "" {
			return nil, fmt.Errorf("%w: empty key in %q", ErrInvalidPath, raw)
		}

		key, rest := part, ""
		if open := strings.IndexByte(part, '['); open >= 0 {
			key, rest = part[:open], part[open:]
		}
		if key == "" || strings.ContainsRune(key, ']') {
			return nil, fmt.Errorf("%w: bad key in %q", ErrInvalidPath, raw)
		}
		path = append(path, Segment{Key: key})

		for rest != "" {
			if rest[0] != '[' {
				return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidPath, rest, raw)
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated index in %q", ErrInvalidPath, raw)
			}
			digits := rest[1:end]
			if digits == "" || strings.Trim(digits, "0123456789") != "" {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, digits, raw)
			}
			index, err := strconv.Atoi(digits)
			if err != nil {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, digits, raw)
			}
			path = append(path, Segment{Index: index, IsIndex: true})
			rest = rest[end+1:]
		}
	}

	return path, nil
}

// MustParsePath is ParsePath for literals known to be valid.
func MustParsePath(raw string) Path {
	path, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return path
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteString("]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}
