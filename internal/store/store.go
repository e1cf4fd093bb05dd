package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/kalagasite/internal/content"
)

var (
	// ErrNotFound 表示文档不存在，读取路径上会回退到默认内容
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable 表示存储不可达（网络、超时、连接关闭）
	ErrUnavailable = errors.New("document store unavailable")
	// ErrPermission 表示存储拒绝访问
	ErrPermission = errors.New("document store permission denied")
)

// Direction is the sort order of QueryOrdered.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Document is one entry of a collection listing.
type Document struct {
	ID     string       `json:"id"`
	Fields content.Tree `json:"fields"`
}

// Store is the document database consumed by editors, renderers and services.
// Set is a full-overwrite upsert; Update merges top-level fields into an existing document.
type Store interface {
	Get(ctx context.Context, collection, key string) (content.Tree, error)
	Set(ctx context.Context, collection, key string, value content.Tree) error
	Update(ctx context.Context, collection, key string, value content.Tree) error
	List(ctx context.Context, collection string) ([]Document, error)
	Add(ctx context.Context, collection string, value content.Tree) (string, error)
	Delete(ctx context.Context, collection, key string) error
	QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error)
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IsUnavailable reports whether err is a connectivity failure worth retrying.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}

func validField(field string) bool {
	if field == "" {
		return false
	}
	return strings.IndexFunc(field, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}

func mergeTopLevel(existing, patch content.Tree) content.Tree {
	merged := make(content.Tree, len(existing)+len(patch))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// sortDocuments orders docs by a top-level field and drops documents missing it.
func sortDocuments(docs []Document, field string, dir Direction) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if v, ok := d.Fields[field]; ok && v != nil {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Descending {
			return lessValue(out[j].Fields[field], out[i].Fields[field])
		}
		return lessValue(out[i].Fields[field], out[j].Fields[field])
	})
	return out
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return !av && bv
		}
	}
	return false
}
