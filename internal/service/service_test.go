package service

import (
	"context"
	"strings"
	"testing"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/store"
)

// brokenStore fails every read with err.
type brokenStore struct {
	*store.MemoryStore
	err error
}

func (b *brokenStore) Get(context.Context, string, string) (content.Tree, error) {
	return nil, b.err
}

func seedDocument(t *testing.T, st store.Store, section string, doc content.Tree) {
	t.Helper()
	s, _ := content.LookupSection(section)
	if err := st.Set(context.Background(), s.Collection, s.Key, doc); err != nil {
		t.Fatalf("failed to seed %s: %v", section, err)
	}
}

func repeat(s string, n int) string {
	return strings.Repeat(s, n)
}
