package editor

import (
	"context"
	"sync"
	"time"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/store"
)

type workspaceKey struct {
	token   string
	section string
}

type workspaceEntry struct {
	editor   *Editor
	once     sync.Once
	lastUsed time.Time
}

// Workspaces 按 (会话, 栏目) 保存编辑器实例，等价于前端每个已挂载的编辑器组件
type Workspaces struct {
	store store.Store
	opts  Options
	now   func() time.Time

	mu      sync.Mutex
	entries map[workspaceKey]*workspaceEntry
}

// NewWorkspaces returns an empty registry whose editors share opts.
func NewWorkspaces(st store.Store, opts Options) *Workspaces {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Workspaces{
		store:   st,
		opts:    opts,
		now:     now,
		entries: make(map[workspaceKey]*workspaceEntry),
	}
}

// Open returns the editor of section for the session, creating and loading
// it on first use. The load runs once per editor; its failure only raises a
// notice on the editor.
func (w *Workspaces) Open(ctx context.Context, token string, section *content.Section) *Editor {
	key := workspaceKey{token: token, section: section.Name}

	w.mu.Lock()
	entry, ok := w.entries[key]
	if !ok {
		entry = &workspaceEntry{editor: New(section, w.store, w.opts)}
		w.entries[key] = entry
	}
	entry.lastUsed = w.now()
	w.mu.Unlock()

	entry.once.Do(func() {
		_ = entry.editor.Load(ctx)
	})
	return entry.editor
}

// Reload discards unsaved edits of the session's section editor and loads it
// again. It fails with ErrSaveInProgress while the current editor is saving.
func (w *Workspaces) Reload(ctx context.Context, token string, section *content.Section) (*Editor, error) {
	key := workspaceKey{token: token, section: section.Name}
	fresh := &workspaceEntry{editor: New(section, w.store, w.opts), lastUsed: w.now()}

	w.mu.Lock()
	if current, ok := w.entries[key]; ok && current.editor.Saving() {
		w.mu.Unlock()
		return current.editor, ErrSaveInProgress
	}
	w.entries[key] = fresh
	w.mu.Unlock()

	fresh.once.Do(func() {
		_ = fresh.editor.Load(ctx)
	})
	return fresh.editor, nil
}

// Drop removes every editor of the session and returns how many were removed.
func (w *Workspaces) Drop(token string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	removed := 0
	for key := range w.entries {
		if key.token == token {
			delete(w.entries, key)
			removed++
		}
	}
	return removed
}

// Evict removes editors unused for longer than idle.
func (w *Workspaces) Evict(idle time.Duration) int {
	cutoff := w.now().Add(-idle)
	w.mu.Lock()
	defer w.mu.Unlock()
	removed := 0
	for key, entry := range w.entries {
		if entry.lastUsed.Before(cutoff) && !entry.editor.Saving() {
			delete(w.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live editors.
func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
