package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/store"
	"go.uber.org/zap"
)

// ErrSaveInProgress 表示同一编辑器已有保存请求在执行
var ErrSaveInProgress = errors.New("save already in progress")

// Options tune an Editor. Zero values select the defaults.
type Options struct {
	Retry     store.RetryPolicy
	NoticeTTL time.Duration
	Logger    *zap.Logger
	// OnSave is called after every save attempt with its outcome.
	OnSave func(section string, err error)
	Now    func() time.Time
}

// Editor holds the in-memory working copy of one section document.
// The working copy starts as the section default and is replaced wholesale
// on every mutation, so readers always see a consistent tree.
type Editor struct {
	section *content.Section
	store   store.Store
	retry   store.RetryPolicy
	ttl     time.Duration
	log     *zap.Logger
	onSave  func(string, error)
	now     func() time.Time

	saving atomic.Bool

	mu       sync.RWMutex
	doc      content.Tree
	loaded   bool
	notice   *Notice
	lastSync time.Time
}

// View is a point-in-time copy of the editor state for rendering.
type View struct {
	Section  string          `json:"section"`
	Title    string          `json:"title"`
	Fields   []content.Field `json:"fields"`
	Document content.Tree    `json:"document"`
	Loaded   bool            `json:"loaded"`
	Saving   bool            `json:"saving"`
	SyncedAt *time.Time      `json:"syncedAt,omitempty"`
	Notice   *Notice         `json:"notice,omitempty"`
}

// New returns an editor holding the section default.
func New(section *content.Section, st store.Store, opts Options) *Editor {
	if opts.Retry.Attempts == 0 {
		opts.Retry = store.DefaultRetry
	}
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = NoticeTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Editor{
		section: section,
		store:   st,
		retry:   opts.Retry,
		ttl:     opts.NoticeTTL,
		log:     opts.Logger.With(zap.String("section", section.ID())),
		onSave:  opts.OnSave,
		now:     opts.Now,
		doc:     section.Default(),
	}
}

// Section returns the section being edited.
func (e *Editor) Section() *content.Section {
	return e.section
}

// Load fetches the stored document and merges it over the default.
// A missing document keeps the default and, for seeded sections, writes it back.
// Any other failure keeps the current working copy and raises an error notice;
// the returned error is informational and the editor stays usable.
func (e *Editor) Load(ctx context.Context) error {
	var stored content.Tree
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		doc, err := e.store.Get(ctx, e.section.Collection, e.section.Key)
		if err != nil {
			return err
		}
		stored = doc
		return nil
	})

	switch {
	case err == nil:
		e.mu.Lock()
		e.doc = content.WithDefaults(stored, e.section.Default())
		e.loaded = true
		e.lastSync = e.now()
		e.mu.Unlock()
		return nil

	case errors.Is(err, store.ErrNotFound):
		e.mu.Lock()
		e.doc = e.section.Default()
		e.loaded = true
		e.mu.Unlock()

		if e.section.SeedOnMissing {
			if seedErr := e.store.Set(ctx, e.section.Collection, e.section.Key, e.section.Default()); seedErr != nil {
				e.log.Warn("seed default document failed", zap.Error(seedErr))
			} else {
				e.log.Info("seeded default document")
			}
		}
		return nil
	}

	e.log.Warn("load document failed", zap.Error(err))
	e.setNotice(NoticeError, loadFailedMessage(e.section.Title, err))
	e.mu.Lock()
	e.loaded = true
	e.mu.Unlock()
	return fmt.Errorf("load %s: %w", e.section.ID(), err)
}

// Document returns the working copy. Callers must treat it as read-only.
func (e *Editor) Document() content.Tree {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

// SetField replaces the value at path.
func (e *Editor) SetField(path string, value any) error {
	return e.mutate(path, func(doc content.Tree, p content.Path) (content.Tree, error) {
		return content.Set(doc, p, value)
	})
}

// AddListItem appends item to the list at path.
func (e *Editor) AddListItem(path string, item any) error {
	return e.mutate(path, func(doc content.Tree, p content.Path) (content.Tree, error) {
		return content.Append(doc, p, item)
	})
}

// RemoveListItem removes the element at index from the list at path.
func (e *Editor) RemoveListItem(path string, index int) error {
	return e.mutate(path, func(doc content.Tree, p content.Path) (content.Tree, error) {
		return content.Remove(doc, p, index)
	})
}

func (e *Editor) mutate(raw string, fn func(content.Tree, content.Path) (content.Tree, error)) error {
	path, err := content.ParsePath(raw)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := fn(e.doc, path)
	if err != nil {
		return err
	}
	e.doc = next
	return nil
}

// Save writes the whole working copy with an upsert. Only one save runs at a
// time per editor; a concurrent call fails with ErrSaveInProgress. A failed
// save leaves the working copy untouched.
func (e *Editor) Save(ctx context.Context) error {
	if !e.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer e.saving.Store(false)

	snapshot := e.Document()
	err := e.store.Set(ctx, e.section.Collection, e.section.Key, snapshot)
	if e.onSave != nil {
		e.onSave(e.section.Name, err)
	}
	if err != nil {
		e.log.Error("save document failed", zap.Error(err))
		e.setNotice(NoticeError, saveFailedMessage(e.section.Title, err))
		return fmt.Errorf("save %s: %w", e.section.ID(), err)
	}

	e.mu.Lock()
	e.lastSync = e.now()
	e.mu.Unlock()
	e.setNotice(NoticeSuccess, savedMessage(e.section.Title))
	return nil
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	return e.saving.Load()
}

// Notice returns the active notice, or nil once it has expired.
func (e *Editor) Notice() *Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.notice.expired(e.now()) {
		e.notice = nil
		return nil
	}
	n := *e.notice
	return &n
}

// View returns a snapshot for templates and JSON responses.
func (e *Editor) View() View {
	notice := e.Notice()
	e.mu.RLock()
	defer e.mu.RUnlock()
	var synced *time.Time
	if !e.lastSync.IsZero() {
		t := e.lastSync
		synced = &t
	}
	return View{
		Section:  e.section.Name,
		Title:    e.section.Title,
		Fields:   e.section.Fields,
		Document: e.doc,
		Loaded:   e.loaded,
		Saving:   e.saving.Load(),
		SyncedAt: synced,
		Notice:   notice,
	}
}

func (e *Editor) setNotice(kind NoticeKind, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = &Notice{Kind: kind, Message: message, ExpiresAt: e.now().Add(e.ttl)}
}
