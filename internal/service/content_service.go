package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/store"
	"go.uber.org/zap"
)

// ErrUnknownSection 表示请求了未注册的栏目
var ErrUnknownSection = errors.New("unknown content section")

// ContentService is the read path of the public pages.
type ContentService struct {
	store store.Store
	log   *zap.Logger
	retry store.RetryPolicy
}

// NewContentService returns a ContentService reading from st.
func NewContentService(st store.Store, log *zap.Logger) *ContentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentService{store: st, log: log, retry: store.NoRetry}
}

// WithRetry sets the policy used when the store is unreachable.
func (s *ContentService) WithRetry(p store.RetryPolicy) *ContentService {
	s.retry = p
	return s
}

// Fetch returns the section document merged over its default. A missing
// document yields the default; a stored document missing a list renders it empty. On a store failure the default is still
// returned together with the error so pages can render.
func (s *ContentService) Fetch(ctx context.Context, name string) (content.Tree, error) {
	section, ok := content.LookupSection(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, name)
	}

	var stored content.Tree
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var getErr error
		stored, getErr = s.store.Get(ctx, section.Collection, section.Key)
		return getErr
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return section.Default(), nil
		}
		s.log.Warn("fetch section failed, rendering default", zap.String("section", section.ID()), zap.Error(err))
		return section.Default(), fmt.Errorf("fetch %s: %w", section.ID(), err)
	}
	return content.WithDisplayDefaults(stored, section.Default()), nil
}

// Seed writes every section default. Existing documents are kept unless force is set.
func (s *ContentService) Seed(ctx context.Context, force bool) ([]string, error) {
	written := make([]string, 0)
	for _, section := range content.Sections() {
		if !force {
			_, err := s.store.Get(ctx, section.Collection, section.Key)
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return written, fmt.Errorf("check %s: %w", section.ID(), err)
			}
		}
		if err := s.store.Set(ctx, section.Collection, section.Key, section.Default()); err != nil {
			return written, fmt.Errorf("seed %s: %w", section.ID(), err)
		}
		written = append(written, section.ID())
	}
	return written, nil
}
