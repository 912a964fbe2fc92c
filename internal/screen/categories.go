package screen

import (
	"context"
	"log/slog"
	"sync"

	"catalogadmin/catalog-panel/internal/model"
	"catalogadmin/catalog-panel/internal/observability"
)

type CategoryAPI interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, in model.CategoryInput) (model.Category, error)
	Update(ctx context.Context, id int64, in model.CategoryInput) (model.Category, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryScreen mirrors the server's category list. The local copy only
// changes after the server has confirmed a write.
type CategoryScreen struct {
	api CategoryAPI
	log *slog.Logger

	mu      sync.RWMutex
	items   []model.Category
	loading bool
}

func NewCategoryScreen(api CategoryAPI, log *slog.Logger) *CategoryScreen {
	return &CategoryScreen{api: api, log: observability.OrDefault(log), loading: true}
}

func (s *CategoryScreen) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	items, err := s.api.List(ctx)
	if err != nil {
		s.log.Error("fetch categories", "error", err)
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *CategoryScreen) Create(ctx context.Context, name string) (model.Category, error) {
	created, err := s.api.Create(ctx, model.CategoryInput{Name: name})
	if err != nil {
		s.log.Error("add category", "error", err)
		return model.Category{}, err
	}
	s.mu.Lock()
	s.items = append(s.items, created)
	s.mu.Unlock()
	return created, nil
}

// Update sends the edited record and swaps in the server's version.
func (s *CategoryScreen) Update(ctx context.Context, c model.Category) (model.Category, error) {
	updated, err := s.api.Update(ctx, c.ID, model.CategoryInput{Name: c.Name})
	if err != nil {
		s.log.Error("update category", "id", c.ID, "error", err)
		return model.Category{}, err
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == c.ID {
			s.items[i] = updated
		}
	}
	s.mu.Unlock()
	return updated, nil
}

func (s *CategoryScreen) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.log.Error("delete category", "id", id, "error", err)
		return err
	}
	s.mu.Lock()
	s.items = removeByID(s.items, id, func(c model.Category) int64 { return c.ID })
	s.mu.Unlock()
	return nil
}

func (s *CategoryScreen) Items() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.items...)
}

func (s *CategoryScreen) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *CategoryScreen) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func removeByID[T any](items []T, id int64, idOf func(T) int64) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if idOf(it) != id {
			out = append(out, it)
		}
	}
	return out
}
