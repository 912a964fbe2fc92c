package screen

import (
	"context"
	"log/slog"
	"sync"

	"catalogadmin/catalog-panel/internal/model"
	"catalogadmin/catalog-panel/internal/observability"
	"catalogadmin/catalog-panel/internal/session"
)

type ProductAPI interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, in model.ProductInput) (model.Product, error)
	Update(ctx context.Context, id int64, in model.ProductInput) (model.Product, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

// CurrentUser supplies the acting user's id for product writes.
type CurrentUser interface {
	Current() (session.Session, bool)
}

type ProductDraft struct {
	Name             string
	Price            float64
	RegistrationDate string
	CategoryIDs      []int64
}

type ProductScreen struct {
	api        ProductAPI
	categories CategoryLister
	user       CurrentUser
	log        *slog.Logger

	mu        sync.RWMutex
	items     []model.Product
	available []model.Category
	loading   bool
	message   string
}

func NewProductScreen(api ProductAPI, categories CategoryLister, user CurrentUser, log *slog.Logger) *ProductScreen {
	return &ProductScreen{
		api:        api,
		categories: categories,
		user:       user,
		log:        observability.OrDefault(log),
		loading:    true,
	}
}

// Load fetches products and the selectable categories. A category failure
// does not fail the product load.
func (s *ProductScreen) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	products, err := s.api.List(ctx)
	if err != nil {
		s.log.Error("fetch products", "error", err)
	} else {
		s.mu.Lock()
		s.items = products
		s.mu.Unlock()
	}

	cats, catErr := s.categories.List(ctx)
	if catErr != nil {
		s.log.Error("fetch categories", "error", catErr)
	} else {
		s.mu.Lock()
		s.available = cats
		s.mu.Unlock()
	}
	return err
}

func (s *ProductScreen) Create(ctx context.Context, d ProductDraft) (model.Product, error) {
	s.setMessage("")

	s.mu.RLock()
	haveCategories := len(s.available) > 0
	s.mu.RUnlock()
	if !haveCategories {
		return model.Product{}, s.reject(MsgNoCategories)
	}
	if len(d.CategoryIDs) == 0 {
		return model.Product{}, s.reject(MsgSelectCategory)
	}

	user, ok := s.user.Current()
	if !ok {
		return model.Product{}, ErrNoSession
	}

	created, err := s.api.Create(ctx, model.ProductInput{
		Name:             d.Name,
		Price:            d.Price,
		RegistrationDate: d.RegistrationDate,
		CategoryIDs:      d.CategoryIDs,
		UserID:           user.UserID,
	})
	if err != nil {
		s.log.Error("add product", "error", err)
		return model.Product{}, err
	}
	s.mu.Lock()
	s.items = append(s.items, created)
	s.mu.Unlock()
	return created, nil
}

// Update sends p with its categories flattened to ids and replaces the
// local entry with the server's record.
func (s *ProductScreen) Update(ctx context.Context, p model.Product) (model.Product, error) {
	user, ok := s.user.Current()
	if !ok {
		return model.Product{}, ErrNoSession
	}

	updated, err := s.api.Update(ctx, p.ID, model.ProductInput{
		Name:             p.Name,
		Price:            p.Price,
		RegistrationDate: p.RegistrationDate,
		CategoryIDs:      p.CategoryIDs(),
		UserID:           user.UserID,
	})
	if err != nil {
		s.log.Error("update product", "id", p.ID, "error", err)
		return model.Product{}, err
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i] = updated
		}
	}
	s.mu.Unlock()
	return updated, nil
}

func (s *ProductScreen) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.log.Error("delete product", "id", id, "error", err)
		return err
	}
	s.mu.Lock()
	s.items = removeByID(s.items, id, func(p model.Product) int64 { return p.ID })
	s.mu.Unlock()
	return nil
}

// SelectCategories resolves ids against the loaded categories, dropping
// unknown ones. It is how an edit form turns a selection back into the
// embedded representation.
func (s *ProductScreen) SelectCategories(ids []int64) []model.Category {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, 0, len(ids))
	for _, c := range s.available {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *ProductScreen) Items() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.items...)
}

func (s *ProductScreen) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.available...)
}

func (s *ProductScreen) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Message is the inline validation text, empty when there is none.
func (s *ProductScreen) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

func (s *ProductScreen) reject(msg string) error {
	s.setMessage(msg)
	return &ValidationError{Message: msg}
}

func (s *ProductScreen) setMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

func (s *ProductScreen) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
