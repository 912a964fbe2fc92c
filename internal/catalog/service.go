package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"catalogadmin/catalog-panel/internal/model"
)

// productRecord is how a product is kept at rest: categories by id only.
type productRecord struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	RegistrationDate string    `json:"registration_date"`
	UserID           int64     `json:"user_id"`
	CategoryIDs      []int64   `json:"category_ids"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type state struct {
	NextCategoryID int64            `json:"next_category_id"`
	NextProductID  int64            `json:"next_product_id"`
	Categories     []model.Category `json:"categories"`
	Products       []productRecord  `json:"products"`
}

// Service keeps the catalog in memory, optionally mirrored to a JSON file.
type Service struct {
	nowFunc   func() time.Time
	stateFile string

	mu             sync.RWMutex
	categories     map[int64]model.Category
	products       map[int64]productRecord
	nextCategoryID int64
	nextProductID  int64
}

func NewService() *Service {
	return &Service{
		nowFunc:        time.Now,
		categories:     make(map[int64]model.Category),
		products:       make(map[int64]productRecord),
		nextCategoryID: 1,
		nextProductID:  1,
	}
}

func NewServiceWithFile(stateFile string) (*Service, error) {
	s := NewService()
	s.stateFile = strings.TrimSpace(stateFile)
	if s.stateFile == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	if err := s.loadState(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) ListCategories() ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedCategoriesLocked(), nil
}

func (s *Service) CreateCategory(in model.CategoryInput) (model.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc().UTC()
	c := model.Category{ID: s.nextCategoryID, Name: in.Name, CreatedAt: now, UpdatedAt: now}

	undo := s.snapshotLocked()
	s.categories[c.ID] = c
	s.nextCategoryID++
	if err := s.persistLocked(); err != nil {
		undo()
		return model.Category{}, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(id int64, in model.CategoryInput) (model.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[id]
	if !ok {
		return model.Category{}, ErrNotFound
	}
	existing.Name = in.Name
	existing.UpdatedAt = s.nowFunc().UTC()

	undo := s.snapshotLocked()
	s.categories[id] = existing
	if err := s.persistLocked(); err != nil {
		undo()
		return model.Category{}, err
	}
	return existing, nil
}

// DeleteCategory also detaches the category from every product.
func (s *Service) DeleteCategory(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}

	undo := s.snapshotLocked()
	delete(s.categories, id)
	for pid, p := range s.products {
		kept := make([]int64, 0, len(p.CategoryIDs))
		for _, cid := range p.CategoryIDs {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		p.CategoryIDs = kept
		s.products[pid] = p
	}
	if err := s.persistLocked(); err != nil {
		undo()
		return err
	}
	return nil
}

func (s *Service) ListProducts() ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, s.materializeLocked(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Service) CreateProduct(in model.ProductInput) (model.Product, error) {
	in, err := normalizeProduct(in)
	if err != nil {
		return model.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCategoriesLocked(in.CategoryIDs); err != nil {
		return model.Product{}, err
	}

	now := s.nowFunc().UTC()
	p := productRecord{
		ID:               s.nextProductID,
		Name:             in.Name,
		Price:            in.Price,
		RegistrationDate: in.RegistrationDate,
		UserID:           in.UserID,
		CategoryIDs:      in.CategoryIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	undo := s.snapshotLocked()
	s.products[p.ID] = p
	s.nextProductID++
	if err := s.persistLocked(); err != nil {
		undo()
		return model.Product{}, err
	}
	return s.materializeLocked(p), nil
}

func (s *Service) UpdateProduct(id int64, in model.ProductInput) (model.Product, error) {
	in, err := normalizeProduct(in)
	if err != nil {
		return model.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	if err := s.checkCategoriesLocked(in.CategoryIDs); err != nil {
		return model.Product{}, err
	}

	existing.Name = in.Name
	existing.Price = in.Price
	existing.RegistrationDate = in.RegistrationDate
	existing.UserID = in.UserID
	existing.CategoryIDs = in.CategoryIDs
	existing.UpdatedAt = s.nowFunc().UTC()

	undo := s.snapshotLocked()
	s.products[id] = existing
	if err := s.persistLocked(); err != nil {
		undo()
		return model.Product{}, err
	}
	return s.materializeLocked(existing), nil
}

func (s *Service) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}

	undo := s.snapshotLocked()
	delete(s.products, id)
	if err := s.persistLocked(); err != nil {
		undo()
		return err
	}
	return nil
}

func (s *Service) checkCategoriesLocked(ids []int64) error {
	for _, id := range ids {
		if _, ok := s.categories[id]; !ok {
			return unknownCategory(id)
		}
	}
	return nil
}

func (s *Service) materializeLocked(p productRecord) model.Product {
	out := model.Product{
		ID:               p.ID,
		Name:             p.Name,
		Price:            p.Price,
		RegistrationDate: p.RegistrationDate,
		UserID:           p.UserID,
		Categories:       make([]model.Category, 0, len(p.CategoryIDs)),
	}
	for _, id := range p.CategoryIDs {
		if c, ok := s.categories[id]; ok {
			out.Categories = append(out.Categories, c)
		}
	}
	return out
}

func (s *Service) sortedCategoriesLocked() []model.Category {
	out := make([]model.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// snapshotLocked returns a func restoring the current state.
func (s *Service) snapshotLocked() func() {
	cats := make(map[int64]model.Category, len(s.categories))
	for k, v := range s.categories {
		cats[k] = v
	}
	prods := make(map[int64]productRecord, len(s.products))
	for k, v := range s.products {
		v.CategoryIDs = append([]int64(nil), v.CategoryIDs...)
		prods[k] = v
	}
	nextC, nextP := s.nextCategoryID, s.nextProductID
	return func() {
		s.categories = cats
		s.products = prods
		s.nextCategoryID = nextC
		s.nextProductID = nextP
	}
}

func (s *Service) loadState() error {
	b, err := os.ReadFile(s.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read catalog state: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	var decoded state
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("decode catalog state: %w", err)
	}
	for _, c := range decoded.Categories {
		s.categories[c.ID] = c
		if c.ID >= s.nextCategoryID {
			s.nextCategoryID = c.ID + 1
		}
	}
	for _, p := range decoded.Products {
		s.products[p.ID] = p
		if p.ID >= s.nextProductID {
			s.nextProductID = p.ID + 1
		}
	}
	if decoded.NextCategoryID > s.nextCategoryID {
		s.nextCategoryID = decoded.NextCategoryID
	}
	if decoded.NextProductID > s.nextProductID {
		s.nextProductID = decoded.NextProductID
	}
	return nil
}

func (s *Service) persistLocked() error {
	if s.stateFile == "" {
		return nil
	}
	out := state{
		NextCategoryID: s.nextCategoryID,
		NextProductID:  s.nextProductID,
		Categories:     s.sortedCategoriesLocked(),
		Products:       make([]productRecord, 0, len(s.products)),
	}
	for _, p := range s.products {
		out.Products = append(out.Products, p)
	}
	sort.Slice(out.Products, func(i, j int) bool { return out.Products[i].ID < out.Products[j].ID })

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.stateFile), 0o755); err != nil {
		return fmt.Errorf("mkdir catalog state dir: %w", err)
	}
	if err := os.WriteFile(s.stateFile, b, 0o644); err != nil {
		return fmt.Errorf("write catalog state: %w", err)
	}
	return nil
}
