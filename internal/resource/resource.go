// Package resource exposes the CRUD calls for categories and products.
// Every call reads the token at call time and makes exactly one request.
package resource

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"catalogadmin/catalog-panel/internal/model"
)

type ResourceError struct {
	Resource string
	Op       string
	ID       int64
	Err      error
}

func (e *ResourceError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Resource, e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Resource, e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

type TokenSource interface {
	ReadToken() (string, bool)
}

type Doer interface {
	Do(ctx context.Context, method, path, token string, in, out any) error
}

// crud implements the four calls shared by both resources; T is the read
// model and D the write model.
type crud[T, D any] struct {
	api    Doer
	tokens TokenSource
	name   string
	path   string
}

func (c crud[T, D]) token() string {
	token, _ := c.tokens.ReadToken()
	return token
}

func (c crud[T, D]) list(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.api.Do(ctx, http.MethodGet, c.path, c.token(), nil, &out); err != nil {
		return nil, &ResourceError{Resource: c.name, Op: "list", Err: err}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c crud[T, D]) create(ctx context.Context, draft D) (T, error) {
	var out T
	if err := c.api.Do(ctx, http.MethodPost, c.path, c.token(), draft, &out); err != nil {
		var zero T
		return zero, &ResourceError{Resource: c.name, Op: "create", Err: err}
	}
	return out, nil
}

func (c crud[T, D]) update(ctx context.Context, id int64, draft D) (T, error) {
	var out T
	if err := c.api.Do(ctx, http.MethodPut, c.itemPath(id), c.token(), draft, &out); err != nil {
		var zero T
		return zero, &ResourceError{Resource: c.name, Op: "update", ID: id, Err: err}
	}
	return out, nil
}

func (c crud[T, D]) delete(ctx context.Context, id int64) error {
	if err := c.api.Do(ctx, http.MethodDelete, c.itemPath(id), c.token(), nil, nil); err != nil {
		return &ResourceError{Resource: c.name, Op: "delete", ID: id, Err: err}
	}
	return nil
}

func (c crud[T, D]) itemPath(id int64) string {
	return c.path + "/" + strconv.FormatInt(id, 10)
}

type CategoryService struct {
	crud crud[model.Category, model.CategoryInput]
}

func NewCategoryService(api Doer, tokens TokenSource) *CategoryService {
	return &CategoryService{crud: crud[model.Category, model.CategoryInput]{
		api: api, tokens: tokens, name: "category", path: "/categories",
	}}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.crud.list(ctx)
}

func (s *CategoryService) Create(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	return s.crud.create(ctx, in)
}

func (s *CategoryService) Update(ctx context.Context, id int64, in model.CategoryInput) (model.Category, error) {
	return s.crud.update(ctx, id, in)
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}

type ProductService struct {
	crud crud[model.Product, model.ProductInput]
}

func NewProductService(api Doer, tokens TokenSource) *ProductService {
	return &ProductService{crud: crud[model.Product, model.ProductInput]{
		api: api, tokens: tokens, name: "product", path: "/products",
	}}
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.crud.list(ctx)
}

// Create returns the server's record, with categories embedded.
func (s *ProductService) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	return s.crud.create(ctx, in)
}

func (s *ProductService) Update(ctx context.Context, id int64, in model.ProductInput) (model.Product, error) {
	return s.crud.update(ctx, id, in)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.crud.delete(ctx, id)
}
