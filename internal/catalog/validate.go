// Package catalog stores the categories and products served by the
// reference backend.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"catalogadmin/catalog-panel/internal/model"
)

var (
	ErrNotFound     = errors.New("catalog record not found")
	ErrInvalidInput = errors.New("invalid catalog input")
)

func normalizeCategory(in model.CategoryInput) (model.CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return in, nil
}

// normalizeProduct trims fields and dedupes category ids, keeping their
// first-seen order. Existence of the ids is checked by each store.
func normalizeProduct(in model.ProductInput) (model.ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.RegistrationDate = strings.TrimSpace(in.RegistrationDate)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return in, fmt.Errorf("%w: price must be a non-negative number", ErrInvalidInput)
	}
	if _, err := time.Parse(model.DateLayout, in.RegistrationDate); err != nil {
		return in, fmt.Errorf("%w: registration_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if len(in.CategoryIDs) == 0 {
		return in, fmt.Errorf("%w: at least one category is required", ErrInvalidInput)
	}
	seen := make(map[int64]struct{}, len(in.CategoryIDs))
	ids := make([]int64, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	in.CategoryIDs = ids
	return in, nil
}

func unknownCategory(id int64) error {
	return fmt.Errorf("%w: unknown category id %d", ErrInvalidInput, id)
}
