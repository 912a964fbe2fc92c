// Package model holds the wire types shared by the panel client and the
// reference backend.
package model

import "time"

// Profile is the user record returned by /login and /profile.
type Profile struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryInput struct {
	Name string `json:"name"`
}

// Product is the read model: categories come back embedded.
type Product struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Price            float64    `json:"price"`
	RegistrationDate string     `json:"registration_date"`
	UserID           int64      `json:"user_id,omitempty"`
	Categories       []Category `json:"categories"`
}

// CategoryIDs flattens the embedded categories into the id list the write
// model expects.
func (p Product) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// ProductInput is the write model: categories are sent as a flat id list.
type ProductInput struct {
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	RegistrationDate string  `json:"registration_date"`
	CategoryIDs      []int64 `json:"category_ids"`
	UserID           int64   `json:"user_id"`
}

// DateLayout is the format of Product.RegistrationDate.
const DateLayout = "2006-01-02"
