package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"catalogadmin/catalog-panel/internal/model"
)

type PGService struct {
	db      *sql.DB
	nowFunc func() time.Time
}

func NewPGService(db *sql.DB) (*PGService, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PGService{
		db:      db,
		nowFunc: time.Now,
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

var schema = []struct {
	table string
	ddl   string
}{
	{"categories", `
CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`},
	{"products", `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	registration_date DATE NOT NULL,
	user_id BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`},
	{"product_categories", `
CREATE TABLE IF NOT EXISTS product_categories (
	product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	PRIMARY KEY (product_id, category_id)
)`},
}

func (s *PGService) ensureSchema() error {
	for _, t := range schema {
		if _, err := s.db.Exec(t.ddl); err != nil {
			return fmt.Errorf("ensure %s schema: %w", t.table, err)
		}
	}
	return nil
}

func (s *PGService) ListCategories() ([]model.Category, error) {
	const q = `
SELECT id, name, created_at, updated_at
FROM categories
ORDER BY id ASC`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGService) CreateCategory(in model.CategoryInput) (model.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return model.Category{}, err
	}
	now := s.nowFunc().UTC()
	c := model.Category{Name: in.Name, CreatedAt: now, UpdatedAt: now}

	const q = `
INSERT INTO categories (name, created_at, updated_at)
VALUES ($1, $2, $3)
RETURNING id`
	if err := s.db.QueryRow(q, c.Name, c.CreatedAt, c.UpdatedAt).Scan(&c.ID); err != nil {
		return model.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *PGService) UpdateCategory(id int64, in model.CategoryInput) (model.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return model.Category{}, err
	}
	const q = `
UPDATE categories
SET name = $2,
	updated_at = $3
WHERE id = $1
RETURNING id, name, created_at, updated_at`
	var c model.Category
	if err := s.db.QueryRow(q, id, in.Name, s.nowFunc().UTC()).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory relies on ON DELETE CASCADE to drop product links.
func (s *PGService) DeleteCategory(id int64) error {
	res, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectAffected(res, "delete category")
}

const selectProducts = `
SELECT id, name, price, registration_date, user_id
FROM products`

const selectProductCategories = `
SELECT pc.product_id, c.id, c.name, c.created_at, c.updated_at
FROM product_categories pc
JOIN categories c ON c.id = pc.category_id`

func (s *PGService) ListProducts() ([]model.Product, error) {
	rows, err := s.db.Query(selectProducts + `
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	links, err := s.db.Query(selectProductCategories + `
ORDER BY pc.product_id ASC, pc.position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list product categories: %w", err)
	}
	if err := attachCategories(links, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGService) getProduct(id int64) (model.Product, error) {
	rows, err := s.db.Query(selectProducts+`
WHERE id = $1`, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}
	found, err := scanProducts(rows)
	if err != nil {
		return model.Product{}, err
	}
	if len(found) == 0 {
		return model.Product{}, ErrNotFound
	}

	links, err := s.db.Query(selectProductCategories+`
WHERE pc.product_id = $1
ORDER BY pc.position ASC`, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product categories: %w", err)
	}
	if err := attachCategories(links, found); err != nil {
		return model.Product{}, err
	}
	return found[0], nil
}

func (s *PGService) CreateProduct(in model.ProductInput) (model.Product, error) {
	in, err := normalizeProduct(in)
	if err != nil {
		return model.Product{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.Product{}, fmt.Errorf("begin create product: %w", err)
	}
	defer tx.Rollback()

	if err := checkCategories(tx, in.CategoryIDs); err != nil {
		return model.Product{}, err
	}

	now := s.nowFunc().UTC()
	const q = `
INSERT INTO products (name, price, registration_date, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	var id int64
	if err := tx.QueryRow(q, in.Name, in.Price, in.RegistrationDate, in.UserID, now, now).Scan(&id); err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	if err := linkCategories(tx, id, in.CategoryIDs); err != nil {
		return model.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, fmt.Errorf("commit create product: %w", err)
	}
	return s.getProduct(id)
}

func (s *PGService) UpdateProduct(id int64, in model.ProductInput) (model.Product, error) {
	in, err := normalizeProduct(in)
	if err != nil {
		return model.Product{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.Product{}, fmt.Errorf("begin update product: %w", err)
	}
	defer tx.Rollback()

	const q = `
UPDATE products
SET name = $2,
	price = $3,
	registration_date = $4,
	user_id = $5,
	updated_at = $6
WHERE id = $1`
	res, err := tx.Exec(q, id, in.Name, in.Price, in.RegistrationDate, in.UserID, s.nowFunc().UTC())
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}
	if err := expectAffected(res, "update product"); err != nil {
		return model.Product{}, err
	}
	if err := checkCategories(tx, in.CategoryIDs); err != nil {
		return model.Product{}, err
	}
	if _, err := tx.Exec(`DELETE FROM product_categories WHERE product_id = $1`, id); err != nil {
		return model.Product{}, fmt.Errorf("clear product categories: %w", err)
	}
	if err := linkCategories(tx, id, in.CategoryIDs); err != nil {
		return model.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, fmt.Errorf("commit update product: %w", err)
	}
	return s.getProduct(id)
}

func (s *PGService) DeleteProduct(id int64) error {
	res, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectAffected(res, "delete product")
}

// checkCategories fails with ErrInvalidInput naming the first missing id.
func checkCategories(tx *sql.Tx, ids []int64) error {
	rows, err := tx.Query(`SELECT id FROM categories WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("check categories: %w", err)
	}
	defer rows.Close()

	existing := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan category id: %w", err)
		}
		existing[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("check categories: %w", err)
	}
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			return unknownCategory(id)
		}
	}
	return nil
}

func linkCategories(tx *sql.Tx, productID int64, ids []int64) error {
	const q = `
INSERT INTO product_categories (product_id, category_id, position)
VALUES ($1, $2, $3)`
	for i, cid := range ids {
		if _, err := tx.Exec(q, productID, cid, i); err != nil {
			return fmt.Errorf("link product category: %w", err)
		}
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		var (
			p   model.Product
			reg time.Time
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &reg, &p.UserID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.RegistrationDate = reg.Format(model.DateLayout)
		p.Categories = make([]model.Category, 0)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func attachCategories(rows *sql.Rows, products []model.Product) error {
	defer rows.Close()
	index := make(map[int64]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}
	for rows.Next() {
		var (
			productID int64
			c         model.Category
		)
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("scan product category: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Categories = append(products[i].Categories, c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list product categories: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read %s affected rows: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
