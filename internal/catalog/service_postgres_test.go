package catalog

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"catalogadmin/catalog-panel/internal/model"
)

var fixedNow = time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)

func newMockPG(t *testing.T) (*PGService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS categories").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS product_categories").WillReturnResult(sqlmock.NewResult(0, 0))
	svc, err := NewPGService(db)
	if err != nil {
		t.Fatalf("NewPGService() error: %v", err)
	}
	svc.nowFunc = func() time.Time { return fixedNow }
	return svc, mock
}

func TestNewPGService(t *testing.T) {
	_, mock := newMockPG(t)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPGServiceCreateCategory(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectQuery("INSERT INTO categories").
		WithArgs("Books", fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	c, err := svc.CreateCategory(model.CategoryInput{Name: " Books "})
	if err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}
	if c.ID != 3 || c.Name != "Books" {
		t.Fatalf("unexpected category: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPGServiceUpdateCategoryNotFound(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectQuery("UPDATE categories").
		WithArgs(int64(9), "Books", fixedNow).
		WillReturnError(sql.ErrNoRows)

	if _, err := svc.UpdateCategory(9, model.CategoryInput{Name: "Books"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGServiceDeleteCategory(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectExec("DELETE FROM categories").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM categories").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.DeleteCategory(5); err != nil {
		t.Fatalf("DeleteCategory() error: %v", err)
	}
	if err := svc.DeleteCategory(5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPGServiceListProducts(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectQuery("SELECT id, name, price, registration_date, user_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "registration_date", "user_id"}).
			AddRow(int64(1), "Chess", 49.9, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), int64(7)).
			AddRow(int64(2), "Dune", 12.5, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), int64(7)))
	mock.ExpectQuery("FROM product_categories pc").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "name", "created_at", "updated_at"}).
			AddRow(int64(1), int64(2), "Games", fixedNow, fixedNow).
			AddRow(int64(2), int64(1), "Books", fixedNow, fixedNow))

	list, err := svc.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 products, got %d", len(list))
	}
	if list[0].RegistrationDate != "2024-03-01" || list[0].Categories[0].Name != "Games" {
		t.Fatalf("unexpected first product: %+v", list[0])
	}
	if list[1].Categories[0].ID != 1 {
		t.Fatalf("unexpected second product: %+v", list[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPGServiceCreateProduct(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM categories WHERE id = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Chess", 49.9, "2024-03-01", int64(7), fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec("INSERT INTO product_categories").WithArgs(int64(11), int64(2), 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO product_categories").WithArgs(int64(11), int64(1), 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT id, name, price, registration_date, user_id").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "registration_date", "user_id"}).
			AddRow(int64(11), "Chess", 49.9, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), int64(7)))
	mock.ExpectQuery("FROM product_categories pc").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "name", "created_at", "updated_at"}).
			AddRow(int64(11), int64(2), "Games", fixedNow, fixedNow).
			AddRow(int64(11), int64(1), "Books", fixedNow, fixedNow))

	p, err := svc.CreateProduct(model.ProductInput{
		Name: "Chess", Price: 49.9, RegistrationDate: "2024-03-01", CategoryIDs: []int64{2, 1}, UserID: 7,
	})
	if err != nil {
		t.Fatalf("CreateProduct() error: %v", err)
	}
	if p.ID != 11 || len(p.Categories) != 2 || p.Categories[0].Name != "Games" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPGServiceCreateProductUnknownCategory(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM categories WHERE id = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectRollback()

	_, err := svc.CreateProduct(model.ProductInput{
		Name: "Chess", Price: 1, RegistrationDate: "2024-03-01", CategoryIDs: []int64{1, 404},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPGServiceUpdateProductNotFound(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.UpdateProduct(404, model.ProductInput{
		Name: "Chess", Price: 1, RegistrationDate: "2024-03-01", CategoryIDs: []int64{1},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPGServiceDeleteProduct(t *testing.T) {
	svc, mock := newMockPG(t)

	mock.ExpectExec("DELETE FROM products").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	if err := svc.DeleteProduct(3); err != nil {
		t.Fatalf("DeleteProduct() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
