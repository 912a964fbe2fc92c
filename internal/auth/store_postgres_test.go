package auth

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumns = []string{"id", "name", "email", "phone", "document", "password_hash"}

func newMockUserStore(t *testing.T) (*PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations not met: %v", err)
		}
		db.Close()
	})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS auth_users").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgresUserStore(db)
	if err != nil {
		t.Fatalf("NewPostgresUserStore() error: %v", err)
	}
	return store, mock
}

func TestPostgresUserStoreSchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS auth_users").WillReturnError(errors.New("permission denied"))
	if _, err := NewPostgresUserStore(db); err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestPostgresUserStoreLookups(t *testing.T) {
	store, mock := newMockUserStore(t)

	mock.ExpectQuery("FROM auth_users WHERE email = \\$1").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)
	if _, err := store.GetByEmail(" Missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	mock.ExpectQuery("FROM auth_users WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(7), "Ana", "ana@example.com", "555", "123", "hash"))
	u, err := store.GetByID(7)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if u.Name != "Ana" || u.Document != "123" {
		t.Fatalf("unexpected user: %+v", u)
	}

	// Non-positive ids and blank emails never reach the database.
	if _, err := store.GetByID(0); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for id 0, got %v", err)
	}
	if _, err := store.GetByEmail("   "); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for blank email, got %v", err)
	}
}

func TestPostgresUserStorePutUpserts(t *testing.T) {
	store, mock := newMockUserStore(t)

	mock.ExpectQuery("INSERT INTO auth_users .* ON CONFLICT \\(email\\) DO UPDATE").
		WithArgs("Admin", "admin@example.com", "", "", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	u, err := store.Put(User{Name: "Admin", Email: "Admin@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if u.ID != 1 || u.Email != "admin@example.com" {
		t.Fatalf("unexpected stored user: %+v", u)
	}

	if _, err := store.Put(User{Email: "x@example.com"}); err == nil {
		t.Fatalf("expected error for missing password hash")
	}
}
