package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/catalog-panel/internal/auth"
	"catalogadmin/catalog-panel/internal/catalog"
	"catalogadmin/catalog-panel/internal/httpserver"
	"catalogadmin/catalog-panel/internal/screen"
)

type harness struct {
	t     *testing.T
	api   string
	state string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	authSvc, err := auth.NewService(auth.NewInMemoryUserStore(), auth.ServiceConfig{BcryptCost: 4, SessionTTL: time.Hour})
	require.NoError(t, err)
	_, err = authSvc.Register(auth.User{Name: "Admin", Email: "admin@example.com"}, "admin123")
	require.NoError(t, err)

	srv := httptest.NewServer(httpserver.NewHandler(httpserver.Deps{
		Auth:    authSvc,
		Catalog: catalog.NewService(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	t.Cleanup(srv.Close)

	return &harness{t: t, api: srv.URL, state: filepath.Join(t.TempDir(), "state.json")}
}

// exec runs one CLI invocation and returns stdout and stderr.
func (h *harness) exec(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	full := append([]string{"-api", h.api, "-state", h.state}, args...)
	err := run(context.Background(), full, strings.NewReader(stdin), stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	_, _, err := h.exec("", "login", "-email", "admin@example.com", "-password", "admin123")
	require.NoError(h.t, err)
}

func TestRun_LoginAndWhoami(t *testing.T) {
	h := newHarness(t)

	out, stderr, err := h.exec("", "login", "-email", "admin@example.com", "-password", "admin123", "-return", "/products")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Admin <admin@example.com>")
	assert.Contains(t, stderr, "-> /products")

	out, _, err = h.exec("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@example.com")
	assert.Contains(t, out, "admin")
}

func TestRun_InteractivePassword(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.exec("admin123\n", "login", "-email", "admin@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in as Admin")
}

func TestRun_LoginWrongPassword(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.exec("", "login", "-email", "admin@example.com", "-password", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")

	_, _, err = h.exec("", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRun_LoginWithoutRememberDoesNotPersist(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.exec("", "login", "-email", "admin@example.com", "-password", "admin123", "-remember=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Session not remembered")

	_, _, err = h.exec("", "categories", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRun_CatalogCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, _, err := h.exec("", "products", "add", "-name", "Dune", "-price", "10", "-date", "2024-05-05", "-categories", "1")
	require.Error(t, err)
	assert.Equal(t, screen.MsgNoCategories, err.Error())

	out, _, err := h.exec("", "categories", "add", "Science", "Fiction")
	require.NoError(t, err)
	assert.Contains(t, out, "Category 1 created: Science Fiction")

	out, _, err = h.exec("", "categories", "edit", "1", "Sci-Fi")
	require.NoError(t, err)
	assert.Contains(t, out, "Category 1 updated: Sci-Fi")

	_, _, err = h.exec("", "products", "add", "-name", "Dune", "-price", "10", "-date", "2024-05-05")
	require.Error(t, err)
	assert.Equal(t, screen.MsgSelectCategory, err.Error())

	out, _, err = h.exec("", "products", "add", "-name", "Dune", "-price", "12.5", "-date", "2024-05-05", "-categories", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Product 1 created: Dune")

	out, _, err = h.exec("", "products", "edit", "1", "-price", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "Product 1 updated: Dune")

	out, _, err = h.exec("", "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "15.00")
	assert.Contains(t, out, "Sci-Fi")

	out, _, err = h.exec("", "products", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Product 1 deleted")

	out, _, err = h.exec("", "categories", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Category 1 deleted")

	out, _, err = h.exec("", "categories", "list")
	require.NoError(t, err)
	assert.Equal(t, "ID  NAME\n", out)
}

func TestRun_LogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, stderr, err := h.exec("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.Contains(t, stderr, "-> /login")

	_, _, err = h.exec("", "products", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRun_Menu(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.exec("", "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "Produtos")
	assert.Contains(t, out, "/categories")
}

func TestRun_UnknownCommand(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.exec("", "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Contains(t, out, "Usage:")
}

func TestRun_MissingEmail(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.exec("", "login", "-password", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags: email")
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("3, 1,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	_, err = parseIDList("1,x")
	assert.Error(t, err)
}
