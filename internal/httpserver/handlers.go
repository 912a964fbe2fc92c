package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"catalogadmin/catalog-panel/internal/audit"
	"catalogadmin/catalog-panel/internal/auth"
	"catalogadmin/catalog-panel/internal/catalog"
	"catalogadmin/catalog-panel/internal/model"
)

type loginReply struct {
	model.Profile
	AccessToken string `json:"accessToken"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	if h.deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, user, err := h.deps.Auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.audit(r, req.Email, "auth.login", "", audit.OutcomeFailed, "invalid credentials")
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("login failed", "email", req.Email, "error", err)
		h.audit(r, req.Email, "auth.login", "", audit.OutcomeFailed, err.Error())
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.audit(r, session.Email, "auth.login", "", audit.OutcomeSuccess, "sid="+session.ID)

	writeJSON(w, http.StatusOK, loginReply{Profile: user.Profile(), AccessToken: session.Token})
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSession(w, r); !ok {
		return
	}
	token, _ := extractBearerToken(r.Header.Get("Authorization"))
	user, err := h.deps.Auth.Profile(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		h.log.Error("load profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.catalogSession(w, r); !ok {
		return
	}
	items, err := h.deps.Catalog.ListCategories()
	if err != nil {
		h.writeCatalogError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.catalogSession(w, r)
	if !ok {
		return
	}
	var in model.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.deps.Catalog.CreateCategory(in)
	if err != nil {
		h.audit(r, session.Email, "category.create", "", audit.OutcomeFailed, err.Error())
		h.writeCatalogError(w, "create category", err)
		return
	}
	h.audit(r, session.Email, "category.create", formatID(created.ID), audit.OutcomeSuccess, "")
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.catalogSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.deps.Catalog.UpdateCategory(id, in)
	if err != nil {
		h.audit(r, session.Email, "category.update", formatID(id), audit.OutcomeFailed, err.Error())
		h.writeCatalogError(w, "update category", err)
		return
	}
	h.audit(r, session.Email, "category.update", formatID(id), audit.OutcomeSuccess, "")
	writeJSON(w, http.StatusOK, updated)
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.catalogSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.deps.Catalog.DeleteCategory(id); err != nil {
		h.audit(r, session.Email, "category.delete", formatID(id), audit.OutcomeFailed, err.Error())
		h.writeCatalogError(w, "delete category", err)
		return
	}
	h.audit(r, session.Email, "category.delete", formatID(id), audit.OutcomeSuccess, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.catalogSession(w, r); !ok {
		return
	}
	items, err := h.deps.Catalog.ListProducts()
	if err != nil {
		h.writeCatalogError(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) createProduct(w http.ResponseWriter, r *http.Request) {
	session, ok := h.catalogSession(w, r)
	if !ok {
		return
	}
	var in model.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.deps.Catalog.CreateProduct(in)
	if err != nil {
		h.audit(r, session.Email, "product.create", "", audit.OutcomeFailed, err.Error())
		h.writeCatalogError(w, "create product", err)
		return
	}
	h.audit(r, session.Email, "product.create", formatID(created.ID), audit.OutcomeSuccess, "")
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	session, ok := h.catalogSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.deps.Catalog.UpdateProduct(id, in)
	if err != nil {
		h.audit(r, session.Email, "product.update", formatID(id), audit.OutcomeFailed, err.Error())
		h.writeCatalogError(w, "update product", err)
		return
	}
	h.audit(r, session.Email, "product.update", formatID(id), audit.OutcomeSuccess, "")
	writeJSON(w, http.StatusOK, updated)
}

func (h *handlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	session, ok := h.catalogSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.deps.Catalog.DeleteProduct(id); err != nil {
		h.audit(r, session.Email, "product.delete", formatID(id), audit.OutcomeFailed, err.Error())
		h.writeCatalogError(w, "delete product", err)
		return
	}
	h.audit(r, session.Email, "product.delete", formatID(id), audit.OutcomeSuccess, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) catalogSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return auth.Session{}, false
	}
	if h.deps.Catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog service unavailable")
		return auth.Session{}, false
	}
	return session, true
}

func (h *handlers) writeCatalogError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
