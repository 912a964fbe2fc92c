package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"catalogadmin/catalog-panel/internal/audit"
	"catalogadmin/catalog-panel/internal/auth"
	"catalogadmin/catalog-panel/internal/config"
	"catalogadmin/catalog-panel/internal/model"
	"catalogadmin/catalog-panel/internal/observability"
)

type AuthService interface {
	Login(email, password string) (auth.Session, auth.User, error)
	ValidateToken(token string) (auth.Session, error)
	Profile(token string) (auth.User, error)
}

type CatalogService interface {
	ListCategories() ([]model.Category, error)
	CreateCategory(in model.CategoryInput) (model.Category, error)
	UpdateCategory(id int64, in model.CategoryInput) (model.Category, error)
	DeleteCategory(id int64) error
	ListProducts() ([]model.Product, error)
	CreateProduct(in model.ProductInput) (model.Product, error)
	UpdateProduct(id int64, in model.ProductInput) (model.Product, error)
	DeleteProduct(id int64) error
}

type AuditLogger interface {
	Record(e audit.Event) error
}

type Deps struct {
	Auth    AuthService
	Catalog CatalogService
	Audit   AuditLogger
	Logger  *slog.Logger
}

type Server struct {
	httpServer *http.Server
}

func New(cfg config.HTTPConfig, deps Deps) *Server {
	handler := NewHandler(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      loggingMiddleware(deps.Logger, handler),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

type handlers struct {
	deps Deps
	log  *slog.Logger
}

// NewHandler routes the catalog API. Everything except /login and /healthz
// requires a bearer token.
func NewHandler(deps Deps) http.Handler {
	h := &handlers{deps: deps, log: observability.OrDefault(deps.Logger)}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/profile", h.profile).Methods(http.MethodGet)

	r.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)
	r.HandleFunc("/categories", h.createCategory).Methods(http.MethodPost)
	r.HandleFunc("/categories/{id:[0-9]+}", h.updateCategory).Methods(http.MethodPut)
	r.HandleFunc("/categories/{id:[0-9]+}", h.deleteCategory).Methods(http.MethodDelete)

	r.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	r.HandleFunc("/products/{id:[0-9]+}", h.updateProduct).Methods(http.MethodPut)
	r.HandleFunc("/products/{id:[0-9]+}", h.deleteProduct).Methods(http.MethodDelete)

	return r
}

func (h *handlers) requireSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	if h.deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
		return auth.Session{}, false
	}
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
		return auth.Session{}, false
	}

	session, err := h.deps.Auth.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return auth.Session{}, false
	}
	return session, true
}

func extractBearerToken(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	log = observability.OrDefault(log)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		reqID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"request_id", reqID,
		)
	})
}

type requestIDKey struct{}

func requestIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(requestIDKey{}).(string); ok {
		return s
	}
	return ""
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func (h *handlers) audit(r *http.Request, actor, action, target, outcome, detail string) {
	if h.deps.Audit == nil {
		return
	}
	parts := []string{
		"ip=" + clientIP(r),
		"ua=" + strings.TrimSpace(r.UserAgent()),
	}
	if strings.TrimSpace(detail) != "" {
		parts = append(parts, "detail="+strings.TrimSpace(detail))
	}
	err := h.deps.Audit.Record(audit.Event{
		RequestID: requestIDFromContext(r.Context()),
		Actor:     actor,
		Action:    action,
		Target:    target,
		Outcome:   outcome,
		Detail:    strings.Join(parts, " | "),
	})
	if err != nil {
		h.log.Warn("audit record failed", "action", action, "error", err)
	}
}
