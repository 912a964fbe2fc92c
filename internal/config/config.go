package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP             HTTPConfig
	DatabaseURL      string
	DBWaitTimeout    time.Duration
	Auth             AuthConfig
	CatalogStateFile string
	AuditLogFile     string
	LogLevel         string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
	BootstrapName     string
	BcryptCost        int
	SessionTTL        time.Duration
	SessionStateFile  string
	UserStateFile     string
}

// PanelConfig configures the admin panel client.
type PanelConfig struct {
	APIURL            string
	HTTPTimeout       time.Duration
	StateFile         string
	TokenKey          string
	// OnTokenExpiration is lowercased. Only "logout" redirects to LoginPath
	// when a stored token is rejected; any other value suppresses it.
	OnTokenExpiration string
	LoginPath         string
	HomePath          string
	LogLevel          string
}

const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 10)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 20)) * time.Second,
		},
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBWaitTimeout: time.Duration(getEnvInt("DB_WAIT_TIMEOUT_SEC", 30)) * time.Second,
		Auth: AuthConfig{
			BootstrapEmail:    getEnv("AUTH_BOOTSTRAP_EMAIL", "admin@example.com"),
			BootstrapPassword: getEnv("AUTH_BOOTSTRAP_PASSWORD", "admin123"),
			BootstrapName:     getEnv("AUTH_BOOTSTRAP_NAME", "Administrador"),
			BcryptCost:        getEnvInt("AUTH_BCRYPT_COST", 10),
			SessionTTL:        time.Duration(getEnvInt("AUTH_SESSION_TTL_SEC", 3600)) * time.Second,
			SessionStateFile:  getEnv("AUTH_SESSION_STATE_FILE", "./data/auth_sessions.json"),
			UserStateFile:     getEnv("AUTH_USER_STATE_FILE", "./data/auth_users.json"),
		},
		CatalogStateFile: getEnv("CATALOG_STATE_FILE", "./data/catalog.json"),
		AuditLogFile:     getEnv("AUDIT_LOG_FILE", "./data/audit.log"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if cfg.HTTP.Addr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DBWaitTimeout <= 0 {
		return Config{}, fmt.Errorf("DB_WAIT_TIMEOUT_SEC must be > 0")
	}
	if !strings.Contains(cfg.Auth.BootstrapEmail, "@") {
		return Config{}, fmt.Errorf("AUTH_BOOTSTRAP_EMAIL must be an email address")
	}
	if cfg.Auth.BootstrapPassword == "" {
		return Config{}, fmt.Errorf("AUTH_BOOTSTRAP_PASSWORD must not be empty")
	}
	if cfg.Auth.BcryptCost < minBcryptCost || cfg.Auth.BcryptCost > maxBcryptCost {
		return Config{}, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", minBcryptCost, maxBcryptCost)
	}
	if cfg.Auth.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("AUTH_SESSION_TTL_SEC must be > 0")
	}
	if cfg.Auth.SessionStateFile == "" {
		return Config{}, fmt.Errorf("AUTH_SESSION_STATE_FILE must not be empty")
	}
	if cfg.Auth.UserStateFile == "" {
		return Config{}, fmt.Errorf("AUTH_USER_STATE_FILE must not be empty")
	}
	if cfg.CatalogStateFile == "" {
		return Config{}, fmt.Errorf("CATALOG_STATE_FILE must not be empty")
	}

	return cfg, nil
}

func LoadPanel() (PanelConfig, error) {
	if err := loadDotEnv(); err != nil {
		return PanelConfig{}, err
	}

	cfg := PanelConfig{
		APIURL:            strings.TrimRight(getEnv("PANEL_API_URL", "http://localhost:8080"), "/"),
		HTTPTimeout:       time.Duration(getEnvInt("PANEL_HTTP_TIMEOUT_SEC", 15)) * time.Second,
		StateFile:         getEnv("PANEL_STATE_FILE", defaultPanelStateFile()),
		TokenKey:          getEnv("PANEL_TOKEN_KEY", "accessToken"),
		OnTokenExpiration: strings.ToLower(strings.TrimSpace(getEnv("PANEL_ON_TOKEN_EXPIRATION", "logout"))),
		LoginPath:         getEnv("PANEL_LOGIN_PATH", "/login"),
		HomePath:          getEnv("PANEL_HOME_PATH", "/"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if cfg.APIURL == "" {
		return PanelConfig{}, fmt.Errorf("PANEL_API_URL must not be empty")
	}
	if cfg.HTTPTimeout <= 0 {
		return PanelConfig{}, fmt.Errorf("PANEL_HTTP_TIMEOUT_SEC must be > 0")
	}
	if !strings.HasPrefix(cfg.LoginPath, "/") || !strings.HasPrefix(cfg.HomePath, "/") {
		return PanelConfig{}, fmt.Errorf("PANEL_LOGIN_PATH and PANEL_HOME_PATH must start with /")
	}

	return cfg, nil
}

// loadDotEnv reads ./.env when present; variables already set win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func defaultPanelStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".catalog-panel", "state.json")
	}
	return filepath.Join(home, ".catalog-panel", "state.json")
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
