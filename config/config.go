package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir string `json:"project_dir"`
	DataDir    string `json:"data_dir"`

	// BackendURL is the base URL of the advisory API, e.g. http://localhost:8000.
	BackendURL string `json:"backend_url"`
	ClientID   string `json:"client_id"`

	RequestTimeoutSec       int `json:"request_timeout_sec"`
	NotificationIntervalSec int `json:"notification_interval_sec"`
	SearchDebounceMs        int `json:"search_debounce_ms"`

	ArticlesPageSize  int `json:"articles_page_size"`
	DashboardPageSize int `json:"dashboard_page_size"`

	HistoryEnabled bool   `json:"history_enabled"`
	HistoryDBPath  string `json:"history_db_path"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	Debug     bool   `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)
	cfg.ApplyEnv()
	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults with every path rooted at root.
// Environment overrides are not applied.
func DefaultConfigWithRoot(root string) *Config {
	dataDir := filepath.Join(root, "data")
	return &Config{
		ProjectDir: root,
		DataDir:    dataDir,

		BackendURL: "http://localhost:8000",
		ClientID:   "frontend-A",

		RequestTimeoutSec:       60,
		NotificationIntervalSec: 15,
		SearchDebounceMs:        500,

		ArticlesPageSize:  10,
		DashboardPageSize: 5,

		HistoryEnabled: false,
		HistoryDBPath:  filepath.Join(dataDir, "history.db"),

		LogLevel:  "info",
		LogFormat: "console",
		Debug:     false,
	}
}

// ApplyEnv loads .env and overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()
	c.loadFromEnv()
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("WEALTHGO_PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("WEALTHGO_DATA_DIR"); val != "" {
		c.DataDir = val
		c.HistoryDBPath = filepath.Join(val, "history.db")
	}

	// The web client read NEXT_PUBLIC_API_URL; accept it so one .env serves both.
	for _, key := range []string{"API_URL", "NEXT_PUBLIC_API_URL", "WEALTHGO_API_URL"} {
		if val := os.Getenv(key); val != "" {
			c.BackendURL = val
		}
	}
	if val := os.Getenv("WEALTHGO_CLIENT_ID"); val != "" {
		c.ClientID = val
	}

	if val := os.Getenv("WEALTHGO_TIMEOUT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RequestTimeoutSec = v
		}
	}
	if val := os.Getenv("WEALTHGO_POLL_INTERVAL"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.NotificationIntervalSec = v
		}
	}

	if val := os.Getenv("WEALTHGO_HISTORY"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.HistoryEnabled = enabled
		}
	}
	if val := os.Getenv("WEALTHGO_HISTORY_DB"); val != "" {
		c.HistoryDBPath = val
	}

	if val := os.Getenv("WEALTHGO_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("WEALTHGO_LOG_FORMAT"); val != "" {
		c.LogFormat = strings.ToLower(val)
	}
	if val := os.Getenv("WEALTHGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) NotificationInterval() time.Duration {
	return time.Duration(c.NotificationIntervalSec) * time.Second
}

func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "wealthgo.log")
}

func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.BackendURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend_url must be an absolute http(s) URL, got %q", c.BackendURL)
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("client_id is required")
	}
	if c.RequestTimeoutSec < 1 || c.RequestTimeoutSec > 600 {
		return fmt.Errorf("request_timeout_sec must be between 1 and 600")
	}
	if c.NotificationIntervalSec < 1 {
		return fmt.Errorf("notification_interval_sec must be positive")
	}
	if c.SearchDebounceMs < 0 {
		return fmt.Errorf("search_debounce_ms must not be negative")
	}
	if c.ArticlesPageSize < 1 || c.ArticlesPageSize > 100 {
		return fmt.Errorf("articles_page_size must be between 1 and 100")
	}
	if c.DashboardPageSize < 1 || c.DashboardPageSize > 100 {
		return fmt.Errorf("dashboard_page_size must be between 1 and 100")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json")
	}
	return nil
}

// Set updates a single setting addressed by its JSON key.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	switch key {
	case "backend_url":
		c.BackendURL = strings.TrimRight(value, "/")
	case "client_id":
		c.ClientID = value
	case "data_dir":
		c.DataDir = value
	case "history_db_path":
		c.HistoryDBPath = value
	case "log_level":
		c.LogLevel = strings.ToLower(value)
	case "log_format":
		c.LogFormat = strings.ToLower(value)
	case "debug", "history_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		if key == "debug" {
			c.Debug = b
		} else {
			c.HistoryEnabled = b
		}
	case "request_timeout_sec", "notification_interval_sec", "search_debounce_ms",
		"articles_page_size", "dashboard_page_size":
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		switch key {
		case "request_timeout_sec":
			c.RequestTimeoutSec = i
		case "notification_interval_sec":
			c.NotificationIntervalSec = i
		case "search_debounce_ms":
			c.SearchDebounceMs = i
		case "articles_page_size":
			c.ArticlesPageSize = i
		default:
			c.DashboardPageSize = i
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, filepath.Dir(c.HistoryDBPath)}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
