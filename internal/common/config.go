package common

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Redmine  RedmineConfig  `toml:"redmine"`
	Browser  BrowserConfig  `toml:"browser"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
	Retry    RetryConfig    `toml:"retry"`
	Logging  LoggingConfig  `toml:"logging"`
	Storage  StorageConfig  `toml:"storage"`
}

type RedmineConfig struct {
	BaseURL  string `toml:"base_url" validate:"required,url"`
	Username string `toml:"username"` // Optional - when empty the login form is left to a human
	Password string `toml:"password"`
}

type BrowserConfig struct {
	InteractiveLogin      bool   `toml:"interactive_login"`  // Show a browser window for login (SSO, 2FA)
	SwitchToHeadless      bool   `toml:"switch_to_headless"` // Move the session to a headless browser after login
	UserAgent             string `toml:"user_agent"`         // Empty = chrome default
	DisableGPU            bool   `toml:"disable_gpu"`
	NoSandbox             bool   `toml:"no_sandbox"`
	ExecPath              string `toml:"exec_path"`               // Optional chrome binary
	MinNavigationInterval string `toml:"min_navigation_interval"` // e.g., "250ms" - minimum gap between navigations
}

type TimeoutsConfig struct {
	Request      string `toml:"request"`       // e.g., "30s" - single page load
	Session      string `toml:"session"`       // e.g., "1h" - reported idle limit
	Login        string `toml:"login"`         // e.g., "2m" - wait for interactive login
	Submit       string `toml:"submit"`        // e.g., "30s" - wait for form submission to navigate
	PollInterval string `toml:"poll_interval"` // e.g., "500ms"
}

type RetryConfig struct {
	MaxRetries int    `toml:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay string `toml:"retry_delay"` // e.g., "1s" - initial backoff, doubled per attempt
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
	Dir    string   `toml:"dir"`    // Log directory for file output, empty = <exe dir>/logs
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig configures the submission journal
type BadgerConfig struct {
	Enabled        bool   `toml:"enabled"`
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Redmine: RedmineConfig{
			BaseURL: "http://localhost:3000",
		},
		Browser: BrowserConfig{
			InteractiveLogin:      true,
			SwitchToHeadless:      true,
			DisableGPU:            true,
			NoSandbox:             false,
			MinNavigationInterval: "250ms",
		},
		Timeouts: TimeoutsConfig{
			Request:      "30s",
			Session:      "1h",
			Login:        "2m",
			Submit:       "30s",
			PollInterval: "500ms",
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			RetryDelay: "1s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Enabled: true,
				Path:    "./data/journal",
			},
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files. Missing paths are an error; empty paths are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	config.Redmine.BaseURL = strings.TrimRight(config.Redmine.BaseURL, "/")

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Redmine
	if baseURL := os.Getenv("REDMINE_URL"); baseURL != "" {
		config.Redmine.BaseURL = baseURL
	}
	if username := os.Getenv("REDMINE_USERNAME"); username != "" {
		config.Redmine.Username = username
	}
	if password := os.Getenv("REDMINE_PASSWORD"); password != "" {
		config.Redmine.Password = password
	}

	// Timeouts - plain integers are read as seconds
	if v := os.Getenv("REDMINE_REQUEST_TIMEOUT"); v != "" {
		config.Timeouts.Request = secondsOrDuration(v)
	}
	if v := os.Getenv("REDMINE_SESSION_TIMEOUT"); v != "" {
		config.Timeouts.Session = secondsOrDuration(v)
	}
	if v := os.Getenv("REDMINE_LOGIN_TIMEOUT"); v != "" {
		config.Timeouts.Login = secondsOrDuration(v)
	}

	// Retry
	if v := os.Getenv("REDMINE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Retry.MaxRetries = n
		}
	}
	if v := os.Getenv("REDMINE_RETRY_DELAY"); v != "" {
		config.Retry.RetryDelay = secondsOrDuration(v)
	}

	// Browser
	if v := os.Getenv("REDMINE_HEADLESS_LOGIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Browser.InteractiveLogin = !b
		}
	}
	if v := os.Getenv("REDMINE_SWITCH_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Browser.SwitchToHeadless = b
		}
	}

	// Logging
	if level := os.Getenv("REDMINE_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}

	// Storage
	if badgerPath := os.Getenv("REDMINE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
}

func secondsOrDuration(v string) string {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return (time.Duration(n * float64(time.Second))).String()
	}
	return v
}

// Validate checks struct constraints and that every duration string parses.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"timeouts.request":                c.Timeouts.Request,
		"timeouts.session":                c.Timeouts.Session,
		"timeouts.login":                  c.Timeouts.Login,
		"timeouts.submit":                 c.Timeouts.Submit,
		"timeouts.poll_interval":          c.Timeouts.PollInterval,
		"retry.retry_delay":               c.Retry.RetryDelay,
		"browser.min_navigation_interval": c.Browser.MinNavigationInterval,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid configuration: %s must not be negative", name)
		}
	}
	return nil
}

// LoginURL is the login page with a back_url pointing at the projects listing
func (c *Config) LoginURL() string {
	return c.Redmine.BaseURL + "/login?back_url=" + url.QueryEscape(c.ProjectsURL())
}

// LoginPath is the path Redmine redirects to when the session is gone
func (c *Config) LoginPath() string {
	return "/login"
}

func (c *Config) LogoutURL() string {
	return c.Redmine.BaseURL + "/logout"
}

func (c *Config) ProjectsURL() string {
	return c.Redmine.BaseURL + "/projects"
}

func (c *Config) RequestTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Request, 30*time.Second)
}

func (c *Config) SessionTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Session, time.Hour)
}

func (c *Config) LoginTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Login, 2*time.Minute)
}

func (c *Config) SubmitTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Submit, 30*time.Second)
}

func (c *Config) PollInterval() time.Duration {
	return parseDurationOr(c.Timeouts.PollInterval, 500*time.Millisecond)
}

func (c *Config) RetryDelay() time.Duration {
	return parseDurationOr(c.Retry.RetryDelay, time.Second)
}

func (c *Config) MinNavigationInterval() time.Duration {
	return parseDurationOr(c.Browser.MinNavigationInterval, 0)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
