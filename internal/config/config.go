package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// ContentProvider configures the lesson script generator.
type ContentProvider struct {
	APIKey           string   `toml:"api_key"`
	BaseURL          string   `toml:"base_url"`
	FallbackBaseURLs []string `toml:"fallback_base_urls"`
	Model            string   `toml:"model"`
	Referer          string   `toml:"referer"`
	Title            string   `toml:"title"`
	TimeoutSeconds   int      `toml:"timeout_seconds"`
	MaxRetries       int      `toml:"max_retries"`
	RetryBaseMs      int      `toml:"retry_base_ms"`
	RetryMaxMs       int      `toml:"retry_max_ms"`
	MinIntervalMs    int      `toml:"min_interval_ms"`
}

// SpeechProvider configures the speech synthesis service.
type SpeechProvider struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	RetryBaseMs    int    `toml:"retry_base_ms"`
	RetryMaxMs     int    `toml:"retry_max_ms"`
	MinIntervalMs  int    `toml:"min_interval_ms"`
}

// AvatarProvider configures the talking-avatar rendering service.
type AvatarProvider struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	MaxRetries      int     `toml:"max_retries"`
	RetryBaseMs     int     `toml:"retry_base_ms"`
	RetryMaxMs      int     `toml:"retry_max_ms"`
	MinIntervalMs   int     `toml:"min_interval_ms"`
	PollInitialMs   int     `toml:"poll_initial_ms"`
	PollGrowth      float64 `toml:"poll_growth"`
	PollGrowthEvery int     `toml:"poll_growth_every"`
	PollMaxMs       int     `toml:"poll_max_ms"`
	PollMaxAttempts int     `toml:"poll_max_attempts"`
}

// RenderProvider configures the final video compositing service.
type RenderProvider struct {
	APIKey               string `toml:"api_key"`
	BaseURL              string `toml:"base_url"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	MaxRetries           int    `toml:"max_retries"`
	RetryBaseMs          int    `toml:"retry_base_ms"`
	RetryMaxMs           int    `toml:"retry_max_ms"`
	MinIntervalMs        int    `toml:"min_interval_ms"`
	PollIntervalMs       int    `toml:"poll_interval_ms"`
	PollInitialWaitMs    int    `toml:"poll_initial_wait_ms"`
	PollMaxAttempts      int    `toml:"poll_max_attempts"`
	PollTransientDelayMs int    `toml:"poll_transient_delay_ms"`
}

// Providers groups the external service configurations per pipeline stage.
type Providers struct {
	Content ContentProvider `toml:"content"`
	Speech  SpeechProvider  `toml:"speech"`
	Avatar  AvatarProvider  `toml:"avatar"`
	Render  RenderProvider  `toml:"render"`
}

// Research configures the best-effort web context gathering that runs before
// content generation.
type Research struct {
	Enabled             bool   `toml:"enabled"`
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	MaxResults          int    `toml:"max_results"`
	MaxCharsPerSource   int    `toml:"max_chars_per_source"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
}

// Storage configures the optional object-storage mirror for final renders.
type Storage struct {
	Enabled      bool   `toml:"enabled"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	Bucket       string `toml:"bucket"`
	UseSSL       bool   `toml:"use_ssl"`
	PresignHours int    `toml:"presign_hours"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Stages         bool   `toml:"stages"`
	Completion     bool   `toml:"completion"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains pipeline-wide behavior settings.
type Workflow struct {
	DefaultNativeLanguage string `toml:"default_native_language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lessonforge.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Providers: per-stage external service settings, including retry and
//     request-spacing budgets and polling schedules for long-running jobs
//   - Research: web search and URL fetch enrichment for content generation
//   - Storage: object-storage mirror for final renders
//   - Notifications: ntfy push notification settings
//   - Workflow: pipeline-wide defaults
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Providers     Providers     `toml:"providers"`
	Research      Research      `toml:"research"`
	Storage       Storage       `toml:"storage"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lessonforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lessonforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
