package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the config directory, under $HOME globally and under cwd per project
	DirName = ".todo-tui"

	// FileName is the config file inside DirName
	FileName = "config.yaml"

	// DefaultAPIURL is the todo API the client talks to unless configured otherwise
	DefaultAPIURL = "https://todo-app.pioneeralpha.com/api/"

	// DefaultGuardInterval is how often protected screens re-check the session
	DefaultGuardInterval = 30 * time.Second
)

// Config represents the user's configuration
type Config struct {
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      float64       `yaml:"rate_limit"` // Requests per second, 0 disables
	RateBurst      int           `yaml:"rate_burst"`
	GuardInterval  time.Duration `yaml:"guard_interval"`
	Storage        StorageConfig `yaml:"storage"`
	LogLevel       string        `yaml:"log_level"`
	LogPath        string        `yaml:"log_path"`
	Debug          bool          `yaml:"debug"` // Show the in-app debug panel
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := globalConfigDir()
	return &Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: 30 * time.Second,
		RateBurst:      5,
		GuardInterval:  DefaultGuardInterval,
		Storage: StorageConfig{
			Driver: StorageFile,
			Path:   filepath.Join(dir, "session.json"),
			Prefix: "todo-tui:",
		},
		LogLevel: "info",
		LogPath:  filepath.Join(dir, "logs", "todo-tui.log"),
	}
}

// globalConfigDir returns the global config directory path (~/.todo-tui).
// Falls back to a cwd-relative directory when there is no home.
func globalConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// globalConfigPath returns the global config file path (~/.todo-tui/config.yaml)
func globalConfigPath() string {
	return filepath.Join(globalConfigDir(), FileName)
}

// projectConfigPath returns the project-level config path (.todo-tui/config.yaml in cwd)
func projectConfigPath() string {
	return filepath.Join(DirName, FileName)
}

// Dir returns the global config directory
func Dir() string {
	return globalConfigDir()
}

// Exists checks if a config file exists (project or global)
func Exists() bool {
	if _, err := os.Stat(projectConfigPath()); err == nil {
		return true
	}
	_, err := os.Stat(globalConfigPath())
	return err == nil
}

// Load reads the config from disk, checking project config first, then global.
// Missing files yield defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{projectConfigPath(), globalConfigPath()} {
		found, err := readInto(path, cfg)
		if err != nil {
			return nil, err
		}
		if found {
			break
		}
	}

	return finish(cfg)
}

// LoadFile reads an explicit config file. Unlike Load, the file must exist.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	found, err := readInto(path, cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("config file %s not found", path)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// readInto decodes path over cfg, so unset keys keep their defaults
func readInto(path string, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return true, nil
}

func applyEnv(cfg *Config) {
	cfg.APIURL = envStr("TODO_API_URL", cfg.APIURL)
	cfg.RequestTimeout = envDuration("TODO_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RateLimit = envFloat("TODO_RATE_LIMIT", cfg.RateLimit)
	cfg.GuardInterval = envDuration("TODO_GUARD_INTERVAL", cfg.GuardInterval)
	cfg.Storage.Driver = StorageDriver(envStr("TODO_STORE_DRIVER", string(cfg.Storage.Driver)))
	cfg.Storage.Path = envStr("TODO_STORE_PATH", cfg.Storage.Path)
	cfg.Storage.RedisAddr = envStr("TODO_REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = envStr("TODO_REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.Storage.RedisDB = envInt("TODO_REDIS_DB", cfg.Storage.RedisDB)
	cfg.LogLevel = envStr("TODO_LOG_LEVEL", cfg.LogLevel)
	cfg.LogPath = envStr("TODO_LOG_PATH", cfg.LogPath)
	cfg.Debug = envBool("TODO_DEBUG", cfg.Debug)
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.GuardInterval < time.Second {
		return fmt.Errorf("guard_interval must be at least 1s, got %s", c.GuardInterval)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %f", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1 when rate_limit is set, got %d", c.RateBurst)
	}
	if !c.Storage.Driver.IsValid() {
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	switch c.Storage.Driver {
	case StorageFile, StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path must not be empty for driver %s", c.Storage.Driver)
		}
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr must not be empty for driver redis")
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug|info|warn|error, got %q", c.LogLevel)
	}
	return nil
}

// Save writes the config to the global location (~/.todo-tui/config.yaml)
func Save(cfg *Config) error {
	return SaveTo(globalConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Redis password may live here
	return os.WriteFile(path, data, 0o600)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
