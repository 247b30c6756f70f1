package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the shotsearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Search   SearchConfig   `yaml:"search"`
	Upload   UploadConfig   `yaml:"upload"`
	Vision   VisionConfig   `yaml:"vision"`
	OCR      OCRConfig      `yaml:"ocr"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverValkey = "valkey"
	DriverRedis  = "redis"
	DriverBadger = "badger"
)

// DatabaseConfig holds record store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, badger (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	BadgerPath       string   `yaml:"badger_path"`
	InMemory         bool     `yaml:"in_memory"` // badger only
}

// StorageConfig holds key layout and public addressing settings.
type StorageConfig struct {
	KeyPrefix     string `yaml:"key_prefix"`
	PublicBaseURL string `yaml:"public_base_url"` // empty = root-relative image URLs
}

// SearchConfig holds query limits and ranking policy.
type SearchConfig struct {
	DefaultLimit       int      `yaml:"default_limit"`
	MaxLimit           int      `yaml:"max_limit"`
	MaxQueryLength     int      `yaml:"max_query_length"`
	MinScore           *float64 `yaml:"min_score"`
	TieEpsilon         *float64 `yaml:"tie_epsilon"`
	FilenameFallback   bool     `yaml:"filename_fallback"`
	FilenameConfidence float64  `yaml:"filename_confidence"`
	LogRetention       int      `yaml:"log_retention"`
	LogTimeoutMs       int      `yaml:"log_timeout_ms"`
}

// UploadConfig holds batch caps and processing pacing.
type UploadConfig struct {
	MaxFiles      int   `yaml:"max_files"`
	MaxFileSizeMB int64 `yaml:"max_file_size_mb"`
	WindowSize    int   `yaml:"window_size"`
	WindowPauseMs int   `yaml:"window_pause_ms"`
	Workers       int   `yaml:"workers"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// CacheConfig holds description cache settings.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"` // 0 = no expiry
}

// VisionConfig holds the vision provider settings. An empty APIKey
// disables the provider; uploads then get the generic description.
type VisionConfig struct {
	Provider  string       `yaml:"provider"`
	APIKey    string       `yaml:"api_key"`
	BaseURL   string       `yaml:"base_url"`
	Model     string       `yaml:"model"`
	MaxTokens int          `yaml:"max_tokens"`
	Prompt    string       `yaml:"prompt"`
	Budget    BudgetConfig `yaml:"budget"`
	Cache     CacheConfig  `yaml:"cache"`
}

// Enabled reports whether a vision provider is configured.
func (v VisionConfig) Enabled() bool { return v.APIKey != "" }

// OCRConfig holds text recognition settings. OCR uses the vision provider.
type OCRConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Model       string `yaml:"model"` // default: vision.model
	TimeoutSec  int    `yaml:"timeout_sec"`
	Concurrency int    `yaml:"concurrency"`
	Grayscale   *bool  `yaml:"grayscale"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first, if present.
func Load(env string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from path without overriding ones already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300 // uploads wait for processing
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.BadgerPath == "" {
		c.Database.BadgerPath = "data/badger"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "shotsearch:"
	}

	c.applySearchDefaults()
	c.applyUploadDefaults()
	c.applyVisionDefaults()
}

func (c *Config) applySearchDefaults() {
	s := &c.Search
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 5
	}
	if s.MaxLimit <= 0 {
		s.MaxLimit = 50
	}
	if s.MaxQueryLength <= 0 {
		s.MaxQueryLength = 500
	}
	if s.MinScore == nil {
		v := 0.05
		s.MinScore = &v
	}
	if s.TieEpsilon == nil {
		v := 0.01
		s.TieEpsilon = &v
	}
	if s.FilenameConfidence <= 0 {
		s.FilenameConfidence = 0.5
	}
	if s.LogRetention <= 0 {
		s.LogRetention = 1000
	}
	if s.LogTimeoutMs <= 0 {
		s.LogTimeoutMs = 2000
	}
}

func (c *Config) applyUploadDefaults() {
	u := &c.Upload
	if u.MaxFiles <= 0 {
		u.MaxFiles = 50
	}
	if u.MaxFileSizeMB <= 0 {
		u.MaxFileSizeMB = 10
	}
	if u.WindowSize <= 0 {
		u.WindowSize = 3
	}
	if u.WindowPauseMs <= 0 {
		u.WindowPauseMs = 100
	}
	if u.Workers <= 0 {
		u.Workers = 8
	}
}

func (c *Config) applyVisionDefaults() {
	v := &c.Vision
	if v.Provider == "" {
		v.Provider = "openai"
	}
	if v.Model == "" {
		v.Model = "gpt-4o-mini"
	}
	if v.MaxTokens <= 0 {
		v.MaxTokens = 150
	}
	if v.Budget.Action == "" {
		v.Budget.Action = "warn"
	}

	o := &c.OCR
	if o.Model == "" {
		o.Model = v.Model
	}
	if o.TimeoutSec <= 0 {
		o.TimeoutSec = 30
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 2
	}
	if o.Grayscale == nil {
		on := true
		o.Grayscale = &on
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverBadger:
	default:
		return fmt.Errorf("database.driver must be valkey, redis or badger, got %q", c.Database.Driver)
	}

	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if *c.Search.MinScore < 0 || *c.Search.MinScore >= 1 {
		return fmt.Errorf("search.min_score must be in [0, 1), got %v", *c.Search.MinScore)
	}
	if *c.Search.TieEpsilon < 0 {
		return fmt.Errorf("search.tie_epsilon must not be negative, got %v", *c.Search.TieEpsilon)
	}
	if c.Search.FilenameConfidence > 1 {
		return fmt.Errorf("search.filename_confidence must be at most 1, got %v", c.Search.FilenameConfidence)
	}

	switch c.Vision.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("vision.budget.action must be \"warn\" or \"reject\", got %q", c.Vision.Budget.Action)
	}
	if c.OCR.Enabled && !c.Vision.Enabled() {
		return fmt.Errorf("ocr.enabled requires vision.api_key")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
