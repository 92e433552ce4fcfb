package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Server       ServerConfig       `toml:"server"`
	Logging      LoggingConfig      `toml:"logging"`
	Storage      StorageConfig      `toml:"storage"`
	Credentials  CredentialsConfig  `toml:"credentials"`
	LLM          LLMConfig          `toml:"llm"`
	Gemini       GeminiConfig       `toml:"gemini"`
	Claude       ClaudeConfig       `toml:"claude"`
	Patterns     PatternsConfig     `toml:"patterns"`
	Documents    DocumentsConfig    `toml:"documents"`
	Localization LocalizationConfig `toml:"localization"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig configures the secret store. An empty path disables it.
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// CredentialsConfig controls the credential lookup chain:
// secret store -> environment -> secrets file
type CredentialsConfig struct {
	SecretsFile string `toml:"secrets_file"` // key/value TOML file, default ".streamlit/secrets.toml"
	EnvFile     string `toml:"env_file"`     // loaded into the process environment at startup
	KeysDir     string `toml:"keys_dir"`     // *.toml files seeded into the secret store
}

// LLMConfig selects the hosted model provider and bounds each call
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider"` // "gemini" or "claude"
	Timeout         string `toml:"timeout"`          // per-call timeout, default "8s"
}

// GeminiConfig contains Google Gemini settings
type GeminiConfig struct {
	CredentialName string  `toml:"credential_name"` // default "GEMINI_API_KEY"
	Model          string  `toml:"model"`           // default "gemini-2.0-flash"
	RateLimit      string  `toml:"rate_limit"`      // minimum spacing between calls, "0s" disables
	Temperature    float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude settings
type ClaudeConfig struct {
	CredentialName string  `toml:"credential_name"` // default "ANTHROPIC_API_KEY"
	Model          string  `toml:"model"`
	MaxTokens      int     `toml:"max_tokens"`
	RateLimit      string  `toml:"rate_limit"`
	Temperature    float32 `toml:"temperature"`
}

type PatternsConfig struct {
	Path  string `toml:"path"`  // default "legal_patterns.json"
	Watch bool   `toml:"watch"` // reload on file change
}

type DocumentsConfig struct {
	MaxUploadMB       int `toml:"max_upload_mb"`       // enforced at the HTTP boundary, default 10
	AnalysisCharLimit int `toml:"analysis_char_limit"` // prefix submitted for analysis, default 4000
}

type LocalizationConfig struct {
	DefaultLanguage string `toml:"default_language"` // default "English"
	AutoDetect      bool   `toml:"auto_detect"`      // detect language from the first query of a session
}

// NewDefaultConfig returns the configuration used when no file overrides a value
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8501,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/secrets",
			},
		},
		Credentials: CredentialsConfig{
			SecretsFile: ".streamlit/secrets.toml",
			EnvFile:     ".env",
			KeysDir:     "./keys",
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			Timeout:         "8s",
		},
		Gemini: GeminiConfig{
			CredentialName: "GEMINI_API_KEY",
			Model:          "gemini-2.0-flash",
			RateLimit:      "0s",
			Temperature:    0.4,
		},
		Claude: ClaudeConfig{
			CredentialName: "ANTHROPIC_API_KEY",
			Model:          "claude-3-5-haiku-latest",
			MaxTokens:      2048,
			RateLimit:      "0s",
			Temperature:    0.4,
		},
		Patterns: PatternsConfig{
			Path: "legal_patterns.json",
		},
		Documents: DocumentsConfig{
			MaxUploadMB:       10,
			AnalysisCharLimit: 4000,
		},
		Localization: LocalizationConfig{
			DefaultLanguage: "English",
		},
	}
}

// LoadFromFile loads configuration from a single TOML file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier ones.
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

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LEGALAID_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("LEGALAID_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LEGALAID_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("LEGALAID_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LEGALAID_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath, ok := os.LookupEnv("LEGALAID_BADGER_PATH"); ok {
		config.Storage.Badger.Path = badgerPath
	}

	// Credential sources
	if secretsFile := os.Getenv("LEGALAID_SECRETS_FILE"); secretsFile != "" {
		config.Credentials.SecretsFile = secretsFile
	}
	if keysDir := os.Getenv("LEGALAID_KEYS_DIR"); keysDir != "" {
		config.Credentials.KeysDir = keysDir
	}

	// Model configuration
	if provider := os.Getenv("LEGALAID_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}
	if timeout := os.Getenv("LEGALAID_LLM_TIMEOUT"); timeout != "" {
		config.LLM.Timeout = timeout
	}
	if model := os.Getenv("LEGALAID_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if model := os.Getenv("LEGALAID_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// Patterns configuration
	if path := os.Getenv("LEGALAID_PATTERNS_PATH"); path != "" {
		config.Patterns.Path = path
	}
	if watch := os.Getenv("LEGALAID_PATTERNS_WATCH"); watch != "" {
		if w, err := strconv.ParseBool(watch); err == nil {
			config.Patterns.Watch = w
		}
	}

	// Documents configuration
	if maxUpload := os.Getenv("LEGALAID_MAX_UPLOAD_MB"); maxUpload != "" {
		if m, err := strconv.Atoi(maxUpload); err == nil {
			config.Documents.MaxUploadMB = m
		}
	}

	// Localization
	if lang := os.Getenv("LEGALAID_DEFAULT_LANGUAGE"); lang != "" {
		config.Localization.DefaultLanguage = lang
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Flags have the highest priority.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// LLMTimeout returns the parsed per-call timeout, falling back to 8s
func (c *Config) LLMTimeout() time.Duration {
	return ParseDurationOr(c.LLM.Timeout, 8*time.Second)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// ParseDurationOr parses a duration string, returning fallback when empty or invalid
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
