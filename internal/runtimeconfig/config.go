package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/flohusson/attitude-emoi/internal/site"
)

// APIKeyEnv overrides Generator.APIKey so the key can stay out of the file.
const APIKeyEnv = "ATTITUDE_AI_API_KEY"

var ErrContentRootRequired = errors.New("attitude config: content root is required")
var ErrContentBackendUnknown = errors.New("attitude config: content backend is invalid")
var ErrContentDSNRequired = errors.New("attitude config: dsn is required for sql backends")
var ErrRedisURLRequired = errors.New("attitude config: redis url is required for the redis backend")
var ErrGeneratorProviderUnknown = errors.New("attitude config: generator provider is invalid")
var ErrGeneratorMaxTokensInvalid = errors.New("attitude config: generator max tokens must be zero or positive")
var ErrLoggingProviderRequired = errors.New("attitude config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("attitude config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("attitude config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("attitude config: logging format is invalid")
var ErrHTTPAddrRequired = errors.New("attitude config: http address is required")

// Content backends.
const (
	BackendFilesystem = "filesystem"
	BackendSQLite     = "sqlite"
	BackendPostgres   = "postgres"
	BackendRedis      = "redis"
)

// Config aggregates the settings of the site binary. Zero values are filled
// from DefaultConfig when loading.
type Config struct {
	Content   ContentConfig   `toml:"content"`
	Site      SiteConfig      `toml:"site"`
	Markdown  MarkdownConfig  `toml:"markdown"`
	Generator GeneratorConfig `toml:"generator"`
	Logging   LoggingConfig   `toml:"logging"`
	HTTP      HTTPConfig      `toml:"http"`
}

// ContentConfig selects where articles, episodes and resources live.
type ContentConfig struct {
	Root        string `toml:"root"`
	UploadsDir  string `toml:"uploads_dir"`
	Backend     string `toml:"backend"`
	DSN         string `toml:"dsn"`
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`

	// DebugQueries logs SQL statements for the sql backends.
	DebugQueries bool `toml:"debug_queries"`
}

// SiteConfig holds the public origin used for absolute links.
type SiteConfig struct {
	BaseURL string `toml:"base_url"`
}

// MarkdownConfig mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	Extensions []string `toml:"extensions"`
	HardWraps  bool     `toml:"hard_wraps"`
}

// GeneratorConfig enables AI draft generation.
type GeneratorConfig struct {
	Enabled   bool   `toml:"enabled"`
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	Endpoint  string `toml:"endpoint"`
	APIKey    string `toml:"api_key"`
	MaxTokens int    `toml:"max_tokens"`
	Drafts    int    `toml:"drafts"`
	ListenURL string `toml:"listen_url"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr          string `toml:"addr"`
	AdminBasePath string `toml:"admin_base_path"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Root:        "content",
			UploadsDir:  "public/uploads",
			Backend:     BackendFilesystem,
			RedisPrefix: "attitude",
		},
		Site: SiteConfig{
			BaseURL: site.DefaultBaseURL,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm"},
		},
		Generator: GeneratorConfig{
			Provider:  "anthropic",
			MaxTokens: 8192,
			Drafts:    2,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		HTTP: HTTPConfig{
			Addr:          ":8080",
			AdminBasePath: "/admin/api",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error; the second return
// value reports whether the file existed.
func Load(path string) (Config, bool, error) {
	cfg := DefaultConfig()
	exists := false

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			exists = true
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, true, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, false, fmt.Errorf("read config: %w", err)
		}
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.Generator.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, exists, err
	}
	return cfg, exists, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch backend := normalize(cfg.Content.Backend); backend {
	case BackendFilesystem:
		if strings.TrimSpace(cfg.Content.Root) == "" {
			return ErrContentRootRequired
		}
	case BackendSQLite, BackendPostgres:
		if strings.TrimSpace(cfg.Content.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrContentDSNRequired, backend)
		}
	case BackendRedis:
		if strings.TrimSpace(cfg.Content.RedisURL) == "" {
			return ErrRedisURLRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrContentBackendUnknown, cfg.Content.Backend)
	}

	if cfg.Generator.Enabled {
		switch normalize(cfg.Generator.Provider) {
		case "anthropic", "openai":
		default:
			return fmt.Errorf("%w: %s", ErrGeneratorProviderUnknown, cfg.Generator.Provider)
		}
	}
	if cfg.Generator.MaxTokens < 0 {
		return ErrGeneratorMaxTokensInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
