// ABOUTME: Digest configuration loaded from JSON or YAML with environment overrides
// ABOUTME: Covers sources, output, AI front page, caching, HTTP and server settings

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	coreerrors "daily-feed/core/errors"
	"daily-feed/pkg/opml"

	"gopkg.in/yaml.v2"
)

// Defaults mirroring the reading-time and output conventions of the digest
const (
	DefaultWordsPerMinute = 200
	MinWordsPerMinute     = 50
	MaxWordsPerMinute     = 500

	DefaultFilename = "daily-feed"
	DefaultTitle    = "Daily Feed Digest"
	DefaultAuthor   = "RSS Aggregator"
	DefaultFormat   = "epub"

	DefaultCommentLimit   = 5
	DefaultCommentTimeout = 15
	DefaultHTTPTimeout    = 30
	DefaultCacheTTL       = 1800
	DefaultServerAddr     = ":8080"
	DefaultLogLevel       = "info"

	envPrefix = "DAILY_FEED_"
)

// Config holds all application configuration
type Config struct {
	Sources []SourceConfig `json:"sources" yaml:"sources"`

	// Feeds is the legacy source list; entries are appended after Sources.
	Feeds []FeedConfig `json:"feeds" yaml:"feeds"`

	// OPML points to a subscription file whose feeds become rss sources.
	// Relative paths resolve against the config file's directory.
	OPML string `json:"opml" yaml:"opml"`

	Output         OutputConfig     `json:"output" yaml:"output"`
	FrontPage      *FrontPageConfig `json:"front_page" yaml:"front_page"`
	WordsPerMinute int              `json:"words_per_minute" yaml:"words_per_minute"`
	Comments       CommentsConfig   `json:"comments" yaml:"comments"`
	HTTP           HTTPConfig       `json:"http" yaml:"http"`
	Cache          CacheConfig      `json:"cache" yaml:"cache"`
	Server         ServerConfig     `json:"server" yaml:"server"`
	LogLevel       string           `json:"log_level" yaml:"log_level"`

	dir string
}

// SourceConfig describes one source entry
type SourceConfig struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	APIToken    string `json:"api_token,omitempty" yaml:"api_token,omitempty"`
	FullText    bool   `json:"full_text,omitempty" yaml:"full_text,omitempty"`
	RawEmbeds   bool   `json:"raw_embeds,omitempty" yaml:"raw_embeds,omitempty"`

	// Comments defaults to enabled for source types that support comments.
	Comments *bool `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// CommentsEnabled reports whether comment fetching is on for this source
func (s SourceConfig) CommentsEnabled() bool {
	return s.Comments == nil || *s.Comments
}

// FeedConfig is the legacy tagged feed entry
type FeedConfig struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	APIToken    string `json:"api_token,omitempty" yaml:"api_token,omitempty"`
}

// OutputConfig controls the rendered file
type OutputConfig struct {
	Filename string `json:"filename" yaml:"filename"`
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	Format   string `json:"format" yaml:"format"`
}

// FrontPageConfig enables the AI summary
type FrontPageConfig struct {
	Enabled  bool           `json:"enabled" yaml:"enabled"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
}

// ProviderConfig selects the text generation backend
type ProviderConfig struct {
	Type    string `json:"type" yaml:"type"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`
}

// CommentsConfig bounds comment fetching
type CommentsConfig struct {
	Limit          int `json:"limit" yaml:"limit"`
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// HTTPConfig configures outbound requests
type HTTPConfig struct {
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent         string  `json:"user_agent" yaml:"user_agent"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// CacheConfig holds payload cache backend configuration
type CacheConfig struct {
	// Type is one of none, memory, redis, sqlite
	Type       string       `json:"type" yaml:"type"`
	TTLSeconds int          `json:"ttl_seconds" yaml:"ttl_seconds"`
	Redis      RedisConfig  `json:"redis" yaml:"redis"`
	SQLite     SQLiteConfig `json:"sqlite" yaml:"sqlite"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns the configuration used when no file is given: the Ars Technica
// feed rendered to EPUB.
func Default() *Config {
	cfg := &Config{
		Feeds: []FeedConfig{{Type: "ars_technica"}},
	}
	cfg.Normalize()
	return cfg
}

// Load reads a configuration file, applies environment overrides, fills defaults
// and validates the result. Read and decode failures are *errors.ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &coreerrors.ConfigError{Path: path, Err: err}
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, &coreerrors.ConfigError{Path: path, Err: err}
	}
	cfg.dir = filepath.Dir(path)

	ApplyEnv(cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data as YAML for .yaml/.yml extensions and JSON otherwise
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}
	return cfg, nil
}

// ApplyEnv overrides settings from DAILY_FEED_* environment variables
func ApplyEnv(cfg *Config) {
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.WordsPerMinute = getEnvAsIntOrDefault("WORDS_PER_MINUTE", cfg.WordsPerMinute)
	cfg.Output.Format = getEnvOrDefault("OUTPUT_FORMAT", cfg.Output.Format)
	cfg.Output.Filename = getEnvOrDefault("OUTPUT_FILENAME", cfg.Output.Filename)
	cfg.Cache.Type = getEnvOrDefault("CACHE_TYPE", cfg.Cache.Type)
	cfg.Cache.TTLSeconds = getEnvAsIntOrDefault("CACHE_TTL_SECONDS", cfg.Cache.TTLSeconds)
	cfg.Cache.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.Cache.Redis.Address)
	cfg.Cache.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Cache.Redis.Password)
	cfg.Cache.Redis.DB = getEnvAsIntOrDefault("REDIS_DB", cfg.Cache.Redis.DB)
	cfg.Cache.SQLite.Path = getEnvOrDefault("SQLITE_PATH", cfg.Cache.SQLite.Path)
	cfg.Server.Addr = getEnvOrDefault("SERVER_ADDR", cfg.Server.Addr)

	if cfg.FrontPage != nil {
		cfg.FrontPage.Provider.APIKey = getEnvOrDefault("AI_API_KEY", cfg.FrontPage.Provider.APIKey)
	}
}

// Normalize fills defaults. Reading speeds outside the supported range fall back
// to the default.
func (c *Config) Normalize() {
	if c.Output.Filename == "" {
		c.Output.Filename = DefaultFilename
	}
	if c.Output.Title == "" {
		c.Output.Title = DefaultTitle
	}
	if c.Output.Author == "" {
		c.Output.Author = DefaultAuthor
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}

	if c.WordsPerMinute < MinWordsPerMinute || c.WordsPerMinute > MaxWordsPerMinute {
		c.WordsPerMinute = DefaultWordsPerMinute
	}

	if c.Comments.Limit <= 0 {
		c.Comments.Limit = DefaultCommentLimit
	}
	if c.Comments.TimeoutSeconds <= 0 {
		c.Comments.TimeoutSeconds = DefaultCommentTimeout
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = DefaultHTTPTimeout
	}

	c.Cache.Type = strings.ToLower(strings.TrimSpace(c.Cache.Type))
	if c.Cache.Type == "" {
		c.Cache.Type = "none"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = DefaultCacheTTL
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	for i := range c.Sources {
		c.Sources[i].Type = strings.ToLower(strings.TrimSpace(c.Sources[i].Type))
		if c.Sources[i].Type == "" {
			c.Sources[i].Type = "rss"
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for i, src := range c.AllSources() {
		field := fmt.Sprintf("sources[%d]", i)
		switch src.Type {
		case "rss":
			if src.URL == "" {
				return &coreerrors.ValidationError{Field: field + ".url", Message: fmt.Sprintf("rss source %q needs a url", src.Name)}
			}
		case "ars_technica", "hackernews":
		default:
			return &coreerrors.ValidationError{Field: field + ".type", Message: fmt.Sprintf("unknown source type %q", src.Type)}
		}
		if src.Name == "" {
			return &coreerrors.ValidationError{Field: field + ".name", Message: "source name cannot be empty"}
		}
	}

	switch c.Output.Format {
	case "epub", "markdown", "md":
	default:
		return &coreerrors.ValidationError{Field: "output.format", Message: fmt.Sprintf("unsupported format %q (epub or markdown)", c.Output.Format)}
	}

	switch c.Cache.Type {
	case "none", "memory", "sqlite":
	case "redis":
		if c.Cache.Redis.Address == "" {
			return &coreerrors.ValidationError{Field: "cache.redis.address", Message: "redis address cannot be empty when using redis cache"}
		}
	default:
		return &coreerrors.ValidationError{Field: "cache.type", Message: "cache type must be one of none, memory, redis, sqlite"}
	}

	if c.FrontPage != nil && c.FrontPage.Enabled {
		switch strings.ToLower(c.FrontPage.Provider.Type) {
		case "openai", "ollama", "anthropic":
		default:
			return &coreerrors.ValidationError{Field: "front_page.provider.type", Message: fmt.Sprintf("unsupported provider %q", c.FrontPage.Provider.Type)}
		}
	}
	return nil
}

// AllSources returns Sources followed by the legacy Feeds converted to source entries
func (c *Config) AllSources() []SourceConfig {
	all := make([]SourceConfig, 0, len(c.Sources)+len(c.Feeds))
	all = append(all, c.Sources...)
	for _, feed := range c.Feeds {
		all = append(all, feed.Source())
	}
	return all
}

// ResolveSources returns AllSources followed by one rss source per feed of the
// OPML file, when one is configured.
func (c *Config) ResolveSources() ([]SourceConfig, error) {
	all := c.AllSources()
	if c.OPML == "" {
		return all, nil
	}

	entries, err := opml.ParseFile(c.OPMLPath())
	if err != nil {
		return nil, &coreerrors.ConfigError{Path: c.OPMLPath(), Err: err}
	}
	for _, entry := range entries {
		all = append(all, SourceConfig{
			Name:        entry.Title,
			Type:        "rss",
			URL:         entry.URL,
			Description: entry.Description,
		})
	}
	return all, nil
}

// Source converts a legacy feed entry
func (f FeedConfig) Source() SourceConfig {
	kind := strings.ToLower(strings.TrimSpace(f.Type))
	if kind == "" {
		kind = "rss"
	}
	src := SourceConfig{
		Name:        f.Name,
		Type:        kind,
		URL:         f.URL,
		Description: f.Description,
		APIToken:    f.APIToken,
	}
	if kind == "ars_technica" {
		if src.Name == "" {
			src.Name = "Ars Technica"
		}
		if src.Description == "" {
			src.Description = "Technology news and insights"
		}
	}
	return src
}

// OPMLPath resolves the configured OPML file against the config file directory
func (c *Config) OPMLPath() string {
	if c.OPML == "" || filepath.IsAbs(c.OPML) || c.dir == "" {
		return c.OPML
	}
	return filepath.Join(c.dir, c.OPML)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
