package file

import (
	"os"
	"strconv"
	"time"
)

// Config is the full server configuration. Values come from the TOML
// file first, then environment variables override individual fields.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Cache      CacheConfig      `toml:"cache"`
	Descope    DescopeConfig    `toml:"descope"`
	Cequence   CequenceConfig   `toml:"cequence"`
	Google     GoogleConfig     `toml:"google"`
	Notion     NotionConfig     `toml:"notion"`
	Slack      SlackConfig      `toml:"slack"`
	Confluence ConfluenceConfig `toml:"confluence"`
}

// ServerConfig controls the HTTP listener and the auth gate.
type ServerConfig struct {
	Port         int  `toml:"port"`
	AuthEnabled  bool `toml:"auth_enabled"`
	ProxyEnabled bool `toml:"proxy_enabled"`
}

// CacheConfig controls the result cache and its per-operation TTLs.
type CacheConfig struct {
	Enabled           bool `toml:"enabled"`
	SearchTTLSeconds  int  `toml:"search_ttl_seconds"`
	DocumentTTLSecond int  `toml:"document_ttl_seconds"`
	UpdatesTTLSeconds int  `toml:"updates_ttl_seconds"`
}

// SearchTTL returns the search cache TTL as a duration.
func (c CacheConfig) SearchTTL() time.Duration {
	return time.Duration(c.SearchTTLSeconds) * time.Second
}

// DocumentTTL returns the document cache TTL as a duration.
func (c CacheConfig) DocumentTTL() time.Duration {
	return time.Duration(c.DocumentTTLSecond) * time.Second
}

// UpdatesTTL returns the updates cache TTL as a duration.
func (c CacheConfig) UpdatesTTL() time.Duration {
	return time.Duration(c.UpdatesTTLSeconds) * time.Second
}

// DescopeConfig identifies the Descope project used for token validation.
type DescopeConfig struct {
	ProjectID string `toml:"project_id"`
}

// CequenceConfig holds the shared secret for the gateway trust header.
type CequenceConfig struct {
	SigningSecret string `toml:"signing_secret"`
}

// GoogleConfig points at the stored Drive OAuth token.
type GoogleConfig struct {
	TokenPath string `toml:"token_path"`
}

// NotionConfig holds the Notion integration token.
type NotionConfig struct {
	Token string `toml:"token"`
}

// SlackConfig holds the Slack user token.
type SlackConfig struct {
	Token string `toml:"token"`
}

// ConfluenceConfig holds the Confluence Cloud site and credentials.
type ConfluenceConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Email   string `toml:"email"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8000,
			AuthEnabled:  true,
			ProxyEnabled: false,
		},
		Cache: CacheConfig{
			Enabled:           true,
			SearchTTLSeconds:  300,
			DocumentTTLSecond: 600,
			UpdatesTTLSeconds: 300,
		},
	}
}

// applyEnv overrides fields from environment variables.
func applyEnv(cfg *Config) {
	envInt("PORT", &cfg.Server.Port)
	envBool("AUTH_ENABLED", &cfg.Server.AuthEnabled)
	envBool("PROXY_ENABLED", &cfg.Server.ProxyEnabled)

	envBool("CACHE_ENABLED", &cfg.Cache.Enabled)
	envInt("SEARCH_CACHE_TTL", &cfg.Cache.SearchTTLSeconds)
	envInt("DOCUMENT_CACHE_TTL", &cfg.Cache.DocumentTTLSecond)
	envInt("UPDATES_CACHE_TTL", &cfg.Cache.UpdatesTTLSeconds)

	envString("DESCOPE_PROJECT_ID", &cfg.Descope.ProjectID)
	envString("CEQUENCE_SIGNING_SECRET", &cfg.Cequence.SigningSecret)
	envString("GOOGLE_TOKEN_PATH", &cfg.Google.TokenPath)
	envString("NOTION_TOKEN", &cfg.Notion.Token)
	envString("SLACK_TOKEN", &cfg.Slack.Token)
	envString("CONFLUENCE_BASE_URL", &cfg.Confluence.BaseURL)
	envString("CONFLUENCE_TOKEN", &cfg.Confluence.Token)
	envString("CONFLUENCE_EMAIL", &cfg.Confluence.Email)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
