package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string // empty runs without a database; List serves the built-in links
		DSN    string // mysql DSNs must set parseTime=true
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	LLM struct {
		Provider string // "", "anthropic", "openai", "openai-compatible"
		APIKey   string
		Model    string
		BaseURL  string
		Prompt   string
		Timeout  time.Duration
	}
	Redis struct {
		Addr     string // empty disables the shared list cache
		Password string
		DB       int
		Prefix   string
		TTL      time.Duration
	}
	Log struct {
		Mode       string
		Dir        string
		Filename   string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
	AdminEmails     []string
	SessionLifetime time.Duration
	InsecureCookies bool
}

// OIDCEnabled reports whether single sign-on is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// Load reads config from environment (AFF_ prefix) and optional affilinks.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("affilinks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("redis.prefix", "affilinks")
	v.SetDefault("redis.ttl", "5m")
	v.SetDefault("log.mode", "stdout")
	v.SetDefault("log.filename", "affilinks.log")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.LLM.Provider = strings.ToLower(v.GetString("llm.provider"))
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.BaseURL = v.GetString("llm.base_url")
	cfg.LLM.Prompt = v.GetString("llm.prompt")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.Prefix = v.GetString("redis.prefix")
	cfg.Log.Mode = v.GetString("log.mode")
	cfg.Log.Dir = v.GetString("log.dir")
	cfg.Log.Filename = v.GetString("log.filename")
	cfg.Log.MaxSizeMB = v.GetInt("log.max_size_mb")
	cfg.Log.MaxBackups = v.GetInt("log.max_backups")
	cfg.Log.MaxAgeDays = v.GetInt("log.max_age_days")
	cfg.Log.Compress = v.GetBool("log.compress")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")
	cfg.AdminEmails = splitList(v.GetString("admin_emails"))

	var err error
	if cfg.SessionLifetime, err = time.ParseDuration(v.GetString("session.lifetime")); err != nil {
		return nil, fmt.Errorf("invalid AFF_SESSION_LIFETIME: %w", err)
	}
	if cfg.LLM.Timeout, err = time.ParseDuration(v.GetString("llm.timeout")); err != nil {
		return nil, fmt.Errorf("invalid AFF_LLM_TIMEOUT: %w", err)
	}
	if cfg.Redis.TTL, err = time.ParseDuration(v.GetString("redis.ttl")); err != nil {
		return nil, fmt.Errorf("invalid AFF_REDIS_TTL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "":
	case "sqlite3", "mysql", "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("AFF_DB_DSN is required when AFF_DB_DRIVER is set")
		}
		if c.DB.Driver == "mysql" {
			// Timestamps only scan into time.Time with parseTime=true.
			mc, err := mysql.ParseDSN(c.DB.DSN)
			if err != nil {
				return fmt.Errorf("invalid AFF_DB_DSN for mysql: %w", err)
			}
			if !mc.ParseTime {
				return fmt.Errorf("AFF_DB_DSN must set parseTime=true when AFF_DB_DRIVER is mysql")
			}
		}
	default:
		return fmt.Errorf("AFF_DB_DRIVER must be one of sqlite3, mysql, postgres (got %q)", c.DB.Driver)
	}

	if c.OIDC.Issuer != "" || c.OIDC.ClientID != "" || c.OIDC.ClientSecret != "" || c.OIDC.RedirectURL != "" {
		if c.OIDC.Issuer == "" {
			return fmt.Errorf("AFF_OIDC_ISSUER is required when any AFF_OIDC_* is set")
		}
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("AFF_OIDC_CLIENT_ID is required when AFF_OIDC_ISSUER is set")
		}
		if c.OIDC.ClientSecret == "" {
			return fmt.Errorf("AFF_OIDC_CLIENT_SECRET is required when AFF_OIDC_ISSUER is set")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("AFF_OIDC_REDIRECT_URL is required when AFF_OIDC_ISSUER is set")
		}
	}

	switch c.LLM.Provider {
	case "":
	case "anthropic", "openai", "openai-compatible":
		if c.LLM.APIKey == "" && c.LLM.Provider != "openai-compatible" {
			return fmt.Errorf("AFF_LLM_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("AFF_LLM_PROVIDER must be anthropic, openai or openai-compatible (got %q)", c.LLM.Provider)
	}
	return nil
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
