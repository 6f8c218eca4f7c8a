// Package config provides configuration management for BuildTrack.
// It supports loading configuration from environment variables, config files, and defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration sections for BuildTrack.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Auth     AuthConfig     `mapstructure:"auth"`
	I18n     I18nConfig     `mapstructure:"i18n"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"readTimeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"writeTimeout"` // in seconds
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig holds database connection configuration.
// Driver is "sqlite" (default, uses Path) or "postgres" (uses the host fields).
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
	SSLMode  string `mapstructure:"sslMode"`
	MaxConns int    `mapstructure:"maxConns"`
	MinConns int    `mapstructure:"minConns"`
}

// NATSConfig holds NATS messaging configuration. An empty URL selects the in-memory bus.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	ClientID      string `mapstructure:"clientId"`
	MaxReconnects int    `mapstructure:"maxReconnects"`
}

// AuthConfig describes how sessions issued by the hosted identity provider are verified.
type AuthConfig struct {
	// ProviderURL is the identity provider base URL, informational and used to
	// derive JWKSURL when that is empty.
	ProviderURL string `mapstructure:"providerUrl"`
	// JWTSecret enables HS256 verification with a shared secret.
	JWTSecret string `mapstructure:"jwtSecret"`
	// JWKSURL enables asymmetric verification against the provider's key set.
	JWKSURL    string `mapstructure:"jwksUrl"`
	Issuer     string `mapstructure:"issuer"`
	Audience   string `mapstructure:"audience"`
	CookieName string `mapstructure:"cookieName"`
	// DevUserID authenticates every request as this user when no verifier is configured.
	DevUserID string `mapstructure:"devUserId"`
}

// I18nConfig holds the translation loader configuration.
type I18nConfig struct {
	MessagesDir   string        `mapstructure:"messagesDir"`
	DefaultLocale string        `mapstructure:"defaultLocale"`
	CacheTTL      time.Duration `mapstructure:"cacheTTL"`
	Watch         bool          `mapstructure:"watch"`

	// Remote translation-management service. Disabled when ServiceURL is empty.
	ServiceURL       string `mapstructure:"serviceUrl"`
	ServiceAPIKey    string `mapstructure:"serviceApiKey"`
	ServiceProjectID string `mapstructure:"serviceProjectId"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
}

// TracingConfig holds OTLP exporter configuration. Tracing is a no-op when Endpoint is empty.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"serviceName"`
}

// ReadTimeoutDuration returns the read timeout as a time.Duration.
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a time.Duration.
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// Addr returns host:port for the HTTP listener.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsPostgres reports whether the postgres driver is selected.
func (d *DatabaseConfig) IsPostgres() bool {
	return strings.EqualFold(d.Driver, "postgres")
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// ResolvedJWKSURL returns JWKSURL, or the provider's well-known key set location
// when only ProviderURL is configured.
func (a *AuthConfig) ResolvedJWKSURL() string {
	if a.JWKSURL != "" {
		return a.JWKSURL
	}
	if a.ProviderURL == "" || a.JWTSecret != "" {
		return ""
	}
	return strings.TrimRight(a.ProviderURL, "/") + "/.well-known/jwks.json"
}

// RemoteEnabled reports whether the translation service should be queried.
func (i *I18nConfig) RemoteEnabled() bool {
	return i.ServiceURL != ""
}

func detectDefaultLogFormat() string {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "json"
	}
	if env := os.Getenv("BUILDTRACK_ENV"); env == "production" || env == "prod" {
		return "json"
	}
	return "text"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.allowedOrigins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./buildtrack.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "buildtrack")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbName", "buildtrack")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxConns", 25)
	v.SetDefault("database.minConns", 5)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.clientId", "buildtrack")
	v.SetDefault("nats.maxReconnects", 10)

	v.SetDefault("auth.providerUrl", "")
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.jwksUrl", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.cookieName", "bt_session")
	v.SetDefault("auth.devUserId", "")

	v.SetDefault("i18n.messagesDir", "")
	v.SetDefault("i18n.defaultLocale", "en")
	v.SetDefault("i18n.cacheTTL", time.Hour)
	v.SetDefault("i18n.watch", true)
	v.SetDefault("i18n.serviceUrl", "")
	v.SetDefault("i18n.serviceApiKey", "")
	v.SetDefault("i18n.serviceProjectId", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", detectDefaultLogFormat())
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.serviceName", "buildtrack")
}

// Load reads configuration from environment variables, config file, and defaults.
// Environment variables use the prefix BUILDTRACK_ with "." replaced by "_".
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from the specified directory or the default locations.
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BUILDTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not map camelCase keys to SNAKE_CASE variables.
	_ = v.BindEnv("database.dbName", "BUILDTRACK_DATABASE_DB_NAME")
	_ = v.BindEnv("auth.jwtSecret", "BUILDTRACK_AUTH_JWT_SECRET")
	_ = v.BindEnv("auth.jwksUrl", "BUILDTRACK_AUTH_JWKS_URL")
	_ = v.BindEnv("auth.providerUrl", "BUILDTRACK_AUTH_PROVIDER_URL")
	_ = v.BindEnv("auth.devUserId", "BUILDTRACK_AUTH_DEV_USER_ID")
	_ = v.BindEnv("i18n.messagesDir", "BUILDTRACK_I18N_MESSAGES_DIR")
	_ = v.BindEnv("i18n.serviceUrl", "BUILDTRACK_I18N_SERVICE_URL")
	_ = v.BindEnv("i18n.serviceApiKey", "BUILDTRACK_I18N_SERVICE_API_KEY")
	_ = v.BindEnv("i18n.serviceProjectId", "BUILDTRACK_I18N_SERVICE_PROJECT_ID")
	_ = v.BindEnv("tracing.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT", "BUILDTRACK_TRACING_ENDPOINT")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/buildtrack/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate collects every configuration problem into one error.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	switch strings.ToLower(cfg.Database.Driver) {
	case "sqlite":
		if cfg.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite driver")
		}
	case "postgres":
		if cfg.Database.Host == "" {
			errs = append(errs, "database.host is required for the postgres driver")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			errs = append(errs, "database.port must be between 1 and 65535")
		}
		if cfg.Database.User == "" {
			errs = append(errs, "database.user is required for the postgres driver")
		}
		if cfg.Database.DBName == "" {
			errs = append(errs, "database.dbName is required for the postgres driver")
		}
	default:
		errs = append(errs, "database.driver must be one of: sqlite, postgres")
	}

	if cfg.Auth.JWTSecret == "" && cfg.Auth.ResolvedJWKSURL() == "" && cfg.Auth.DevUserID == "" {
		errs = append(errs, "auth: one of jwtSecret, jwksUrl, providerUrl or devUserId must be set")
	}
	if cfg.Auth.CookieName == "" {
		errs = append(errs, "auth.cookieName must not be empty")
	}

	if cfg.I18n.DefaultLocale == "" {
		errs = append(errs, "i18n.defaultLocale must not be empty")
	}
	if cfg.I18n.CacheTTL <= 0 {
		errs = append(errs, "i18n.cacheTTL must be positive")
	}
	if cfg.I18n.RemoteEnabled() && cfg.I18n.ServiceProjectID == "" {
		errs = append(errs, "i18n.serviceProjectId is required when i18n.serviceUrl is set")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text, console")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
