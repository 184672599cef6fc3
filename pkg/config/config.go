// Package config loads backoffice settings from defaults, YAML and RECLIQ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/recliq/go-backoffice/components/backoffice"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECLIQ_"

const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"

	SourceStatic = "static"
	SourceSQLite = "sqlite"
	SourceHTTP   = "http"
)

// Config is the complete backoffice configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	Sessions SessionsConfig `yaml:"sessions"`
	Source   SourceConfig   `yaml:"source"`
	Tables   TablesConfig   `yaml:"tables"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Charts   ChartsConfig   `yaml:"charts"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	JWTSecret   string                `yaml:"jwt_secret"`
	SessionTTL  time.Duration         `yaml:"session_ttl"`
	Operators   []backoffice.Operator `yaml:"operators"`
	ActionRoles []string              `yaml:"action_roles"`
	ViewRoles   []string              `yaml:"view_roles"`
}

type SessionsConfig struct {
	Driver        string `yaml:"driver"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type SourceConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
}

type TablesConfig struct {
	Manifest string `yaml:"manifest"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type ChartsConfig struct {
	Theme      string        `yaml:"theme"`
	AssetsHost string        `yaml:"assets_host"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in configuration. It has no JWT secret or
// operators, so ValidateServer fails until they are supplied.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080", BasePath: "/admin"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Auth:     AuthConfig{SessionTTL: backoffice.DefaultSessionTTL, ActionRoles: append([]string(nil), backoffice.DefaultActionRoles...)},
		Sessions: SessionsConfig{Driver: SessionsMemory},
		Source:   SourceConfig{Driver: SourceStatic},
		Charts:   ChartsConfig{CacheTTL: 5 * time.Minute},
	}
}

// Load applies defaults, the optional YAML file at path, a .env file in the
// working directory, then RECLIQ_* variables, and validates the result.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		if err := Decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML from r onto cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from RECLIQ_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	str := func(name string, target *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*target = strings.TrimSpace(v)
		}
	}
	list := func(name string, target *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*target = splitList(v)
		}
	}
	duration := func(name string, target *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*target = d
		return nil
	}

	str("SERVER_ADDR", &c.Server.Addr)
	str("BASE_PATH", &c.Server.BasePath)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	list("ACTION_ROLES", &c.Auth.ActionRoles)
	list("VIEW_ROLES", &c.Auth.ViewRoles)
	str("SESSION_DRIVER", &c.Sessions.Driver)
	str("REDIS_ADDR", &c.Sessions.RedisAddr)
	str("REDIS_PASSWORD", &c.Sessions.RedisPassword)
	str("SOURCE_DRIVER", &c.Source.Driver)
	str("SQLITE_PATH", &c.Source.SQLitePath)
	str("SOURCE_URL", &c.Source.BaseURL)
	str("SOURCE_API_KEY", &c.Source.APIKey)
	str("TABLES_MANIFEST", &c.Tables.Manifest)
	str("METRICS_ADDR", &c.Metrics.Addr)
	str("CHART_THEME", &c.Charts.Theme)
	str("CHART_ASSETS_HOST", &c.Charts.AssetsHost)
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sREDIS_DB: %w", EnvPrefix, err)
		}
		c.Sessions.RedisDB = db
	}
	return errors.Join(
		duration("SESSION_TTL", &c.Auth.SessionTTL),
		duration("CHART_CACHE_TTL", &c.Charts.CacheTTL),
	)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	for i, op := range c.Auth.Operators {
		if op.Email == "" || op.AccessKey == "" {
			errs = append(errs, fmt.Errorf("auth.operators[%d] needs email and access_key", i))
		}
	}
	switch c.Sessions.Driver {
	case SessionsMemory:
	case SessionsRedis:
		if c.Sessions.RedisAddr == "" {
			errs = append(errs, errors.New("sessions.redis_addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("sessions.driver %q must be memory or redis", c.Sessions.Driver))
	}
	switch c.Source.Driver {
	case SourceStatic:
	case SourceSQLite:
		if c.Source.SQLitePath == "" {
			errs = append(errs, errors.New("source.sqlite_path is required for the sqlite driver"))
		}
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			errs = append(errs, errors.New("source.base_url is required for the http driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.driver %q must be static, sqlite or http", c.Source.Driver))
	}
	if c.Charts.CacheTTL < 0 {
		errs = append(errs, errors.New("charts.cache_ttl must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateServer adds the checks only a running server needs.
func (c Config) ValidateServer() error {
	var errs []error
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("config: auth.jwt_secret is required to serve"))
	}
	if len(c.Auth.Operators) == 0 {
		errs = append(errs, errors.New("config: auth.operators must list at least one operator to serve"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
