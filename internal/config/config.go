package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/claude/workouthub/internal/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Tailscale  TailscaleConfig  `yaml:"tailscale"`
	Conversion ConversionConfig `yaml:"conversion"`
	State      StateConfig      `yaml:"state"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig locates the PostgreSQL conversion log. The log is optional;
// when Enabled is false no connection is made.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// ConversionConfig holds the defaults adapters fall back on.
type ConversionConfig struct {
	DefaultSport string `yaml:"default_sport"`
	// TolerancePolicy is an optional YAML or JSON policy file; empty means
	// the built-in policy.
	TolerancePolicy string `yaml:"tolerance_policy"`
}

type StateConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Sport returns the configured default sport, or generic when unset.
func (c ConversionConfig) Sport() models.Sport {
	if s, ok := models.ParseSport(c.DefaultSport); ok {
		return s
	}
	return models.SportGeneric
}

// SlogLevel maps the configured level name; unknown names mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load reads config from a YAML file, loads a .env file from the working
// directory if one exists, then applies environment variable overrides.
// Env vars use the prefix WORKOUTHUB_ and underscore-separated paths:
//
//	WORKOUTHUB_SERVER_HOST, WORKOUTHUB_SERVER_PORT,
//	WORKOUTHUB_DB_ENABLED, WORKOUTHUB_DB_HOST, WORKOUTHUB_DB_PORT, WORKOUTHUB_DB_NAME,
//	WORKOUTHUB_DB_USER, WORKOUTHUB_DB_PASSWORD, WORKOUTHUB_DB_SSLMODE,
//	WORKOUTHUB_AUTH_API_KEY,
//	WORKOUTHUB_TAILSCALE_ENABLED, WORKOUTHUB_TAILSCALE_HOSTNAME, WORKOUTHUB_TAILSCALE_STATE_DIR,
//	WORKOUTHUB_DEFAULT_SPORT, WORKOUTHUB_TOLERANCE_POLICY,
//	WORKOUTHUB_STATE_DIR, WORKOUTHUB_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "WORKOUTHUB_SERVER_HOST")
	setInt(&cfg.Server.Port, "WORKOUTHUB_SERVER_PORT")

	setBool(&cfg.Database.Enabled, "WORKOUTHUB_DB_ENABLED")
	setString(&cfg.Database.Host, "WORKOUTHUB_DB_HOST")
	setInt(&cfg.Database.Port, "WORKOUTHUB_DB_PORT")
	setString(&cfg.Database.Name, "WORKOUTHUB_DB_NAME")
	setString(&cfg.Database.User, "WORKOUTHUB_DB_USER")
	setString(&cfg.Database.Password, "WORKOUTHUB_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "WORKOUTHUB_DB_SSLMODE")

	setString(&cfg.Auth.APIKey, "WORKOUTHUB_AUTH_API_KEY")

	setBool(&cfg.Tailscale.Enabled, "WORKOUTHUB_TAILSCALE_ENABLED")
	setString(&cfg.Tailscale.Hostname, "WORKOUTHUB_TAILSCALE_HOSTNAME")
	setString(&cfg.Tailscale.StateDir, "WORKOUTHUB_TAILSCALE_STATE_DIR")

	setString(&cfg.Conversion.DefaultSport, "WORKOUTHUB_DEFAULT_SPORT")
	setString(&cfg.Conversion.TolerancePolicy, "WORKOUTHUB_TOLERANCE_POLICY")
	setString(&cfg.State.Dir, "WORKOUTHUB_STATE_DIR")
	setString(&cfg.Log.Level, "WORKOUTHUB_LOG_LEVEL")
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if s := c.Conversion.DefaultSport; s != "" {
		if _, ok := models.ParseSport(s); !ok {
			return fmt.Errorf("conversion.default_sport %q is not a known sport", s)
		}
	}
	return nil
}
