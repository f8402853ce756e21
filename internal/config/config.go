package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ORGANIZER"

// Config keeps runtime settings for the organizer.
type Config struct {
	Listen        string         `mapstructure:"listen"         yaml:"listen"`
	Env           string         `mapstructure:"env"            yaml:"env"`
	SessionSecret string         `mapstructure:"session_secret" yaml:"session_secret"`
	Timezone      string         `mapstructure:"timezone"       yaml:"timezone"`
	ItemsPerPage  int            `mapstructure:"items_per_page" yaml:"items_per_page"`
	Database      DatabaseConfig `mapstructure:"database"       yaml:"database"`
	Log           LogConfig      `mapstructure:"log"            yaml:"log"`
	Telegram      TelegramConfig `mapstructure:"telegram"       yaml:"telegram"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn"    yaml:"dsn"`
}

type TelegramConfig struct {
	Token      string `mapstructure:"token"       yaml:"token"`
	DigestTime string `mapstructure:"digest_time" yaml:"digest_time"`
}

// Enabled reports whether the Telegram bot should run.
func (t TelegramConfig) Enabled() bool {
	return strings.TrimSpace(t.Token) != ""
}

// Load reads configuration from an optional YAML file, .env files and ORGANIZER_* environment
// variables, in increasing order of precedence. Flags bound from fs win over everything.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	loadDotEnv(path)
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/organizer")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names kept from the single-binary bot deployment.
	_ = v.BindEnv("telegram.token", envPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_TOKEN")
	_ = v.BindEnv("database.dsn", envPrefix+"_DATABASE_DSN", "DATABASE_URL")

	if fs != nil {
		bindFlag(v, fs, "listen", "listen")
		bindFlag(v, fs, "log.level", "log-level")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) {
	envFiles := []string{".env", ".env.local"}
	dirs := []string{"."}
	if path != "" {
		dirs = append(dirs, filepath.Dir(path))
	}
	for _, dir := range dirs {
		for _, name := range envFiles {
			// Missing files are fine.
			_ = godotenv.Load(filepath.Join(dir, name))
		}
	}
}

func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) {
	if f := fs.Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if c.ItemsPerPage <= 0 {
		return fmt.Errorf("items_per_page must be positive, got %d", c.ItemsPerPage)
	}
	if _, err := time.Parse("15:04", c.Telegram.DigestTime); err != nil {
		return fmt.Errorf("telegram.digest_time %q, expected HH:MM", c.Telegram.DigestTime)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InsecureSecret reports whether the built-in development session secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.SessionSecret == defaultSessionSecret
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
