// Package config handles loading and parsing application configuration.
// It supports two sources for the config file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// A .env file in the working directory, if present, is loaded into the
// process environment first, so every env:"..." override below can also
// come from that file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environments recognised by Env.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format, verbosity, and whether fault details are
	// returned to clients. Valid values: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	HTTPServer `yaml:"http_server"`
	Storage    Storage `yaml:"storage"`
	JWT        JWT     `yaml:"jwt"`
	Auth       Auth    `yaml:"auth"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr            string        `yaml:"address"          env:"HTTP_SERVER_ADDR" env-required:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Storage selects the relational backend.
type Storage struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	// DSN is the connection string: a file path (or ":memory:") for
	// sqlite, a libpq-style URL or keyword string for postgres.
	DSN string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true"`
}

// JWT mirrors the Jwt.* options: signing key, issuer, audience and
// token lifetime in minutes.
type JWT struct {
	Key               string `yaml:"key"                 env:"JWT_KEY"                 env-required:"true"`
	Issuer            string `yaml:"issuer"              env:"JWT_ISSUER"              env-required:"true"`
	Audience          string `yaml:"audience"            env:"JWT_AUDIENCE"            env-required:"true"`
	DurationInMinutes int    `yaml:"duration_in_minutes" env:"JWT_DURATION_IN_MINUTES" env-default:"60"`
}

// Duration returns the configured token lifetime.
func (j JWT) Duration() time.Duration {
	return time.Duration(j.DurationInMinutes) * time.Minute
}

// Auth is the single operator credential accepted by /auth/login.
// When PasswordHash (bcrypt) is set it takes precedence over Password.
type Auth struct {
	Username     string `yaml:"username"      env:"AUTH_USERNAME"      env-required:"true"`
	Password     string `yaml:"password"      env:"AUTH_PASSWORD"`
	PasswordHash string `yaml:"password_hash" env:"AUTH_PASSWORD_HASH"`
}

// IsDevelopment reports whether full fault details may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDev
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported storage driver %q", c.Storage.Driver)
	}
	if len(c.JWT.Key) < 32 {
		return errors.New("config: jwt.key must be at least 32 bytes for HS256")
	}
	if c.JWT.DurationInMinutes <= 0 {
		return errors.New("config: jwt.duration_in_minutes must be positive")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return errors.New("config: one of auth.password or auth.password_hash is required")
	}
	return nil
}

// Load reads the config file at path, applies env overrides and
// validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad resolves the config path, loads it, and exits on failure.
// If this function returns, the config is guaranteed valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}

	return cfg
}
