package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Url          string `yaml:"url"`
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

type RedisConfig struct {
	Url    string `yaml:"url"`
	Stream string `yaml:"stream"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

type SessionConfig struct {
	CookieName   string `yaml:"cookieName"`
	CookieSecure bool   `yaml:"cookieSecure"`
}

type Config struct {
	Env           string         `yaml:"env"`
	Port          string         `yaml:"port"`
	Memory        bool           `yaml:"memory"`
	MigrationsDir string         `yaml:"migrationsDir"`
	VersionFile   string         `yaml:"versionFile"`
	Database      DatabaseConfig `yaml:"database"`
	Redis         RedisConfig    `yaml:"redis"`
	Log           LogConfig      `yaml:"log"`
	Session       SessionConfig  `yaml:"session"`
}

func Default() Config {
	return Config{
		Env:           "development",
		Port:          "8088",
		MigrationsDir: "migrations",
		VersionFile:   "version.txt",
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Log: LogConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Session: SessionConfig{
			CookieName: "postboard_session",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.ApplyEnv(os.Getenv)

	return cfg, nil
}

func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Env, "GOENV")
	set(&c.Port, "PORT")
	set(&c.MigrationsDir, "MIGRATIONS_DIR")
	set(&c.Database.Url, "DATABASE_URL")
	set(&c.Database.Host, "DB_HOST")
	set(&c.Database.Port, "DB_PORT")
	set(&c.Database.User, "DB_USER")
	set(&c.Database.Password, "DB_PASSWORD")
	set(&c.Database.Name, "DB_NAME")
	set(&c.Redis.Url, "REDIS_URL")
	set(&c.Log.File, "LOG_FILE")

	if v := getenv("SESSION_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Session.CookieSecure = b
		}
	}

	if c.Env == "production" && c.Database.MaxOpenConns == Default().Database.MaxOpenConns {
		c.Database.MaxOpenConns = 50
		c.Database.MaxIdleConns = 20
	}
}

// DatabaseUrl returns the configured url, or builds one from the individual settings
// when all of them are present.
func (c Config) DatabaseUrl() string {
	d := c.Database
	if d.Url != "" {
		return d.Url
	}

	if d.Host != "" && d.Port != "" && d.User != "" && d.Password != "" && d.Name != "" {
		encodedPassword := url.QueryEscape(d.Password)
		return "postgres://" + d.User + ":" + encodedPassword + "@" + d.Host + ":" + d.Port + "/" + d.Name
	}

	return ""
}

func (c Config) IsDev() bool {
	return c.Env == "development"
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must be set")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if !c.Memory && c.DatabaseUrl() == "" {
		return errors.New("DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, and DB_NAME environment variables must be set")
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name must be set")
	}
	return nil
}
