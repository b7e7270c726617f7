// Package config loads service configuration from an optional YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"elafcatalog/internal/logging"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Minio    MinioConfig    `koanf:"minio"`
	Auth     AuthConfig     `koanf:"auth"`
	Tree     TreeConfig     `koanf:"tree"`
	Jobs     JobsConfig     `koanf:"jobs"`
	Log      logging.Config `koanf:"log"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type MinioConfig struct {
	Endpoint  string        `koanf:"endpoint"`
	AccessKey string        `koanf:"access_key"`
	SecretKey string        `koanf:"secret_key"`
	UseSSL    bool          `koanf:"use_ssl"`
	Bucket    string        `koanf:"bucket"`
	URLExpiry time.Duration `koanf:"url_expiry"`
}

// AuthConfig selects how bearer tokens are verified. JWKSURL wins over
// JWTSecret when both are set.
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	JWKSURL   string `koanf:"jwks_url"`
}

type TreeConfig struct {
	RejectCycles bool          `koanf:"reject_cycles"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

type JobsConfig struct {
	Enabled          bool          `koanf:"enabled"`
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`
}

// Load reads the YAML file named by CONFIG_FILE, if any, then applies
// environment overrides such as DATABASE_URL or MINIO_ACCESS_KEY.
func Load() (*Config, error) {
	return LoadWithFile(os.Getenv("CONFIG_FILE"))
}

// LoadWithFile loads configuration from path (skipped when empty), then
// overrides with environment variables. SECTION_FIELD_NAME maps to
// section.field_name.
func LoadWithFile(path string) (*Config, error) {
	var content []byte
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
		}
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return load(content)
}

func load(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

var sections = map[string]bool{
	"server": true, "database": true, "redis": true, "minio": true,
	"auth": true, "tree": true, "jobs": true, "log": true,
}

// envKey maps REDIS_ADDR to redis.addr and MINIO_ACCESS_KEY to
// minio.access_key. Variables outside a known section are ignored.
func envKey(s string) string {
	parts := strings.SplitN(strings.ToLower(s), "_", 2)
	if len(parts) != 2 || !sections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Minio.Endpoint == "" {
		cfg.Minio.Endpoint = "localhost:9000"
	}
	if cfg.Minio.AccessKey == "" {
		cfg.Minio.AccessKey = "minioadmin"
	}
	if cfg.Minio.SecretKey == "" {
		cfg.Minio.SecretKey = "minioadmin"
	}
	if cfg.Minio.Bucket == "" {
		cfg.Minio.Bucket = "category-trees"
	}
	if cfg.Minio.URLExpiry == 0 {
		cfg.Minio.URLExpiry = time.Hour
	}
	if cfg.Tree.CacheTTL == 0 {
		cfg.Tree.CacheTTL = 30 * time.Minute
	}
	if cfg.Jobs.RefreshInterval == 0 {
		cfg.Jobs.RefreshInterval = 15 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required (DATABASE_URL)")
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		return errors.New("auth.jwt_secret (AUTH_JWT_SECRET) or auth.jwks_url (AUTH_JWKS_URL) is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative")
	}
	if c.Tree.CacheTTL < 0 {
		return fmt.Errorf("tree.cache_ttl must not be negative")
	}
	if c.Jobs.SnapshotInterval < 0 {
		return fmt.Errorf("jobs.snapshot_interval must not be negative")
	}
	return nil
}
