// Package config loads proposalgen settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "proposalgen.yaml"

// Store backends
const (
	BackendFile       = "file"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendS3         = "s3"
)

// Config is the full application configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
}

// DataConfig holds the filesystem roots the workspace is loaded from.
type DataConfig struct {
	Catalog          string `yaml:"catalog"`
	PricingRules     string `yaml:"pricing_rules"`
	KnowledgeDir     string `yaml:"knowledge_dir"`
	KnowledgePattern string `yaml:"knowledge_pattern"`
	OutDir           string `yaml:"out_dir"`
}

type DefaultsConfig struct {
	Currency    string  `yaml:"currency"`
	DiscountPct float64 `yaml:"discount_pct"`
	TopK        int     `yaml:"top_k"`
	Strategy    string  `yaml:"strategy"`
}

type ComplianceConfig struct {
	// ExtraBannedPhrases extend the built-in banned claims.
	ExtraBannedPhrases []string `yaml:"extra_banned_phrases"`
}

type StoreConfig struct {
	Backend    string           `yaml:"backend"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	S3         S3Config         `yaml:"s3"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxRequestSize int64         `yaml:"max_request_size"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	Watch          bool          `yaml:"watch"`
	CacheSize      int           `yaml:"cache_size"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Catalog:          "data/products.csv",
			PricingRules:     "data/pricing.json",
			KnowledgeDir:     "kb",
			KnowledgePattern: "**/*.md",
			OutDir:           "out",
		},
		Defaults: DefaultsConfig{
			Currency:    "INR",
			DiscountPct: 10,
			TopK:        5,
			Strategy:    "naive",
		},
		Store: StoreConfig{
			Backend: BackendFile,
			ClickHouse: ClickHouseConfig{
				Host:     "localhost",
				Port:     9000,
				Database: "proposals",
				Username: "default",
			},
			S3: S3Config{Prefix: "sessions"},
		},
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxRequestSize: 1 << 20,
			CORSOrigins:    []string{"*"},
			CacheSize:      256,
		},
	}
}

// LoadFromFile overlays the YAML file at path onto the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.NewConfigError(perrors.ErrCodeConfigInvalid, path, "cannot read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, perrors.NewConfigError(perrors.ErrCodeConfigInvalid, path, "malformed config file", err)
	}
	return cfg, nil
}

// Load resolves defaults, then the file (if present), then environment.
// A missing file is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(path); err == nil || explicit {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(msg string) error {
		return perrors.NewConfigError(perrors.ErrCodeConfigInvalid, "", msg, nil)
	}

	if strings.TrimSpace(c.Data.Catalog) == "" {
		return invalid("data.catalog is required")
	}
	if strings.TrimSpace(c.Data.PricingRules) == "" {
		return invalid("data.pricing_rules is required")
	}
	if c.Defaults.TopK < 0 {
		return invalid("defaults.top_k must not be negative")
	}
	if c.Defaults.DiscountPct < 0 {
		return invalid("defaults.discount_pct must not be negative")
	}
	if strings.TrimSpace(c.Defaults.Currency) == "" {
		return invalid("defaults.currency is required")
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Data.OutDir == "" {
			return invalid("data.out_dir is required for the file store")
		}
	case BackendPostgres:
		if c.Store.Postgres.DSN == "" {
			return invalid("store.postgres.dsn is required")
		}
	case BackendClickHouse:
		if c.Store.ClickHouse.Host == "" || c.Store.ClickHouse.Port <= 0 {
			return invalid("store.clickhouse host and port are required")
		}
	case BackendS3:
		if c.Store.S3.Bucket == "" {
			return invalid("store.s3.bucket is required")
		}
	default:
		return invalid(fmt.Sprintf("unknown store backend %q", c.Store.Backend))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port out of range")
	}
	return nil
}
