// Package config provides unified configuration for the Glue metastore adapter.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv.
const EnvPrefix = "GLUEMETA_"

// MaxPageSize is the largest page size the Glue listing APIs accept.
const MaxPageSize = 100

// Config holds the unified configuration for the metastore adapter.
type Config struct {
	// Glue catalog connection configuration
	Glue GlueConfig `json:"glue" yaml:"glue"`

	// Storage configuration used to honor deleteData
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Log configuration
	Log LogConfig `json:"log" yaml:"log"`
}

// GlueConfig holds Glue Data Catalog client configuration.
type GlueConfig struct {
	// Region is the AWS region of the catalog
	Region string `json:"region" yaml:"region"`

	// Endpoint overrides the Glue endpoint (for LocalStack, moto, etc.)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Profile selects a shared config profile
	Profile string `json:"profile" yaml:"profile"`

	// CatalogID is the AWS account id owning the catalog; empty means the caller's account
	CatalogID string `json:"catalog_id" yaml:"catalog_id"`

	// PageSize is the number of entries requested per listing page (1–100, default 100)
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxAttempts is the SDK retry budget per call; 0 keeps the SDK default
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// AccessKeyID and SecretAccessKey select static credentials when both are set
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// DeleteData enables removal of managed table and partition data on drop
	DeleteData bool `json:"delete_data" yaml:"delete_data"`

	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage root (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, off
	Level string `json:"level" yaml:"level"`

	// JSON switches the log format to JSON lines
	JSON bool `json:"json" yaml:"json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Glue: GlueConfig{
			Region:   "us-east-1",
			PageSize: MaxPageSize,
		},
		Storage: StorageConfig{
			DeleteData: false,
			Type:       "s3",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Glue.Region == "" {
		return fmt.Errorf("glue.region is required")
	}

	if c.Glue.PageSize < 1 || c.Glue.PageSize > MaxPageSize {
		return fmt.Errorf("glue.page_size must be between 1 and %d, got %d", MaxPageSize, c.Glue.PageSize)
	}

	if c.Glue.MaxAttempts < 0 {
		return fmt.Errorf("glue.max_attempts must not be negative, got %d", c.Glue.MaxAttempts)
	}

	if (c.Glue.AccessKeyID == "") != (c.Glue.SecretAccessKey == "") {
		return fmt.Errorf("glue.access_key_id and glue.secret_access_key must be set together")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.DeleteData && c.Storage.Type == "local" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required when delete_data is enabled with local storage")
	}

	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GLUEMETA_ prefix. AWS_REGION is honored
// when GLUEMETA_GLUE_REGION is unset.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Glue.Region = v
	}

	// Glue configuration
	if v := getenv("GLUE_REGION"); v != "" {
		cfg.Glue.Region = v
	}
	if v := getenv("GLUE_ENDPOINT"); v != "" {
		cfg.Glue.Endpoint = v
	}
	if v := getenv("GLUE_PROFILE"); v != "" {
		cfg.Glue.Profile = v
	}
	if v := getenv("GLUE_CATALOG_ID"); v != "" {
		cfg.Glue.CatalogID = v
	}
	if v := getenv("GLUE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Glue.PageSize = n
		}
	}
	if v := getenv("GLUE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Glue.MaxAttempts = n
		}
	}
	if v := getenv("GLUE_ACCESS_KEY_ID"); v != "" {
		cfg.Glue.AccessKeyID = v
	}
	if v := getenv("GLUE_SECRET_ACCESS_KEY"); v != "" {
		cfg.Glue.SecretAccessKey = v
	}

	// Storage configuration
	if v := getenv("STORAGE_DELETE_DATA"); v != "" {
		cfg.Storage.DeleteData = v == "true" || v == "1"
	}
	if v := getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := getenv("STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := getenv("S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := getenv("S3_USE_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}

	// Log configuration
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("LOG_JSON"); v != "" {
		cfg.Log.JSON = v == "true" || v == "1"
	}
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}
