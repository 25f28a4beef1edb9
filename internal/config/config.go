package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Operator    OperatorConfig  `yaml:"operator"`
	Session     SessionConfig   `yaml:"session"`
	Blob        BlobConfig      `yaml:"blob"`
	Image       ImageConfig     `yaml:"image"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	// URL is the direct connection used for migrations.
	URL string `yaml:"url"`
	// PoolURL, when set, is the pooled connection the server uses for
	// request traffic (e.g. a pgbouncer or Supabase pooler endpoint).
	PoolURL        string `yaml:"pool_url"`
	MaxConnections int    `yaml:"max_connections"`
}

// OperatorConfig is the single configured credential pair. Secret may
// be a plaintext secret or a bcrypt hash.
type OperatorConfig struct {
	Username string `yaml:"username"`
	Secret   string `yaml:"secret"`
}

type SessionConfig struct {
	// Secret is the master secret keys are derived from.
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type BlobConfig struct {
	// Backend selects where profile pictures live: "inline" encodes
	// them into the user record, "s3" stores objects in a bucket.
	Backend    string `yaml:"backend"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
}

type ImageConfig struct {
	MaxBytes int `yaml:"max_bytes"`
	Size     int `yaml:"size"`
}

type RateLimitConfig struct {
	PerMinute      int `yaml:"per_minute"`
	LoginPerMinute int `yaml:"login_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration from environment variables, optionally
// overlaid with a YAML file when path is non-empty. Environment values
// win over file values so deployments can patch a shared file.
func Load(path string) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			PoolURL:        getEnv("DATABASE_POOL_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 10),
		},
		Operator: OperatorConfig{
			Username: getEnv("OPERATOR_USERNAME", ""),
			Secret:   getEnv("OPERATOR_SECRET", ""),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			TTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		},
		Blob: BlobConfig{
			Backend:    getEnv("BLOB_BACKEND", "inline"),
			S3Bucket:   getEnv("S3_BUCKET", ""),
			S3Region:   getEnv("S3_REGION", ""),
			S3Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Image: ImageConfig{
			MaxBytes: getEnvInt("MAX_IMAGE_BYTES", 5<<20),
			Size:     getEnvInt("PICTURE_SIZE", 300),
		},
		RateLimit: RateLimitConfig{
			PerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
			LoginPerMinute: getEnvInt("RATE_LIMIT_LOGIN_PER_MINUTE", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Operator.Username == "" || c.Operator.Secret == "" {
		return fmt.Errorf("OPERATOR_USERNAME and OPERATOR_SECRET are required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.Blob.Backend != "inline" && c.Blob.Backend != "s3" {
		return fmt.Errorf("BLOB_BACKEND must be inline or s3")
	}
	if c.Blob.Backend == "s3" && c.Blob.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required for the s3 blob backend")
	}
	return nil
}

// overlayFile fills in any value the environment left at its zero or
// default from the YAML file.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = file.Database.URL
	}
	if cfg.Database.PoolURL == "" {
		cfg.Database.PoolURL = file.Database.PoolURL
	}
	if cfg.Operator.Username == "" {
		cfg.Operator.Username = file.Operator.Username
	}
	if cfg.Operator.Secret == "" {
		cfg.Operator.Secret = file.Operator.Secret
	}
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = file.Session.Secret
	}
	if file.Server.Host != "" {
		cfg.Server.Host = file.Server.Host
	}
	if file.Server.Port != 0 {
		cfg.Server.Port = file.Server.Port
	}
	if file.Blob.Backend != "" {
		cfg.Blob.Backend = file.Blob.Backend
	}
	if file.Blob.S3Bucket != "" {
		cfg.Blob.S3Bucket = file.Blob.S3Bucket
	}
	if file.Blob.S3Region != "" {
		cfg.Blob.S3Region = file.Blob.S3Region
	}
	if file.Blob.S3Endpoint != "" {
		cfg.Blob.S3Endpoint = file.Blob.S3Endpoint
	}
	if file.Logging.Level != "" {
		cfg.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		cfg.Logging.Format = file.Logging.Format
	}
	if file.Environment != "" {
		cfg.Environment = file.Environment
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
