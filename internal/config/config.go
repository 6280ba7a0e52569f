// Package config loads citycore configuration from an optional YAML file and
// CITYCORE_* environment variables, in that order of precedence over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageBlob     = "blob"
)

// Blob drivers.
const (
	BlobFilesystem = "fs"
	BlobS3         = "s3"
	BlobMemory     = "memory"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete process configuration.
type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Log     Log     `yaml:"log"`
	Storage Storage `yaml:"storage"`
	Metrics Metrics `yaml:"metrics"`
}

// HTTP configures the listener and its timeouts.
type HTTP struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage selects and configures the snapshot persister.
type Storage struct {
	Driver      string `yaml:"driver"`
	FilePath    string `yaml:"filePath"`
	SQLitePath  string `yaml:"sqlitePath"`
	PostgresDSN string `yaml:"postgresDSN"`
	Blob        Blob   `yaml:"blob"`
}

// Blob configures the object store used by the blob storage driver.
type Blob struct {
	Driver string `yaml:"driver"`
	FSRoot string `yaml:"fsRoot"`
	Key    string `yaml:"key"`
	S3     S3     `yaml:"s3"`
}

// S3 configures an S3 or MinIO bucket.
type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"pathStyle"`
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:            ":3030",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: Log{Level: "info", Format: "text"},
		Storage: Storage{
			Driver:     StorageFile,
			FilePath:   "saved-data.json",
			SQLitePath: "citycore.db",
			Blob: Blob{
				Driver: BlobFilesystem,
				FSRoot: "./blobdata",
				Key:    "snapshots/buildings.json",
				S3:     S3{Region: "us-east-1"},
			},
		},
		Metrics: Metrics{Enabled: true, Namespace: "citycore"},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CITYCORE_* variables resolved through lookup.
//
//	CITYCORE_HTTP_ADDR
//	CITYCORE_LOG_LEVEL, CITYCORE_LOG_FORMAT
//	CITYCORE_STORAGE_DRIVER: memory|file|sqlite|postgres|blob
//	CITYCORE_FILE_PATH, CITYCORE_SQLITE_PATH, CITYCORE_POSTGRES_DSN
//	CITYCORE_BLOB_DRIVER: fs|s3|memory, CITYCORE_BLOB_FS_ROOT, CITYCORE_BLOB_KEY
//	CITYCORE_BLOB_S3_BUCKET, CITYCORE_BLOB_S3_REGION, CITYCORE_BLOB_S3_ENDPOINT, CITYCORE_BLOB_S3_PATH_STYLE
//	CITYCORE_METRICS_ENABLED
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"CITYCORE_HTTP_ADDR", &c.HTTP.Addr},
		{"CITYCORE_LOG_LEVEL", &c.Log.Level},
		{"CITYCORE_LOG_FORMAT", &c.Log.Format},
		{"CITYCORE_STORAGE_DRIVER", &c.Storage.Driver},
		{"CITYCORE_FILE_PATH", &c.Storage.FilePath},
		{"CITYCORE_SQLITE_PATH", &c.Storage.SQLitePath},
		{"CITYCORE_POSTGRES_DSN", &c.Storage.PostgresDSN},
		{"CITYCORE_BLOB_DRIVER", &c.Storage.Blob.Driver},
		{"CITYCORE_BLOB_FS_ROOT", &c.Storage.Blob.FSRoot},
		{"CITYCORE_BLOB_KEY", &c.Storage.Blob.Key},
		{"CITYCORE_BLOB_S3_BUCKET", &c.Storage.Blob.S3.Bucket},
		{"CITYCORE_BLOB_S3_REGION", &c.Storage.Blob.S3.Region},
		{"CITYCORE_BLOB_S3_ENDPOINT", &c.Storage.Blob.S3.Endpoint},
	}
	for _, s := range strs {
		if v, ok := lookup(s.name); ok && v != "" {
			*s.dst = v
		}
	}
	bools := []struct {
		name string
		dst  *bool
	}{
		{"CITYCORE_BLOB_S3_PATH_STYLE", &c.Storage.Blob.S3.PathStyle},
		{"CITYCORE_METRICS_ENABLED", &c.Metrics.Enabled},
	}
	for _, b := range bools {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
		*b.dst = parsed
	}
	return nil
}

// Validate rejects unknown drivers and incomplete driver settings.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("%w: file storage requires a path", ErrInvalidConfig)
		}
	case StorageSQLite:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres storage requires a DSN", ErrInvalidConfig)
		}
	case StorageBlob:
		if err := c.Storage.Blob.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http address required", ErrInvalidConfig)
	}
	return nil
}

func (b Blob) validate() error {
	switch b.Driver {
	case BlobFilesystem, BlobMemory:
	case BlobS3:
		if b.S3.Bucket == "" {
			return fmt.Errorf("%w: s3 blob driver requires a bucket", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown blob driver %q", ErrInvalidConfig, b.Driver)
	}
	if b.Key == "" {
		return fmt.Errorf("%w: blob storage requires a key", ErrInvalidConfig)
	}
	return nil
}
