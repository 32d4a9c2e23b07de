package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog drivers.
const (
	CatalogSQLite   = "sqlite"
	CatalogPostgres = "postgres"
)

// Blob backends.
const (
	BlobLocal = "local"
	BlobMinIO = "minio"
)

// Config aggregates runtime configuration for the FileVault API.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Postgres PostgresConfig
	Blob     BlobConfig
	MinIO    MinIOConfig
	HTTP     HTTPConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig selects the metadata catalog backend.
type CatalogConfig struct {
	Driver     string
	SQLitePath string
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MigrateURL returns the DSN in the form expected by the pgx5 migrate driver.
func (p PostgresConfig) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(p.DSN(), "postgres")
}

// BlobConfig selects where uploaded content is kept.
type BlobConfig struct {
	Backend        string
	LocalDir       string
	MaxUploadBytes int64
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// HTTPConfig groups transport-level settings.
type HTTPConfig struct {
	AllowedOrigins []string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:            getString("FILEVAULT_API_HOST", "0.0.0.0"),
			Port:            getInt("FILEVAULT_API_PORT", 5000),
			ReadTimeout:     getDuration("FILEVAULT_API_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDuration("FILEVAULT_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getDuration("FILEVAULT_API_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("FILEVAULT_API_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Catalog: CatalogConfig{
			Driver:     strings.ToLower(getString("CATALOG_DRIVER", CatalogSQLite)),
			SQLitePath: getString("SQLITE_PATH", "database.sqlite"),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "filevault"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "filevault"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Blob: BlobConfig{
			Backend:        strings.ToLower(getString("BLOB_BACKEND", BlobLocal)),
			LocalDir:       getString("UPLOAD_DIR", "uploads"),
			MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 100*1024*1024),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "filevault"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "filevault"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		HTTP: HTTPConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("FILEVAULT_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Catalog.Driver {
	case CatalogSQLite:
		if strings.TrimSpace(c.Catalog.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite catalog")
		}
	case CatalogPostgres:
	default:
		return fmt.Errorf("unsupported CATALOG_DRIVER %q", c.Catalog.Driver)
	}

	switch c.Blob.Backend {
	case BlobLocal:
		if strings.TrimSpace(c.Blob.LocalDir) == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the local blob backend")
		}
	case BlobMinIO:
		if strings.TrimSpace(c.MinIO.Bucket) == "" {
			return fmt.Errorf("MINIO_BUCKET is required for the minio blob backend")
		}
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q", c.Blob.Backend)
	}

	if c.Blob.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
