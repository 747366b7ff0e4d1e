// Package config reads service settings from the environment. A .env file
// is loaded first when present; real environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by STORE_BACKEND
const (
	BackendAuto      = "auto"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendLocal     = "local"
)

// Local medium names accepted by LOCAL_STORE_DRIVER
const (
	LocalDriverFile   = "file"
	LocalDriverRedis  = "redis"
	LocalDriverMemory = "memory"
)

type Config struct {
	Port         string
	PublicOrigin string
	LogLevel     string

	StoreBackend  string
	StoreLatency  time.Duration
	UploadLatency time.Duration
	UploadTTL     time.Duration

	LocalDriver string
	LocalPath   string

	Firebase FirebaseConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Report   ReportConfig
}

type FirebaseConfig struct {
	ProjectID          string
	StorageBucket      string
	ServiceAccountPath string
}

// Configured reports whether every required Firebase parameter is present.
// The service account path is optional; application default credentials
// are used without it.
func (f FirebaseConfig) Configured() bool {
	return f.ProjectID != "" && f.StorageBucket != ""
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// URL returns DATABASE_URL or one assembled from the POSTGRES_* parts
func (p PostgresConfig) URL() string {
	if p.DatabaseURL != "" {
		return p.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured at all
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type AdminConfig struct {
	PIN         string
	MaxAttempts int
	SessionTTL  time.Duration
}

type ReportConfig struct {
	AssetsDir      string
	LetterheadPath string
	ImageProxyURL  string
	OutputDir      string
	TTL            time.Duration
	FetchTimeout   time.Duration
}

// Load reads .env (if any) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() (*Config, error) {
	var errs []string
	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return d
	}
	integer := func(key, def string) int {
		n, err := strconv.Atoi(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return n
	}

	cfg := &Config{
		Port:          getEnvOrDefault("PORT", "9091"),
		PublicOrigin:  strings.TrimRight(getEnvOrDefault("PUBLIC_ORIGIN", "http://localhost:5173"), "/"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		StoreBackend:  strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendAuto)),
		StoreLatency:  duration("STORE_LATENCY", "300ms"),
		UploadLatency: duration("UPLOAD_LATENCY", "1s"),
		UploadTTL:     duration("UPLOAD_TTL", "1h"),
		LocalDriver:   strings.ToLower(getEnvOrDefault("LOCAL_STORE_DRIVER", LocalDriverFile)),
		LocalPath:     getEnvOrDefault("LOCAL_STORE_PATH", "data"),
		Firebase: FirebaseConfig{
			ProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
			StorageBucket:      os.Getenv("FIREBASE_STORAGE_BUCKET"),
			ServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:        getEnvOrDefault("POSTGRES_PORT", "5432"),
			User:        getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password:    os.Getenv("POSTGRES_PASSWORD"),
			DBName:      getEnvOrDefault("POSTGRES_DB", "timeline"),
			SSLMode:     getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       integer("REDIS_DB", "0"),
		},
		Admin: AdminConfig{
			PIN:         getEnvOrDefault("ADMIN_PIN", "123456"),
			MaxAttempts: integer("ADMIN_MAX_ATTEMPTS", "5"),
			SessionTTL:  duration("ADMIN_SESSION_TTL", "12h"),
		},
		Report: ReportConfig{
			AssetsDir:      getEnvOrDefault("ASSETS_DIR", "public"),
			LetterheadPath: getEnvOrDefault("LETTERHEAD_PATH", "/letterhead_template.jpg"),
			ImageProxyURL:  getEnvOrDefault("IMAGE_PROXY_URL", "https://images.weserv.nl/?url=%s"),
			OutputDir:      getEnvOrDefault("REPORTS_DIR", "internal/reports"),
			TTL:            duration("REPORT_TTL", "24h"),
			FetchTimeout:   duration("IMAGE_FETCH_TIMEOUT", "15s"),
		},
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendAuto, BackendFirestore, BackendPostgres, BackendLocal:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.LocalDriver {
	case LocalDriverFile, LocalDriverRedis, LocalDriverMemory:
	default:
		return fmt.Errorf("invalid LOCAL_STORE_DRIVER %q", c.LocalDriver)
	}
	if c.StoreBackend == BackendFirestore && !c.Firebase.Configured() {
		return fmt.Errorf("STORE_BACKEND=firestore requires FIREBASE_PROJECT_ID and FIREBASE_STORAGE_BUCKET")
	}
	if c.LocalDriver == LocalDriverRedis && !c.Redis.Enabled() {
		return fmt.Errorf("LOCAL_STORE_DRIVER=redis requires REDIS_HOST")
	}
	if c.Admin.MaxAttempts <= 0 {
		return fmt.Errorf("ADMIN_MAX_ATTEMPTS must be positive")
	}
	if !strings.Contains(c.Report.ImageProxyURL, "%s") {
		return fmt.Errorf("IMAGE_PROXY_URL must contain a %%s placeholder")
	}
	return nil
}

// ResolvedBackend applies the automatic rule: a complete Firebase
// configuration selects Firestore, anything else the local backend.
func (c *Config) ResolvedBackend() string {
	if c.StoreBackend != BackendAuto {
		return c.StoreBackend
	}
	if c.Firebase.Configured() {
		return BackendFirestore
	}
	return BackendLocal
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
