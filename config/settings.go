package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	defaultMaxBodyBytes = 10 << 20
)

// Settings holds every environment-derived knob of the service.
type Settings struct {
	Port string `validate:"required,numeric"`

	DBDriver       string `validate:"oneof=mysql postgres"`
	DBHost         string `validate:"required"`
	DBPort         string `validate:"required,numeric"`
	DBName         string `validate:"required"`
	DBUser         string `validate:"required"`
	DBPassword     string
	DBMaxOpenConns int `validate:"gte=0"`
	DBMaxIdleConns int `validate:"gte=0"`

	AuthUsername     string `validate:"required"`
	AuthPassword     string `validate:"required_without=AuthPasswordHash"`
	AuthPasswordHash string
	AuthRealm        string

	InboundDir   string `validate:"required"`
	Timezone     string `validate:"required"`
	MaxBodyBytes int64  `validate:"gt=0"`

	RedisAddress           string
	RateLimitEnabled       bool
	RateLimitMaxRequests   int64 `validate:"gt=0"`
	RateLimitWindowSeconds int64 `validate:"gt=0"`

	StorageProvider string
	GCSBucket       string `validate:"required_if=StorageProvider gcs"`

	PubSubTopic       string
	RFCFunctionModule string `validate:"required"`

	CORSAllowedOrigins string
	Environment        string
	SkipMigrations     bool
	LogLevel           string `validate:"oneof=panic fatal error warn warning info debug trace"`

	location *time.Location
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// LoadSettings reads the environment, applies defaults and validates the result.
func LoadSettings() (*Settings, error) {
	driver := strings.ToLower(envOr("DB_DRIVER", DriverMySQL))
	defaultPort, defaultUser := "3306", "root"
	if driver == DriverPostgres {
		defaultPort, defaultUser = "5432", "postgres"
	}

	s := &Settings{
		Port:           envOr("PORT", "8080"),
		DBDriver:       driver,
		DBHost:         envOr("DB_HOST", "localhost"),
		DBPort:         envOr("DB_PORT", defaultPort),
		DBName:         envOr("DB_NAME", "kpn_validation_test"),
		DBUser:         envOr("DB_USER", defaultUser),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBMaxOpenConns: intFromEnv("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: intFromEnv("DB_MAX_IDLE_CONNS", 5),

		AuthUsername:     envOr("AUTH_USERNAME", "yossy"),
		AuthPassword:     envOr("AUTH_PASSWORD", "yossy"),
		AuthPasswordHash: strings.TrimSpace(os.Getenv("AUTH_PASSWORD_HASH")),
		AuthRealm:        envOr("AUTH_REALM", "KPN Validation API"),

		InboundDir:   envOr("INBOUND_DIR", "./inbound"),
		Timezone:     envOr("TIMEZONE", "Asia/Jakarta"),
		MaxBodyBytes: int64(intFromEnv("MAX_BODY_BYTES", defaultMaxBodyBytes)),

		RedisAddress:           strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		RateLimitEnabled:       boolFromEnv("RATE_LIMIT_ENABLED"),
		RateLimitMaxRequests:   int64(intFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)),
		RateLimitWindowSeconds: int64(intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)),

		StorageProvider: strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_PROVIDER"))),
		GCSBucket:       strings.TrimSpace(os.Getenv("GCS_BUCKET")),

		PubSubTopic:       strings.TrimSpace(os.Getenv("RFC_PUBSUB_TOPIC")),
		RFCFunctionModule: envOr("RFC_FUNCTION_MODULE", "ZKPN_TEST"),

		CORSAllowedOrigins: strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Environment:        strings.TrimSpace(os.Getenv("GO_ENV")),
		SkipMigrations:     boolFromEnv("SKIP_MIGRATIONS"),
		LogLevel:           strings.ToLower(envOr("LOG_LEVEL", "info")),
	}

	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", s.Timezone, err)
	}
	s.location = loc
	return s, nil
}

// Location is the zone used for received-at stamps and artifact filenames.
func (s *Settings) Location() *time.Location {
	if s.location == nil {
		return time.UTC
	}
	return s.location
}

func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

func envOr(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}
