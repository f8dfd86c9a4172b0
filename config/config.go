package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DevelopmentJWTSecret signs tokens outside production when no secret is configured.
const DevelopmentJWTSecret = "foodgram-development-secret"

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	// Server configuration
	ServerHost      string        `mapstructure:"SERVER_HOST"`
	ServerPort      string        `mapstructure:"SERVER_PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`

	// Database configuration
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSL_MODE"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`
	AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`

	// Redis configuration
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisURL      string `mapstructure:"REDIS_URL"`

	// JWT configuration
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	// Image storage: "local" writes under MediaRoot, "s3" uploads to S3BucketName
	ImageStore   string `mapstructure:"IMAGE_STORE"`
	MediaRoot    string `mapstructure:"MEDIA_ROOT"`
	MediaURL     string `mapstructure:"MEDIA_URL"`
	S3BucketName string `mapstructure:"S3_BUCKET_NAME"`
	AWSRegion    string `mapstructure:"AWS_REGION"`

	// API behaviour
	PageSize                int           `mapstructure:"PAGE_SIZE"`
	RecipeCreationLimit     int           `mapstructure:"RECIPE_CREATION_LIMIT"`
	RecipeModificationLimit int           `mapstructure:"RECIPE_MODIFICATION_LIMIT"`
	RateLimitWindow         time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

var defaults = map[string]interface{}{
	"SERVER_HOST":               "0.0.0.0",
	"SERVER_PORT":               "8080",
	"SHUTDOWN_TIMEOUT":          "5s",
	"CORS_ORIGINS":              "http://localhost:3000",
	"LOG_LEVEL":                 "info",
	"DB_DRIVER":                 "postgres",
	"DB_HOST":                   "localhost",
	"DB_PORT":                   "5432",
	"DB_USER":                   "postgres",
	"DB_PASSWORD":               "",
	"DB_NAME":                   "foodgram",
	"DB_SSL_MODE":               "disable",
	"SQLITE_PATH":               "foodgram.db",
	"AUTO_MIGRATE":              true,
	"REDIS_HOST":                "localhost",
	"REDIS_PORT":                "6379",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"REDIS_URL":                 "",
	"JWT_SECRET":                "",
	"TOKEN_TTL":                 "24h",
	"IMAGE_STORE":               "local",
	"MEDIA_ROOT":                "media",
	"MEDIA_URL":                 "/media/",
	"S3_BUCKET_NAME":            "",
	"AWS_REGION":                "us-east-1",
	"PAGE_SIZE":                 6,
	"RECIPE_CREATION_LIMIT":     20,
	"RECIPE_MODIFICATION_LIMIT": 30,
	"RATE_LIMIT_WINDOW":         "1h",
}

// secretKeys are read from Docker secrets when the environment does not set them.
var secretKeys = []string{
	"DB_USER",
	"DB_PASSWORD",
	"JWT_SECRET",
	"REDIS_PASSWORD",
	"REDIS_URL",
}

// LoadConfig creates a new Config from defaults, an optional .env file,
// environment variables and Docker secrets, in increasing priority for the
// last two.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		if err := loadDotEnv(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	for _, key := range secretKeys {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if value := readSecret(strings.ToLower(key)); value != "" {
			v.Set(key, value)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	cfg.Environment = env

	if cfg.JWTSecret == "" && env != Production && env != CI {
		cfg.JWTSecret = DevelopmentJWTSecret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
