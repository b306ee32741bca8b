package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Record store configuration
	Store StoreConfig

	// Database configuration (postgres store driver only)
	Database DatabaseConfig

	// Remote image host configuration
	ImageHost ImageHostConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// StoreConfig selects where article and image records are persisted
type StoreConfig struct {
	Driver       string
	DataDir      string
	ArticlesFile string
	ImagesFile   string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// ImageHostConfig holds settings for the third-party image host
type ImageHostConfig struct {
	URL            string
	APIKey         string
	Timeout        time.Duration
	DuplicateCodes []int
	MaxUploadSize  int64 // in bytes
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			AllowedOrigins:  getListEnv("CORS_ALLOWED_ORIGINS", nil),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDriverFile)),
			DataDir:      getEnv("DATA_DIR", "./data"),
			ArticlesFile: getEnv("ARTICLES_FILE", "articles.json"),
			ImagesFile:   getEnv("IMAGES_FILE", "images.json"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "articles"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		ImageHost: ImageHostConfig{
			URL:            getEnv("IMAGE_HOST_URL", "https://api.imgbb.com/1/upload"),
			APIKey:         getEnv("IMAGE_HOST_API_KEY", ""),
			Timeout:        getDurationEnv("IMAGE_HOST_TIMEOUT", 30*time.Second),
			DuplicateCodes: getIntListEnv("IMAGE_HOST_DUPLICATE_CODES", []int{101}),
			MaxUploadSize:  getInt64Env("MAX_UPLOAD_SIZE", 32*1024*1024), // 32MB
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverFile:
		if c.Store.ArticlesFile == "" || c.Store.ImagesFile == "" {
			return fmt.Errorf("ARTICLES_FILE and IMAGES_FILE are required for the file store")
		}
	case StoreDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: %s, %s", StoreDriverFile, StoreDriverPostgres)
	}
	if c.ImageHost.URL == "" {
		return fmt.Errorf("IMAGE_HOST_URL is required")
	}
	if c.ImageHost.Timeout <= 0 {
		return fmt.Errorf("IMAGE_HOST_TIMEOUT must be positive")
	}
	return nil
}

// ArticlesPath returns the location of the article collection file
func (c *StoreConfig) ArticlesPath() string {
	return filepath.Join(c.DataDir, c.ArticlesFile)
}

// ImagesPath returns the location of the image record collection file
func (c *StoreConfig) ImagesPath() string {
	return filepath.Join(c.DataDir, c.ImagesFile)
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getIntListEnv(key string, defaultValue []int) []int {
	items := getListEnv(key, nil)
	if items == nil {
		return defaultValue
	}
	codes := make([]int, 0, len(items))
	for _, item := range items {
		code, err := strconv.Atoi(item)
		if err != nil {
			return defaultValue
		}
		codes = append(codes, code)
	}
	return codes
}
