package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration for the postgres session store
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// GatewayConfig describes the remote rental API
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

// UploadConfig holds image hosting configuration
type UploadConfig struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	MaxFileSize  int64
	MaxImages    int
}

// SessionConfig selects and configures the admin token store
type SessionConfig struct {
	Store         string // memory, bolt, redis or postgres
	BoltPath      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	File  string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// CalendarConfig holds booking calendar configuration
type CalendarConfig struct {
	Timezone string
}

// PickerConfig holds booking product picker configuration
type PickerConfig struct {
	Debounce time.Duration
	Limit    int
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	Gateway     GatewayConfig
	Upload      UploadConfig
	Session     SessionConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Calendar    CalendarConfig
	Picker      PickerConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "rent_admin"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:5000/api"),
			Timeout: getEnvAsDuration("GATEWAY_TIMEOUT", 15*time.Second),
		},
		Upload: UploadConfig{
			BaseURL:      getEnv("UPLOAD_BASE_URL", "https://api.cloudinary.com"),
			CloudName:    getEnv("UPLOAD_CLOUD_NAME", ""),
			UploadPreset: getEnv("UPLOAD_PRESET", ""),
			MaxFileSize:  int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", 5*1024*1024)),
			MaxImages:    getEnvAsInt("UPLOAD_MAX_IMAGES", 10),
		},
		Session: SessionConfig{
			Store:         getEnv("SESSION_STORE", "memory"),
			BoltPath:      getEnv("SESSION_BOLT_PATH", "sessions.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "rent_admin"),
		},
		Calendar: CalendarConfig{
			Timezone: getEnv("CALENDAR_TIMEZONE", "Local"),
		},
		Picker: PickerConfig{
			Debounce: getEnvAsDuration("PICKER_DEBOUNCE", 300*time.Millisecond),
			Limit:    getEnvAsInt("PICKER_LIMIT", 100),
		},
	}

	return config, nil
}

// Location resolves the calendar timezone, falling back to time.Local
func (c *Config) Location() *time.Location {
	if c.Calendar.Timezone == "" || c.Calendar.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LogConfig returns the configuration as zap fields
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("gateway", c.Gateway.BaseURL),
		zap.String("session_store", c.Session.Store),
		zap.String("calendar_timezone", c.Calendar.Timezone),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
