package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	POAP     POAPConfig
	Feed     FeedConfig
	Swipe    SwipeConfig
	Gemini   GeminiConfig
	CORS     CORSConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	// JWTSecret verifies bearer tokens minted by the identity provider.
	JWTSecret string
}

type POAPConfig struct {
	APIURL    string
	APIKey    string
	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit float64 // requests per second
	RateBurst int
}

type FeedConfig struct {
	MaxCandidates int
	EnrichTimeout time.Duration
}

type SwipeConfig struct {
	SnapshotTimeout time.Duration
	MaxRetries      uint64
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("POAP_API_URL", "https://api.poap.tech")
	v.SetDefault("POAP_TIMEOUT", "3s")
	v.SetDefault("POAP_CACHE_TTL", "24h")
	v.SetDefault("POAP_RATE_LIMIT", 5)
	v.SetDefault("POAP_RATE_BURST", 10)
	v.SetDefault("FEED_MAX_CANDIDATES", 50)
	v.SetDefault("FEED_ENRICH_TIMEOUT", "800ms")
	v.SetDefault("SWIPE_SNAPSHOT_TIMEOUT", "500ms")
	v.SetDefault("SWIPE_MAX_RETRIES", 3)
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := FromViper(v)

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		POAP: POAPConfig{
			APIURL:    strings.TrimRight(v.GetString("POAP_API_URL"), "/"),
			APIKey:    v.GetString("POAP_API_KEY"),
			Timeout:   v.GetDuration("POAP_TIMEOUT"),
			CacheTTL:  v.GetDuration("POAP_CACHE_TTL"),
			RateLimit: v.GetFloat64("POAP_RATE_LIMIT"),
			RateBurst: v.GetInt("POAP_RATE_BURST"),
		},
		Feed: FeedConfig{
			MaxCandidates: v.GetInt("FEED_MAX_CANDIDATES"),
			EnrichTimeout: v.GetDuration("FEED_ENRICH_TIMEOUT"),
		},
		Swipe: SwipeConfig{
			SnapshotTimeout: v.GetDuration("SWIPE_SNAPSHOT_TIMEOUT"),
			MaxRetries:      v.GetUint64("SWIPE_MAX_RETRIES"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Feed.MaxCandidates <= 0 || c.Feed.MaxCandidates > 50 {
		return fmt.Errorf("feed max candidates must be between 1 and 50")
	}
	if c.POAP.APIURL == "" {
		return fmt.Errorf("POAP API URL is required")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
