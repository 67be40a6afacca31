package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool
	AuthJWTSecret    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	LowBalanceRatio    float64
	AlertCooldown      time.Duration
	DeviceOfflineAfter time.Duration
	IdleSweepInterval  time.Duration

	SeedAdminEmail    string
	SeedAdminPassword string

	RateLimit RateLimitConfig
}

// RateLimitConfig gates the redis token bucket in front of telemetry ingest.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DeviceRate    float64
	DeviceBurst   int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_SERVICE", "gridline")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4317")

	v.SetDefault("DATABASE_TYPE", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "gridline")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONN", 25)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME_MIN", 30)

	v.SetDefault("ALERT_LOW_BALANCE_RATIO", 0.2)
	v.SetDefault("ALERT_COOLDOWN_MIN", 0)
	v.SetDefault("DEVICE_OFFLINE_AFTER_MIN", 10)
	v.SetDefault("IDLE_SWEEP_INTERVAL_MIN", 15)

	v.SetDefault("SEED_ADMIN_EMAIL", "admin@campus.local")
	v.SetDefault("SEED_ADMIN_PASSWORD", "")

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REDIS_ADDR", "")
	v.SetDefault("RATE_LIMIT_REDIS_PASSWORD", "")
	v.SetDefault("RATE_LIMIT_REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_DEVICE_RATE", 5.0)
	v.SetDefault("RATE_LIMIT_DEVICE_BURST", 10)

	environment := v.GetString("ENVIRONMENT")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = v.GetBool("AUTH_COOKIE_SECURE")
	}

	return Config{
		AppName:          v.GetString("APP_SERVICE"),
		AppVersion:       v.GetString("APP_VERSION"),
		Environment:      environment,
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		AuthCookieSecure: authCookieSecure,
		AuthJWTSecret:    strings.TrimSpace(v.GetString("AUTH_JWT_SECRET")),
		OTLPEndpoint:     v.GetString("OTLP_ENDPOINT"),

		DBType:            v.GetString("DATABASE_TYPE"),
		DBHost:            v.GetString("DATABASE_HOST"),
		DBPort:            v.GetString("DATABASE_PORT"),
		DBName:            v.GetString("DATABASE_NAME"),
		DBUser:            v.GetString("DATABASE_USER"),
		DBPassword:        v.GetString("DATABASE_PASSWORD"),
		DBSSLMode:         v.GetString("DATABASE_SSLMODE"),
		DBMaxIdleConn:     v.GetInt("DATABASE_MAX_IDLE_CONN"),
		DBMaxOpenConn:     v.GetInt("DATABASE_MAX_OPEN_CONN"),
		DBConnMaxLifetime: v.GetInt("DATABASE_CONN_MAX_LIFETIME_MIN"),

		LowBalanceRatio:    v.GetFloat64("ALERT_LOW_BALANCE_RATIO"),
		AlertCooldown:      time.Duration(v.GetInt("ALERT_COOLDOWN_MIN")) * time.Minute,
		DeviceOfflineAfter: time.Duration(v.GetInt("DEVICE_OFFLINE_AFTER_MIN")) * time.Minute,
		IdleSweepInterval:  time.Duration(v.GetInt("IDLE_SWEEP_INTERVAL_MIN")) * time.Minute,

		SeedAdminEmail:    strings.ToLower(strings.TrimSpace(v.GetString("SEED_ADMIN_EMAIL"))),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),

		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RedisAddr:     strings.TrimSpace(v.GetString("RATE_LIMIT_REDIS_ADDR")),
			RedisPassword: v.GetString("RATE_LIMIT_REDIS_PASSWORD"),
			RedisDB:       v.GetInt("RATE_LIMIT_REDIS_DB"),
			DeviceRate:    v.GetFloat64("RATE_LIMIT_DEVICE_RATE"),
			DeviceBurst:   v.GetInt("RATE_LIMIT_DEVICE_BURST"),
		},
	}
}
