package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr           string
	HTTPRequestTimeout time.Duration
	HTTPRateLimit      int
	CORSOrigins        []string

	GRPCAddr           string
	GRPCRequestTimeout time.Duration

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	RedisURL      string
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisLockTTL  time.Duration

	ExpandRecurring bool
	ShutdownTimeout time.Duration
	LogLevel        string
}

// RedisEnabled reports whether a Redis lock backend is configured.
func (c Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisAddr != ""
}

// Load reads configuration from the environment. Variables in a .env file in
// the working directory are applied first without overriding the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CLINIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.addr", "")
	v.SetDefault("http.request_timeout", "15s")
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.cors_origins", "*")
	v.SetDefault("grpc.addr", "")
	v.SetDefault("grpc.request_timeout", "10s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.lock_ttl", "5s")
	v.SetDefault("scheduling.expand_recurring", true)
	v.SetDefault("shutdown.timeout", "10s")
	v.SetDefault("log.level", "info")

	_ = v.BindEnv("http.host", "CLINIC_HTTP_HOST", "HTTP_HOST")
	_ = v.BindEnv("http.port", "CLINIC_HTTP_PORT", "HTTP_PORT", "PORT")
	_ = v.BindEnv("http.addr", "CLINIC_HTTP_ADDR", "HTTP_ADDR")
	_ = v.BindEnv("http.request_timeout", "CLINIC_HTTP_REQUEST_TIMEOUT")
	_ = v.BindEnv("http.rate_limit", "CLINIC_HTTP_RATE_LIMIT")
	_ = v.BindEnv("http.cors_origins", "CLINIC_HTTP_CORS_ORIGINS")
	_ = v.BindEnv("grpc.addr", "CLINIC_GRPC_ADDR", "GRPC_ADDR")
	_ = v.BindEnv("grpc.request_timeout", "CLINIC_GRPC_REQUEST_TIMEOUT")
	_ = v.BindEnv("database.url", "CLINIC_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("database.max_open_conns", "CLINIC_DATABASE_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.max_idle_conns", "CLINIC_DATABASE_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.conn_max_lifetime", "CLINIC_DATABASE_CONN_MAX_LIFETIME")
	_ = v.BindEnv("database.conn_max_idle_time", "CLINIC_DATABASE_CONN_MAX_IDLE_TIME")
	_ = v.BindEnv("redis.url", "CLINIC_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("redis.addr", "CLINIC_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.username", "CLINIC_REDIS_USERNAME")
	_ = v.BindEnv("redis.password", "CLINIC_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.lock_ttl", "CLINIC_REDIS_LOCK_TTL")
	_ = v.BindEnv("scheduling.expand_recurring", "CLINIC_SCHEDULING_EXPAND_RECURRING")
	_ = v.BindEnv("shutdown.timeout", "CLINIC_SHUTDOWN_TIMEOUT", "SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("log.level", "CLINIC_LOG_LEVEL", "LOG_LEVEL")

	var cfg Config
	durations := map[string]*time.Duration{
		"http.request_timeout":        &cfg.HTTPRequestTimeout,
		"grpc.request_timeout":        &cfg.GRPCRequestTimeout,
		"database.conn_max_lifetime":  &cfg.DBConnMaxLifetime,
		"database.conn_max_idle_time": &cfg.DBConnMaxIdleTime,
		"redis.lock_ttl":              &cfg.RedisLockTTL,
		"shutdown.timeout":            &cfg.ShutdownTimeout,
	}
	for key, dst := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	host := strings.TrimSpace(v.GetString("http.host"))
	port := v.GetInt("http.port")
	if addr := strings.TrimSpace(v.GetString("http.addr")); addr != "" {
		h, portStr, err := net.SplitHostPort(addr)
		if err == nil {
			if h != "" {
				host = h
			}
			if p, err := strconv.Atoi(portStr); err == nil {
				port = p
			}
		}
	}

	cfg.HTTPAddr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.HTTPRateLimit = v.GetInt("http.rate_limit")
	cfg.CORSOrigins = splitList(v.GetString("http.cors_origins"))
	cfg.GRPCAddr = strings.TrimSpace(v.GetString("grpc.addr"))
	cfg.DatabaseURL = strings.TrimSpace(v.GetString("database.url"))
	cfg.DBMaxOpenConns = v.GetInt("database.max_open_conns")
	cfg.DBMaxIdleConns = v.GetInt("database.max_idle_conns")
	cfg.RedisURL = strings.TrimSpace(v.GetString("redis.url"))
	cfg.RedisAddr = strings.TrimSpace(v.GetString("redis.addr"))
	cfg.RedisUsername = v.GetString("redis.username")
	cfg.RedisPassword = v.GetString("redis.password")
	cfg.ExpandRecurring = v.GetBool("scheduling.expand_recurring")
	cfg.LogLevel = v.GetString("log.level")

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
