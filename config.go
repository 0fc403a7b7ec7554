package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

type appConfig struct {
	Port           string
	DatabasePath   string
	JWTSecret      string
	TokenSubject   string
	TokenTTL       time.Duration
	APIURL         string
	ServeAPI       bool
	RemoteTimeout  time.Duration
	RateLimitRPS   float64
	RateLimitBurst float64
	LogLevel       slog.Level
}

func defaultConfig() appConfig {
	return appConfig{
		Port:           "8080",
		DatabasePath:   "users.db",
		TokenSubject:   "roster-screen",
		TokenTTL:       15 * time.Minute,
		ServeAPI:       true,
		RemoteTimeout:  10 * time.Second,
		RateLimitRPS:   5,
		RateLimitBurst: 20,
		LogLevel:       slog.LevelInfo,
	}
}

// loadConfig builds the configuration from defaults, then the optional INI
// file named by CONFIG_FILE, then environment variables.
func loadConfig(getenv func(string) string) (appConfig, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(getenv("CONFIG_FILE")); path != "" {
		file, err := ini.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		applyFile(&cfg, file)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	if cfg.APIURL == "" {
		cfg.APIURL = "http://127.0.0.1:" + cfg.Port
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return cfg, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if cfg.RateLimitBurst < 1 {
		return cfg, fmt.Errorf("rate limit burst must be at least 1, got %v", cfg.RateLimitBurst)
	}
	return cfg, nil
}

func applyFile(cfg *appConfig, file *ini.File) {
	server := file.Section("server")
	cfg.Port = server.Key("port").MustString(cfg.Port)
	cfg.ServeAPI = server.Key("serve_api").MustBool(cfg.ServeAPI)
	if v := server.Key("log_level").String(); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = level
		}
	}

	cfg.DatabasePath = file.Section("database").Key("path").MustString(cfg.DatabasePath)

	auth := file.Section("auth")
	cfg.JWTSecret = auth.Key("jwt_secret").MustString(cfg.JWTSecret)
	cfg.TokenTTL = auth.Key("token_ttl").MustDuration(cfg.TokenTTL)

	remote := file.Section("remote")
	cfg.APIURL = remote.Key("url").MustString(cfg.APIURL)
	cfg.RemoteTimeout = remote.Key("timeout").MustDuration(cfg.RemoteTimeout)

	limit := file.Section("ratelimit")
	cfg.RateLimitRPS = limit.Key("rps").MustFloat64(cfg.RateLimitRPS)
	cfg.RateLimitBurst = limit.Key("burst").MustFloat64(cfg.RateLimitBurst)
}

func applyEnv(cfg *appConfig, getenv func(string) string) error {
	env := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(key))
		return v, v != ""
	}

	if v, ok := env("PORT"); ok {
		cfg.Port = v
	}
	if v, ok := env("DATABASE_PATH"); ok {
		cfg.DatabasePath = v
	}
	if v, ok := env("JWT_SECRET"); ok {
		cfg.JWTSecret = v
	}
	if v, ok := env("USERS_API_URL"); ok {
		cfg.APIURL = v
	}
	if v, ok := env("SERVE_API"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SERVE_API: %w", err)
		}
		cfg.ServeAPI = b
	}
	if v, ok := env("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}
	if v, ok := env("REMOTE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
		}
		cfg.RemoteTimeout = d
	}
	if v, ok := env("RATE_LIMIT_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	if v, ok := env("RATE_LIMIT_BURST"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = f
	}
	if v, ok := env("LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	return nil
}
