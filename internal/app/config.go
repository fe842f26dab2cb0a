package app

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"lovtiti-ussd/internal/session"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the gateway's runtime configuration, read from the environment.
type Config struct {
	Port           int
	SessionBackend string
	SessionTTL     time.Duration
	VacuumEvery    time.Duration
	RedisURL       string
	KYCTable       string
	ProfileAPIURL  string
	ParamPrefix    string
	NATSURL        string
	NATSSubject    string
	LogLevel       slog.Level
}

// ConfigFromEnv reads PORT, SESSION_BACKEND, SESSION_TTL, SESSION_VACUUM_EVERY,
// REDIS_URL, KYC_TABLE, PROFILE_API_URL, PARAM_PREFIX, NATS_URL, NATS_SUBJECT
// and LOG_LEVEL.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Port:           envInt("PORT", 3000),
		SessionBackend: strings.ToLower(envString("SESSION_BACKEND", BackendMemory)),
		SessionTTL:     envDuration("SESSION_TTL", session.DefaultTTL),
		VacuumEvery:    envDuration("SESSION_VACUUM_EVERY", session.DefaultVacuumEvery),
		RedisURL:       envString("REDIS_URL", ""),
		KYCTable:       envString("KYC_TABLE", ""),
		ProfileAPIURL:  envString("PROFILE_API_URL", ""),
		ParamPrefix:    envString("PARAM_PREFIX", ""),
		NATSURL:        envString("NATS_URL", ""),
		NATSSubject:    envString("NATS_SUBJECT", ""),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(envString("LOG_LEVEL", "INFO"))); err != nil {
		return Config{}, fmt.Errorf("app: LOG_LEVEL: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("app: PORT %d out of range", c.Port)
	}
	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" && c.ParamPrefix == "" {
			return fmt.Errorf("app: redis session backend needs REDIS_URL or PARAM_PREFIX")
		}
	default:
		return fmt.Errorf("app: unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
