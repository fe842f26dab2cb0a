package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"lovtiti-ussd/internal/session"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SESSION_BACKEND", "SESSION_TTL", "SESSION_VACUUM_EVERY", "REDIS_URL", "KYC_TABLE", "PROFILE_API_URL", "PARAM_PREFIX", "NATS_URL", "NATS_SUBJECT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.Port)
	require.Equal(t, ":3000", cfg.Addr())
	require.Equal(t, BackendMemory, cfg.SessionBackend)
	require.Equal(t, session.DefaultTTL, cfg.SessionTTL)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "90s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 8081, cfg.Port)
	require.Equal(t, BackendRedis, cfg.SessionBackend)
	require.Equal(t, 90*time.Second, cfg.SessionTTL)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	require.Error(t, Config{Port: 0, SessionBackend: BackendMemory}.Validate())
	require.Error(t, Config{Port: 80, SessionBackend: "etcd"}.Validate())
	require.Error(t, Config{Port: 80, SessionBackend: BackendRedis}.Validate())
	require.NoError(t, Config{Port: 80, SessionBackend: BackendRedis, ParamPrefix: "/lovtiti"}.Validate())

	t.Setenv("LOG_LEVEL", "chatty")
	_, err := ConfigFromEnv()
	require.Error(t, err)
}

func post(t *testing.T, srv *httptest.Server, sessionID, text string) string {
	t.Helper()
	res, err := http.PostForm(srv.URL+"/ussd", url.Values{"sessionId": {sessionID}, "text": {text}})
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNew_MemoryBackend(t *testing.T) {
	a, err := New(context.Background(), Config{Port: 3000, SessionBackend: BackendMemory, SessionTTL: time.Minute, VacuumEvery: time.Second}, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.Handler.Routes())
	defer srv.Close()

	require.Equal(t, "CON Farmer Registration\nEnter Full Name:", post(t, srv, "m1", "4*1"))
	require.Equal(t, "CON Enter Phone Number:", post(t, srv, "m1", "4*1*Jane"))

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	require.True(t, strings.Contains(string(body), "lovtiti_ussd_sessions_active 1"))
}

func TestNew_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := Config{Port: 3000, SessionBackend: BackendRedis, RedisURL: "redis://" + mr.Addr(), SessionTTL: time.Minute}
	a, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.Handler.Routes())
	defer srv.Close()

	require.Equal(t, "CON Buyer Registration\nEnter Phone Number:", post(t, srv, "r1", "4*4"))
	require.True(t, mr.Exists("lovtiti:ussd:session:r1"))
}

func TestNew_RedisReferenceWithoutParamStore(t *testing.T) {
	cfg := Config{Port: 3000, SessionBackend: BackendRedis, RedisURL: "ssm:/lovtiti/redis-url"}
	_, err := New(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolve redis url")
}
