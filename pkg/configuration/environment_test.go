package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "TGBRIDGE_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "modules", "bridge")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("TGBRIDGE_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("TGBRIDGE_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestParse_Defaults(t *testing.T) {
	var c Configuration
	require.NoError(t, env.Parse(&c))

	require.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	require.Equal(t, "tg-responses", c.Kafka.ResponsesTopic)
	require.Equal(t, "demo-group", c.Kafka.GroupID)
	require.Equal(t, int32(16384), c.Kafka.BatchMaxBytes)
	require.Equal(t, 3, c.Dispatch.MaxAttempts)
	require.Equal(t, time.Second, c.Dispatch.Interval)
	require.Equal(t, 2*time.Second, c.Dispatch.MaxBackoff)
	require.Equal(t, 524288, c.StreamChunkSize)
	require.NoError(t, c.validate())
}

func TestParse_BrokerList(t *testing.T) {
	t.Setenv("KAFKA_BOOTSTRAP", "k1:9092,k2:9092")

	var c Configuration
	require.NoError(t, env.Parse(&c))
	require.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestRateLimitOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    RateLimitOptions
		wantErr bool
	}{
		{name: "memory", opts: RateLimitOptions{Enabled: true, Rate: "30-M", Storage: "memory", HTTPRate: "600-M"}},
		{name: "redis", opts: RateLimitOptions{Enabled: true, Rate: "5-S", Storage: "redis", HTTPRate: "10-S"}},
		{name: "bad storage", opts: RateLimitOptions{Enabled: true, Rate: "30-M", Storage: "disk", HTTPRate: "600-M"}, wantErr: true},
		{name: "bad rate", opts: RateLimitOptions{Enabled: true, Rate: "often", Storage: "memory", HTTPRate: "600-M"}, wantErr: true},
		{name: "bad http rate", opts: RateLimitOptions{Enabled: true, Rate: "30-M", Storage: "memory", HTTPRate: "never"}, wantErr: true},
		{name: "disabled ignores rate", opts: RateLimitOptions{Enabled: false, Rate: "often", Storage: "memory"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTelegramOptions_Validate(t *testing.T) {
	opts := TelegramOptions{APIID: 1, APIHash: "hash", SessionStorage: "file", SessionPath: "s.session"}
	require.NoError(t, opts.Validate())

	opts.SessionStorage = "s3"
	require.Error(t, opts.Validate())

	opts = TelegramOptions{APIHash: "hash", SessionStorage: "file", SessionPath: "s.session"}
	require.Error(t, opts.Validate())
}

func TestValidate_ChunkSize(t *testing.T) {
	var c Configuration
	require.NoError(t, env.Parse(&c))

	c.StreamChunkSize = 1000
	require.Error(t, c.validate())
}

func TestValidate_DispatchBackoff(t *testing.T) {
	t.Setenv("DISPATCH_MAX_BACKOFF", "500ms")

	var c Configuration
	require.NoError(t, env.Parse(&c))
	require.Equal(t, 500*time.Millisecond, c.Dispatch.MaxBackoff)
	require.NoError(t, c.validate())

	c.Dispatch.MaxBackoff = -time.Second
	require.Error(t, c.validate())
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
