package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uplink.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "uplink.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout.Std())
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval.Std())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	for _, key := range []string{
		"UPLINK_ADDR", "UPLINK_DB", "UPLINK_BASE_URL", "UPLINK_AUTH_TOKEN",
		"UPLINK_LOG_LEVEL", "UPLINK_PROBE_URL", "UPLINK_SYNC_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
db_path: /var/lib/uplink/uplink.db
base_url: https://api.example.com
auth_token: secret
request_timeout: 45s
sync_interval: 5m
sync_spec: "*/10 * * * *"
battery_threshold: 20
probe_url: https://api.example.com/ping
offline_notice: true
background_only: true
log_level: debug
pretty: true
headers:
  X-Client: uplink
queues:
  - name: notes
    endpoint: /api/notes
    method: PUT
    success_statuses: [200]
    max_retries: 3
    id_field: id
    headers:
      X-Queue: notes
  - name: tasks
    endpoint: /api/tasks
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/var/lib/uplink/uplink.db", cfg.DBPath)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.AuthToken)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout.Std())
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval.Std())
	assert.Equal(t, "*/10 * * * *", cfg.SyncSpec)
	assert.Equal(t, 20, cfg.BatteryThreshold)
	assert.True(t, cfg.OfflineNotice)
	assert.True(t, cfg.BackgroundOnly)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, map[string]string{"X-Client": "uplink"}, cfg.Headers)

	require.Len(t, cfg.Queues, 2)
	assert.Equal(t, "notes", cfg.Queues[0].Name)
	assert.Equal(t, "PUT", cfg.Queues[0].Method)
	assert.Equal(t, []int{200}, cfg.Queues[0].SuccessStatuses)
	assert.Equal(t, 3, cfg.Queues[0].MaxRetries)
	assert.Equal(t, "tasks", cfg.Queues[1].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "request_timeout: soon\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
base_url: https://file.example.com
log_level: debug
`)
	t.Setenv("UPLINK_ADDR", ":7070")
	t.Setenv("UPLINK_BASE_URL", "https://env.example.com")
	t.Setenv("UPLINK_AUTH_TOKEN", "env-token")
	t.Setenv("UPLINK_LOG_LEVEL", "warn")
	t.Setenv("UPLINK_SYNC_INTERVAL", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, "env-token", cfg.AuthToken)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 90*time.Second, cfg.SyncInterval.Std())
}

func TestEnvBadInterval(t *testing.T) {
	t.Setenv("UPLINK_SYNC_INTERVAL", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Queues = []Queue{{Name: "notes", Endpoint: "/api/notes"}}
	assert.Error(t, cfg.Validate(), "queues without base_url must be rejected")

	cfg.BaseURL = "https://api.example.com"
	assert.NoError(t, cfg.Validate())

	cfg.Queues = append(cfg.Queues, Queue{Endpoint: "/x"})
	assert.Error(t, cfg.Validate(), "a nameless queue must be rejected")

	cfg.Queues = []Queue{{Name: "notes"}}
	assert.Error(t, cfg.Validate(), "an endpointless queue must be rejected")
}

func TestQueueToDomainIDField(t *testing.T) {
	q := Queue{Name: "notes", Endpoint: "/api/notes", IDField: "id"}
	cfg := q.ToDomain()
	require.NotNil(t, cfg.ExtractID)

	assert.Equal(t, "srv-1", cfg.ExtractID(map[string]any{"id": "srv-1"}))
	// JSON numbers decode as float64
	assert.Equal(t, "42", cfg.ExtractID(map[string]any{"id": float64(42)}))
	assert.Equal(t, "", cfg.ExtractID(map[string]any{"other": "x"}))
	assert.Equal(t, "", cfg.ExtractID(map[string]any{"id": true}))
}

func TestQueueToDomainNoIDField(t *testing.T) {
	cfg := Queue{Name: "notes", Endpoint: "/api/notes"}.ToDomain()
	assert.Nil(t, cfg.ExtractID)
}

func TestQueueConfigs(t *testing.T) {
	cfg := Config{Queues: []Queue{
		{Name: "notes", Endpoint: "/api/notes"},
		{Name: "tasks", Endpoint: "/api/tasks"},
	}}
	out := cfg.QueueConfigs()
	require.Len(t, out, 2)
	assert.Equal(t, "notes", out[0].Name)
	assert.Equal(t, "tasks", out[1].Name)
}
