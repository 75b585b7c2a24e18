package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into dir so the dotenv lookup is isolated.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "tracker.yaml")
	content := `
store:
  driver: redis
  one_to_one: true
  redis:
    addr: "redis:6379"
    db: 8
report:
  output_path: reports/overview.txt
  line_ending: crlf
reconcile:
  join: hash
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.True(t, cfg.Store.OneToOne)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 8, cfg.Store.Redis.DB)
	assert.Equal(t, "reports/overview.txt", cfg.Report.OutputPath)
	assert.Equal(t, JoinHash, cfg.Reconcile.Join)
	// untouched sections keep their defaults
	assert.Equal(t, ":8080", cfg.Server.Addr)

	nl, err := cfg.Report.Newline()
	require.NoError(t, err)
	assert.Equal(t, "\r\n", nl)
}

func TestEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("TRACKER_STORE_DRIVER", "redis")
	t.Setenv("TRACKER_REDIS_ADDR", "10.0.0.1:6379")
	t.Setenv("TRACKER_REDIS_DB", "3")
	t.Setenv("TRACKER_LISTEN_ADDR", ":9090")
	t.Setenv("TRACKER_OUTPUT_PATH", "out.txt")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "10.0.0.1:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "out.txt", cfg.Report.OutputPath)

	t.Setenv("TRACKER_REDIS_DB", "eight")
	_, err = Load("")
	assert.Error(t, err)
}

func TestDotenvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotenvFile), []byte("TRACKER_SQLITE_PATH=from-dotenv.db\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TRACKER_SQLITE_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Store.SQLitePath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"empty sqlite path", func(c *Config) { c.Store.SQLitePath = "" }},
		{"empty redis addr", func(c *Config) { c.Store.Driver = DriverRedis; c.Store.Redis.Addr = "" }},
		{"unknown join", func(c *Config) { c.Reconcile.Join = "merge" }},
		{"unknown line ending", func(c *Config) { c.Report.LineEnding = "cr" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}
