package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "tasim.yaml", `
tasim:
  debugAddr: ":8003"
  chipDate: "2024-06-15"
  verifyCacheSize: 128
db:
  connect: "tasim@tcp(localhost:3306)/tasim"
redis:
  addr: "localhost:6379"
  ttl: "10m"
queue:
  dir: "/var/lib/tasim/queue"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8003", cfg.TASim.DebugAddr)
	require.Equal(t, "2024-06-15", cfg.TASim.ChipDate)
	require.Equal(t, 128, cfg.TASim.VerifyCacheSize)
	require.Equal(t, 10*time.Minute, cfg.Redis.TTL.Duration)
	require.Equal(t, "/var/lib/tasim/queue", cfg.Queue.Dir)
}

func TestLoadMissingRequiredField(t *testing.T) {
	path := writeFile(t, "tasim.yaml", `
tasim:
  debugAddr: ":8003"
queue:
  dir: "/var/lib/tasim/queue"
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ChipDate")
}

func TestLoadBadDuration(t *testing.T) {
	path := writeFile(t, "tasim.yaml", `
tasim:
  chipDate: "2024-06-15"
redis:
  ttl: "not-a-duration"
queue:
  dir: "/q"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestConfigSecretFromFile(t *testing.T) {
	secretPath := writeFile(t, "dsn", "tasim:hunter2@tcp(db:3306)/tasim\n")
	path := writeFile(t, "tasim.yaml", `
tasim:
  chipDate: "2024-06-15"
db:
  connect: "secret:`+secretPath+`"
queue:
  dir: "/q"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ConfigSecret("tasim:hunter2@tcp(db:3306)/tasim"), cfg.DB.Connect)
}

func TestConfigSecretMissingFile(t *testing.T) {
	path := writeFile(t, "tasim.yaml", `
tasim:
  chipDate: "2024-06-15"
db:
  connect: "secret:/does/not/exist"
queue:
  dir: "/q"
`)
	_, err := Load(path)
	require.Error(t, err)
}
