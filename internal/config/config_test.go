package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gauntlet.json", cfg.Data.DocumentPath)
	assert.Equal(t, 120*time.Second, cfg.OverlapDuration())
	assert.Equal(t, 30*time.Second, cfg.SweepInterval())
	assert.Equal(t, 2100*time.Millisecond, cfg.CFInterval())
	assert.Equal(t, 1100*time.Millisecond, cfg.ATInterval())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data:
  documentPath: /var/lib/gauntlet/state.json
poll:
  overlapSeconds: 60
judges:
  codeforces:
    intervalMs: 5000
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/gauntlet/state.json", cfg.Data.DocumentPath)
	assert.Equal(t, 60, cfg.Poll.OverlapSeconds)
	assert.Equal(t, 5000, cfg.Judges.Codeforces.IntervalMs)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched fields keep their defaults
	assert.Equal(t, 1100, cfg.Judges.AtCoder.IntervalMs)
	assert.Equal(t, 30, cfg.Poll.SweepIntervalSeconds)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad log level", "log:\n  level: loud\n"},
		{"zero sweep interval", "poll:\n  sweepIntervalSeconds: 0\n"},
		{"negative throttle", "judges:\n  atcoder:\n    intervalMs: -5\n"},
		{"empty document path", "data:\n  documentPath: \"\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "pol:\n  overlapSeconds: 10\n"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "reading config")
}
