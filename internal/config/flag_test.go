package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-s", "s3", "-d", "db", "-t", "1m", "-m", "4", "-k", "7s",
				"-hasher", "bcrypt", "-salt", "x", "-biometry", "touchid", "-l", "warn",
				"-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint", "-u", "user", "-p", "password",
				"-prefix", "p/",
			},
			expected: &Config{
				StorageDriver:     "s3",
				DatabaseDSN:       "db",
				SessionDuration:   time.Minute,
				MaxFailedAttempts: 4,
				BlockDuration:     7 * time.Second,
				Hasher:            "bcrypt",
				HasherSalt:        "x",
				BiometryModality:  "touchid",
				LogLevel:          "warn",
				S3Bucket:          "bucket",
				S3Region:          "us-west-1",
				S3BaseEndpoint:    "http://endpoint",
				S3AccessKey:       "user",
				S3SecretKey:       "password",
				S3Prefix:          "p/",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-c", "cfg.json", "-verbose", "-m", "2"},
			expected: &Config{MaxFailedAttempts: 2},
		},
		{
			name:        "malformed duration panics",
			args:        []string{"-t", "soon"},
			expectPanic: true,
		},
		{
			name:        "malformed int panics",
			args:        []string{"-m", "many"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}

func TestLoadConfig_FlagsOverrideJson(t *testing.T) {
	path := writeTempJSON(t, t.TempDir(), "cfg.json", map[string]any{
		"storage_driver":      "memory",
		"max_failed_attempts": 9,
		"log_level":           "debug",
	})

	c := loadConfig([]string{"-c", path, "-m", "2"})

	var want Config
	want.LoadDefaults()
	want.StorageDriver = "memory"
	want.MaxFailedAttempts = 2
	want.LogLevel = "debug"
	assert.Empty(t, cmp.Diff(&want, c))
}
