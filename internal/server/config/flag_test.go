package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-b", "https://news.example", "-d", "db", "-s", "secret",
				"-t", "30", "-l", "debug", "-m", "s3", "-u", "/srv/uploads", "-dev",
			},
			expected: &Config{
				HTTPAddr:     "127.0.0.1:9090",
				BaseURL:      "https://news.example",
				DatabaseDSN:  "db",
				SecretKey:    "secret",
				SessionTTL:   30 * time.Minute,
				LogLevel:     "debug",
				MediaBackend: "s3",
				UploadDir:    "/srv/uploads",
				DevMode:      true,
			},
		},
		{
			name: "foreign flags ignored",
			args: []string{"cmd", "reset-link", "--email", "a@x.com", "-c", "cfg.json", "-t", "5"},
			expected: &Config{
				SessionTTL: 5 * time.Minute,
			},
		},
		{
			name:        "bad int panics",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
