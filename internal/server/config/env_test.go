package config

import (
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookuper(m map[string]string) envconfig.Lookuper {
	if m == nil {
		m = map[string]string{}
	}
	return envconfig.MapLookuper(m)
}

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Cleanup(func() { lookuper = nil })
	lookuper = mapLookuper(map[string]string{
		"SR_HTTP_ADDR":                ":9999",
		"SR_SESSION_TTL":              "2h",
		"SR_DEV_MODE":                 "true",
		"SR_ALLOWED_ORIGINS":          "https://a.example,https://b.example",
		"SR_SMTP_HOST":                "smtp.example",
		"SR_SMTP_PORT":                "2525",
		"SR_MEDIA_BACKEND":            "s3",
		"SR_NOTIFY_TIMEOUT":           "3s",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "otel:4318",
	})

	var c Config
	c.LoadDefaults()
	require.NotPanics(t, func() { parseEnv(&c) })

	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.True(t, c.DevMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, "smtp.example", c.SMTPHost)
	assert.Equal(t, 2525, c.SMTPPort)
	assert.Equal(t, MediaS3, c.MediaBackend)
	assert.Equal(t, 3*time.Second, c.NotifyTimeout)
	assert.Equal(t, "otel:4318", c.OTLPEndpoint)

	// untouched
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 12, c.BcryptCost)
}

func TestParseEnv_DevModeCanBeDisabled(t *testing.T) {
	t.Cleanup(func() { lookuper = nil })
	lookuper = mapLookuper(map[string]string{"SR_DEV_MODE": "false"})

	c := Config{DevMode: true}
	parseEnv(&c)
	assert.False(t, c.DevMode)
}

func TestParseEnv_InvalidValuePanics(t *testing.T) {
	t.Cleanup(func() { lookuper = nil })
	lookuper = mapLookuper(map[string]string{"SR_SMTP_PORT": "not-a-number"})

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
