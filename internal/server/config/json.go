package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sobrerodas/internal/flagx"
	"github.com/dmitrijs2005/sobrerodas/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept either "24h" style strings or integer nanoseconds. Fields left out
// of the file keep their previous value.
type JsonConfig struct {
	HTTPAddr           string         `json:"http_addr"`
	BaseURL            string         `json:"base_url"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	SessionTTL         timex.Duration `json:"session_ttl"`
	BcryptCost         int            `json:"bcrypt_cost"`
	DevMode            *bool          `json:"dev_mode"`
	LogLevel           string         `json:"log_level"`
	AllowedOrigins     []string       `json:"allowed_origins"`
	RateLimitPerMinute int            `json:"rate_limit_per_minute"`
	AdminName          string         `json:"admin_name"`
	AdminEmail         string         `json:"admin_email"`
	AdminPassword      string         `json:"admin_password"`
	MediaBackend       string         `json:"media_backend"`
	UploadDir          string         `json:"upload_dir"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUser           string         `json:"smtp_user"`
	SMTPPassword       string         `json:"smtp_password"`
	SMTPFrom           string         `json:"smtp_from"`
	NATSURL            string         `json:"nats_url"`
	NATSSubject        string         `json:"nats_subject"`
	NotifyTimeout      timex.Duration `json:"notify_timeout"`
	OTLPEndpoint       string         `json:"otlp_endpoint"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing happens; an unreadable or malformed file panics, since the
// server cannot start on a config the operator did not intend.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	setInt(&config.BcryptCost, c.BcryptCost)
	if c.DevMode != nil {
		config.DevMode = *c.DevMode
	}
	setString(&config.LogLevel, c.LogLevel)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setInt(&config.RateLimitPerMinute, c.RateLimitPerMinute)
	setString(&config.AdminName, c.AdminName)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.MediaBackend, c.MediaBackend)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.NATSURL, c.NATSURL)
	setString(&config.NATSSubject, c.NATSSubject)
	if c.NotifyTimeout.Duration > 0 {
		config.NotifyTimeout = c.NotifyTimeout.Duration
	}
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
