package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// EnvConfig lists the environment variables the server understands. Unset
// variables leave the corresponding Config field untouched.
type EnvConfig struct {
	HTTPAddr           string        `env:"SR_HTTP_ADDR"`
	BaseURL            string        `env:"SR_BASE_URL"`
	DatabaseDSN        string        `env:"SR_DATABASE_DSN"`
	SecretKey          string        `env:"SR_SECRET_KEY"`
	SessionTTL         time.Duration `env:"SR_SESSION_TTL"`
	BcryptCost         int           `env:"SR_BCRYPT_COST"`
	DevMode            *bool         `env:"SR_DEV_MODE,noinit"`
	LogLevel           string        `env:"SR_LOG_LEVEL"`
	AllowedOrigins     []string      `env:"SR_ALLOWED_ORIGINS"`
	RateLimitPerMinute int           `env:"SR_RATE_LIMIT_PER_MINUTE"`
	AdminName          string        `env:"SR_ADMIN_NAME"`
	AdminEmail         string        `env:"SR_ADMIN_EMAIL"`
	AdminPassword      string        `env:"SR_ADMIN_PASSWORD"`
	MediaBackend       string        `env:"SR_MEDIA_BACKEND"`
	UploadDir          string        `env:"SR_UPLOAD_DIR"`
	S3AccessKey        string        `env:"SR_S3_ACCESS_KEY"`
	S3SecretKey        string        `env:"SR_S3_SECRET_KEY"`
	S3Bucket           string        `env:"SR_S3_BUCKET"`
	S3Region           string        `env:"SR_S3_REGION"`
	S3BaseEndpoint     string        `env:"SR_S3_BASE_ENDPOINT"`
	SMTPHost           string        `env:"SR_SMTP_HOST"`
	SMTPPort           int           `env:"SR_SMTP_PORT"`
	SMTPUser           string        `env:"SR_SMTP_USER"`
	SMTPPassword       string        `env:"SR_SMTP_PASSWORD"`
	SMTPFrom           string        `env:"SR_SMTP_FROM"`
	NATSURL            string        `env:"SR_NATS_URL"`
	NATSSubject        string        `env:"SR_NATS_SUBJECT"`
	NotifyTimeout      time.Duration `env:"SR_NOTIFY_TIMEOUT"`
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// lookuper is a seam for tests; nil means the process environment.
var lookuper envconfig.Lookuper

func parseEnv(config *Config) {
	e := &EnvConfig{}

	ec := &envconfig.Config{Target: e, Lookuper: lookuper}
	if ec.Lookuper == nil {
		ec.Lookuper = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(context.Background(), ec); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, e.HTTPAddr)
	setString(&config.BaseURL, e.BaseURL)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	if e.SessionTTL > 0 {
		config.SessionTTL = e.SessionTTL
	}
	setInt(&config.BcryptCost, e.BcryptCost)
	if e.DevMode != nil {
		config.DevMode = *e.DevMode
	}
	setString(&config.LogLevel, e.LogLevel)
	if len(e.AllowedOrigins) > 0 {
		config.AllowedOrigins = e.AllowedOrigins
	}
	setInt(&config.RateLimitPerMinute, e.RateLimitPerMinute)
	setString(&config.AdminName, e.AdminName)
	setString(&config.AdminEmail, e.AdminEmail)
	setString(&config.AdminPassword, e.AdminPassword)
	setString(&config.MediaBackend, e.MediaBackend)
	setString(&config.UploadDir, e.UploadDir)
	setString(&config.S3AccessKey, e.S3AccessKey)
	setString(&config.S3SecretKey, e.S3SecretKey)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	setString(&config.SMTPHost, e.SMTPHost)
	setInt(&config.SMTPPort, e.SMTPPort)
	setString(&config.SMTPUser, e.SMTPUser)
	setString(&config.SMTPPassword, e.SMTPPassword)
	setString(&config.SMTPFrom, e.SMTPFrom)
	setString(&config.NATSURL, e.NATSURL)
	setString(&config.NATSSubject, e.NATSSubject)
	if e.NotifyTimeout > 0 {
		config.NotifyTimeout = e.NotifyTimeout
	}
	setString(&config.OTLPEndpoint, e.OTLPEndpoint)
}
