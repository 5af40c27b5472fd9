// Package config loads and validates app config from env and an optional
// .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// TenantID is stamped on every alert this instance emits.
	TenantID string `mapstructure:"TENANT_ID"`
	// StoreID is the fallback store identifier for events that carry none.
	StoreID string `mapstructure:"STORE_ID"`
	// AuditLogPath is the append-only audit log file.
	AuditLogPath string `mapstructure:"AUDIT_LOG_PATH"`
	// EventHistoryDepth is how many events of each kind are retained per
	// till (>= 1). 1 means most-recent-wins.
	EventHistoryDepth int `mapstructure:"EVENT_HISTORY_DEPTH"`

	// AlertWebhookURL is the outbound webhook for alert summaries. Empty
	// disables webhook delivery only, never ingestion.
	AlertWebhookURL string `mapstructure:"ALERT_WEBHOOK_URL"`
	// NotifyTimeout bounds each outbound delivery attempt (e.g. "2s").
	NotifyTimeout string `mapstructure:"NOTIFY_TIMEOUT"`
	// NotifyMaxRetries is the per-delivery retry budget after the first
	// attempt; 0 keeps single-shot delivery.
	NotifyMaxRetries int `mapstructure:"NOTIFY_MAX_RETRIES"`

	// AlertKafkaBrokers is a comma-separated broker list; non-empty enables
	// the Kafka alert stream.
	AlertKafkaBrokers string `mapstructure:"ALERT_KAFKA_BROKERS"`
	// AlertKafkaTopic is the topic for the alert stream.
	AlertKafkaTopic string `mapstructure:"ALERT_KAFKA_TOPIC"`

	// OTLPEndpoint enables OTel export when set (e.g. localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("TENANT_ID", "default")
	v.SetDefault("STORE_ID", "store-001")
	v.SetDefault("AUDIT_LOG_PATH", "security_audit.log")
	v.SetDefault("EVENT_HISTORY_DEPTH", 1)
	v.SetDefault("ALERT_WEBHOOK_URL", "")
	v.SetDefault("NOTIFY_TIMEOUT", "2s")
	v.SetDefault("NOTIFY_MAX_RETRIES", 0)
	v.SetDefault("ALERT_KAFKA_BROKERS", "")
	v.SetDefault("ALERT_KAFKA_TOPIC", "security-alerts")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.AuditLogPath == "" {
		return nil, errors.New("config: AUDIT_LOG_PATH must be set")
	}
	if cfg.EventHistoryDepth < 1 {
		return nil, errors.New("config: EVENT_HISTORY_DEPTH must be >= 1")
	}
	if cfg.NotifyMaxRetries < 0 {
		return nil, errors.New("config: NOTIFY_MAX_RETRIES must be >= 0")
	}

	return &cfg, nil
}

// NotifyTimeoutDuration parses NotifyTimeout. Returns 2s if unset or invalid.
func (c *Config) NotifyTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.NotifyTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// AlertKafkaBrokersList returns broker addresses from the comma-separated
// config. A non-empty list enables the Kafka alert stream.
func (c *Config) AlertKafkaBrokersList() []string {
	if c == nil || c.AlertKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AlertKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
