package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.TenantID != "default" {
		t.Errorf("TenantID = %q, want %q", cfg.TenantID, "default")
	}
	if cfg.StoreID != "store-001" {
		t.Errorf("StoreID = %q, want %q", cfg.StoreID, "store-001")
	}
	if cfg.AuditLogPath != "security_audit.log" {
		t.Errorf("AuditLogPath = %q, want default", cfg.AuditLogPath)
	}
	if cfg.EventHistoryDepth != 1 {
		t.Errorf("EventHistoryDepth = %d, want 1", cfg.EventHistoryDepth)
	}
	if cfg.AlertWebhookURL != "" {
		t.Errorf("AlertWebhookURL = %q, want empty", cfg.AlertWebhookURL)
	}
	if cfg.NotifyMaxRetries != 0 {
		t.Errorf("NotifyMaxRetries = %d, want 0", cfg.NotifyMaxRetries)
	}
	if cfg.AlertKafkaTopic != "security-alerts" {
		t.Errorf("AlertKafkaTopic = %q, want default", cfg.AlertKafkaTopic)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9999")
	os.Setenv("TENANT_ID", "acme")
	os.Setenv("EVENT_HISTORY_DEPTH", "5")
	os.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example.com/x")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9999")
	}
	if cfg.TenantID != "acme" {
		t.Errorf("TenantID = %q, want %q", cfg.TenantID, "acme")
	}
	if cfg.EventHistoryDepth != 5 {
		t.Errorf("EventHistoryDepth = %d, want 5", cfg.EventHistoryDepth)
	}
	if cfg.AlertWebhookURL != "https://hooks.example.com/x" {
		t.Errorf("AlertWebhookURL = %q, want override", cfg.AlertWebhookURL)
	}
}

func TestLoad_InvalidDepth(t *testing.T) {
	os.Clearenv()
	os.Setenv("EVENT_HISTORY_DEPTH", "0")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject EVENT_HISTORY_DEPTH < 1")
	}
}

func TestLoad_InvalidRetries(t *testing.T) {
	os.Clearenv()
	os.Setenv("NOTIFY_MAX_RETRIES", "-1")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject negative NOTIFY_MAX_RETRIES")
	}
}

func TestNotifyTimeoutDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"2s", 2 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"", 2 * time.Second},
		{"garbage", 2 * time.Second},
		{"-1s", 2 * time.Second},
	}
	for _, tc := range cases {
		cfg := &Config{NotifyTimeout: tc.in}
		if got := cfg.NotifyTimeoutDuration(); got != tc.want {
			t.Errorf("NotifyTimeoutDuration(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAlertKafkaBrokersList(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"localhost:9092", 1},
		{"a:9092, b:9092", 2},
		{" , ", 0},
	}
	for _, tc := range cases {
		cfg := &Config{AlertKafkaBrokers: tc.in}
		if got := len(cfg.AlertKafkaBrokersList()); got != tc.want {
			t.Errorf("AlertKafkaBrokersList(%q) len = %d, want %d", tc.in, got, tc.want)
		}
	}
}
