package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RUN_FREQUENCY", "")
	t.Setenv("FEISHU_WEBHOOK", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FreshnessWindow != time.Hour {
		t.Fatalf("FreshnessWindow = %v, want 1h", cfg.FreshnessWindow)
	}
	if cfg.DeliveryConfigured() {
		t.Fatalf("expected delivery to be unconfigured without FEISHU_WEBHOOK")
	}
	if !cfg.Dedupe {
		t.Fatalf("expected dedupe enabled by default")
	}
	if cfg.HistoryStore != "none" {
		t.Fatalf("HistoryStore = %q, want none", cfg.HistoryStore)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RUN_FREQUENCY", "900")
	t.Setenv("FEISHU_WEBHOOK", "https://open.feishu.cn/open-apis/bot/v2/hook/abc")
	t.Setenv("DEDUPE", "false")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FreshnessWindow != 15*time.Minute {
		t.Fatalf("FreshnessWindow = %v, want 15m", cfg.FreshnessWindow)
	}
	if !cfg.DeliveryConfigured() {
		t.Fatalf("expected webhook to be picked up")
	}
	if cfg.Dedupe {
		t.Fatalf("expected DEDUPE=false to disable dedupe")
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}

func TestLoadRejectsNonPositiveWindow(t *testing.T) {
	for _, raw := range []string{"0", "-5"} {
		t.Setenv("RUN_FREQUENCY", raw)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for RUN_FREQUENCY=%s", raw)
		}
	}
}
