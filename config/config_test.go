package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadRejectsFeeBpsOutOfRange(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/purchases?parseTime=true")
	setEnv(t, "PURCHASES_PLATFORM_FEE_BPS", "10001")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for fee bps above 10000")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/purchases?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "purchases-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "PURCHASES_PLATFORM_FEE_BPS", "1250")
	setEnv(t, "PURCHASES_RESOLVE_TIMEOUT_SECONDS", "7")
	setEnv(t, "PURCHASES_NOTIFY_TIMEOUT_SECONDS", "3")
	setEnv(t, "PURCHASES_RECONCILE_LOOKBACK_MINUTES", "90")
	setEnv(t, "PURCHASES_JOB_BATCH_SIZE", "99")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "purchases-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Fulfillment.PlatformFeeBps != 1250 {
		t.Fatalf("unexpected fee bps: %d", cfg.Fulfillment.PlatformFeeBps)
	}
	if cfg.Fulfillment.ResolveTimeout != 7*time.Second {
		t.Fatalf("unexpected resolve timeout: %v", cfg.Fulfillment.ResolveTimeout)
	}
	if cfg.Fulfillment.NotifyTimeout != 3*time.Second {
		t.Fatalf("unexpected notify timeout: %v", cfg.Fulfillment.NotifyTimeout)
	}
	if cfg.Fulfillment.ReconcileLookback != 90*time.Minute {
		t.Fatalf("unexpected reconcile lookback: %v", cfg.Fulfillment.ReconcileLookback)
	}
	if cfg.Fulfillment.JobBatchSize != 99 {
		t.Fatalf("unexpected job batch size: %d", cfg.Fulfillment.JobBatchSize)
	}
}
