package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Errorf("默认端口 = %s, want 8080", cfg.App.Port)
	}
	if cfg.Sync.RollingDays != 2 {
		t.Errorf("默认滚动天数 = %d, want 2", cfg.Sync.RollingDays)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SELLEROPS_APP_ENV", "prod")
	t.Setenv("SELLEROPS_SYNC_ROLLINGDAYS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Env != "prod" {
		t.Errorf("env = %s, want prod", cfg.App.Env)
	}
	if cfg.Sync.RollingDays != 5 {
		t.Errorf("滚动天数 = %d, want 5", cfg.Sync.RollingDays)
	}
}

func TestLoad_RollingDaysClampedToOne(t *testing.T) {
	// 配成 0 会让滚动窗口取不到任何一天，必须钳到下限
	t.Setenv("SELLEROPS_SYNC_ROLLINGDAYS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sync.RollingDays != 1 {
		t.Errorf("滚动天数 = %d, want 1（下限钳制）", cfg.Sync.RollingDays)
	}
}
