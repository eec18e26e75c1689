package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %s", cfg.HTTPPort)
	}
	if cfg.ArchiveAfterDays != 30 {
		t.Errorf("ArchiveAfterDays = %d, want 30", cfg.ArchiveAfterDays)
	}
	if cfg.FonnteBaseURL != "https://api.fonnte.com/send" {
		t.Errorf("FonnteBaseURL = %s", cfg.FonnteBaseURL)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Errorf("AccessTokenTTL = %s", cfg.AccessTokenTTL)
	}
}

func TestLoadRequiredVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	if _, err := Load(); err == nil {
		t.Error("missing DATABASE_URL accepted")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("missing JWT_SECRET accepted")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ARCHIVE_AFTER_DAYS", "60")
	t.Setenv("HTTP_READ_TIMEOUT", "30s")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ArchiveAfterDays != 60 {
		t.Errorf("ArchiveAfterDays = %d, want 60", cfg.ArchiveAfterDays)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %s", cfg.ReadTimeout)
	}
	// Bare integers are treated as seconds.
	if cfg.WriteTimeout != 45*time.Second {
		t.Errorf("WriteTimeout = %s", cfg.WriteTimeout)
	}
}
