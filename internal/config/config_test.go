package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/campushealth")
	t.Setenv("ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %s, want 30m", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("RefreshTokenTTL = %s, want 168h", cfg.RefreshTokenTTL)
	}
	if cfg.AuthSigningSecret == "" {
		t.Error("expected dev fallback signing secret")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestValidateRequiresSecretOutsideDev(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		DatabaseURL:     "postgres://localhost:5432/campushealth",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
		MaxUploadBytes:  1024,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing AUTH_SIGNING_SECRET in production")
	}
	if !strings.Contains(err.Error(), "AUTH_SIGNING_SECRET") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.AuthSigningSecret = "super-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate with secret: %v", err)
	}
}

func TestValidateTokenLifetimes(t *testing.T) {
	cfg := &Config{
		Env:               "development",
		DatabaseURL:       "postgres://localhost:5432/campushealth",
		AuthSigningSecret: "x",
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   time.Minute,
		MaxUploadBytes:    1024,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when refresh TTL does not exceed access TTL")
	}
}
