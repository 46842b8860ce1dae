package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.DiscountTimeout != 5*time.Second || cfg.Currency != "INR" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	body := "HTTP_PORT: 9090\nAPI_BASE_URL: http://file.example/api/\nCART_TTL: 1h\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("DISCOUNT_TIMEOUT", "250ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Fatalf("expected env port 7070, got %d", cfg.HTTPPort)
	}
	if cfg.APIBaseURL != "http://file.example/api" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
	if cfg.CartTTL != time.Hour || cfg.DiscountTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected durations %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SESSION_CAPACITY", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for zero session capacity")
	}
}
