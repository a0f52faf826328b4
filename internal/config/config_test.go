package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quarkfin/platform-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_URL", "")

	cfg := config.Load()

	if cfg.APIURL != config.DevAPIURL {
		t.Errorf("expected dev fallback %q, got %q", config.DevAPIURL, cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.RetryBaseDelay != time.Second {
		t.Errorf("expected 1s base delay, got %v", cfg.RetryBaseDelay)
	}
	if cfg.PollMaxAttempts != 60 || cfg.PollInterval != 2*time.Second {
		t.Errorf("unexpected poll defaults: %d / %v", cfg.PollMaxAttempts, cfg.PollInterval)
	}
}

func TestLoad_RejectsNonPositiveValues(t *testing.T) {
	t.Setenv("CACHE_TTL", "0s")
	t.Setenv("MAX_CONCURRENCY", "0")
	t.Setenv("MAX_RETRIES", "-1")
	t.Setenv("POLL_INTERVAL", "-2s")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := config.Load()

	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected default cache TTL, got %v", cfg.CacheTTL)
	}
	if cfg.MaxConcurrency != 50 {
		t.Errorf("expected default concurrency, got %d", cfg.MaxConcurrency)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected default attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected default poll interval, got %v", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.HTTPTimeout)
	}
}

func TestLoad_ProductionFallsBackToPlatformAPI(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_URL", "")
	t.Setenv("PLATFORM_URL", "https://app.example.com/")

	cfg := config.Load()

	if cfg.APIURL != "https://app.example.com/api" {
		t.Errorf("unexpected API URL %q", cfg.APIURL)
	}
}

func TestLoad_ExplicitAPIURL(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/")

	cfg := config.Load()

	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("unexpected API URL %q", cfg.APIURL)
	}
}

func TestJWKSURL(t *testing.T) {
	t.Setenv("COGNITO_REGION", "eu-west-1")
	t.Setenv("COGNITO_USER_POOL_ID", "eu-west-1_abc")

	cfg := config.Load()

	want := "https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_abc/.well-known/jwks.json"
	if cfg.JWKSURL() != want {
		t.Errorf("expected %q, got %q", want, cfg.JWKSURL())
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("QUARK_TEST_A=from-file\nQUARK_TEST_B=\"quoted\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUARK_TEST_A", "from-env")
	t.Setenv("QUARK_TEST_B", "")
	os.Unsetenv("QUARK_TEST_B")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("QUARK_TEST_A"); got != "from-env" {
		t.Errorf("expected env to win, got %q", got)
	}
	if got := os.Getenv("QUARK_TEST_B"); got != "quoted" {
		t.Errorf("expected quoted value from file, got %q", got)
	}
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("expected missing file to be skipped, got %v", err)
	}
}
