package config

import "testing"

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STRIPE_CURRENCY", "USD")
	t.Setenv("CHECKOUT_DEFAULT_ORIGIN", "https://gym.example/")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "abc")
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_BUCKET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "development" || cfg.IsProduction() {
		t.Fatalf("unexpected env %q", cfg.AppEnv)
	}
	if cfg.StripeCurrency != "usd" {
		t.Fatalf("expected lower-cased currency, got %q", cfg.StripeCurrency)
	}
	if cfg.CheckoutDefaultOrigin != "https://gym.example" {
		t.Fatalf("expected trimmed origin, got %q", cfg.CheckoutDefaultOrigin)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.CheckoutEnabled() || cfg.StorageEnabled() {
		t.Fatal("expected checkout and storage to be disabled")
	}
}

func TestStrictOriginCheck(t *testing.T) {
	cfg := &Config{AppEnv: "production"}

	t.Setenv("ALLOW_ANY_ORIGIN", "")
	if !cfg.StrictOriginCheck() {
		t.Fatal("expected strict origin check in production")
	}
	t.Setenv("ALLOW_ANY_ORIGIN", "yes")
	if cfg.StrictOriginCheck() {
		t.Fatal("expected ALLOW_ANY_ORIGIN to opt out")
	}
	if (&Config{AppEnv: "development"}).StrictOriginCheck() {
		t.Fatal("expected no strict check outside production")
	}
}
