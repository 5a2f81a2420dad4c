package config

import "testing"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "config-test-secret-0123456789")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.StorageBackend)
	}
	if cfg.GitHubConfigured() {
		t.Error("GitHub should not be configured without credentials")
	}
	if cfg.SandboxConfigured() {
		t.Error("sandbox should not be configured without MinIO credentials")
	}
	if cfg.GitHubCallbackURL != "http://localhost:8080/auth/github/callback" {
		t.Errorf("unexpected callback URL %q", cfg.GitHubCallbackURL)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]struct{ key, value string }{
		"non-numeric port":  {"PORT", "http"},
		"out-of-range port": {"PORT", "70000"},
		"unknown backend":   {"STORAGE_BACKEND", "postgres"},
		"bad ssl flag":      {"MINIO_USE_SSL", "maybe"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_ParsesOriginsList(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://museum.example, https://staging.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[0] != "https://museum.example" {
		t.Errorf("origin not trimmed: %q", cfg.CORSAllowedOrigins[0])
	}
}
