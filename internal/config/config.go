// Package config loads runtime configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the server needs to start. Zero values mean "not
// configured": an empty GitHubClientID disables GitHub login, an empty
// MinioEndpoint disables sandbox publishing, and so on. Only JWTSecret is
// mandatory.
type Config struct {
	Port int

	// StorageBackend selects the persistence layer: "sqlite" (default) or
	// "file" for the single-JSON-document store.
	StorageBackend string
	DBPath         string // sqlite database file
	StorePath      string // filestore JSON document

	JWTSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// DevPasswordHash is a bcrypt hash gating POST /auth/dev-login. Empty
	// disables dev login entirely.
	DevPasswordHash string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioBaseURL   string
	MinioUseSSL    bool

	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (*Config, error) {
	// godotenv.Load never overrides variables that are already set.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           8080,
		StorageBackend: "sqlite",
		DBPath:         "data/museum.db",
		StorePath:      "data/museum.json",

		JWTSecret: os.Getenv("JWT_SECRET"),

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),

		DevPasswordHash: os.Getenv("DEV_PASSWORD_HASH"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envDefault("MINIO_BUCKET", "sandbox"),
		MinioBaseURL:   os.Getenv("MINIO_BASE_URL"),
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("config: invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		if backend != "sqlite" && backend != "file" {
			return nil, fmt.Errorf("config: unknown STORAGE_BACKEND %q (want sqlite or file)", backend)
		}
		cfg.StorageBackend = backend
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if path := os.Getenv("STORE_PATH"); path != "" {
		cfg.StorePath = path
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required (try JWT_SECRET=$(openssl rand -hex 32))")
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	if raw := os.Getenv("MINIO_USE_SSL"); raw != "" {
		useSSL, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid MINIO_USE_SSL %q", raw)
		}
		cfg.MinioUseSSL = useSSL
	}

	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}

// GitHubConfigured reports whether all credentials for the OAuth flow are set.
func (c *Config) GitHubConfigured() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// SandboxConfigured reports whether the object store for published sandbox
// documents is set up.
func (c *Config) SandboxConfigured() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
