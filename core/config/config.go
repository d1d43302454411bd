package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment. It is built
// once in main and passed down; nothing reads os.Getenv after startup.
type Config struct {
	Environment  string
	ListenAddr   string
	DashboardURL string

	DatabaseURL string
	RedisAddr   string

	WorkOS   WorkOSConfig
	Security SecurityConfig

	Providers map[string]ProviderConfig

	OTLPEndpoint string
}

type WorkOSConfig struct {
	APIKey      string
	ClientID    string
	RedirectURI string
}

type SecurityConfig struct {
	// TokenEncryptionKey is the 32-byte AES-256 key, decoded from
	// TOKEN_ENCRYPTION_KEY (64 hex chars).
	TokenEncryptionKey []byte
	// StateSigningSecret signs OAuth state tokens.
	StateSigningSecret []byte
}

// ProviderConfig carries the OAuth client registration for one external
// provider (google, microsoft, slack, hubspot, pipedrive).
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// KnownProviders is the fixed set of OAuth providers the server can connect.
var KnownProviders = []string{"google", "microsoft", "slack", "hubspot", "pipedrive"}

// Load reads .env (if present) and the process environment. Missing optional
// settings leave their fields zero; callers decide what is fatal. Required
// settings for data-mutating paths are validated by the corresponding
// constructors, so health checks can still run against a partial config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:3000"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		WorkOS: WorkOSConfig{
			APIKey:      os.Getenv("WORKOS_API_KEY"),
			ClientID:    os.Getenv("WORKOS_CLIENT_ID"),
			RedirectURI: os.Getenv("WORKOS_REDIRECT_URI"),
		},
		Providers: make(map[string]ProviderConfig),
	}

	if raw := os.Getenv("TOKEN_ENCRYPTION_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding TOKEN_ENCRYPTION_KEY: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must be 32 bytes, got %d", len(key))
		}
		cfg.Security.TokenEncryptionKey = key
	}
	if raw := os.Getenv("STATE_SIGNING_SECRET"); raw != "" {
		cfg.Security.StateSigningSecret = []byte(raw)
	}

	for _, provider := range KnownProviders {
		prefix := strings.ToUpper(provider)
		pc := ProviderConfig{
			ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
			ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
			RedirectURI:  os.Getenv(prefix + "_REDIRECT_URI"),
		}
		if pc.ClientID != "" {
			cfg.Providers[provider] = pc
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
