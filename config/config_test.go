package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("missing-config")
	require.NoError(t, err)

	assert.Equal(t, "shopify-product-service", cfg.AppName)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "2025-07", cfg.Shopify.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.Shopify.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 40, cfg.RateLimit.Requests)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, AuthModeNone, cfg.Security.AuthMode)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SHOPIFY_API_VERSION", "2024-10")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "test-store.myshopify.com")

	cfg, err := Load("missing-config")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "2024-10", cfg.Shopify.APIVersion)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "test-store.myshopify.com", cfg.Worker.ShopDomain)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 8181
security:
  authMode: keycloak
  keycloak:
    serverURL: https://sso.example.com
    realm: shop
    clientID: product-service
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "service.yaml"), content, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("service")
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, AuthModeKeycloak, cfg.Security.AuthMode)
	kc := cfg.Security.Keycloak.GetKeycloakConfig()
	assert.Equal(t, "https://sso.example.com", kc.ServerURL)
	assert.Equal(t, "product-service", kc.ClientID)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("missing-config")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Security.AuthMode = AuthModeJWT
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Security.AuthMode = AuthModeKeycloak
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Security.AuthMode = "basic"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.Validate())
}
