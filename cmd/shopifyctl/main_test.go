package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/athebyme/shopify-product-service/internal/security"
)

func writeKeys(t *testing.T) (privatePath string, publicPEM []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath = filepath.Join(dir, "key.pem")
	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))

	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return privatePath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
}

func TestTokenCommandMintsVerifiableToken(t *testing.T) {
	privatePath, publicPEM := writeKeys(t)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run([]string{"shopifyctl", "token",
		"--private-key", privatePath, "--subject", "catalog-sync", "--role", "product-writer", "--ttl", "5m"}))

	verifier, err := security.NewJWTVerifier(publicPEM, "shopify-product-service")
	require.NoError(t, err)
	claims, err := verifier.Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "catalog-sync", claims.Subject)
	assert.Equal(t, []string{"product-writer"}, claims.Roles)
}

func TestCreateCommandRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"T"}`), 0o600))

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run([]string{"shopifyctl", "create", "--file", path, "--shop", "s.myshopify.com", "--token", "t"})
	require.Error(t, err)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Contains(t, body.Errors, "vendor")
}

func TestReadRequestMissingFile(t *testing.T) {
	_, err := readRequest(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
