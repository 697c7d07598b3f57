package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/patrickmn/go-cache"

	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// KeycloakConfig конфигурация для Keycloak
type KeycloakConfig struct {
	ServerURL string
	Realm     string
	ClientID  string
}

// Issuer адрес realm, который Keycloak пишет в iss
func (c KeycloakConfig) Issuer() string {
	return fmt.Sprintf("%s/realms/%s", strings.TrimRight(c.ServerURL, "/"), c.Realm)
}

// KeycloakClaims представляет собой структуру claims из токена Keycloak
type KeycloakClaims struct {
	Subject     string `json:"sub"`
	Username    string `json:"preferred_username"`
	ClientID    string `json:"azp"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// tokenVerifier часть oidc.IDTokenVerifier, которой пользуется клиент
type tokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// KeycloakClient проверяет сервисные токены Keycloak
type KeycloakClient struct {
	verifier   tokenVerifier
	tokenCache *cache.Cache
	clientID   string
}

var _ interfaces.AuthPort = (*KeycloakClient)(nil)

// NewKeycloakClient создает новый клиент Keycloak; ключи realm загружаются через discovery
func NewKeycloakClient(ctx context.Context, cfg KeycloakConfig) (*KeycloakClient, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания OIDC провайдера: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return newKeycloakClient(verifier, cfg.ClientID), nil
}

// NewKeycloakClientWithKeys создает клиент со статическим набором ключей, без обращения к discovery
func NewKeycloakClientWithKeys(cfg KeycloakConfig, keySet oidc.KeySet) *KeycloakClient {
	verifier := oidc.NewVerifier(cfg.Issuer(), keySet, &oidc.Config{ClientID: cfg.ClientID})
	return newKeycloakClient(verifier, cfg.ClientID)
}

func newKeycloakClient(verifier tokenVerifier, clientID string) *KeycloakClient {
	return &KeycloakClient{
		verifier:   verifier,
		tokenCache: cache.New(5*time.Minute, 10*time.Minute),
		clientID:   clientID,
	}
}

// ValidateToken проверяет JWT токен и возвращает claims
func (k *KeycloakClient) ValidateToken(ctx context.Context, tokenString string) (*KeycloakClaims, error) {
	if cachedClaims, found := k.tokenCache.Get(tokenString); found {
		return cachedClaims.(*KeycloakClaims), nil
	}

	idToken, err := k.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("ошибка верификации токена: %w", err)
	}

	var claims KeycloakClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("ошибка извлечения claims: %w", err)
	}

	expiresIn := time.Until(idToken.Expiry)
	if expiresIn > 0 {
		k.tokenCache.Set(tokenString, &claims, expiresIn)
	}

	return &claims, nil
}

// Authenticate проверяет токен и собирает роли realm и клиента
func (k *KeycloakClient) Authenticate(ctx context.Context, token string) (*interfaces.Principal, error) {
	claims, err := k.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	subject := claims.Username
	if subject == "" {
		subject = claims.Subject
	}
	return &interfaces.Principal{Subject: subject, Roles: k.roles(claims)}, nil
}

func (k *KeycloakClient) roles(claims *KeycloakClaims) []string {
	roles := append([]string(nil), claims.RealmAccess.Roles...)
	if clientRoles, exists := claims.ResourceAccess[k.clientID]; exists {
		roles = append(roles, clientRoles.Roles...)
	}
	return roles
}
