package config

import (
	"errors"

	"github.com/athebyme/shopify-product-service/pkg/auth"
)

// KeycloakConfig представляет конфигурацию Keycloak для проверки сервисных токенов
type KeycloakConfig struct {
	ServerURL string
	Realm     string
	ClientID  string
}

// Validate проверяет, что заданы все параметры подключения
func (k *KeycloakConfig) Validate() error {
	if k.ServerURL == "" || k.Realm == "" || k.ClientID == "" {
		return errors.New("для режима keycloak требуются security.keycloak.serverURL, realm и clientID")
	}
	return nil
}

// GetKeycloakConfig возвращает конфигурацию для auth.KeycloakClient
func (k *KeycloakConfig) GetKeycloakConfig() auth.KeycloakConfig {
	return auth.KeycloakConfig{
		ServerURL: k.ServerURL,
		Realm:     k.Realm,
		ClientID:  k.ClientID,
	}
}
