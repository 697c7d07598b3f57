package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/athebyme/shopify-product-service/internal/domain/models"
)

// ErrMissingCredentials отсутствует домен магазина или токен доступа
var ErrMissingCredentials = errors.New("missing Shopify credentials")

// MissingCredentialsError указывает, какого именно значения не хватает.
// Возвращается до любого сетевого вызова.
type MissingCredentialsError struct {
	Field string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing Shopify credentials: %s is empty", e.Field)
}

func (e *MissingCredentialsError) Unwrap() error { return ErrMissingCredentials }

// CheckCredentials проверяет, что домен и токен заданы
func CheckCredentials(shop models.ShopCredentials) error {
	if strings.TrimSpace(shop.Domain) == "" {
		return &MissingCredentialsError{Field: "shop domain"}
	}
	if strings.TrimSpace(shop.AccessToken) == "" {
		return &MissingCredentialsError{Field: "access token"}
	}
	return nil
}

// RemoteValidationError Shopify ответил успешно, но вернул userErrors
type RemoteValidationError struct {
	Stage    Stage
	Messages []string
}

// NewRemoteValidationError собирает сообщения userErrors; пустые сообщения пропускаются
func NewRemoteValidationError(stage Stage, userErrors []models.UserError) *RemoteValidationError {
	messages := make([]string, 0, len(userErrors))
	for _, ue := range userErrors {
		msg := strings.TrimSpace(ue.Message)
		if msg == "" {
			continue
		}
		messages = append(messages, msg)
	}
	return &RemoteValidationError{Stage: stage, Messages: messages}
}

func (e *RemoteValidationError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("Shopify error: %s failed with user errors", e.Stage)
	}
	return "Shopify error: " + strings.Join(e.Messages, ", ")
}

// TransportError сетевой или HTTP-сбой при обращении к Shopify
type TransportError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	detail := strings.TrimSpace(e.Body)
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("Shopify API request failed: %s: status %d: %s", e.Operation, e.StatusCode, detail)
	}
	return fmt.Sprintf("Shopify API request failed: %s: %s", e.Operation, detail)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ReconciliationError ни один запрошенный вариант не совпал с вариантом по умолчанию
type ReconciliationError struct {
	DefaultOptions models.OptionAssignments
}

func (e *ReconciliationError) Error() string {
	pairs := make([]string, 0, len(e.DefaultOptions))
	for _, name := range e.DefaultOptions.Keys() {
		pairs = append(pairs, name+"="+e.DefaultOptions[name])
	}
	return fmt.Sprintf("no requested variant matches the default variant (%s)", strings.Join(pairs, ", "))
}

// RemoteResponseError в ответе Shopify отсутствует ожидаемое поле
type RemoteResponseError struct {
	Stage  Stage
	Reason string
}

func (e *RemoteResponseError) Error() string {
	return fmt.Sprintf("unexpected Shopify response at %s: %s", e.Stage, e.Reason)
}

// ErrorClass короткое имя класса ошибки для метрик и событий
func ErrorClass(err error) string {
	var (
		missing   *MissingCredentialsError
		remote    *RemoteValidationError
		transport *TransportError
		reconcile *ReconciliationError
		response  *RemoteResponseError
		invalid   models.ValidationErrors
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &missing), errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.As(err, &invalid):
		return "validation"
	case errors.As(err, &remote):
		return "remote_validation"
	case errors.As(err, &reconcile):
		return "reconciliation"
	case errors.As(err, &response):
		return "remote_response"
	case errors.As(err, &transport):
		return "transport"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}
