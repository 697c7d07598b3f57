package interfaces

import (
	"context"
)

// Principal описывает вызывающую сторону, прошедшую аутентификацию
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole проверяет наличие роли у вызывающей стороны
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role || r == "admin" {
			return true
		}
	}
	return false
}

// AuthPort определяет интерфейс для проверки bearer-токенов
type AuthPort interface {
	// Authenticate проверяет токен и возвращает данные вызывающей стороны
	Authenticate(ctx context.Context, token string) (*Principal, error)
}
