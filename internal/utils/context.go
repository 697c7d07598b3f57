package utils

import "context"

// ContextKey ключ значения в context.Context
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	TraceIDKey    ContextKey = "trace_id"
	ShopDomainKey ContextKey = "shop_domain"
)

// StringFromContext возвращает строковое значение из контекста или пустую строку
func StringFromContext(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// CommandIDKey идентификатор команды воркера, по которой создается товар
const CommandIDKey ContextKey = "command_id"
