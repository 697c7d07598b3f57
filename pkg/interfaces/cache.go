package interfaces

import (
	"context"
	"time"
)

// CachePort определяет интерфейс для работы с системой кэширования
// Реализация может использовать Redis или память процесса
type CachePort interface {
	// Get получает значение из кэша по ключу
	// Возвращает ErrCacheMiss, если значение не найдено
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кэше с указанным сроком действия
	// Если expiration равно 0, срок действия не устанавливается
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete удаляет значение из кэша по ключу
	Delete(ctx context.Context, key string) error

	// Increment увеличивает счетчик на delta и возвращает новое значение
	// Если ключ не существует, он создается со сроком действия expiration
	Increment(ctx context.Context, key string, delta int64, expiration time.Duration) (int64, error)

	// Close закрывает соединение с системой кэширования
	Close() error
}
