package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
	"github.com/athebyme/shopify-product-service/internal/utils"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

type KafkaEvent = string

const (
	ProductCreatedEvent        KafkaEvent = "shopify.product.created"
	ProductCreationFailedEvent KafkaEvent = "shopify.product.creation_failed"
)

// CreateProductCommand команда воркеру на создание товара
type CreateProductCommand struct {
	CommandID string                      `json:"command_id"`
	Product   models.CreateProductRequest `json:"product"`
}

// DecodeCreateProductCommand разбирает команду из тела сообщения.
// Пустой command_id заменяется id сообщения.
func DecodeCreateProductCommand(msg *interfaces.Message) (*CreateProductCommand, error) {
	var cmd CreateProductCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		return nil, fmt.Errorf("некорректная команда создания товара: %w", err)
	}
	if cmd.CommandID == "" {
		cmd.CommandID = msg.ID
	}
	return &cmd, nil
}

// ProductCreated событие об успешно созданном товаре
type ProductCreated struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	CommandID    string    `json:"command_id,omitempty"`
	ShopDomain   string    `json:"shop_domain"`
	ProductID    string    `json:"product_id"`
	Title        string    `json:"title"`
	VariantCount int       `json:"variant_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ProductCreationFailed событие о неуспешной попытке создания
type ProductCreationFailed struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	CommandID  string    `json:"command_id,omitempty"`
	ShopDomain string    `json:"shop_domain"`
	ErrorClass string    `json:"error_class"`
	Message    string    `json:"message"`
	Fields     []string  `json:"fields,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher публикует события о товарах в шину сообщений
type EventPublisher struct {
	bus   interfaces.MessagingPort
	topic string
	now   func() time.Time
}

var _ services.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher создает издателя событий для темы topic
func NewEventPublisher(bus interfaces.MessagingPort, topic string) *EventPublisher {
	return &EventPublisher{
		bus:   bus,
		topic: topic,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// PublishProductCreated публикует событие с ключом по id товара
func (p *EventPublisher) PublishProductCreated(ctx context.Context, shopDomain string, product *models.ProductFragment, variantCount int) error {
	if product == nil {
		return errors.New("product is required")
	}
	event := ProductCreated{
		EventID:      uuid.New().String(),
		EventType:    ProductCreatedEvent,
		CommandID:    utils.StringFromContext(ctx, utils.CommandIDKey),
		ShopDomain:   shopDomain,
		ProductID:    product.ID,
		Title:        product.Title,
		VariantCount: variantCount,
		OccurredAt:   p.now(),
	}
	return p.publish(ctx, product.ID, event)
}

// PublishCreationFailed публикует событие об ошибке с ключом по id команды
func (p *EventPublisher) PublishCreationFailed(ctx context.Context, commandID, shopDomain string, cause error) error {
	event := ProductCreationFailed{
		EventID:    uuid.New().String(),
		EventType:  ProductCreationFailedEvent,
		CommandID:  commandID,
		ShopDomain: shopDomain,
		ErrorClass: services.ErrorClass(cause),
		Message:    cause.Error(),
		OccurredAt: p.now(),
	}
	var verrs models.ValidationErrors
	if errors.As(cause, &verrs) {
		event.Fields = verrs.Fields()
	}
	return p.publish(ctx, commandID, event)
}

func (p *EventPublisher) publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}
	if key == "" {
		return p.bus.Publish(ctx, p.topic, payload)
	}
	return p.bus.PublishWithKey(ctx, p.topic, key, payload)
}
