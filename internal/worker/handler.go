package worker

import (
	"context"
	"time"

	"github.com/athebyme/shopify-product-service/internal/adapters/messaging"
	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/metrics"
	"github.com/athebyme/shopify-product-service/internal/utils"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// ProductCreator создает товар в магазине Shopify
type ProductCreator interface {
	CreateProduct(ctx context.Context, spec *models.ProductSpec, shop models.ShopCredentials) (*models.ProductFragment, error)
}

// FailurePublisher сообщает о неуспешной команде
type FailurePublisher interface {
	PublishCreationFailed(ctx context.Context, commandID, shopDomain string, cause error) error
}

// CommandHandler обрабатывает команды создания товара из Kafka.
// Ошибка команды публикуется событием и не возвращается брокеру:
// смещение фиксируется, повторной доставки нет.
type CommandHandler struct {
	creator  ProductCreator
	failures FailurePublisher
	shop     models.ShopCredentials
	logger   interfaces.LoggerPort
}

// NewCommandHandler создает обработчик команд для магазина shop
func NewCommandHandler(creator ProductCreator, failures FailurePublisher, shop models.ShopCredentials, logger interfaces.LoggerPort) *CommandHandler {
	return &CommandHandler{
		creator:  creator,
		failures: failures,
		shop:     shop,
		logger:   logger,
	}
}

// Handle реализует interfaces.MessageHandler
func (h *CommandHandler) Handle(ctx context.Context, msg *interfaces.Message) error {
	start := time.Now()
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	h.logger.InfoWithContext(ctx, "Получена команда создания товара",
		interfaces.LogField{Key: "message_id", Value: msg.ID},
		interfaces.LogField{Key: "topic", Value: msg.Topic},
	)

	status := h.process(ctx, msg)

	metrics.MessageProcessingDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
	metrics.MessagesProcessed.WithLabelValues(msg.Topic, status).Inc()
	return nil
}

func (h *CommandHandler) process(ctx context.Context, msg *interfaces.Message) string {
	cmd, err := messaging.DecodeCreateProductCommand(msg)
	if err != nil {
		h.logger.ErrorWithContext(ctx, "Ошибка декодирования команды",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "error", Value: err.Error()})
		h.reportFailure(ctx, msg.ID, err)
		return "invalid"
	}

	cmdCtx := context.WithValue(ctx, utils.CommandIDKey, cmd.CommandID)
	if err := cmd.Product.Validate(); err != nil {
		h.logger.WarnWithContext(cmdCtx, "Команда не прошла валидацию",
			interfaces.LogField{Key: "error", Value: err.Error()})
		h.reportFailure(cmdCtx, cmd.CommandID, err)
		return "invalid"
	}

	product, err := h.creator.CreateProduct(cmdCtx, cmd.Product.ToSpec(), h.shop)
	if err != nil {
		h.logger.ErrorWithContext(cmdCtx, "Ошибка обработки команды",
			interfaces.LogField{Key: "error", Value: err.Error()})
		h.reportFailure(cmdCtx, cmd.CommandID, err)
		return "error"
	}

	h.logger.InfoWithContext(cmdCtx, "Команда успешно обработана",
		interfaces.LogField{Key: "product_id", Value: product.ID})
	return "success"
}

func (h *CommandHandler) reportFailure(ctx context.Context, commandID string, cause error) {
	if h.failures == nil {
		return
	}
	if err := h.failures.PublishCreationFailed(ctx, commandID, h.shop.Domain, cause); err != nil {
		h.logger.WarnWithContext(ctx, "Не удалось опубликовать событие об ошибке",
			interfaces.LogField{Key: "command_id", Value: commandID},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}
