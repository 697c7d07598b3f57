package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/metrics"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// ShopifyGateway типизированные мутации Admin API, которые использует оркестратор
type ShopifyGateway interface {
	CreateProduct(ctx context.Context, shop models.ShopCredentials, spec *models.ProductSpec) (*models.ProductCreateResult, error)
	BulkCreateVariants(ctx context.Context, shop models.ShopCredentials, productID, locationID string, variants []models.VariantSpec, optionOrder []string) (*models.VariantsBulkCreateResult, error)
	SetInventoryQuantity(ctx context.Context, shop models.ShopCredentials, quantity models.InventoryQuantity) (*models.InventorySetResult, error)
	BulkUpdateVariants(ctx context.Context, shop models.ShopCredentials, productID string, updates []models.VariantUpdate, optionOrder []string) (*models.VariantsBulkUpdateResult, error)
}

// EventPublisher сообщает внешним системам о созданных товарах
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, shopDomain string, product *models.ProductFragment, variantCount int) error
}

// ProductService создает товар в Shopify последовательностью из пяти мутаций.
// Повторов и отката нет: при ошибке после первого шага товар остается в магазине.
type ProductService struct {
	gateway   ShopifyGateway
	publisher EventPublisher
	logger    interfaces.LoggerPort
}

// NewProductService создает новый экземпляр ProductService.
// publisher может быть nil, тогда события не публикуются.
func NewProductService(gateway ShopifyGateway, publisher EventPublisher, logger interfaces.LoggerPort) *ProductService {
	return &ProductService{
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
	}
}

// orchestration состояние одного вызова CreateProduct
type orchestration struct {
	spec  *models.ProductSpec
	shop  models.ShopCredentials
	stage Stage

	product        *models.RemoteProduct
	location       models.Location
	defaultVariant models.RemoteVariant
	reconciled     models.ReconciliationResult
	result         *models.ProductFragment
}

// CreateProduct создает товар со всеми вариантами и остатком варианта по умолчанию
func (s *ProductService) CreateProduct(ctx context.Context, spec *models.ProductSpec, shop models.ShopCredentials) (*models.ProductFragment, error) {
	log := s.logger.WithShop(shop.Domain)

	if err := CheckCredentials(shop); err != nil {
		metrics.Orchestrations.WithLabelValues(ErrorClass(err)).Inc()
		return nil, err
	}
	if spec == nil {
		err := errors.New("product spec is required")
		metrics.Orchestrations.WithLabelValues(ErrorClass(err)).Inc()
		return nil, err
	}

	run := &orchestration{spec: spec, shop: shop, stage: StageCreated}

	steps := map[Stage]func(context.Context, *orchestration) error{
		StageCreated:             s.createProduct,
		StageProductCreated:      s.reconcile,
		StageReconciled:          s.createRemainingVariants,
		StageVariantsBulkCreated: s.setDefaultInventory,
		StageInventorySet:        s.updateDefaultVariant,
	}

	for !run.stage.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(ctx, log, run, err)
		}

		step := steps[run.stage]
		target := run.stage.next()
		start := time.Now()
		err := step(ctx, run)
		metrics.OrchestrationStepDuration.WithLabelValues(target.String()).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, s.fail(ctx, log, run, err)
		}

		run.stage = target
		log.DebugWithContext(ctx, "Шаг создания товара выполнен",
			interfaces.LogField{Key: "stage", Value: run.stage.String()},
			interfaces.LogField{Key: "product_id", Value: run.productID()},
		)
	}

	metrics.Orchestrations.WithLabelValues("success").Inc()
	log.InfoWithContext(ctx, "Товар создан в Shopify",
		interfaces.LogField{Key: "product_id", Value: run.result.ID},
		interfaces.LogField{Key: "variants", Value: len(spec.Variants)},
	)

	s.publishCreated(ctx, log, shop.Domain, run.result, len(spec.Variants))

	return run.result, nil
}

func (s *ProductService) createProduct(ctx context.Context, run *orchestration) error {
	res, err := s.gateway.CreateProduct(ctx, run.shop, run.spec)
	if err != nil {
		return err
	}
	if len(res.UserErrors) > 0 {
		return NewRemoteValidationError(StageProductCreated, res.UserErrors)
	}

	product := res.Product
	switch {
	case product == nil:
		return &RemoteResponseError{Stage: StageProductCreated, Reason: "product is missing"}
	case product.ID == "":
		return &RemoteResponseError{Stage: StageProductCreated, Reason: "product id is missing"}
	case len(product.Variants) == 0:
		return &RemoteResponseError{Stage: StageProductCreated, Reason: "product has no default variant"}
	case product.Variants[0].ID == "":
		return &RemoteResponseError{Stage: StageProductCreated, Reason: "default variant id is missing"}
	case product.Variants[0].InventoryItemID == "":
		return &RemoteResponseError{Stage: StageProductCreated, Reason: "default variant has no inventory item"}
	}
	run.product = product
	run.defaultVariant = product.Variants[0]

	location, ok := firstActiveLocation(res.Locations)
	if !ok {
		return &RemoteResponseError{Stage: StageProductCreated, Reason: "shop has no active location"}
	}
	run.location = location
	return nil
}

func (s *ProductService) reconcile(_ context.Context, run *orchestration) error {
	defaults, err := DefaultOptionsOf(run.defaultVariant)
	if err != nil {
		return err
	}
	reconciled, err := SplitVariants(run.spec.Variants, defaults)
	if err != nil {
		return err
	}
	run.reconciled = reconciled
	return nil
}

func (s *ProductService) createRemainingVariants(ctx context.Context, run *orchestration) error {
	res, err := s.gateway.BulkCreateVariants(ctx, run.shop, run.product.ID, run.location.ID, run.reconciled.Remainder, run.spec.OptionNames())
	if err != nil {
		return err
	}
	if len(res.UserErrors) > 0 {
		return NewRemoteValidationError(StageVariantsBulkCreated, res.UserErrors)
	}
	return nil
}

func (s *ProductService) setDefaultInventory(ctx context.Context, run *orchestration) error {
	res, err := s.gateway.SetInventoryQuantity(ctx, run.shop, models.InventoryQuantity{
		InventoryItemID: run.defaultVariant.InventoryItemID,
		LocationID:      run.location.ID,
		Quantity:        run.reconciled.Matched.InventoryQuantity,
	})
	if err != nil {
		return err
	}
	if len(res.UserErrors) > 0 {
		return NewRemoteValidationError(StageInventorySet, res.UserErrors)
	}
	return nil
}

func (s *ProductService) updateDefaultVariant(ctx context.Context, run *orchestration) error {
	updates := []models.VariantUpdate{{VariantID: run.defaultVariant.ID, Spec: run.reconciled.Matched}}
	res, err := s.gateway.BulkUpdateVariants(ctx, run.shop, run.product.ID, updates, run.spec.OptionNames())
	if err != nil {
		return err
	}
	if len(res.UserErrors) > 0 {
		return NewRemoteValidationError(StageVariantUpdated, res.UserErrors)
	}
	if res.Product == nil || res.Product.ID == "" {
		return &RemoteResponseError{Stage: StageVariantUpdated, Reason: "product is missing"}
	}
	run.result = &models.ProductFragment{ID: res.Product.ID, Title: res.Product.Title}
	return nil
}

// fail переводит оркестрацию в failed и оставляет в логе id товара,
// который уже создан в магазине
func (s *ProductService) fail(ctx context.Context, log interfaces.LoggerPort, run *orchestration, err error) error {
	failedAt := run.stage.next()
	run.stage = StageFailed
	metrics.Orchestrations.WithLabelValues(ErrorClass(err)).Inc()

	fields := []interface{}{
		interfaces.LogField{Key: "stage", Value: failedAt.String()},
		interfaces.LogField{Key: "error", Value: err.Error()},
		interfaces.LogField{Key: "error_class", Value: ErrorClass(err)},
	}
	if id := run.productID(); id != "" {
		fields = append(fields, interfaces.LogField{Key: "orphaned_product_id", Value: id})
	}
	log.ErrorWithContext(ctx, "Ошибка создания товара в Shopify", fields...)
	return err
}

func (s *ProductService) publishCreated(ctx context.Context, log interfaces.LoggerPort, shopDomain string, product *models.ProductFragment, variantCount int) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductCreated(ctx, shopDomain, product, variantCount); err != nil {
		log.WarnWithContext(ctx, "Не удалось опубликовать событие о создании товара",
			interfaces.LogField{Key: "product_id", Value: product.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

func (r *orchestration) productID() string {
	if r.product == nil {
		return ""
	}
	return r.product.ID
}

func firstActiveLocation(locations []models.Location) (models.Location, bool) {
	for _, loc := range locations {
		if loc.IsActive && strings.TrimSpace(loc.ID) != "" {
			return loc, true
		}
	}
	return models.Location{}, false
}
