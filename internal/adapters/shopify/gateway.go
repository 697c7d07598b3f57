package shopify

import (
	"context"

	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
)

var _ services.ShopifyGateway = (*Client)(nil)

// CreateProduct выполняет productCreate вместе со всеми изображениями товара
func (c *Client) CreateProduct(ctx context.Context, shop models.ShopCredentials, spec *models.ProductSpec) (*models.ProductCreateResult, error) {
	var data productCreateData
	if err := c.call(ctx, OperationProductCreate, productCreateVariables(spec), shop, &data); err != nil {
		return nil, err
	}
	payload := data.ProductCreate
	if payload == nil {
		return nil, &services.RemoteResponseError{Stage: services.StageProductCreated, Reason: "productCreate payload is missing"}
	}

	result := &models.ProductCreateResult{UserErrors: payload.UserErrors}
	if payload.Product != nil {
		result.Product = payload.Product.toModel()
	}
	if payload.Shop != nil {
		result.Locations = payload.Shop.Locations.Nodes
	}
	return result, nil
}

// BulkCreateVariants выполняет productVariantsBulkCreate; пустой список тоже отправляется
func (c *Client) BulkCreateVariants(ctx context.Context, shop models.ShopCredentials, productID, locationID string, variants []models.VariantSpec, optionOrder []string) (*models.VariantsBulkCreateResult, error) {
	var data variantsBulkCreateData
	vars := variantsBulkCreateVariables(productID, locationID, variants, optionOrder)
	if err := c.call(ctx, OperationVariantsBulkCreate, vars, shop, &data); err != nil {
		return nil, err
	}
	payload := data.ProductVariantsBulkCreate
	if payload == nil {
		return nil, &services.RemoteResponseError{Stage: services.StageVariantsBulkCreated, Reason: "productVariantsBulkCreate payload is missing"}
	}
	return &models.VariantsBulkCreateResult{
		Variants:   payload.ProductVariants,
		UserErrors: payload.UserErrors,
	}, nil
}

// SetInventoryQuantity выполняет inventorySetQuantities для одной единицы учета
func (c *Client) SetInventoryQuantity(ctx context.Context, shop models.ShopCredentials, quantity models.InventoryQuantity) (*models.InventorySetResult, error) {
	var data inventorySetQuantitiesData
	if err := c.call(ctx, OperationInventorySetQuantities, inventorySetVariables(quantity), shop, &data); err != nil {
		return nil, err
	}
	payload := data.InventorySetQuantities
	if payload == nil {
		return nil, &services.RemoteResponseError{Stage: services.StageInventorySet, Reason: "inventorySetQuantities payload is missing"}
	}
	result := &models.InventorySetResult{UserErrors: payload.UserErrors}
	if group := payload.InventoryAdjustmentGroup; group != nil {
		result.Reason = group.Reason
		result.Changes = group.Changes
	}
	return result, nil
}

// BulkUpdateVariants выполняет productVariantsBulkUpdate
func (c *Client) BulkUpdateVariants(ctx context.Context, shop models.ShopCredentials, productID string, updates []models.VariantUpdate, optionOrder []string) (*models.VariantsBulkUpdateResult, error) {
	var data variantsBulkUpdateData
	if err := c.call(ctx, OperationVariantsBulkUpdate, variantsBulkUpdateVariables(productID, updates, optionOrder), shop, &data); err != nil {
		return nil, err
	}
	payload := data.ProductVariantsBulkUpdate
	if payload == nil {
		return nil, &services.RemoteResponseError{Stage: services.StageVariantUpdated, Reason: "productVariantsBulkUpdate payload is missing"}
	}
	return &models.VariantsBulkUpdateResult{
		Product:    payload.Product,
		UserErrors: payload.UserErrors,
	}, nil
}

func productCreateVariables(spec *models.ProductSpec) map[string]any {
	productOptions := make([]map[string]any, 0, len(spec.Options))
	for _, opt := range spec.Options {
		values := make([]map[string]any, 0, len(opt.Values))
		for _, v := range opt.Values {
			values = append(values, map[string]any{"name": v})
		}
		productOptions = append(productOptions, map[string]any{
			"name":   opt.Name,
			"values": values,
		})
	}

	media := make([]map[string]any, 0, len(spec.Images))
	for _, img := range spec.Images {
		media = append(media, map[string]any{
			"alt":              img.Alt,
			"mediaContentType": "IMAGE",
			"originalSource":   img.Src,
		})
	}

	return map[string]any{
		"input": map[string]any{
			"title":           spec.Title,
			"descriptionHtml": spec.DescriptionHTML,
			"vendor":          spec.Vendor,
			"productType":     spec.ProductType,
			"status":          spec.Status.Upper(),
			"productOptions":  productOptions,
		},
		"media": media,
	}
}

func variantsBulkCreateVariables(productID, locationID string, variants []models.VariantSpec, optionOrder []string) map[string]any {
	inputs := make([]map[string]any, 0, len(variants))
	for _, v := range variants {
		inputs = append(inputs, map[string]any{
			"inventoryItem": map[string]any{
				"sku": v.SKU,
			},
			"inventoryQuantities": []map[string]any{{
				"availableQuantity": v.InventoryQuantity,
				"locationId":        locationID,
			}},
			"price":        v.Price.String(),
			"optionValues": v.Options.OptionValues(optionOrder),
		})
	}
	return map[string]any{
		"productId": productID,
		"variants":  inputs,
	}
}

func variantsBulkUpdateVariables(productID string, updates []models.VariantUpdate, optionOrder []string) map[string]any {
	inputs := make([]map[string]any, 0, len(updates))
	for _, u := range updates {
		inputs = append(inputs, map[string]any{
			"id": u.VariantID,
			"inventoryItem": map[string]any{
				"sku":     u.Spec.SKU,
				"tracked": true,
			},
			"price":        u.Spec.Price.String(),
			"optionValues": u.Spec.Options.OptionValues(optionOrder),
		})
	}
	return map[string]any{
		"productId": productID,
		"variants":  inputs,
	}
}

func inventorySetVariables(q models.InventoryQuantity) map[string]any {
	return map[string]any{
		"input": map[string]any{
			"ignoreCompareQuantity": true,
			"reason":                "correction",
			"name":                  "available",
			"quantities": []map[string]any{{
				"quantity":        q.Quantity,
				"inventoryItemId": q.InventoryItemID,
				"locationId":      q.LocationID,
			}},
		},
	}
}
