package shopify

import "github.com/athebyme/shopify-product-service/internal/domain/services"

// Operation имя одной из мутаций Admin API, которые отправляет клиент
type Operation string

const (
	OperationProductCreate          Operation = "productCreate"
	OperationVariantsBulkCreate     Operation = "productVariantsBulkCreate"
	OperationVariantsBulkUpdate     Operation = "productVariantsBulkUpdate"
	OperationInventorySetQuantities Operation = "inventorySetQuantities"
)

func (o Operation) String() string { return string(o) }

// stage шаг оркестрации, к которому относится ответ операции
func (o Operation) stage() services.Stage {
	switch o {
	case OperationProductCreate:
		return services.StageProductCreated
	case OperationVariantsBulkCreate:
		return services.StageVariantsBulkCreated
	case OperationInventorySetQuantities:
		return services.StageInventorySet
	case OperationVariantsBulkUpdate:
		return services.StageVariantUpdated
	}
	return services.StageFailed
}

const productCreateMutation = `
mutation createProduct($input: ProductInput!, $media: [CreateMediaInput!]) {
	productCreate(input: $input, media: $media) {
		product {
			id
			title
			status
			options {
				id
				name
				values
				optionValues {
					id
					name
				}
			}
			variants(first: 5) {
				edges {
					node {
						id
						selectedOptions {
							name
							value
						}
						inventoryItem {
							id
						}
					}
				}
			}
		}
		shop {
			locations(first: 5) {
				nodes {
					id
					name
					isActive
					isPrimary
				}
			}
		}
		userErrors {
			field
			message
		}
	}
}`

const variantsBulkCreateMutation = `
mutation ProductVariantsCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
	productVariantsBulkCreate(productId: $productId, variants: $variants) {
		productVariants {
			id
			title
		}
		userErrors {
			field
			message
		}
	}
}`

const variantsBulkUpdateMutation = `
mutation productVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
	productVariantsBulkUpdate(productId: $productId, variants: $variants) {
		product {
			id
			title
		}
		userErrors {
			field
			message
		}
	}
}`

const inventorySetQuantitiesMutation = `
mutation InventorySet($input: InventorySetQuantitiesInput!) {
	inventorySetQuantities(input: $input) {
		userErrors {
			field
			message
		}
		inventoryAdjustmentGroup {
			createdAt
			reason
			changes {
				name
				delta
			}
		}
	}
}`

var documents = map[Operation]string{
	OperationProductCreate:          productCreateMutation,
	OperationVariantsBulkCreate:     variantsBulkCreateMutation,
	OperationVariantsBulkUpdate:     variantsBulkUpdateMutation,
	OperationInventorySetQuantities: inventorySetQuantitiesMutation,
}
