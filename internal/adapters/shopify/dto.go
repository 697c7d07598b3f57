package shopify

import (
	"encoding/json"

	"github.com/athebyme/shopify-product-service/internal/domain/models"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse конверт ответа GraphQL; data разбирается вызывающим
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError ошибка верхнего уровня (синтаксис, права, троттлинг)
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []any                  `json:"path,omitempty"`
	Extensions map[string]any         `json:"extensions,omitempty"`
	Locations  []GraphQLErrorLocation `json:"locations,omitempty"`
}

type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type inventoryItemNode struct {
	ID string `json:"id"`
}

type variantNode struct {
	ID              string                  `json:"id"`
	SelectedOptions []models.SelectedOption `json:"selectedOptions"`
	InventoryItem   *inventoryItemNode      `json:"inventoryItem"`
}

type productNode struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Status   string                `json:"status"`
	Options  []models.RemoteOption `json:"options"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

func (p *productNode) toModel() *models.RemoteProduct {
	product := &models.RemoteProduct{
		ID:      p.ID,
		Title:   p.Title,
		Status:  p.Status,
		Options: p.Options,
	}
	for _, edge := range p.Variants.Edges {
		v := models.RemoteVariant{
			ID:              edge.Node.ID,
			SelectedOptions: edge.Node.SelectedOptions,
		}
		if edge.Node.InventoryItem != nil {
			v.InventoryItemID = edge.Node.InventoryItem.ID
		}
		product.Variants = append(product.Variants, v)
	}
	return product
}

type productCreateData struct {
	ProductCreate *struct {
		Product *productNode `json:"product"`
		Shop    *struct {
			Locations struct {
				Nodes []models.Location `json:"nodes"`
			} `json:"locations"`
		} `json:"shop"`
		UserErrors []models.UserError `json:"userErrors"`
	} `json:"productCreate"`
}

type variantsBulkCreateData struct {
	ProductVariantsBulkCreate *struct {
		ProductVariants []models.CreatedVariant `json:"productVariants"`
		UserErrors      []models.UserError      `json:"userErrors"`
	} `json:"productVariantsBulkCreate"`
}

type variantsBulkUpdateData struct {
	ProductVariantsBulkUpdate *struct {
		Product    *models.ProductFragment `json:"product"`
		UserErrors []models.UserError      `json:"userErrors"`
	} `json:"productVariantsBulkUpdate"`
}

type inventorySetQuantitiesData struct {
	InventorySetQuantities *struct {
		UserErrors               []models.UserError `json:"userErrors"`
		InventoryAdjustmentGroup *struct {
			CreatedAt string                   `json:"createdAt"`
			Reason    string                   `json:"reason"`
			Changes   []models.InventoryChange `json:"changes"`
		} `json:"inventoryAdjustmentGroup"`
	} `json:"inventorySetQuantities"`
}
