package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"

	"github.com/athebyme/shopify-product-service/internal/api/middleware"
	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// ProductCreator создает товар в магазине Shopify
type ProductCreator interface {
	CreateProduct(ctx context.Context, spec *models.ProductSpec, shop models.ShopCredentials) (*models.ProductFragment, error)
}

// ProductHandler обработчик запросов для товаров Shopify
type ProductHandler struct {
	productService ProductCreator
	logger         interfaces.LoggerPort
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(productService ProductCreator, logger interfaces.LoggerPort) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

const missingCredentialsMessage = "Missing Shopify credentials in headers."

// credentialsErrorResponse ответ при отсутствии заголовков магазина
type credentialsErrorResponse struct {
	Error string `json:"error"`
}

// validationErrorResponse ответ при невалидном теле запроса
type validationErrorResponse struct {
	Message string                  `json:"message"`
	Errors  models.ValidationErrors `json:"errors"`
}

// statusResponse ответ с результатом создания
type statusResponse struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	Product *models.ProductFragment `json:"product,omitempty"`
}

// CreateProduct обрабатывает запрос на создание товара в Shopify
// @Summary Создать товар в Shopify
// @Tags products
// @Accept json
// @Produce json
// @Param X-Shopify-Shop-Domain header string true "Домен магазина"
// @Param X-Shopify-Access-Token header string true "Токен Admin API"
// @Param product body models.CreateProductRequest true "Товар"
// @Success 201 {object} statusResponse
// @Failure 400 {object} credentialsErrorResponse
// @Failure 422 {object} validationErrorResponse
// @Failure 500 {object} statusResponse
// @Router /api/v1/shopify/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	shop := models.ShopCredentials{
		Domain:      strings.TrimSpace(r.Header.Get(middleware.HeaderShopDomain)),
		AccessToken: strings.TrimSpace(r.Header.Get(middleware.HeaderAccessToken)),
	}
	if err := services.CheckCredentials(shop); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, credentialsErrorResponse{Error: missingCredentialsMessage})
		return
	}

	var req models.CreateProductRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.DebugWithContext(r.Context(), "Некорректное тело запроса",
			interfaces.LogField{Key: "error", Value: err.Error()})
		verrs := decodeErrors(err)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, validationErrorResponse{
			Message: validationMessage(verrs),
			Errors:  verrs,
		})
		return
	}

	if err := req.Validate(); err != nil {
		var verrs models.ValidationErrors
		if !errors.As(err, &verrs) {
			verrs = models.ValidationErrors{"body": {err.Error()}}
		}
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, validationErrorResponse{
			Message: validationMessage(verrs),
			Errors:  verrs,
		})
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req.ToSpec(), shop)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка создания товара в Shopify",
			interfaces.LogField{Key: "error_class", Value: services.ErrorClass(err)},
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, statusResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, statusResponse{
		Status:  "success",
		Message: "Product created successfully on Shopify.",
		Product: product,
	})
}

// validationMessage первая ошибка и число остальных
func validationMessage(errs models.ValidationErrors) string {
	fields := errs.Fields()
	if len(fields) == 0 {
		return "The given data was invalid."
	}

	total := 0
	for _, f := range fields {
		total += len(errs[f])
	}
	first := errs[fields[0]][0]

	switch rest := total - 1; rest {
	case 0:
		return first
	case 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}

const malformedBodyMessage = "The request body must be a valid JSON object."

// decodeErrors относит ошибку несовпадения типа к полю запроса,
// остальные ошибки разбора считаются ошибкой всего тела
func decodeErrors(err error) models.ValidationErrors {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return models.ValidationErrors{
			typeErr.Field: {fmt.Sprintf("The %s field must be %s.", typeErr.Field, jsonKind(typeErr.Type))},
		}
	}
	return models.ValidationErrors{"body": {malformedBodyMessage}}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "true or false"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	}
	return "a valid value"
}
