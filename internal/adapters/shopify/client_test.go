package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/shopify-product-service/config"
	"github.com/athebyme/shopify-product-service/internal/adapters/logger"
	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
)

type capturedRequest struct {
	Path    string
	Token   string
	Type    string
	Payload struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, models.ShopCredentials) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.ShopifyConfig{APIVersion: "2025-07", Timeout: 5 * time.Second}, srv.Client(), logger.NewNopLogger())
	return client, models.ShopCredentials{Domain: srv.URL, AccessToken: "shpat_test"}
}

func capture(t *testing.T, r *http.Request) capturedRequest {
	t.Helper()
	var c capturedRequest
	c.Path = r.URL.Path
	c.Token = r.Header.Get("X-Shopify-Access-Token")
	c.Type = r.Header.Get("Content-Type")
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &c.Payload))
	return c
}

func TestEndpoint(t *testing.T) {
	c := NewClient(config.ShopifyConfig{}, nil, logger.NewNopLogger())

	assert.Equal(t, "https://test-store.myshopify.com/admin/api/2025-07/graphql.json", c.Endpoint("test-store.myshopify.com"))
	assert.Equal(t, "http://127.0.0.1:8080/admin/api/2025-07/graphql.json", c.Endpoint("http://127.0.0.1:8080/"))

	custom := NewClient(config.ShopifyConfig{APIVersion: "2024-10"}, nil, logger.NewNopLogger())
	assert.Equal(t, "https://a.myshopify.com/admin/api/2024-10/graphql.json", custom.Endpoint("a.myshopify.com"))
}

func TestExecuteSendsHeadersAndDocument(t *testing.T) {
	var got capturedRequest
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = capture(t, r)
		_, _ = w.Write([]byte(`{"data":{"inventorySetQuantities":{"userErrors":[]}}}`))
	})

	resp, err := client.Execute(context.Background(), OperationInventorySetQuantities, map[string]any{"input": map[string]any{}}, shop)
	require.NoError(t, err)

	assert.Equal(t, "/admin/api/2025-07/graphql.json", got.Path)
	assert.Equal(t, "shpat_test", got.Token)
	assert.Equal(t, "application/json", got.Type)
	assert.Contains(t, got.Payload.Query, "inventorySetQuantities(input: $input)")
	assert.JSONEq(t, `{"inventorySetQuantities":{"userErrors":[]}}`, string(resp.Data))
}

func TestExecuteMissingCredentialsMakesNoRequest(t *testing.T) {
	var hits int32
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	shop.AccessToken = ""

	_, err := client.Execute(context.Background(), OperationProductCreate, nil, shop)

	assert.True(t, errors.Is(err, services.ErrMissingCredentials))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestExecuteNon2xxIsTransportError(t *testing.T) {
	var hits int32
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"[API] Invalid API key or access token"}`))
	})

	_, err := client.Execute(context.Background(), OperationProductCreate, nil, shop)

	var terr *services.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusUnauthorized, terr.StatusCode)
	assert.Contains(t, terr.Body, "Invalid API key")
	assert.Contains(t, err.Error(), "Shopify API request failed")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "no retry")
}

func TestExecuteUndecodableBody(t *testing.T) {
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.Execute(context.Background(), OperationProductCreate, nil, shop)

	var terr *services.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusOK, terr.StatusCode)
}

func TestExecuteNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(config.ShopifyConfig{}, nil, logger.NewNopLogger())
	_, err := client.Execute(context.Background(), OperationProductCreate, nil, models.ShopCredentials{Domain: url, AccessToken: "t"})

	var terr *services.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Zero(t, terr.StatusCode)
	assert.Error(t, terr.Err)
}

func TestGraphQLErrorsAreTransportErrors(t *testing.T) {
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Throttled","extensions":{"code":"THROTTLED"}}]}`))
	})

	_, err := client.SetInventoryQuantity(context.Background(), shop, models.InventoryQuantity{})

	var terr *services.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Contains(t, err.Error(), "Throttled")
}

func TestMissingPayloadIsRemoteResponseError(t *testing.T) {
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	_, err := client.BulkUpdateVariants(context.Background(), shop, "gid://shopify/Product/1", nil, nil)

	var rerr *services.RemoteResponseError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, services.StageVariantUpdated, rerr.Stage)
}

func TestCreateProductDecodesPayload(t *testing.T) {
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"productCreate":{
			"product":{"id":"gid://shopify/Product/1","title":"Test Product","status":"ACTIVE",
				"options":[{"id":"gid://shopify/ProductOption/1","name":"Color","values":["Red","Blue"],"optionValues":[{"id":"v1","name":"Red"}]}],
				"variants":{"edges":[{"node":{"id":"gid://shopify/ProductVariant/1",
					"selectedOptions":[{"name":"Color","value":"Red"},{"name":"Size","value":"S"}],
					"inventoryItem":{"id":"gid://shopify/InventoryItem/1"}}}]}},
			"shop":{"locations":{"nodes":[{"id":"gid://shopify/Location/1","name":"Main","isActive":true,"isPrimary":true}]}},
			"userErrors":[]}}}`))
	})

	res, err := client.CreateProduct(context.Background(), shop, &models.ProductSpec{Title: "Test Product", Status: models.ProductStatusActive})
	require.NoError(t, err)

	require.NotNil(t, res.Product)
	assert.Equal(t, "gid://shopify/Product/1", res.Product.ID)
	require.Len(t, res.Product.Variants, 1)
	assert.Equal(t, "gid://shopify/InventoryItem/1", res.Product.Variants[0].InventoryItemID)
	assert.Equal(t, []models.SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "S"}}, res.Product.Variants[0].SelectedOptions)
	require.Len(t, res.Locations, 1)
	assert.True(t, res.Locations[0].IsActive)
	assert.Empty(t, res.UserErrors)
}

func TestCreateProductReturnsUserErrors(t *testing.T) {
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"productCreate":{"product":null,"shop":null,
			"userErrors":[{"field":["title"],"message":"Title can't be blank"}]}}}`))
	})

	res, err := client.CreateProduct(context.Background(), shop, &models.ProductSpec{Status: models.ProductStatusActive})
	require.NoError(t, err)

	assert.Nil(t, res.Product)
	require.Len(t, res.UserErrors, 1)
	assert.Equal(t, []string{"title"}, res.UserErrors[0].Field)
}

func TestInventorySetDecodesAdjustmentGroup(t *testing.T) {
	client, shop := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"inventorySetQuantities":{"userErrors":[],
			"inventoryAdjustmentGroup":{"createdAt":"2025-07-01T00:00:00Z","reason":"correction",
			"changes":[{"name":"available","delta":100}]}}}}`))
	})

	res, err := client.SetInventoryQuantity(context.Background(), shop, models.InventoryQuantity{
		InventoryItemID: "gid://shopify/InventoryItem/1", LocationID: "gid://shopify/Location/1", Quantity: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, "correction", res.Reason)
	assert.Equal(t, []models.InventoryChange{{Name: "available", Delta: 100}}, res.Changes)
}
