package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/athebyme/shopify-product-service/config"
	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
	"github.com/athebyme/shopify-product-service/internal/metrics"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

const (
	// DefaultAPIVersion версия Admin API, если в конфигурации пусто
	DefaultAPIVersion = "2025-07"

	defaultTimeout  = 30 * time.Second
	maxResponseSize = 10 << 20
)

// Client отправляет мутации в Shopify Admin GraphQL API.
// Один экземпляр на процесс; безопасен для конкурентного использования.
type Client struct {
	apiVersion string
	httpClient *http.Client
	logger     interfaces.LoggerPort
}

// NewClient создает клиент. Если httpClient nil, создается клиент с таймаутом из конфигурации.
func NewClient(cfg config.ShopifyConfig, httpClient *http.Client, logger interfaces.LoggerPort) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = DefaultAPIVersion
	}
	return &Client{
		apiVersion: version,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Endpoint адрес GraphQL для магазина. Домен со схемой используется как есть.
func (c *Client) Endpoint(shopDomain string) string {
	domain := strings.TrimSpace(shopDomain)
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	domain = strings.TrimRight(domain, "/")
	return domain + "/admin/api/" + c.apiVersion + "/graphql.json"
}

// Execute выполняет один запрос без повторов. userErrors и errors из тела
// не интерпретируются, это делает вызывающий.
func (c *Client) Execute(ctx context.Context, op Operation, variables map[string]any, shop models.ShopCredentials) (*GraphQLResponse, error) {
	if err := services.CheckCredentials(shop); err != nil {
		return nil, err
	}
	query, ok := documents[op]
	if !ok {
		return nil, fmt.Errorf("unknown Shopify operation %q", op)
	}

	body, err := json.Marshal(graphQLRequest{Query: strings.TrimSpace(query), Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(shop.Domain), bytes.NewReader(body))
	if err != nil {
		return nil, &services.TransportError{Operation: op.String(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", shop.AccessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	metrics.ShopifyRequestDuration.WithLabelValues(op.String()).Observe(duration.Seconds())
	if err != nil {
		c.record(ctx, op, shop, "network_error", 0, duration)
		return nil, &services.TransportError{Operation: op.String(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.record(ctx, op, shop, "network_error", resp.StatusCode, duration)
		return nil, &services.TransportError{Operation: op.String(), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.record(ctx, op, shop, "http_error", resp.StatusCode, duration)
		return nil, &services.TransportError{
			Operation:  op.String(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var envelope GraphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.record(ctx, op, shop, "decode_error", resp.StatusCode, duration)
		return nil, &services.TransportError{
			Operation:  op.String(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	outcome := "success"
	if len(envelope.Errors) > 0 {
		outcome = "graphql_error"
	}
	c.record(ctx, op, shop, outcome, resp.StatusCode, duration)

	return &envelope, nil
}

// call выполняет операцию и раскладывает data в out.
// Ошибки GraphQL верхнего уровня считаются сбоем транспорта.
func (c *Client) call(ctx context.Context, op Operation, variables map[string]any, shop models.ShopCredentials, out any) error {
	envelope, err := c.Execute(ctx, op, variables, shop)
	if err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return &services.TransportError{
			Operation:  op.String(),
			StatusCode: http.StatusOK,
			Body:       formatGraphQLErrors(envelope.Errors),
		}
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return &services.RemoteResponseError{Stage: op.stage(), Reason: "response has no data"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &services.RemoteResponseError{Stage: op.stage(), Reason: fmt.Sprintf("malformed %s payload: %v", op, err)}
	}
	return nil
}

func (c *Client) record(ctx context.Context, op Operation, shop models.ShopCredentials, outcome string, status int, duration time.Duration) {
	metrics.ShopifyRequests.WithLabelValues(op.String(), outcome).Inc()
	c.logger.DebugWithContext(ctx, "Запрос к Shopify выполнен",
		interfaces.LogField{Key: "operation", Value: op.String()},
		interfaces.LogField{Key: "shop_domain", Value: shop.Domain},
		interfaces.LogField{Key: "outcome", Value: outcome},
		interfaces.LogField{Key: "status", Value: status},
		interfaces.LogField{Key: "duration", Value: duration.String()},
	)
}

func formatGraphQLErrors(errs []GraphQLError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Path) > 0 {
			msg = fmt.Sprintf("%s (path: %v)", msg, e.Path)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "unknown graphql error"
	}
	return strings.Join(parts, "; ")
}
