// Package productsapi is the gateway to the external product catalog. Every
// request goes through a circuit breaker.
package productsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"favorites-catalog/internal/circuitbreaker"
	"favorites-catalog/internal/domain"
	"favorites-catalog/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServiceName labels errors raised by this gateway.
const ServiceName = "products api"

const maxBodyBytes = 1 << 20

// Breaker is the circuit breaker guarding product fetches.
type Breaker = circuitbreaker.Breaker[int64, *ExternalProduct]

type Client struct {
	baseURL string
	http    *http.Client
	breaker Breaker
	logger  *log.Logger
}

// New registers the HTTP fetch as the breaker's action. A nil httpClient gets an
// otelhttp instrumented default; a nil logger discards output.
func New(baseURL string, breaker Breaker, httpClient *http.Client, logger *log.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("productsapi: base url is required")
	}
	if breaker == nil {
		return nil, errors.New("productsapi: breaker is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: breaker,
		logger:  logger,
	}
	if err := breaker.Initialize(c.fetch); err != nil {
		return nil, fmt.Errorf("productsapi: initialize breaker: %w", err)
	}
	breaker.SetFallback(c.fallback)
	return c, nil
}

// FetchByID returns the product with the given id, or (nil, nil) when the API
// does not know it. Failures and rejected calls surface as
// *domain.ExternalServiceError.
func (c *Client) FetchByID(ctx context.Context, id int64) (*ExternalProduct, error) {
	p, err := c.breaker.Fire(ctx, id)
	if err != nil {
		c.logger.Printf("products api: fetch id=%d error=%v", id, err)
		return nil, err
	}
	if p == nil {
		c.logger.Printf("products api: fetch id=%d not found", id)
		return nil, nil
	}
	c.logger.Printf("products api: fetch id=%d title=%q", id, p.Title)
	return p, nil
}

func (c *Client) fetch(ctx context.Context, id int64) (*ExternalProduct, error) {
	url := c.baseURL + "/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ExternalRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	metrics.ExternalRequests.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var p ExternalProduct
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	if p.ID == 0 {
		p.ID = id
	}
	return &p, nil
}

func (c *Client) fallback(_ context.Context, _ int64, cause error) (*ExternalProduct, error) {
	if errors.Is(cause, context.Canceled) {
		return nil, cause
	}
	return nil, &domain.ExternalServiceError{
		Service:        ServiceName,
		ShortCircuited: errors.Is(cause, circuitbreaker.ErrOpen),
		Err:            cause,
	}
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
