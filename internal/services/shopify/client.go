package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog/internal/apperr"
	"catalog/internal/logger"

	"golang.org/x/time/rate"
)

const (
	DefaultAPIVersion = "2025-01"
	defaultBurst      = 4
)

// APIError is a non-2xx answer from the Admin API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *logger.Logger
}

type ClientOption func(*Client)

// WithBaseURL overrides https://{store}/admin/api/{version}.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimit sets requests per second; zero or less disables throttling.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, defaultBurst)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), defaultBurst)
	}
}

func NewClient(storeURL, accessToken, apiVersion string, logger *logger.Logger, opts ...ClientOption) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	c := &Client{
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), defaultBurst),
		logger:  logger,
	}
	if domain := NormalizeStoreDomain(storeURL); domain != "" {
		c.baseURL = fmt.Sprintf("https://%s/admin/api/%s", domain, apiVersion)
	}
	if c.logger == nil {
		c.logger = nopLogger()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func nopLogger() *logger.Logger { return logger.NewNop() }

// NormalizeStoreDomain strips scheme and path, and appends .myshopify.com to
// bare shop names.
func NormalizeStoreDomain(storeURL string) string {
	d := strings.TrimSpace(storeURL)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	if d != "" && !strings.Contains(d, ".") && !strings.Contains(d, ":") {
		d += ".myshopify.com"
	}
	return d
}

// Configured reports whether a store and token are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.accessToken != ""
}

// GetProducts fetches up to limit products from Shopify
func (c *Client) GetProducts(ctx context.Context, limit int) ([]Product, error) {
	path := "/products.json"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp ProductsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct fetches a single product by ID
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+productID+".json", nil, &resp); err != nil {
		return nil, c.notFound(err, productID)
	}
	return &resp.Product, nil
}

func (c *Client) CreateProduct(ctx context.Context, product ProductPayload) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	payload := map[string]ProductPayload{"product": product}
	if err := c.do(ctx, http.MethodPost, "/products.json", payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

// UpdateProduct updates a product in Shopify
func (c *Client) UpdateProduct(ctx context.Context, productID string, product ProductPayload) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	if id, err := strconv.ParseInt(productID, 10, 64); err == nil {
		product.ID = id
	}
	payload := map[string]ProductPayload{"product": product}
	if err := c.do(ctx, http.MethodPut, "/products/"+productID+".json", payload, &resp); err != nil {
		return nil, c.notFound(err, productID)
	}
	return &resp.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	if err := c.do(ctx, http.MethodDelete, "/products/"+productID+".json", nil, nil); err != nil {
		return c.notFound(err, productID)
	}
	return nil
}

// GetShopInfo fetches shop information
func (c *Client) GetShopInfo(ctx context.Context) (*Shop, error) {
	var resp struct {
		Shop Shop `json:"shop"`
	}
	if err := c.do(ctx, http.MethodGet, "/shop.json", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Shop, nil
}

func (c *Client) notFound(err error, productID string) error {
	if apiErr, ok := asAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
		return apperr.NotFound("shopify product", productID)
	}
	return err
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// do performs one throttled request. Failures come back as *apperr.UpstreamError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if !c.Configured() {
		return apperr.Upstream("shopify", fmt.Errorf("SHOPIFY_STORE_URL and SHOPIFY_ACCESS_TOKEN must be set"))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Upstream("shopify", fmt.Errorf("failed to make request: %w", err))
	}
	defer resp.Body.Close()

	c.logger.Debug("shopify %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return apperr.Upstream("shopify", &APIError{StatusCode: resp.StatusCode, Body: string(raw)})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Upstream("shopify", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
