package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Request is a single-turn prompt.
type Request struct {
	Prompt string
	// JSON asks the provider for a JSON object response.
	JSON        bool
	MaxTokens   int
	Temperature *float64
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// APIError is a non-2xx response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	// Status is the provider's symbolic status, e.g. RESOURCE_EXHAUSTED.
	Status  string
	Message string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if e.Status != "" {
		return fmt.Sprintf("%s http %d %s: %s", e.Provider, e.StatusCode, e.Status, msg)
	}
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, msg)
}

// IsResourceExhausted reports whether err is a provider rate-limit / quota error.
func IsResourceExhausted(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests ||
			strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED") ||
			strings.Contains(apiErr.Body, "RESOURCE_EXHAUSTED")
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}

// Float64 is a helper for Request.Temperature.
func Float64(v float64) *float64 { return &v }

type settings struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*settings)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.httpClient = c
		}
	}
}

func newSettings(defaultBase string, opts []Option) settings {
	s := settings{
		baseURL:    defaultBase,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
