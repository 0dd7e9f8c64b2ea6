package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Generate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"{\"title\":"},{"text":"\"Mug\"}"}]}}]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", "gemini-1.5-flash", WithBaseURL(srv.URL))
	out, err := c.Generate(context.Background(), Request{Prompt: "hello", JSON: true, MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Mug"}`, out)

	cfg := got["generationConfig"].(map[string]interface{})
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.Equal(t, float64(500), cfg["maxOutputTokens"])
}

func TestGeminiClient_ResourceExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("k", "m", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, IsResourceExhausted(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "gemini", apiErr.Provider)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
	assert.Equal(t, "Quota exceeded", apiErr.Message)
}

func TestGeminiClient_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewGeminiClient("SUPER-SECRET-KEY", "gemini-1.5-flash", WithBaseURL(base))
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPER-SECRET-KEY")
}

func TestWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"late"}}]}`)
	}))
	defer srv.Close()

	hc := &http.Client{Timeout: 20 * time.Millisecond}
	_, err := NewGroqClient("gk", "m", WithBaseURL(srv.URL), WithHTTPClient(hc)).Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Client.Timeout")
}

func TestGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient("", "m").Generate(context.Background(), Request{Prompt: "x"})
	assert.Error(t, err)
	assert.False(t, IsResourceExhausted(err))
}

func TestGroqClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gk", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`)
	}))
	defer srv.Close()

	c := NewGroqClient("gk", "llama-3.3-70b-versatile", WithBaseURL(srv.URL+"/"))
	out, err := c.Generate(context.Background(), Request{Prompt: "p", JSON: true, MaxTokens: 1000, Temperature: Float64(0.7)})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.Equal(t, 0.7, *got.Temperature)
}

func TestGroqClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	_, err := NewGroqClient("bad", "m", WithBaseURL(srv.URL)).Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.False(t, IsResourceExhausted(err))
	assert.Contains(t, err.Error(), "Invalid API Key")
	assert.Contains(t, err.Error(), "401")
}

func TestIsResourceExhausted(t *testing.T) {
	assert.True(t, IsResourceExhausted(&APIError{StatusCode: 429}))
	assert.True(t, IsResourceExhausted(fmt.Errorf("wrapped: %w", &APIError{StatusCode: 400, Status: "RESOURCE_EXHAUSTED"})))
	assert.True(t, IsResourceExhausted(errors.New("rpc error: RESOURCE_EXHAUSTED")))
	assert.False(t, IsResourceExhausted(&APIError{StatusCode: 500}))
	assert.False(t, IsResourceExhausted(nil))
}
