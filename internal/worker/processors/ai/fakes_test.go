package ai

import (
	"context"
	"sync"

	"catalog/internal/services/llm"
)

type reply struct {
	text string
	err  error
}

// scriptedGenerator returns replies in order, repeating the last one.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []reply
	reqs    []llm.Request
}

func script(replies ...reply) *scriptedGenerator {
	return &scriptedGenerator{replies: replies}
}

func (g *scriptedGenerator) Name() string { return "fake" }

func (g *scriptedGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	i := len(g.reqs) - 1
	if i >= len(g.replies) {
		i = len(g.replies) - 1
	}
	return g.replies[i].text, g.replies[i].err
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reqs)
}

var rateLimited = &llm.APIError{Provider: "fake", StatusCode: 429, Status: "RESOURCE_EXHAUSTED"}
