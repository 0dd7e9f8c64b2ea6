package tools

import (
	"context"
	"encoding/json"
	"sort"

	"catalog/internal/apperr"
	"catalog/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Param describes one argument of a tool.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Tool is a named operation callable with JSON arguments.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`

	run func(ctx context.Context, args json.RawMessage) (interface{}, error)
}

// CallResult is what a tool call returns to the caller. Exactly one of
// Result and Error is set.
type CallResult struct {
	ID     string      `json:"id"`
	Tool   string      `json:"tool"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type Registry struct {
	tools    map[string]Tool
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRegistry(logger *logger.Logger) *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		validate: validator.New(),
		logger:   logger,
	}
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name] = t
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call runs the named tool. Only an unknown tool name is returned as an
// error; tool failures are reported in CallResult.Error.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (CallResult, error) {
	t, ok := r.tools[name]
	if !ok {
		return CallResult{}, apperr.NotFound("tool", name)
	}

	res := CallResult{ID: uuid.NewString(), Tool: name}
	out, err := t.run(ctx, args)
	if err != nil {
		r.logger.Warn("Tool %s (%s) failed: %v", name, res.ID, err)
		res.Error = err.Error()
		return res, nil
	}
	r.logger.Debug("Tool %s (%s) succeeded", name, res.ID)
	res.Result = out
	return res, nil
}

// decode unmarshals args into dst and applies its validate tags.
func (r *Registry) decode(args json.RawMessage, dst interface{}) error {
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, dst); err != nil {
			return apperr.Invalid("invalid arguments: %v", err)
		}
	}
	if err := r.validate.Struct(dst); err != nil {
		return apperr.Invalid("invalid arguments: %v", err)
	}
	return nil
}
