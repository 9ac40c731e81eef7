package tools

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ragent-ai/ragent/types"
)

// ParamType declares how a parameter value is validated before dispatch.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamInt    ParamType = "int"
	ParamFloat  ParamType = "float"
)

// ParamSpec declares one named, typed tool parameter.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// Args holds validated string arguments for a tool invocation. Numeric
// accessors are safe to call for parameters the registry validated.
type Args map[string]string

// String returns the named argument.
func (a Args) String(name string) string { return a[name] }

// Float returns the named argument parsed as float64.
func (a Args) Float(name string) float64 {
	v, _ := strconv.ParseFloat(a[name], 64)
	return v
}

// Int returns the named argument parsed as int.
func (a Args) Int(name string) int {
	v, _ := strconv.Atoi(a[name])
	return v
}

// Handler is a tool implementation. Handlers must be pure or clearly
// side-effect-isolated; failures are returned, never panicked.
type Handler func(ctx context.Context, args Args) (string, error)

// Spec describes one registered tool.
type Spec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`
	Handler     Handler     `json:"-"`

	// RateLimit optionally caps calls per second for this tool.
	RateLimit rate.Limit `json:"-"`
	// Timeout bounds one execution (default 10s).
	Timeout time.Duration `json:"-"`
}

// Execution records one dispatched tool call for observability. It lives
// only for the request/response lifecycle.
type Execution struct {
	ToolName   string  `json:"toolName"`
	Parameters []Param `json:"parameters"`
	Result     string  `json:"resultOrError"`
	IsError    bool    `json:"isError,omitempty"`
}

// Registry is the closed mapping from tool name to implementation.
// Registration happens at startup; lookups and executions are concurrent.
type Registry struct {
	mu       sync.RWMutex
	specs    map[string]Spec
	order    []string
	limiters map[string]*rate.Limiter
	logger   *zap.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		specs:    make(map[string]Spec),
		limiters: make(map[string]*rate.Limiter),
		logger:   logger,
	}
}

// Register adds a tool. Duplicate names are rejected.
func (r *Registry) Register(spec Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if spec.Name == "" {
		return types.NewValidationError("tool name is required")
	}
	if spec.Handler == nil {
		return types.NewValidationError(fmt.Sprintf("tool %s has no handler", spec.Name))
	}
	if _, exists := r.specs[spec.Name]; exists {
		return types.NewValidationError(fmt.Sprintf("tool %s already registered", spec.Name))
	}
	if spec.Timeout == 0 {
		spec.Timeout = 10 * time.Second
	}

	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	if spec.RateLimit > 0 {
		r.limiters[spec.Name] = rate.NewLimiter(spec.RateLimit, int(spec.RateLimit)+1)
	}

	r.logger.Info("tool registered",
		zap.String("name", spec.Name),
		zap.Int("params", len(spec.Params)))
	return nil
}

// Has reports whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[name]
	return ok
}

// Get returns the spec for a tool name.
func (r *Registry) Get(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// List returns all specs in registration order.
func (r *Registry) List() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Execute validates and dispatches one parsed call. Name membership is
// checked before parameter parsing so unknown-tool errors are reported
// distinctly from malformed-parameter errors.
func (r *Registry) Execute(ctx context.Context, call Call) (string, error) {
	spec, ok := r.Get(call.Name)
	if !ok {
		return "", types.NewError(types.ErrToolNotFound, fmt.Sprintf("unknown tool: %s", call.Name))
	}

	r.mu.RLock()
	limiter := r.limiters[call.Name]
	r.mu.RUnlock()
	if limiter != nil && !limiter.Allow() {
		return "", types.NewError(types.ErrRateLimited,
			fmt.Sprintf("tool %s is rate limited", call.Name)).WithRetryable(true)
	}

	args, err := validateParams(spec, call)
	if err != nil {
		return "", err
	}

	execCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	start := time.Now()
	result, err := spec.Handler(execCtx, args)
	if err != nil {
		r.logger.Warn("tool execution failed",
			zap.String("tool", call.Name),
			zap.Error(err))
		if types.GetErrorCode(err) != "" {
			return "", err
		}
		return "", types.NewError(types.ErrToolExecution,
			fmt.Sprintf("tool %s failed", call.Name)).WithCause(err)
	}

	r.logger.Debug("tool executed",
		zap.String("tool", call.Name),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// validateParams checks declared parameters for presence and parseability.
func validateParams(spec Spec, call Call) (Args, error) {
	args := make(Args, len(spec.Params))
	for _, p := range spec.Params {
		value, ok := call.Get(p.Name)
		if !ok {
			return nil, types.NewError(types.ErrToolParameter,
				fmt.Sprintf("tool %s: missing parameter %q", spec.Name, p.Name))
		}
		switch p.Type {
		case ParamInt:
			if _, err := strconv.Atoi(value); err != nil {
				return nil, types.NewError(types.ErrToolParameter,
					fmt.Sprintf("tool %s: parameter %q must be an integer, got %q", spec.Name, p.Name, value))
			}
		case ParamFloat:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return nil, types.NewError(types.ErrToolParameter,
					fmt.Sprintf("tool %s: parameter %q must be a number, got %q", spec.Name, p.Name, value))
			}
		}
		args[p.Name] = value
	}
	return args, nil
}
