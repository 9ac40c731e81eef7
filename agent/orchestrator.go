package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/llm"
	"github.com/ragent-ai/ragent/llm/tools"
	"github.com/ragent-ai/ragent/types"
)

const (
	defaultMaxIterations    = 5
	defaultMaxMessageLength = 1000
)

// Status distinguishes the two caller-visible outcomes.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Config controls the orchestration loop.
type Config struct {
	// MaxIterations caps tool-dispatch batches per run (default 5). The
	// cap converts a model that echoes directives forever into a bounded,
	// observable outcome: the stale directive is returned to the caller.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// MaxMessageLength bounds inbound message size in runes (default 1000).
	MaxMessageLength int `json:"max_message_length" yaml:"max_message_length"`
	// MemoryWindow bounds per-session message history (default 20).
	MemoryWindow int `json:"memory_window" yaml:"memory_window"`
}

// Request is one agent task.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// Response is the structured outcome of one run. Callers always get one
// of these with Status completed or failed, never a bare error across the
// API boundary.
type Response struct {
	Answer         string            `json:"answer"`
	SessionID      string            `json:"sessionId"`
	ToolExecutions []tools.Execution `json:"toolExecutions"`
	Status         Status            `json:"status"`
}

// Orchestrator runs the reason-act-observe loop over a session.
type Orchestrator struct {
	provider     llm.Provider
	registry     *tools.Registry
	sessions     *SessionStore
	cfg          Config
	systemPrompt string
	logger       *zap.Logger
}

// NewOrchestrator creates the agent orchestrator. The system prompt
// advertising the tool set is generated from the registry once, at
// construction.
func NewOrchestrator(provider llm.Provider, registry *tools.Registry, sessions *SessionStore, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = defaultMaxMessageLength
	}
	return &Orchestrator{
		provider:     provider,
		registry:     registry,
		sessions:     sessions,
		cfg:          cfg,
		systemPrompt: buildSystemPrompt(registry),
		logger:       logger,
	}
}

// Sessions exposes the session store for lifecycle endpoints.
func (o *Orchestrator) Sessions() *SessionStore {
	return o.sessions
}

// Tools returns the registered tool specs.
func (o *Orchestrator) Tools() []tools.Spec {
	return o.registry.List()
}

// Execute runs one agent task. Validation failures return an error before
// any session state changes; adapter failures surface as a failed-status
// response with memory left in its last-good state.
//
// The session lock is held for the entire run, covering every loop
// iteration, so concurrent requests on the same session id cannot
// interleave memory appends.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, types.NewValidationError("message cannot be blank")
	}
	if len([]rune(req.Message)) > o.cfg.MaxMessageLength {
		return nil, types.NewValidationError(
			fmt.Sprintf("message exceeds maximum length of %d characters", o.cfg.MaxMessageLength))
	}

	session := o.sessions.GetOrCreate(req.SessionID)
	session.Lock()
	defer session.Unlock()

	o.logger.Info("executing agent task",
		zap.String("session_id", session.ID),
		zap.Int("message_length", len(req.Message)))

	session.Memory.SetSystem(o.systemPrompt)
	session.Memory.Append(types.NewUserMessage(req.Message))

	executions := make([]tools.Execution, 0)
	answer := ""

	for iteration := 0; ; {
		resp, err := o.provider.Completion(ctx, &llm.ChatRequest{Messages: session.Memory.Messages()})
		if err != nil {
			o.logger.Error("model call failed",
				zap.String("session_id", session.ID),
				zap.Error(err))
			return &Response{
				Answer:         "I encountered an error: " + err.Error(),
				SessionID:      session.ID,
				ToolExecutions: executions,
				Status:         StatusFailed,
			}, nil
		}

		output := resp.Content
		session.Memory.Append(types.NewAssistantMessage(output))

		calls := tools.ParseDirectives(output)
		if len(calls) == 0 {
			answer = output
			break
		}

		o.logger.Info("dispatching tool calls",
			zap.String("session_id", session.ID),
			zap.Int("iteration", iteration+1),
			zap.Int("count", len(calls)))

		observation := o.dispatch(ctx, calls, &executions)
		session.Memory.Append(types.NewUserMessage(observation))

		iteration++
		if iteration >= o.cfg.MaxIterations {
			// Forced resolution: the last output is returned as-is even
			// though it still contains an unresolved directive.
			o.logger.Warn("max iterations reached",
				zap.String("session_id", session.ID),
				zap.Int("max", o.cfg.MaxIterations))
			answer = output
			break
		}
	}

	o.logger.Info("agent task completed",
		zap.String("session_id", session.ID),
		zap.Int("tool_executions", len(executions)))

	return &Response{
		Answer:         answer,
		SessionID:      session.ID,
		ToolExecutions: executions,
		Status:         StatusCompleted,
	}, nil
}

// dispatch executes one batch of directives in textual order and builds
// the observation message. Per-tool failures become result strings the
// model can recover from; they never abort the batch.
func (o *Orchestrator) dispatch(ctx context.Context, calls []tools.Call, executions *[]tools.Execution) string {
	var results strings.Builder
	for _, call := range calls {
		result, err := o.registry.Execute(ctx, call)
		exec := tools.Execution{ToolName: call.Name, Parameters: call.Params}
		if err != nil {
			exec.Result = err.Error()
			exec.IsError = true
			fmt.Fprintf(&results, "Tool error: %s\n", err.Error())
		} else {
			exec.Result = result
			fmt.Fprintf(&results, "Tool %s result: %s\n", call.Name, result)
		}
		*executions = append(*executions, exec)
	}

	return "Tool results:\n" + results.String() +
		"\nUse these results to continue. If you need more tools, call them. Otherwise, provide your final answer."
}

// buildSystemPrompt renders the tool catalog into the fixed prompting
// discipline the loop expects.
func buildSystemPrompt(registry *tools.Registry) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI assistant with access to the following tools:\n\n")

	for i, spec := range registry.List() {
		params := make([]string, 0, len(spec.Params))
		for _, p := range spec.Params {
			params = append(params, fmt.Sprintf("%s: %s", p.Name, promptTypeName(p.Type)))
		}
		fmt.Fprintf(&b, "%d. %s(%s) - %s\n", i+1, spec.Name, strings.Join(params, ", "), spec.Description)
	}

	b.WriteString(`
When you need to use a tool, respond with:
TOOL_CALL: <tool_name>(<param1>=<value1>, <param2>=<value2>)

After getting the tool result, provide your final answer to the user.
If you don't need a tool, just answer directly.`)
	return b.String()
}

func promptTypeName(t tools.ParamType) string {
	switch t {
	case tools.ParamInt:
		return "int"
	case tools.ParamFloat:
		return "number"
	default:
		return "string"
	}
}
