package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/llm/tools"
	"github.com/ragent-ai/ragent/testutil/mocks"
	"github.com/ragent-ai/ragent/types"
)

func newTestOrchestrator(t *testing.T, provider *mocks.MockProvider, cfg Config) *Orchestrator {
	t.Helper()
	registry := tools.NewRegistry(zap.NewNop())
	require.NoError(t, tools.RegisterBuiltins(registry, zap.NewNop()))
	sessions := NewSessionStore(cfg.MemoryWindow, zap.NewNop())
	return NewOrchestrator(provider, registry, sessions, cfg, zap.NewNop())
}

func TestOrchestrator_Execute_DirectAnswer(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponse("Just a plain answer.")
	o := newTestOrchestrator(t, provider, Config{})

	resp, err := o.Execute(context.Background(), Request{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "Just a plain answer.", resp.Answer)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Empty(t, resp.ToolExecutions)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 1, provider.CallCount())
}

func TestOrchestrator_Execute_ToolCall(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponses(
		"TOOL_CALL: add(a=12, b=5)",
		"The sum is 17.",
	)
	o := newTestOrchestrator(t, provider, Config{})

	resp, err := o.Execute(context.Background(), Request{Message: "what is 12 + 5?"})
	require.NoError(t, err)

	assert.Equal(t, "The sum is 17.", resp.Answer)
	assert.Equal(t, StatusCompleted, resp.Status)

	require.Len(t, resp.ToolExecutions, 1)
	assert.Equal(t, "add", resp.ToolExecutions[0].ToolName)
	assert.Equal(t, "17", resp.ToolExecutions[0].Result)
	assert.False(t, resp.ToolExecutions[0].IsError)

	// The observation turn carried the tool result back to the model.
	require.Equal(t, 2, provider.CallCount())
	observation := provider.Calls()[1].Request.Messages
	last := observation[len(observation)-1]
	assert.Equal(t, types.RoleUser, last.Role)
	assert.Contains(t, last.Content, "Tool add result: 17")
	assert.Contains(t, last.Content, "Use these results to continue.")
}

func TestOrchestrator_Execute_MultipleDirectivesInOneBatch(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponses(
		"TOOL_CALL: add(a=1, b=2)\nTOOL_CALL: multiply(a=3, b=4)",
		"Done.",
	)
	o := newTestOrchestrator(t, provider, Config{})

	resp, err := o.Execute(context.Background(), Request{Message: "compute"})
	require.NoError(t, err)

	// Directives dispatch in textual order within the batch.
	require.Len(t, resp.ToolExecutions, 2)
	assert.Equal(t, "add", resp.ToolExecutions[0].ToolName)
	assert.Equal(t, "3", resp.ToolExecutions[0].Result)
	assert.Equal(t, "multiply", resp.ToolExecutions[1].ToolName)
	assert.Equal(t, "12", resp.ToolExecutions[1].Result)
}

func TestOrchestrator_Execute_ToolErrorContinuesLoop(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponses(
		"TOOL_CALL: divide(a=1, b=0)",
		"Division by zero is undefined.",
	)
	o := newTestOrchestrator(t, provider, Config{})

	resp, err := o.Execute(context.Background(), Request{Message: "1/0?"})
	require.NoError(t, err)

	assert.Equal(t, "Division by zero is undefined.", resp.Answer)
	assert.Equal(t, StatusCompleted, resp.Status)

	require.Len(t, resp.ToolExecutions, 1)
	assert.True(t, resp.ToolExecutions[0].IsError)
	assert.Contains(t, resp.ToolExecutions[0].Result, "divide by zero")

	// The error went back to the model as an observation, not an abort.
	observation := provider.Calls()[1].Request.Messages
	assert.Contains(t, observation[len(observation)-1].Content, "Tool error:")
}

func TestOrchestrator_Execute_UnknownToolReportedToModel(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponses(
		"TOOL_CALL: launchRocket(target=moon)",
		"I don't have that capability.",
	)
	o := newTestOrchestrator(t, provider, Config{})

	resp, err := o.Execute(context.Background(), Request{Message: "launch"})
	require.NoError(t, err)

	require.Len(t, resp.ToolExecutions, 1)
	assert.True(t, resp.ToolExecutions[0].IsError)
	assert.Contains(t, resp.ToolExecutions[0].Result, "unknown tool")
	assert.Equal(t, StatusCompleted, resp.Status)
}

func TestOrchestrator_Execute_MaxIterationsForcesResolution(t *testing.T) {
	// The model emits a directive on every turn and never settles.
	provider := mocks.NewMockProvider().WithResponse("TOOL_CALL: add(a=1, b=1)")
	o := newTestOrchestrator(t, provider, Config{MaxIterations: 3})

	resp, err := o.Execute(context.Background(), Request{Message: "loop forever"})
	require.NoError(t, err)

	// Exactly MaxIterations batches ran, then the stale directive text is
	// returned as-is with completed status.
	assert.Equal(t, 3, provider.CallCount())
	assert.Len(t, resp.ToolExecutions, 3)
	assert.Equal(t, "TOOL_CALL: add(a=1, b=1)", resp.Answer)
	assert.Equal(t, StatusCompleted, resp.Status)
}

func TestOrchestrator_Execute_BlankMessage(t *testing.T) {
	provider := mocks.NewMockProvider()
	o := newTestOrchestrator(t, provider, Config{})

	for _, msg := range []string{"", "   ", "\n"} {
		_, err := o.Execute(context.Background(), Request{Message: msg})
		require.Error(t, err)
		assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	}

	// Validation failures never touch session state.
	assert.Equal(t, 0, o.Sessions().Count())
	assert.Equal(t, 0, provider.CallCount())
}

func TestOrchestrator_Execute_MessageTooLong(t *testing.T) {
	provider := mocks.NewMockProvider()
	o := newTestOrchestrator(t, provider, Config{MaxMessageLength: 10})

	_, err := o.Execute(context.Background(), Request{Message: strings.Repeat("x", 11)})
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	assert.Equal(t, 0, o.Sessions().Count())
}

func TestOrchestrator_Execute_ProviderFailureReturnsFailedStatus(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithError(types.NewError(types.ErrProviderUnavailable, "connection refused"))
	o := newTestOrchestrator(t, provider, Config{})

	resp, err := o.Execute(context.Background(), Request{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, resp.Status)
	assert.True(t, strings.HasPrefix(resp.Answer, "I encountered an error: "))
	assert.Contains(t, resp.Answer, "connection refused")
	assert.NotEmpty(t, resp.SessionID)
}

func TestOrchestrator_Execute_SessionMemoryPersistsAcrossRequests(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponse("answer")
	o := newTestOrchestrator(t, provider, Config{})

	first, err := o.Execute(context.Background(), Request{Message: "first question"})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), Request{Message: "second question", SessionID: first.SessionID})
	require.NoError(t, err)

	// The second call saw the first exchange in its context window.
	msgs := provider.Calls()[1].Request.Messages
	var contents []string
	for _, m := range msgs {
		contents = append(contents, m.Content)
	}
	joined := strings.Join(contents, "\n")
	assert.Contains(t, joined, "first question")
	assert.Contains(t, joined, "second question")
}

func TestOrchestrator_Execute_SystemPromptListsTools(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponse("answer")
	o := newTestOrchestrator(t, provider, Config{})

	_, err := o.Execute(context.Background(), Request{Message: "hello"})
	require.NoError(t, err)

	msgs := provider.Calls()[0].Request.Messages
	require.NotEmpty(t, msgs)
	system := msgs[0]
	assert.Equal(t, types.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "You are a helpful AI assistant")
	assert.Contains(t, system.Content, "add(a: number, b: number)")
	assert.Contains(t, system.Content, "getWeatherForecast(location: string, days: int)")
	assert.Contains(t, system.Content, "TOOL_CALL: <tool_name>(<param1>=<value1>, <param2>=<value2>)")
}

func TestOrchestrator_Tools(t *testing.T) {
	provider := mocks.NewMockProvider()
	o := newTestOrchestrator(t, provider, Config{})

	specs := o.Tools()
	require.NotEmpty(t, specs)
	assert.Equal(t, "getCurrentWeather", specs[0].Name)
}
