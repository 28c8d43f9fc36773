package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	capabilityx "github.com/clinicdesk/scheduling-agent/agent/capability"
	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

// Engine is the LLM-backed policy that reads the dialogue so far and
// produces either a user-facing utterance or capability requests.
type Engine struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Engine = (*Engine)(nil)

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
) (*Engine, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is required", contractx.ErrValidation)
	}

	toolModel, err := chatModel.WithTools(capabilityx.ToolInfos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind capability tools: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileDecisionGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile decision graph: %v", contractx.ErrModelInvoke, err)
	}

	return &Engine{runner: runner}, nil
}

func (e *Engine) Decide(ctx context.Context, req contractx.DecisionRequest) (contractx.Decision, error) {
	payload := map[string]any{
		"task_status":  req.StatusSummary,
		"conversation": req.Transcript,
		"user_message": req.UserMessage,
		"now":          req.Now.Format(time.RFC3339),
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: marshal decision payload: %v", contractx.ErrValidation, err)
	}

	msg, err := e.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: decision invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.Decision{}, fmt.Errorf("%w: empty decision response", contractx.ErrSchemaViolation)
	}

	requests, err := toRequests(msg.ToolCalls)
	if err != nil {
		return contractx.Decision{}, err
	}

	if len(requests) == 0 {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return contractx.Decision{}, fmt.Errorf("%w: decision carries neither utterance nor capability calls", contractx.ErrSchemaViolation)
		}
		return contractx.Decision{Utterance: content}, nil
	}

	return contractx.Decision{Requests: requests}, nil
}

func toRequests(calls []schema.ToolCall) ([]contractx.Request, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.Request, 0, len(calls))
	for _, call := range calls {
		name := contractx.Name(strings.TrimSpace(call.Function.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: capability call name is empty", contractx.ErrSchemaViolation)
		}
		if !capabilityx.Known(name) {
			return nil, fmt.Errorf("%w: capability=%s is not in the catalog", contractx.ErrSchemaViolation, name)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid args for capability=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}

		reqs = append(reqs, contractx.Request{
			Name: name,
			Args: args,
		})
	}
	return reqs, nil
}
