package toolrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toolforge-ai/toolforge/engine/catalog"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/infra/server/router"
	"github.com/toolforge-ai/toolforge/engine/tool"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

type toolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolCall struct {
	ID       string           `json:"id"`
	Function toolCallFunction `json:"function"`
}

type toolCallRequest struct {
	Message struct {
		ToolCalls []toolCall `json:"toolCalls"`
	} `json:"message"`
}

type toolCallResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// callTool serves the platform's runtime invocation of a registered
// tool. Arguments are validated against the persisted function schema,
// the hidden static configuration is merged over them, and the action
// is executed through the catalog.
func (h *Handlers) callTool(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())
	record, err := h.repo.GetByID(c.Request.Context(), core.ID(c.Param("toolID")))
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			router.RespondWithError(c, http.StatusNotFound,
				router.NewRequestError(http.StatusNotFound, "tool not found", err))
			return
		}
		router.RespondDomainError(c, core.NewPersistenceError("load tool", err))
		return
	}
	var req toolCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest,
			router.NewRequestError(http.StatusBadRequest, "invalid request body", err))
		return
	}
	results := make([]toolCallResult, 0, len(req.Message.ToolCalls))
	for i := range req.Message.ToolCalls {
		call := &req.Message.ToolCalls[i]
		result, callErr := h.runToolCall(c.Request.Context(), record, call)
		h.metrics.RecordCall(c.Request.Context(), callErr)
		if callErr != nil {
			log.Error("tool call failed",
				"tool", record.ID, "tool_call_id", call.ID, "error", callErr)
			result = "Error: " + callErr.Error()
		}
		results = append(results, toolCallResult{ToolCallID: call.ID, Result: result})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handlers) runToolCall(ctx context.Context, record *tool.Record, call *toolCall) (string, error) {
	args, err := decodeArguments(call.Function.Arguments)
	if err != nil {
		return "", err
	}
	if err := record.Schema.ValidateArguments(args); err != nil {
		return "", err
	}
	params := make(map[string]any, len(args)+len(record.Static))
	for k, v := range args {
		params[k] = v
	}
	// Static wins over anything the agent supplied.
	for k, v := range record.Static {
		params[k] = v
	}
	out, err := h.catalog.RunAction(ctx, &catalog.RunActionRequest{
		ActionKey: record.ActionKey,
		Params:    params,
		ClientID:  record.ClientID,
	})
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// decodeArguments accepts both shapes the platform sends: a JSON object
// or that same object serialized as a string.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err == nil {
		return args, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, errors.New("tool call arguments are neither an object nor a string")
	}
	if encoded == "" {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal([]byte(encoded), &args); err != nil {
		return nil, err
	}
	return args, nil
}
