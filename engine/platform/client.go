package platform

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/pkg/config"
)

// ServerConfig is the callback the platform invokes at tool-call time.
type ServerConfig struct {
	URL string `json:"url"`
}

// ToolPayload is the registration body. Type is required on create and
// must be omitted on update, hence omitempty and the split in the
// client methods.
type ToolPayload struct {
	Type     string                   `json:"type,omitempty"`
	Async    bool                     `json:"async,omitempty"`
	Function *compiler.FunctionSchema `json:"function"`
	Server   *ServerConfig            `json:"server,omitempty"`
}

// Assistant is the subset of the platform's assistant resource this
// service maintains: the active toolset.
type Assistant struct {
	ID      string   `json:"id"`
	ToolIDs []string `json:"toolIds"`
}

type toolResponse struct {
	ID string `json:"id"`
}

// Client talks to the external agent platform's tool registry.
type Client struct {
	http *resty.Client
}

func NewClient(cfg *config.PlatformConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: client}
}

// CreateTool registers a function tool and returns the platform's id.
func (c *Client) CreateTool(ctx context.Context, payload *ToolPayload) (string, error) {
	body := *payload
	body.Type = "function"
	var out toolResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&body).
		SetResult(&out).
		Post("/tool")
	if err := checkResponse("createTool", resp, err); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", core.NewRegistrationError("createTool", fmt.Errorf("platform returned no tool id"))
	}
	return out.ID, nil
}

// UpdateTool pushes a new schema for an already registered tool. The
// payload deliberately omits type; the platform rejects it on update.
func (c *Client) UpdateTool(ctx context.Context, externalID string, payload *ToolPayload) error {
	body := *payload
	body.Type = ""
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&body).
		Patch(fmt.Sprintf("/tool/%s", externalID))
	return checkResponse("updateTool", resp, err)
}

func (c *Client) DeleteTool(ctx context.Context, externalID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/tool/%s", externalID))
	return checkResponse("deleteTool", resp, err)
}

func (c *Client) GetAssistant(ctx context.Context, assistantID string) (*Assistant, error) {
	var out Assistant
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/assistant/%s", assistantID))
	if err := checkResponse("getAssistant", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAssistantToolIDs replaces the assistant's active toolset.
func (c *Client) UpdateAssistantToolIDs(ctx context.Context, assistantID string, toolIDs []string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"toolIds": toolIDs}).
		Patch(fmt.Sprintf("/assistant/%s", assistantID))
	return checkResponse("updateAssistant", resp, err)
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return core.NewRegistrationError(op, err)
	}
	if resp.IsError() {
		return core.NewRegistrationError(op, fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}
