package catalog

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/pkg/config"
)

// App is one connectable third-party application.
type App struct {
	NameSlug    string `json:"name_slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImgSrc      string `json:"img_src,omitempty"`
}

// Account is one authenticated connection of an app for a client.
type Account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	App     string `json:"app"`
	Healthy bool   `json:"healthy"`
}

// ResolveOptionsRequest asks the catalog for the valid values of one
// remote-backed prop. ResolvedValues carries the account binding plus
// every sibling already in a usable fixed state.
type ResolveOptionsRequest struct {
	ActionKey      string         `json:"-"`
	PropName       string         `json:"prop_name"`
	ResolvedValues map[string]any `json:"configured_props"`
	SearchQuery    string         `json:"query,omitempty"`
	ClientID       string         `json:"external_user_id,omitempty"`
}

// RunActionRequest executes an action with fully resolved parameters.
type RunActionRequest struct {
	ActionKey string         `json:"-"`
	Params    map[string]any `json:"configured_props"`
	ClientID  string         `json:"external_user_id,omitempty"`
}

// Client talks to the action catalog service.
type Client struct {
	http *resty.Client
}

func NewClient(cfg *config.CatalogConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: client}
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// ListApps searches the connectable app directory.
func (c *Client) ListApps(ctx context.Context, query string) ([]App, error) {
	var out listEnvelope[App]
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if query != "" {
		req.SetQueryParam("q", query)
	}
	resp, err := req.Get("/apps")
	if err := checkResponse("listApps", resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListAccounts returns the client's authenticated accounts for an app.
func (c *Client) ListAccounts(ctx context.Context, app string, clientID string) ([]Account, error) {
	var out listEnvelope[Account]
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetQueryParam("external_user_id", clientID).
		Get(fmt.Sprintf("/apps/%s/accounts", app))
	if err := checkResponse("listAccounts", resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListActions returns the action definitions an app exposes.
func (c *Client) ListActions(ctx context.Context, app string, accountID string, clientID string) ([]action.Definition, error) {
	var out listEnvelope[action.Definition]
	req := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetQueryParam("external_user_id", clientID)
	if accountID != "" {
		req.SetQueryParam("account_id", accountID)
	}
	resp, err := req.Get(fmt.Sprintf("/apps/%s/actions", app))
	if err := checkResponse("listActions", resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type optionsResponse struct {
	Options       []action.Option `json:"options"`
	StringOptions []string        `json:"stringOptions"`
}

// ResolveOptions fetches the valid values of one remote-backed prop.
// The catalog answers either label/value pairs or a bare string list;
// bare strings come back wrapped as label = value = string.
func (c *Client) ResolveOptions(ctx context.Context, req *ResolveOptionsRequest) ([]action.Option, error) {
	var out optionsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/actions/%s/options", req.ActionKey))
	if err := checkResponse("resolveOptions", resp, err); err != nil {
		return nil, err
	}
	if len(out.Options) > 0 {
		return out.Options, nil
	}
	options := make([]action.Option, 0, len(out.StringOptions))
	for _, s := range out.StringOptions {
		options = append(options, action.Option{Label: s, Value: s})
	}
	return options, nil
}

// RunAction executes the action and returns the raw result document.
func (c *Client) RunAction(ctx context.Context, req *RunActionRequest) (map[string]any, error) {
	out := map[string]any{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/actions/%s/run", req.ActionKey))
	if err := checkResponse("runAction", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return core.NewCatalogError(op, err)
	}
	if resp.IsError() {
		return core.NewCatalogError(op, fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}
