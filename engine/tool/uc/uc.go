package uc

import (
	"context"
	"slices"
	"strings"

	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/platform"
	"github.com/toolforge-ai/toolforge/engine/tool"
)

// ActionSource supplies read-only action definitions from the catalog.
type ActionSource interface {
	ListActions(ctx context.Context, app string, accountID string, clientID string) ([]action.Definition, error)
}

// Registrar is the agent-platform tool registry the lifecycle manager
// pushes compiled tools to. *platform.Client satisfies it.
type Registrar interface {
	CreateTool(ctx context.Context, payload *platform.ToolPayload) (string, error)
	UpdateTool(ctx context.Context, externalID string, payload *platform.ToolPayload) error
	DeleteTool(ctx context.Context, externalID string) error
	GetAssistant(ctx context.Context, assistantID string) (*platform.Assistant, error)
	UpdateAssistantToolIDs(ctx context.Context, assistantID string, toolIDs []string) error
}

func validateMeta(label string, description string) error {
	fields := make([]string, 0, 2)
	if strings.TrimSpace(label) == "" {
		fields = append(fields, "label")
	}
	if strings.TrimSpace(description) == "" {
		fields = append(fields, "description")
	}
	if len(fields) > 0 {
		return core.NewValidationError(fields...)
	}
	return nil
}

// findAction fetches the action definition backing a tool. Definitions
// are read-only catalog data, fetched per operation rather than cached.
func findAction(
	ctx context.Context,
	src ActionSource,
	app string,
	accountID string,
	clientID string,
	actionKey string,
) (*action.Definition, error) {
	defs, err := src.ListActions(ctx, app, accountID, clientID)
	if err != nil {
		return nil, err
	}
	for i := range defs {
		if defs[i].Key == actionKey {
			return &defs[i], nil
		}
	}
	return nil, core.NewCatalogError("find action "+actionKey, ErrActionNotFound)
}

// registrationPayload builds the platform payload for a record. The
// registered function name is always derived from the current internal
// name; the external tool id never changes once assigned.
func registrationPayload(record *tool.Record, callbackBase string) *platform.ToolPayload {
	fn := *record.Schema
	fn.Name = compiler.ExternalName(record.Name)
	return &platform.ToolPayload{
		Async:    record.IsAsync(),
		Function: &fn,
		Server:   &platform.ServerConfig{URL: record.CallbackURL(callbackBase)},
	}
}

// attachToAssistant appends the external tool id to the assistant's
// active toolset, skipping the write when it is already present.
func attachToAssistant(ctx context.Context, registrar Registrar, assistantID string, externalID string) error {
	assistant, err := registrar.GetAssistant(ctx, assistantID)
	if err != nil {
		return err
	}
	if slices.Contains(assistant.ToolIDs, externalID) {
		return nil
	}
	return registrar.UpdateAssistantToolIDs(ctx, assistantID, append(assistant.ToolIDs, externalID))
}

func detachFromAssistant(ctx context.Context, registrar Registrar, assistantID string, externalID string) error {
	assistant, err := registrar.GetAssistant(ctx, assistantID)
	if err != nil {
		return err
	}
	if !slices.Contains(assistant.ToolIDs, externalID) {
		return nil
	}
	kept := make([]string, 0, len(assistant.ToolIDs))
	for _, id := range assistant.ToolIDs {
		if id != externalID {
			kept = append(kept, id)
		}
	}
	return registrar.UpdateAssistantToolIDs(ctx, assistantID, kept)
}
