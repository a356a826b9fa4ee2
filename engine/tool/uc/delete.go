package uc

import (
	"context"
	"errors"

	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/tool"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

type DeleteInput struct {
	ID       core.ID
	ClientID string
	AgentID  string
}

type Delete struct {
	repo      tool.Repository
	registrar Registrar
	metrics   *tool.Metrics
}

func NewDelete(repo tool.Repository, registrar Registrar, metrics *tool.Metrics) *Delete {
	return &Delete{repo: repo, registrar: registrar, metrics: metrics}
}

// Execute detaches the tool from its assistant and deletes the remote
// registration best-effort, then removes the local record. Remote
// failures are logged but never block the local delete.
func (uc *Delete) Execute(ctx context.Context, in *DeleteInput) error {
	if in == nil {
		return ErrInvalidInput
	}
	err := uc.execute(ctx, in)
	uc.metrics.RecordDelete(ctx, err)
	return err
}

func (uc *Delete) execute(ctx context.Context, in *DeleteInput) error {
	log := logger.FromContext(ctx)
	scope := compiler.Scope{ClientID: in.ClientID, AgentID: in.AgentID}
	record, err := uc.repo.Get(ctx, in.ID, scope)
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			return err
		}
		return core.NewPersistenceError("load tool", err)
	}
	if record.Registered() {
		if err := detachFromAssistant(ctx, uc.registrar, record.AgentID, record.ExternalID); err != nil {
			log.Warn("failed to detach tool from assistant",
				"tool", record.ID, "assistant", record.AgentID, "error", err)
		}
		if err := uc.registrar.DeleteTool(ctx, record.ExternalID); err != nil {
			log.Warn("failed to delete remote tool registration",
				"tool", record.ID, "external_id", record.ExternalID, "error", err)
		}
	}
	if err := uc.repo.Delete(ctx, in.ID, scope); err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			return err
		}
		return core.NewPersistenceError("delete tool", err)
	}
	log.Info("tool deleted", "tool", record.ID, "name", record.Name)
	return nil
}
