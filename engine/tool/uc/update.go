package uc

import (
	"context"
	"errors"

	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/tool"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

type UpdateInput struct {
	ID       core.ID
	ClientID string
	AgentID  string
	// Empty Label/Description and nil Config leave the stored value
	// untouched.
	Label       string
	Description string
	Config      *compiler.Document
}

type UpdateOutput struct {
	Record *tool.Record
	// RegistrationErr carries a failed remote push. The local write is
	// authoritative for editing, so it is surfaced without rolling
	// anything back.
	RegistrationErr error
}

type Update struct {
	repo         tool.Repository
	catalog      ActionSource
	registrar    Registrar
	metrics      *tool.Metrics
	callbackBase string
}

func NewUpdate(
	repo tool.Repository,
	catalog ActionSource,
	registrar Registrar,
	metrics *tool.Metrics,
	callbackBase string,
) *Update {
	return &Update{repo: repo, catalog: catalog, registrar: registrar, metrics: metrics, callbackBase: callbackBase}
}

func (uc *Update) Execute(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	out, err := uc.execute(ctx, in)
	uc.metrics.RecordUpdate(ctx, err)
	return out, err
}

func (uc *Update) execute(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	log := logger.FromContext(ctx)
	scope := compiler.Scope{ClientID: in.ClientID, AgentID: in.AgentID}
	record, err := uc.repo.Get(ctx, in.ID, scope)
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			return nil, err
		}
		return nil, core.NewPersistenceError("load tool", err)
	}
	relabeled := in.Label != "" && in.Label != record.Label
	if in.Label != "" {
		record.Label = in.Label
	}
	if in.Description != "" {
		record.Description = in.Description
	}
	if in.Config != nil {
		record.PropsConfig = in.Config
	}
	if err := validateMeta(record.Label, record.Description); err != nil {
		return nil, err
	}
	def, err := findAction(ctx, uc.catalog, record.App, record.AccountID, record.ClientID, record.ActionKey)
	if err != nil {
		return nil, err
	}
	if err := compiler.ValidateRequired(def.Props, record.PropsConfig.Props); err != nil {
		return nil, err
	}
	if relabeled {
		name, err := compiler.EnsureUnique(ctx, uc.repo, record.Label, scope, record.ID)
		if err != nil {
			return nil, core.NewPersistenceError("reserve tool name", err)
		}
		record.Name = name
	}
	schema, static, err := compiler.Compile(def.Props, record.PropsConfig.Props, compiler.Metadata{
		Label:       record.Label,
		Description: record.Description,
		AccountID:   record.AccountID,
	})
	if err != nil {
		return nil, err
	}
	schema.Name = record.Name
	record.Schema = schema
	record.Static = static
	if err := uc.repo.Update(ctx, record); err != nil {
		if errors.Is(err, tool.ErrToolNotFound) || errors.Is(err, tool.ErrNameConflict) {
			return nil, err
		}
		return nil, core.NewPersistenceError("update tool", err)
	}
	out := &UpdateOutput{Record: record}
	if record.Registered() {
		payload := registrationPayload(record, uc.callbackBase)
		if err := uc.registrar.UpdateTool(ctx, record.ExternalID, payload); err != nil {
			log.Error("remote tool update failed, local record kept",
				"tool", record.ID, "external_id", record.ExternalID, "error", err)
			out.RegistrationErr = err
		}
	}
	return out, nil
}
