package uc

import (
	"context"
	"errors"

	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/tool"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

// maxNameAttempts caps how many insert attempts the create path makes
// when the uniqueness pre-check raced with concurrent submissions.
const maxNameAttempts = 5

type CreateInput struct {
	ClientID    string
	AgentID     string
	App         string
	AccountID   string
	ActionKey   string
	Label       string
	Description string
	Config      *compiler.Document
}

type Create struct {
	repo         tool.Repository
	catalog      ActionSource
	registrar    Registrar
	metrics      *tool.Metrics
	callbackBase string
}

func NewCreate(
	repo tool.Repository,
	catalog ActionSource,
	registrar Registrar,
	metrics *tool.Metrics,
	callbackBase string,
) *Create {
	return &Create{repo: repo, catalog: catalog, registrar: registrar, metrics: metrics, callbackBase: callbackBase}
}

// Execute runs the full create lifecycle: validate, reserve a name,
// persist, register remotely, write back the external id, and attach
// the tool to the owning assistant. A failure after the local insert
// leaves the record persisted but unregistered; it is never silently
// retried here.
func (uc *Create) Execute(ctx context.Context, in *CreateInput) (*tool.Record, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	record, err := uc.execute(ctx, in)
	uc.metrics.RecordCreate(ctx, err)
	return record, err
}

func (uc *Create) execute(ctx context.Context, in *CreateInput) (*tool.Record, error) {
	log := logger.FromContext(ctx)
	if err := validateMeta(in.Label, in.Description); err != nil {
		return nil, err
	}
	cfg := in.Config
	if cfg == nil {
		cfg = &compiler.Document{Props: compiler.ConfigMap{}}
	}
	def, err := findAction(ctx, uc.catalog, in.App, in.AccountID, in.ClientID, in.ActionKey)
	if err != nil {
		return nil, err
	}
	if err := compiler.ValidateRequired(def.Props, cfg.Props); err != nil {
		return nil, err
	}
	scope := compiler.Scope{ClientID: in.ClientID, AgentID: in.AgentID}
	name, err := compiler.EnsureUnique(ctx, uc.repo, in.Label, scope, "")
	if err != nil {
		return nil, core.NewPersistenceError("reserve tool name", err)
	}
	schema, static, err := compiler.Compile(def.Props, cfg.Props, compiler.Metadata{
		Label:       in.Label,
		Description: in.Description,
		AccountID:   in.AccountID,
	})
	if err != nil {
		return nil, err
	}
	schema.Name = name
	record := &tool.Record{
		ID:          core.MustNewID(),
		ClientID:    in.ClientID,
		AgentID:     in.AgentID,
		Name:        name,
		Label:       in.Label,
		Description: in.Description,
		App:         in.App,
		AccountID:   in.AccountID,
		ActionKey:   in.ActionKey,
		Schema:      schema,
		Static:      static,
		PropsConfig: cfg,
	}
	if err := uc.insert(ctx, record, compiler.GenerateName(in.Label)); err != nil {
		return nil, err
	}
	if err := uc.register(ctx, record); err != nil {
		log.Error("tool registration failed, record left unregistered",
			"tool", record.ID, "name", record.Name, "error", err)
		return record, err
	}
	log.Info("tool created", "tool", record.ID, "name", record.Name, "external_id", record.ExternalID)
	return record, nil
}

// insert retries with the next name suffix when the storage constraint
// rejects a name the pre-check observed as free.
func (uc *Create) insert(ctx context.Context, record *tool.Record, base string) error {
	// The pre-check may already have handed out a suffixed name; resume
	// counting from there rather than re-colliding through base_2..base_N.
	attempt := compiler.SuffixAttempt(base, record.Name)
	for try := 1; ; try++ {
		err := uc.repo.Create(ctx, record)
		if err == nil {
			return nil
		}
		if !errors.Is(err, tool.ErrNameConflict) {
			return core.NewPersistenceError("insert tool", err)
		}
		if try >= maxNameAttempts {
			return core.NewPersistenceError("insert tool", err)
		}
		attempt++
		record.Name = compiler.NextSuffix(base, attempt)
		record.Schema.Name = record.Name
	}
}

func (uc *Create) register(ctx context.Context, record *tool.Record) error {
	externalID, err := uc.registrar.CreateTool(ctx, registrationPayload(record, uc.callbackBase))
	if err != nil {
		return err
	}
	record.ExternalID = externalID
	if err := uc.repo.Update(ctx, record); err != nil {
		return core.NewPersistenceError("store external id", err)
	}
	if err := attachToAssistant(ctx, uc.registrar, record.AgentID, externalID); err != nil {
		return err
	}
	return nil
}
