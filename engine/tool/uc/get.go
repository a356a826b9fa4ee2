package uc

import (
	"context"
	"errors"

	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/tool"
)

type GetInput struct {
	ID       core.ID
	ClientID string
	AgentID  string
}

type Get struct {
	repo tool.Repository
}

func NewGet(repo tool.Repository) *Get {
	return &Get{repo: repo}
}

func (uc *Get) Execute(ctx context.Context, in *GetInput) (*tool.Record, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	record, err := uc.repo.Get(ctx, in.ID, compiler.Scope{ClientID: in.ClientID, AgentID: in.AgentID})
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			return nil, err
		}
		return nil, core.NewPersistenceError("load tool", err)
	}
	return record, nil
}

type ListInput struct {
	ClientID string
	AgentID  string
}

type List struct {
	repo tool.Repository
}

func NewList(repo tool.Repository) *List {
	return &List{repo: repo}
}

func (uc *List) Execute(ctx context.Context, in *ListInput) ([]*tool.Record, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	records, err := uc.repo.ListByScope(ctx, compiler.Scope{ClientID: in.ClientID, AgentID: in.AgentID})
	if err != nil {
		return nil, core.NewPersistenceError("list tools", err)
	}
	return records, nil
}
