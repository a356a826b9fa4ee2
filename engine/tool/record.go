package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
)

// Record is the persisted form of a compiled tool. It moves through
// three states: persisted-unregistered (ExternalID empty), registered
// (ExternalID set by the agent platform), and removed. A record with an
// empty ExternalID is an orphan of a failed registration; it is kept
// visible rather than silently retried.
type Record struct {
	ID          core.ID                  `json:"id"`
	ClientID    string                   `json:"clientId"`
	AgentID     string                   `json:"agentId"`
	Name        string                   `json:"name"`
	Label       string                   `json:"label"`
	Description string                   `json:"description"`
	App         string                   `json:"app,omitempty"`
	AccountID   string                   `json:"accountId,omitempty"`
	ActionKey   string                   `json:"actionKey,omitempty"`
	Schema      *compiler.FunctionSchema `json:"functionSchema"`
	Static      compiler.StaticConfig    `json:"staticConfig"`
	PropsConfig *compiler.Document       `json:"propsConfig"`
	ExternalID  string                   `json:"externalId,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// Registered reports whether remote registration has succeeded at
// least once.
func (r *Record) Registered() bool {
	return r.ExternalID != ""
}

func (r *Record) Scope() compiler.Scope {
	return compiler.Scope{ClientID: r.ClientID, AgentID: r.AgentID}
}

// CallbackURL is the address the agent platform invokes at call time.
func (r *Record) CallbackURL(base string) string {
	return fmt.Sprintf("%s/api/tool/%s/call", strings.TrimRight(base, "/"), r.ID)
}

// IsAsync reports the persisted async execution flag.
func (r *Record) IsAsync() bool {
	return r.PropsConfig != nil && r.PropsConfig.IsAsync
}
