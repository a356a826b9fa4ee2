package tool

import (
	"context"
	"errors"

	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
)

// ErrToolNotFound is returned when no record matches the id and scope.
var ErrToolNotFound = errors.New("tool not found")

// ErrNameConflict is returned when the storage-layer uniqueness
// constraint on (client, agent, name) rejects a write. The generator's
// pre-check is best-effort only; this error is the authoritative signal.
var ErrNameConflict = errors.New("tool name already taken in scope")

// Repository persists tool records scoped by (client, agent). It also
// satisfies compiler.NameIndex for the identifier generator.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	Get(ctx context.Context, id core.ID, scope compiler.Scope) (*Record, error)
	// GetByID looks a record up without scope; the tool-call callback
	// authenticates by record id alone.
	GetByID(ctx context.Context, id core.ID) (*Record, error)
	ListByScope(ctx context.Context, scope compiler.Scope) ([]*Record, error)
	Update(ctx context.Context, record *Record) error
	Delete(ctx context.Context, id core.ID, scope compiler.Scope) error
	NameExists(ctx context.Context, name string, scope compiler.Scope, excludeID core.ID) (bool, error)
}
