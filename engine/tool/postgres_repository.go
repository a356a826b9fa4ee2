package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/infra/store"
)

const uniqueViolationCode = "23505"

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db store.DBInterface
}

// NewPostgresRepository creates a new PostgreSQL repository instance
func NewPostgresRepository(db store.DBInterface) Repository {
	return &postgresRepository{db: db}
}

const recordColumns = `id, client_id, agent_id, name, label, description,
app, account_id, action_key, function_schema, static_config, props_config,
external_id, created_at, updated_at`

// scanRecord is a helper function to scan a database row into a Record
func scanRecord(scannable interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		record     Record
		schemaRaw  []byte
		staticRaw  []byte
		propsRaw   []byte
		externalID *string
	)
	err := scannable.Scan(
		&record.ID,
		&record.ClientID,
		&record.AgentID,
		&record.Name,
		&record.Label,
		&record.Description,
		&record.App,
		&record.AccountID,
		&record.ActionKey,
		&schemaRaw,
		&staticRaw,
		&propsRaw,
		&externalID,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrToolNotFound
		}
		return nil, err
	}
	if externalID != nil {
		record.ExternalID = *externalID
	}
	record.Schema = &compiler.FunctionSchema{}
	if err := json.Unmarshal(schemaRaw, record.Schema); err != nil {
		return nil, fmt.Errorf("failed to decode function schema: %w", err)
	}
	record.Static = compiler.StaticConfig{}
	if err := json.Unmarshal(staticRaw, &record.Static); err != nil {
		return nil, fmt.Errorf("failed to decode static config: %w", err)
	}
	record.PropsConfig = &compiler.Document{}
	if err := json.Unmarshal(propsRaw, record.PropsConfig); err != nil {
		return nil, fmt.Errorf("failed to decode props config: %w", err)
	}
	return &record, nil
}

func encodeRecord(record *Record) (schemaRaw, staticRaw, propsRaw []byte, externalID *string, err error) {
	schemaRaw, err = json.Marshal(record.Schema)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode function schema: %w", err)
	}
	staticRaw, err = json.Marshal(record.Static)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode static config: %w", err)
	}
	props := record.PropsConfig
	if props == nil {
		props = &compiler.Document{Props: compiler.ConfigMap{}}
	}
	propsRaw, err = json.Marshal(props)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode props config: %w", err)
	}
	if record.ExternalID != "" {
		externalID = &record.ExternalID
	}
	return schemaRaw, staticRaw, propsRaw, externalID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Create inserts a new tool record
func (r *postgresRepository) Create(ctx context.Context, record *Record) error {
	schemaRaw, staticRaw, propsRaw, externalID, err := encodeRecord(record)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	query := `INSERT INTO tools (` + recordColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.ClientID,
		record.AgentID,
		record.Name,
		record.Label,
		record.Description,
		record.App,
		record.AccountID,
		record.ActionKey,
		schemaRaw,
		staticRaw,
		propsRaw,
		externalID,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrNameConflict
		}
		return fmt.Errorf("failed to create tool: %w", err)
	}
	return nil
}

// Get retrieves a tool record by id within a scope
func (r *postgresRepository) Get(ctx context.Context, id core.ID, scope compiler.Scope) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM tools
WHERE id = $1 AND client_id = $2 AND agent_id = $3`
	record, err := scanRecord(r.db.QueryRow(ctx, query, id, scope.ClientID, scope.AgentID))
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}
	return record, nil
}

// GetByID retrieves a tool record by id alone
func (r *postgresRepository) GetByID(ctx context.Context, id core.ID) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM tools WHERE id = $1`
	record, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get tool by id: %w", err)
	}
	return record, nil
}

// ListByScope retrieves all tool records for one agent of one client
func (r *postgresRepository) ListByScope(ctx context.Context, scope compiler.Scope) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM tools
WHERE client_id = $1 AND agent_id = $2
ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, scope.ClientID, scope.AgentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	defer rows.Close()
	records := make([]*Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tool rows: %w", err)
	}
	return records, nil
}

// Update updates an existing tool record
func (r *postgresRepository) Update(ctx context.Context, record *Record) error {
	schemaRaw, staticRaw, propsRaw, externalID, err := encodeRecord(record)
	if err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()
	query := `UPDATE tools
SET name = $2, label = $3, description = $4, function_schema = $5,
    static_config = $6, props_config = $7, external_id = $8, updated_at = $9
WHERE id = $1`
	result, err := r.db.Exec(ctx, query,
		record.ID,
		record.Name,
		record.Label,
		record.Description,
		schemaRaw,
		staticRaw,
		propsRaw,
		externalID,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrNameConflict
		}
		return fmt.Errorf("failed to update tool: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrToolNotFound
	}
	return nil
}

// Delete deletes a tool record by id within a scope
func (r *postgresRepository) Delete(ctx context.Context, id core.ID, scope compiler.Scope) error {
	query := `DELETE FROM tools WHERE id = $1 AND client_id = $2 AND agent_id = $3`
	result, err := r.db.Exec(ctx, query, id, scope.ClientID, scope.AgentID)
	if err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrToolNotFound
	}
	return nil
}

// NameExists checks name uniqueness within a scope, optionally skipping
// the record being edited
func (r *postgresRepository) NameExists(ctx context.Context, name string, scope compiler.Scope, excludeID core.ID) (bool, error) {
	query := `SELECT EXISTS (
SELECT 1 FROM tools
WHERE name = $1 AND client_id = $2 AND agent_id = $3 AND id <> $4
)`
	var exists bool
	err := r.db.QueryRow(ctx, query, name, scope.ClientID, scope.AgentID, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check name existence: %w", err)
	}
	return exists, nil
}
