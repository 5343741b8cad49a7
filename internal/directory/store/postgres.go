package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"crmdir/internal/directory/models"
	id "crmdir/pkg/domain"
	"crmdir/pkg/platform/sentinel"
)

// PostgresStore persists client records in PostgreSQL. The address is kept as a
// jsonb document; tags are a text[] column.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed client store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectClient = `
	SELECT id, tenant_id, name, document_id, client_type, status, tags, source,
	       address, created_at, last_interaction_date, birth_date
	FROM directory_clients`

func (s *PostgresStore) Save(ctx context.Context, record models.ClientRecord) error {
	address, err := json.Marshal(record.Address)
	if err != nil {
		return fmt.Errorf("marshal client address: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO directory_clients (
			id, tenant_id, name, document_id, client_type, status, tags, source,
			address, created_at, last_interaction_date, birth_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			document_id = EXCLUDED.document_id,
			client_type = EXCLUDED.client_type,
			status = EXCLUDED.status,
			tags = EXCLUDED.tags,
			source = EXCLUDED.source,
			address = EXCLUDED.address,
			last_interaction_date = EXCLUDED.last_interaction_date,
			birth_date = EXCLUDED.birth_date`,
		uuid.UUID(record.ID),
		uuid.UUID(record.TenantID),
		record.Name,
		record.DocumentID,
		string(record.ClientType),
		string(record.Status),
		pq.Array(nonNilTags(record.Tags)),
		nullString(record.Source),
		address,
		record.CreatedAt,
		record.LastInteractionDate,
		record.BirthDate,
	)
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

// ListByTenant returns every client of tenantID ordered by creation time.
func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]models.ClientRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectClient+`
		WHERE tenant_id = $1
		ORDER BY created_at, id`, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list clients by tenant: %w", err)
	}
	defer rows.Close()

	out := []models.ClientRecord{}
	for rows.Next() {
		record, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) (models.ClientRecord, error) {
	row := s.db.QueryRowContext(ctx, selectClient+`
		WHERE tenant_id = $1 AND id = $2`, uuid.UUID(tenantID), uuid.UUID(clientID))
	record, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ClientRecord{}, sentinel.ErrNotFound
		}
		return models.ClientRecord{}, err
	}
	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (models.ClientRecord, error) {
	var (
		record          models.ClientRecord
		clientID        uuid.UUID
		tenantID        uuid.UUID
		clientType      string
		status          string
		tags            []string
		source          sql.NullString
		address         []byte
		lastInteraction sql.NullTime
		birthDate       sql.NullTime
	)
	err := row.Scan(&clientID, &tenantID, &record.Name, &record.DocumentID, &clientType, &status,
		pq.Array(&tags), &source, &address, &record.CreatedAt, &lastInteraction, &birthDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ClientRecord{}, err
		}
		return models.ClientRecord{}, fmt.Errorf("scan client: %w", err)
	}
	record.ID = id.ClientID(clientID)
	record.TenantID = id.TenantID(tenantID)
	record.ClientType = models.ClientType(clientType)
	record.Status = models.Status(status)
	record.Tags = tags
	record.Source = source.String
	record.LastInteractionDate = timePtr(lastInteraction)
	record.BirthDate = timePtr(birthDate)
	if len(address) > 0 {
		if err := json.Unmarshal(address, &record.Address); err != nil {
			return models.ClientRecord{}, fmt.Errorf("decode client address: %w: %w", sentinel.ErrInvalidState, err)
		}
	}
	return record, nil
}

// Migrate creates the client table if missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS directory_clients (
			id                    uuid        PRIMARY KEY,
			tenant_id             uuid        NOT NULL,
			name                  text        NOT NULL,
			document_id           text        NOT NULL,
			client_type           text        NOT NULL,
			status                text        NOT NULL,
			tags                  text[]      NOT NULL DEFAULT '{}',
			source                text,
			address               jsonb       NOT NULL DEFAULT '{}',
			created_at            timestamptz NOT NULL,
			last_interaction_date timestamptz,
			birth_date            timestamptz
		);
		CREATE INDEX IF NOT EXISTS directory_clients_tenant_idx
			ON directory_clients (tenant_id, created_at)`)
	if err != nil {
		return fmt.Errorf("migrate directory_clients: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// nonNilTags keeps pq from encoding a nil slice as NULL.
func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
