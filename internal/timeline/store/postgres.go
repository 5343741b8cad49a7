package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"crmdir/internal/timeline"
	id "crmdir/pkg/domain"
	"crmdir/pkg/platform/sentinel"
)

// PostgresStore keeps every timeline record as a jsonb document tagged with
// its kind:
//
//	timeline_records(id uuid, tenant_id uuid, client_id uuid, kind text, doc jsonb, seq bigserial)
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed timeline store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add writes items for the client, replacing any with the same id.
func (s *PostgresStore) Add(ctx context.Context, tenantID id.TenantID, clientID id.ClientID, items ...timeline.Item) error {
	for _, it := range items {
		doc, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", it.Kind(), err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO timeline_records (id, tenant_id, client_id, kind, doc)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
			uuid.UUID(it.RecordID()), uuid.UUID(tenantID), uuid.UUID(clientID), string(it.Kind()), doc)
		if err != nil {
			return fmt.Errorf("save %s record: %w", it.Kind(), err)
		}
	}
	return nil
}

func (s *PostgresStore) Interactions(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Interaction, error) {
	return listKind[timeline.Interaction](ctx, s.db, tenantID, clientID, timeline.KindInteraction)
}

func (s *PostgresStore) Transactions(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Transaction, error) {
	return listKind[timeline.Transaction](ctx, s.db, tenantID, clientID, timeline.KindTransaction)
}

func (s *PostgresStore) Projects(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Project, error) {
	return listKind[timeline.Project](ctx, s.db, tenantID, clientID, timeline.KindProject)
}

func (s *PostgresStore) Quotes(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Quote, error) {
	return listKind[timeline.Quote](ctx, s.db, tenantID, clientID, timeline.KindQuote)
}

func (s *PostgresStore) Meetings(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Meeting, error) {
	return listKind[timeline.Meeting](ctx, s.db, tenantID, clientID, timeline.KindMeeting)
}

func (s *PostgresStore) Tasks(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Task, error) {
	return listKind[timeline.Task](ctx, s.db, tenantID, clientID, timeline.KindTask)
}

func listKind[T any](ctx context.Context, db *sql.DB, tenantID id.TenantID, clientID id.ClientID, kind timeline.Kind) ([]T, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT doc FROM timeline_records
		WHERE tenant_id = $1 AND client_id = $2 AND kind = $3
		ORDER BY seq`, uuid.UUID(tenantID), uuid.UUID(clientID), string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", kind, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s record: %w: %w", kind, sentinel.ErrInvalidState, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", kind, err)
	}
	return out, nil
}

// Migrate creates the records table if missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS timeline_records (
			id        uuid      PRIMARY KEY,
			tenant_id uuid      NOT NULL,
			client_id uuid      NOT NULL,
			kind      text      NOT NULL,
			doc       jsonb     NOT NULL,
			seq       bigserial NOT NULL
		);
		CREATE INDEX IF NOT EXISTS timeline_records_owner_idx
			ON timeline_records (tenant_id, client_id, kind, seq)`)
	if err != nil {
		return fmt.Errorf("migrate timeline_records: %w", err)
	}
	return nil
}
