package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"crmdir/internal/location/models"
	"crmdir/pkg/platform/sentinel"
)

// Postgres reads location documents from a jsonb collection table:
//
//	location_documents(level text, id text, parent_id text, doc jsonb, PRIMARY KEY (level, id))
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed location store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ChildrenOf(ctx context.Context, level models.Level, parentID string) ([]models.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc FROM location_documents
		WHERE level = $1 AND parent_id = $2
		ORDER BY id`, string(level), parentID)
	if err != nil {
		return nil, fmt.Errorf("query %s children of %q: %w", level, parentID, err)
	}
	defer rows.Close()

	var out []models.Entity
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan location document: %w", err)
		}
		var e models.Entity
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode location document: %w: %w", sentinel.ErrInvalidState, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate location documents: %w", err)
	}
	return out, nil
}

// Upsert writes entities at level as documents.
func (s *Postgres) Upsert(ctx context.Context, level models.Level, entities ...models.Entity) error {
	for _, e := range entities {
		doc, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode location document: %w", err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO location_documents (level, id, parent_id, doc)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (level, id) DO UPDATE SET
				parent_id = EXCLUDED.parent_id,
				doc = EXCLUDED.doc`,
			string(level), e.ID, e.ParentID, doc)
		if err != nil {
			return fmt.Errorf("upsert location %s/%s: %w", level, e.ID, err)
		}
	}
	return nil
}

// Migrate creates the collection table if missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS location_documents (
			level     text  NOT NULL,
			id        text  NOT NULL,
			parent_id text  NOT NULL DEFAULT '',
			doc       jsonb NOT NULL,
			PRIMARY KEY (level, id)
		);
		CREATE INDEX IF NOT EXISTS location_documents_parent_idx
			ON location_documents (level, parent_id)`)
	if err != nil {
		return fmt.Errorf("migrate location_documents: %w", err)
	}
	return nil
}
