// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Postgres stores documents in a single JSONB-backed table, one row
// per document keyed by (collection, id). The GIN index on data makes
// the containment queries behind Query cheap enough for admin use.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Store backed by the given database handle.
// The schema is managed by the goose migrations in internal/database.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Scan returns every document in a collection, oldest first.
func (p *Postgres) Scan(ctx context.Context, collection string) ([]Doc, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY created_at, id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	defer rows.Close()
	return collectDocs(rows, collection)
}

// Query filters by top-level field equality using JSONB containment,
// so all predicates are AND-conjoined in a single index-assisted scan.
func (p *Postgres) Query(ctx context.Context, collection string, filters map[string]any) ([]Doc, error) {
	if len(filters) == 0 {
		return p.Scan(ctx, collection)
	}

	probe, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("query %s: encode filters: %w", collection, err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY created_at, id
	`, collection, string(probe))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()
	return collectDocs(rows, collection)
}

// GetByID fetches one document or ErrNotFound.
func (p *Postgres) GetByID(ctx context.Context, collection, id string) (Doc, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT data FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return Doc{}, ErrNotFound
	}
	if err != nil {
		return Doc{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Doc{ID: id, Data: data}, nil
}

// Add stores v under a generated uuid and returns the id.
func (p *Postgres) Add(ctx context.Context, collection string, v any) (string, error) {
	data, err := marshalFields(v)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
	`, collection, id, string(data))
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return id, nil
}

// SetWithID upserts a document under a caller-chosen id. With merge,
// existing top-level fields not present in v survive the write.
func (p *Postgres) SetWithID(ctx context.Context, collection, id string, v any, merge bool) error {
	data, err := marshalFields(v)
	if err != nil {
		return err
	}

	var set string
	if merge {
		set = `data = documents.data || EXCLUDED.data, updated_at = NOW()`
	} else {
		set = `data = EXCLUDED.data, updated_at = NOW()`
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET `+set,
		collection, id, string(data))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update applies partial top-level fields to an existing document.
func (p *Postgres) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	overlay, err := marshalFields(partial)
	if err != nil {
		return err
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, collection, id, string(overlay))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document. Missing ids are ignored.
func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	_, err := p.db.ExecContext(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Batch starts an atomic batched delete backed by one transaction.
func (p *Postgres) Batch() Batch {
	return &postgresBatch{db: p.db}
}

type postgresBatch struct {
	db  *sql.DB
	ops []batchOp
}

func (b *postgresBatch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id})
}

func (b *postgresBatch) Len() int { return len(b.ops) }

// Commit deletes every queued document inside a single transaction.
func (b *postgresBatch) Commit(ctx context.Context) error {
	if len(b.ops) > MaxBatchOps {
		return ErrBatchTooLarge
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("batch begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2`)
	if err != nil {
		return fmt.Errorf("batch prepare: %w", err)
	}
	defer stmt.Close()

	for _, op := range b.ops {
		if _, err := stmt.ExecContext(ctx, op.collection, op.id); err != nil {
			return fmt.Errorf("batch delete %s/%s: %w", op.collection, op.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("batch commit: %w", err)
	}
	b.ops = nil
	return nil
}

// collectDocs drains a (id, data) rowset into Docs.
func collectDocs(rows *sql.Rows, collection string) ([]Doc, error) {
	var docs []Doc
	for rows.Next() {
		var d Doc
		var data []byte
		if err := rows.Scan(&d.ID, &data); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		d.Data = data
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
