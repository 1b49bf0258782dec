// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package docstore abstracts the remote document database behind a
// small collection/query/add/update/delete surface plus atomic batched
// deletes. Two implementations exist: Postgres (JSONB documents, the
// production backend) and Memory (unit tests and local development).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxBatchOps is the store's maximum atomic batch size. Callers must
// chunk larger operations; Commit rejects oversized batches.
const MaxBatchOps = 100

var (
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrBatchTooLarge is returned by Commit when a batch exceeds MaxBatchOps.
	ErrBatchTooLarge = fmt.Errorf("docstore: batch exceeds %d operations", MaxBatchOps)
)

// Doc is one document: an opaque id plus its JSON-encoded fields.
type Doc struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document fields into v.
func (d Doc) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Store is the document database adapter. Predicates in Query are
// top-level field equality filters, AND-conjoined.
type Store interface {
	// Scan returns every document in a collection.
	Scan(ctx context.Context, collection string) ([]Doc, error)

	// Query returns documents whose fields match every filter entry.
	Query(ctx context.Context, collection string, filters map[string]any) ([]Doc, error)

	// GetByID fetches one document or ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (Doc, error)

	// Add stores v under a server-generated id and returns the id.
	Add(ctx context.Context, collection string, v any) (string, error)

	// SetWithID stores v under a caller-chosen id. With merge, existing
	// top-level fields not present in v are preserved.
	SetWithID(ctx context.Context, collection, id string, v any, merge bool) error

	// Update applies partial top-level fields to an existing document.
	// Returns ErrNotFound if the id does not exist.
	Update(ctx context.Context, collection, id string, partial map[string]any) error

	// Delete removes one document. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Batch starts an atomic batched delete.
	Batch() Batch
}

// Batch accumulates deletes and commits them atomically. A batch may
// hold at most MaxBatchOps operations.
type Batch interface {
	Delete(collection, id string)
	Len() int
	Commit(ctx context.Context) error
}

// batchOp is one queued batch operation.
type batchOp struct {
	collection string
	id         string
}

// marshalFields encodes v and verifies it is a JSON object, since
// documents are field maps rather than bare values.
func marshalFields(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("document fields must be an object: %w", err)
	}
	return data, nil
}

// mergeFields overlays the top-level keys of overlay onto base.
func mergeFields(base, overlay json.RawMessage) (json.RawMessage, error) {
	merged := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, fmt.Errorf("merge base: %w", err)
		}
	}
	over := map[string]json.RawMessage{}
	if err := json.Unmarshal(overlay, &over); err != nil {
		return nil, fmt.Errorf("merge overlay: %w", err)
	}
	for k, v := range over {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("merge encode: %w", err)
	}
	return out, nil
}
