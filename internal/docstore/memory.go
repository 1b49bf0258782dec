// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by unit tests and by development
// runs without Postgres. Documents are held as encoded JSON so reads
// return copies, never aliased maps.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	order       map[string][]string // insertion order per collection
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]json.RawMessage),
		order:       make(map[string][]string),
	}
}

func (m *Memory) coll(name string) map[string]json.RawMessage {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]json.RawMessage)
		m.collections[name] = c
	}
	return c
}

// Scan returns every document in a collection in insertion order.
func (m *Memory) Scan(_ context.Context, collection string) ([]Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Doc
	for _, id := range m.order[collection] {
		if data, ok := m.collections[collection][id]; ok {
			docs = append(docs, Doc{ID: id, Data: append(json.RawMessage(nil), data...)})
		}
	}
	return docs, nil
}

// Query filters a collection by top-level field equality. Values are
// normalized through a JSON round-trip so typed filter values compare
// against decoded document fields.
func (m *Memory) Query(ctx context.Context, collection string, filters map[string]any) ([]Doc, error) {
	all, err := m.Scan(ctx, collection)
	if err != nil {
		return nil, err
	}

	want := make(map[string]any, len(filters))
	for k, v := range filters {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, err
		}
		want[k] = nv
	}

	var docs []Doc
	for _, d := range all {
		var fields map[string]any
		if err := json.Unmarshal(d.Data, &fields); err != nil {
			return nil, err
		}
		match := true
		for k, v := range want {
			if !reflect.DeepEqual(fields[k], v) {
				match = false
				break
			}
		}
		if match {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// GetByID fetches one document or ErrNotFound. Only the collections
// map is read; coll() mutates it and needs the write lock.
func (m *Memory) GetByID(_ context.Context, collection, id string) (Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return Doc{ID: id, Data: append(json.RawMessage(nil), data...)}, nil
}

// Add stores v under a generated uuid and returns the id.
func (m *Memory) Add(_ context.Context, collection string, v any) (string, error) {
	data, err := marshalFields(v)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.coll(collection)[id] = data
	m.order[collection] = append(m.order[collection], id)
	return id, nil
}

// SetWithID stores v under a caller-chosen id, optionally merging with
// an existing document's top-level fields.
func (m *Memory) SetWithID(_ context.Context, collection, id string, v any, merge bool) error {
	data, err := marshalFields(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	existing, exists := c[id]
	if merge && exists {
		data, err = mergeFields(existing, data)
		if err != nil {
			return err
		}
	}
	c[id] = data
	if !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	return nil
}

// Update applies partial top-level fields to an existing document.
func (m *Memory) Update(_ context.Context, collection, id string, partial map[string]any) error {
	overlay, err := marshalFields(partial)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	existing, ok := c[id]
	if !ok {
		return ErrNotFound
	}
	merged, err := mergeFields(existing, overlay)
	if err != nil {
		return err
	}
	c[id] = merged
	return nil
}

// Delete removes a document. Missing ids are ignored.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(collection, id)
	return nil
}

func (m *Memory) deleteLocked(collection, id string) {
	delete(m.coll(collection), id)
	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// Batch starts an atomic batched delete against the memory store.
func (m *Memory) Batch() Batch {
	return &memoryBatch{store: m}
}

// memoryBatch buffers deletes and applies them under one lock hold,
// which makes the commit atomic with respect to other callers.
type memoryBatch struct {
	store *Memory
	ops   []batchOp
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id})
}

func (b *memoryBatch) Len() int { return len(b.ops) }

func (b *memoryBatch) Commit(_ context.Context) error {
	if len(b.ops) > MaxBatchOps {
		return ErrBatchTooLarge
	}

	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	for _, op := range b.ops {
		b.store.deleteLocked(op.collection, op.id)
	}
	b.ops = nil
	return nil
}

// normalizeValue round-trips v through JSON so comparisons see the
// same types the decoder produces (float64 numbers, etc).
func normalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
