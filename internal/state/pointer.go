// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// lastImportKey is the single durable slot naming the manifest of the
// most recent import. One slot, not a stack: only one undo level is
// supported, and the pointer survives restarts until an undo or a
// delete-all clears it.
const lastImportKey = "quizpress:last_import_id"

// LastImport is the durable last-import pointer. Get returns "" when
// no import has been recorded.
type LastImport interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, manifestID string) error
	Clear(ctx context.Context) error
}

// ValkeyPointer stores the pointer in Valkey.
type ValkeyPointer struct {
	client *redis.Client
}

// NewValkeyPointer returns a LastImport backed by the given client.
func NewValkeyPointer(client *redis.Client) *ValkeyPointer {
	return &ValkeyPointer{client: client}
}

func (p *ValkeyPointer) Get(ctx context.Context) (string, error) {
	id, err := p.client.Get(ctx, lastImportKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get last import pointer: %w", err)
	}
	return id, nil
}

func (p *ValkeyPointer) Set(ctx context.Context, manifestID string) error {
	// No TTL — the pointer persists until undo or delete-all.
	if err := p.client.Set(ctx, lastImportKey, manifestID, 0).Err(); err != nil {
		return fmt.Errorf("set last import pointer: %w", err)
	}
	return nil
}

func (p *ValkeyPointer) Clear(ctx context.Context) error {
	if err := p.client.Del(ctx, lastImportKey).Err(); err != nil {
		return fmt.Errorf("clear last import pointer: %w", err)
	}
	return nil
}

// MemoryPointer is an in-process LastImport for tests and local runs
// without Valkey.
type MemoryPointer struct {
	mu sync.Mutex
	id string
}

// NewMemoryPointer returns an empty in-memory pointer.
func NewMemoryPointer() *MemoryPointer {
	return &MemoryPointer{}
}

func (p *MemoryPointer) Get(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id, nil
}

func (p *MemoryPointer) Set(_ context.Context, manifestID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.id = manifestID
	return nil
}

func (p *MemoryPointer) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.id = ""
	return nil
}
