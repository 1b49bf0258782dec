// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package bulk reverses the most recent import and performs
// category-scoped export and deletion. Deletes go through the store's
// atomic batch primitive in sequential chunks of docstore.MaxBatchOps,
// so progress can be reported between commits and a mid-run failure
// reports exactly how much completed.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"quizpress/internal/csvio"
	"quizpress/internal/docstore"
	"quizpress/internal/models"
	"quizpress/internal/state"
)

var (
	// ErrNoImportRecorded means the last-import pointer is empty.
	ErrNoImportRecorded = errors.New("bulk: no import recorded")
	// ErrManifestNotFound means the pointer references a deleted manifest.
	ErrManifestNotFound = errors.New("bulk: import manifest not found")
	// ErrConfirmationRequired guards destructive bulk deletion.
	ErrConfirmationRequired = errors.New("bulk: confirmation required")
)

// ExportHeader is the column set written by Export, matching the
// import pipeline's recognized columns.
var ExportHeader = []string{"id", "question", "category", "options", "correctAnswer", "difficulty"}

// Progress reports completion between chunk commits.
type Progress func(done, total int)

// Engine runs undo, export, and bulk-delete against the store.
type Engine struct {
	store   docstore.Store
	pointer state.LastImport
}

// NewEngine returns an Engine over the given store and pointer.
func NewEngine(store docstore.Store, pointer state.LastImport) *Engine {
	return &Engine{store: store, pointer: pointer}
}

// UndoResult summarizes one undo attempt.
type UndoResult struct {
	ManifestID string `json:"manifestId"`
	Deleted    int    `json:"deleted"`
	Total      int    `json:"total"`
}

// UndoLastImport deletes every content item recorded by the most
// recent import manifest, then removes the manifest and clears the
// pointer. A chunk failure halts further chunks and reports how many
// deletions committed; the pointer is left intact so the undo can be
// retried.
func (e *Engine) UndoLastImport(ctx context.Context, progress Progress) (*UndoResult, error) {
	manifestID, err := e.pointer.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read last-import pointer: %w", err)
	}
	if manifestID == "" {
		return nil, ErrNoImportRecorded
	}

	doc, err := e.store.GetByID(ctx, models.ImportLogsCollection, manifestID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrManifestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch manifest %s: %w", manifestID, err)
	}
	var manifest models.ImportManifest
	if err := doc.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", manifestID, err)
	}

	result := &UndoResult{ManifestID: manifestID, Total: len(manifest.InsertedIDs)}
	result.Deleted, err = e.deleteChunked(ctx, models.QuestionsCollection, manifest.InsertedIDs, progress)
	if err != nil {
		return result, fmt.Errorf("undo import %s after %d of %d deletions: %w",
			manifestID, result.Deleted, result.Total, err)
	}

	// The content is gone; losing the manifest record is tolerable.
	if err := e.store.Delete(ctx, models.ImportLogsCollection, manifestID); err != nil {
		slog.Warn("failed to delete import manifest", "manifest", manifestID, "error", err)
	}
	if err := e.pointer.Clear(ctx); err != nil {
		return result, fmt.Errorf("clear last-import pointer: %w", err)
	}

	slog.Info("import undone", "manifest", manifestID, "deleted", result.Deleted)
	return result, nil
}

// Export serializes questions (category-scoped, or all when category
// is empty) to CSV and returns the row count. Read-only.
func (e *Engine) Export(ctx context.Context, category string, w io.Writer) (int, error) {
	docs, err := e.queryQuestions(ctx, category)
	if err != nil {
		return 0, err
	}

	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		var q models.Question
		if err := d.Decode(&q); err != nil {
			return 0, fmt.Errorf("decode question %s: %w", d.ID, err)
		}
		rows = append(rows, []string{
			d.ID,
			q.Question,
			q.Category,
			csvio.JoinList(q.Options),
			q.CorrectAnswer,
			q.Difficulty,
		})
	}

	if err := csvio.Write(w, ExportHeader, rows); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(rows), nil
}

// DeleteResult summarizes one bulk deletion.
type DeleteResult struct {
	Deleted        int  `json:"deleted"`
	Total          int  `json:"total"`
	PointerCleared bool `json:"pointerCleared"`
}

// BulkDelete removes questions category-scoped, or all when category
// is empty. The operation is irreversible, so confirm must be set.
// Deleting everything also clears the last-import pointer, since the
// ids a pending undo references no longer exist.
func (e *Engine) BulkDelete(ctx context.Context, category string, confirm bool, progress Progress) (*DeleteResult, error) {
	if !confirm {
		return nil, ErrConfirmationRequired
	}

	docs, err := e.queryQuestions(ctx, category)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	result := &DeleteResult{Total: len(ids)}
	result.Deleted, err = e.deleteChunked(ctx, models.QuestionsCollection, ids, progress)
	if err != nil {
		return result, fmt.Errorf("bulk delete after %d of %d deletions: %w",
			result.Deleted, result.Total, err)
	}

	if category == "" {
		if err := e.pointer.Clear(ctx); err != nil {
			return result, fmt.Errorf("clear last-import pointer: %w", err)
		}
		result.PointerCleared = true
	}

	slog.Info("bulk delete completed", "category", category, "deleted", result.Deleted)
	return result, nil
}

func (e *Engine) queryQuestions(ctx context.Context, category string) ([]docstore.Doc, error) {
	if category == "" {
		docs, err := e.store.Scan(ctx, models.QuestionsCollection)
		if err != nil {
			return nil, fmt.Errorf("scan questions: %w", err)
		}
		return docs, nil
	}
	docs, err := e.store.Query(ctx, models.QuestionsCollection, map[string]any{"category": category})
	if err != nil {
		return nil, fmt.Errorf("query questions by category: %w", err)
	}
	return docs, nil
}

// deleteChunked commits ceil(len(ids)/MaxBatchOps) atomic batches
// strictly in sequence. Sequential commits bound the store's peak
// write load and let progress report accurately between chunks.
func (e *Engine) deleteChunked(ctx context.Context, collection string, ids []string, progress Progress) (int, error) {
	deleted := 0
	for start := 0; start < len(ids); start += docstore.MaxBatchOps {
		end := min(start+docstore.MaxBatchOps, len(ids))

		batch := e.store.Batch()
		for _, id := range ids[start:end] {
			batch.Delete(collection, id)
		}
		if err := batch.Commit(ctx); err != nil {
			return deleted, fmt.Errorf("commit delete batch: %w", err)
		}
		deleted = end
		if progress != nil {
			progress(deleted, len(ids))
		}
	}
	return deleted, nil
}
