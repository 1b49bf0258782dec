// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"quizpress/internal/bulk"
	"quizpress/internal/importer"
)

// maxImportBytes caps the uploaded CSV size at 32 MB, far above any
// observed real import.
const maxImportBytes = 32 << 20

// importResponse decorates the pipeline report with the rendered
// status line and per-row messages the admin UI shows verbatim.
type importResponse struct {
	*importer.Report
	Summary  string   `json:"summary"`
	Messages []string `json:"messages,omitempty"`
}

// Import runs the CSV pipeline over the raw request body. The optional
// `category` query preselects a category for files without a category
// column; `feature` overrides the configured default feature.
func (a *Admin) Import(w http.ResponseWriter, r *http.Request) {
	opts := importer.Options{
		Category: r.URL.Query().Get("category"),
		Feature:  r.URL.Query().Get("feature"),
		Aliases:  a.aliases,
	}
	if opts.Feature == "" {
		opts.Feature = a.defaultFeature
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	report, err := a.pipeline.Run(r.Context(), body, opts)
	if err != nil {
		// Setup failures (unparseable file, store down) are the
		// client's 4xx or our 5xx; the report carries the failed state.
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, importer.ErrBadUpload):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondInternal(w, "import failed", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, importResponse{
		Report:   report,
		Summary:  report.Summary(),
		Messages: report.Messages(),
	})
}

// ImportUndo reverses the most recent import.
func (a *Admin) ImportUndo(w http.ResponseWriter, r *http.Request) {
	result, err := a.engine.UndoLastImport(r.Context(), nil)
	switch {
	case errors.Is(err, bulk.ErrNoImportRecorded):
		respondError(w, http.StatusNotFound, "no import to undo")
	case errors.Is(err, bulk.ErrManifestNotFound):
		respondError(w, http.StatusConflict, "last import record no longer exists")
	case err != nil:
		respondInternal(w, "undo import failed", err)
	default:
		respondJSON(w, http.StatusOK, result)
	}
}

// Export streams questions as a CSV download, scoped by the optional
// `category` query. The file is assembled in memory first so a store
// failure yields a clean error response instead of a truncated file.
func (a *Admin) Export(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var buf bytes.Buffer
	n, err := a.engine.Export(r.Context(), category, &buf)
	if err != nil {
		respondInternal(w, "export failed", err)
		return
	}

	name := "questions"
	if category != "" {
		name = category
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.csv", name, time.Now().UTC().Format("2006-01-02"))))
	w.Header().Set("X-Row-Count", fmt.Sprint(n))
	w.Write(buf.Bytes())
}

// BulkDelete removes questions in chunked batches, scoped by the
// optional `category` query. Requires `confirm=true`.
func (a *Admin) BulkDelete(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	confirm := r.URL.Query().Get("confirm") == "true"

	result, err := a.engine.BulkDelete(r.Context(), category, confirm, nil)
	switch {
	case errors.Is(err, bulk.ErrConfirmationRequired):
		respondError(w, http.StatusBadRequest, "confirm=true is required")
	case err != nil:
		respondInternal(w, "bulk delete failed", err)
	default:
		respondJSON(w, http.StatusOK, result)
	}
}
