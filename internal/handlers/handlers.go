// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the admin API.
// Handlers are grouped by concern (hierarchy CRUD, import/export) and
// receive their dependencies through the Admin struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quizpress/internal/bulk"
	"quizpress/internal/docstore"
	"quizpress/internal/importer"
	"quizpress/internal/state"
)

// Admin groups all admin API handlers and their dependencies.
type Admin struct {
	store          docstore.Store
	pipeline       *importer.Pipeline
	engine         *bulk.Engine
	defaultFeature string
	aliases        map[string]string
}

// NewAdmin creates the admin handler group. defaultFeature names the
// feature imported categories hang off when the upload does not say;
// aliases maps historical category names to canonical ones.
func NewAdmin(store docstore.Store, pointer state.LastImport, defaultFeature string, aliases map[string]string) *Admin {
	return &Admin{
		store:          store,
		pipeline:       importer.New(store, pointer),
		engine:         bulk.NewEngine(store, pointer),
		defaultFeature: defaultFeature,
		aliases:        aliases,
	}
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// respondError writes a JSON error body. Internal errors are logged
// with detail and returned to the client as a generic message.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondInternal logs err and answers with an opaque 500.
func respondInternal(w http.ResponseWriter, op string, err error) {
	slog.Error(op, "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// decodeBody decodes a JSON request body into v, rejecting unknown
// payload shapes with a client error.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// docMap flattens a stored document into a JSON object that carries
// its id alongside the document fields.
func docMap(d docstore.Doc) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(d.Data, &m); err != nil {
		return nil, err
	}
	m["id"] = d.ID
	return m, nil
}

// nodeMap does the same for a decoded model carrying its id out of band.
func nodeMap(id string, v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"id": id}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"id": id}
	}
	m["id"] = id
	return m
}

// isNotFound reports whether err is the store's missing-document error.
func isNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}
