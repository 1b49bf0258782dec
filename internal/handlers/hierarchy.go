// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"quizpress/internal/hierarchy"
	"quizpress/internal/models"
)

// --- Generic collection plumbing ---

// listCollection answers with every document in a collection, ids included.
func (a *Admin) listCollection(w http.ResponseWriter, r *http.Request, collection string) {
	docs, err := a.store.Scan(r.Context(), collection)
	if err != nil {
		respondInternal(w, "list "+collection+" failed", err)
		return
	}

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		m, err := docMap(d)
		if err != nil {
			respondInternal(w, "decode "+collection+" document failed", err)
			return
		}
		out = append(out, m)
	}
	respondJSON(w, http.StatusOK, out)
}

// getDoc answers with one document by path id.
func (a *Admin) getDoc(w http.ResponseWriter, r *http.Request, collection string) {
	id := chi.URLParam(r, "id")
	doc, err := a.store.GetByID(r.Context(), collection, id)
	if isNotFound(err) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		respondInternal(w, "get "+collection+" document failed", err)
		return
	}
	m, err := docMap(doc)
	if err != nil {
		respondInternal(w, "decode "+collection+" document failed", err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// updateDoc merges a partial JSON body into one document. The id and
// creation timestamp are server-owned and silently dropped from the
// patch.
func (a *Admin) updateDoc(w http.ResponseWriter, r *http.Request, collection string) {
	id := chi.URLParam(r, "id")

	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	delete(patch, "id")
	delete(patch, "createdAt")
	if len(patch) == 0 {
		respondError(w, http.StatusBadRequest, "empty update")
		return
	}
	if label, ok := patch["label"].(string); ok {
		if msg := validateNodeLabel(label); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
	}
	patch["updatedAt"] = time.Now().UTC()

	err := a.store.Update(r.Context(), collection, id, patch)
	if isNotFound(err) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		respondInternal(w, "update "+collection+" document failed", err)
		return
	}

	doc, err := a.store.GetByID(r.Context(), collection, id)
	if err != nil {
		respondInternal(w, "reload "+collection+" document failed", err)
		return
	}
	m, err := docMap(doc)
	if err != nil {
		respondInternal(w, "decode "+collection+" document failed", err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// deleteDoc removes one document by path id. Store deletes treat a
// missing id as success, so existence is checked with a read first.
func (a *Admin) deleteDoc(w http.ResponseWriter, r *http.Request, collection string) {
	id := chi.URLParam(r, "id")

	_, err := a.store.GetByID(r.Context(), collection, id)
	if isNotFound(err) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		respondInternal(w, "get "+collection+" document failed", err)
		return
	}

	if err := a.store.Delete(r.Context(), collection, id); err != nil {
		respondInternal(w, "delete "+collection+" document failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolver loads the current hierarchy and wraps it in a get-or-create
// resolver for the create handlers.
func (a *Admin) resolver(w http.ResponseWriter, r *http.Request) *hierarchy.Resolver {
	snap, err := hierarchy.Load(r.Context(), a.store)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "content store unavailable")
		return nil
	}
	return hierarchy.NewResolver(a.store, snap, a.aliases)
}

// respondResolved answers a create request: 201 when the node was
// created, 200 when an existing node with the same name was reused.
func respondResolved(w http.ResponseWriter, id string, created bool) {
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]any{"id": id, "created": created})
}

// --- Features ---

func (a *Admin) FeaturesList(w http.ResponseWriter, r *http.Request) {
	a.listCollection(w, r, models.FeaturesCollection)
}

// FeatureCreate resolves a feature by label, creating it when absent.
// Creating a name that already exists reuses the existing node.
func (a *Admin) FeatureCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateNodeLabel(req.Label); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res := a.resolver(w, r)
	if res == nil {
		return
	}
	id, err := res.Feature(r.Context(), req.Label)
	if err != nil {
		respondInternal(w, "create feature failed", err)
		return
	}
	respondResolved(w, id, res.Created > 0)
}

func (a *Admin) FeatureGet(w http.ResponseWriter, r *http.Request) {
	a.getDoc(w, r, models.FeaturesCollection)
}

func (a *Admin) FeatureUpdate(w http.ResponseWriter, r *http.Request) {
	a.updateDoc(w, r, models.FeaturesCollection)
}

func (a *Admin) FeatureDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteDoc(w, r, models.FeaturesCollection)
}

// --- Categories ---

func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	a.listCollection(w, r, models.CategoriesCollection)
}

// CategoryCreate resolves a category by label within a feature. An
// empty featureId falls back to the configured default feature.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label     string `json:"label"`
		FeatureID string `json:"featureId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateNodeLabel(req.Label); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res := a.resolver(w, r)
	if res == nil {
		return
	}

	featureID := req.FeatureID
	if featureID == "" {
		var err error
		featureID, err = res.Feature(r.Context(), a.defaultFeature)
		if err != nil {
			respondInternal(w, "resolve default feature failed", err)
			return
		}
	}

	before := res.Created
	id, err := res.Category(r.Context(), req.Label, featureID)
	if err != nil {
		respondInternal(w, "create category failed", err)
		return
	}
	respondResolved(w, id, res.Created > before)
}

func (a *Admin) CategoryGet(w http.ResponseWriter, r *http.Request) {
	a.getDoc(w, r, models.CategoriesCollection)
}

func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	a.updateDoc(w, r, models.CategoriesCollection)
}

func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteDoc(w, r, models.CategoriesCollection)
}

// --- Topics ---

func (a *Admin) TopicsList(w http.ResponseWriter, r *http.Request) {
	a.listCollection(w, r, models.TopicsCollection)
}

func (a *Admin) TopicCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label      string `json:"label"`
		CategoryID string `json:"categoryId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateNodeLabel(req.Label); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res := a.resolver(w, r)
	if res == nil {
		return
	}
	before := res.Created
	id, err := res.Topic(r.Context(), req.Label, req.CategoryID)
	if err != nil {
		respondInternal(w, "create topic failed", err)
		return
	}
	respondResolved(w, id, res.Created > before)
}

func (a *Admin) TopicGet(w http.ResponseWriter, r *http.Request) {
	a.getDoc(w, r, models.TopicsCollection)
}

func (a *Admin) TopicUpdate(w http.ResponseWriter, r *http.Request) {
	a.updateDoc(w, r, models.TopicsCollection)
}

func (a *Admin) TopicDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteDoc(w, r, models.TopicsCollection)
}

// --- Subtopics ---

func (a *Admin) SubtopicsList(w http.ResponseWriter, r *http.Request) {
	a.listCollection(w, r, models.SubtopicsCollection)
}

func (a *Admin) SubtopicCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label      string `json:"label"`
		CategoryID string `json:"categoryId"`
		TopicID    string `json:"topicId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateNodeLabel(req.Label); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res := a.resolver(w, r)
	if res == nil {
		return
	}
	before := res.Created
	id, err := res.Subtopic(r.Context(), req.Label, req.CategoryID, req.TopicID)
	if err != nil {
		respondInternal(w, "create subtopic failed", err)
		return
	}
	respondResolved(w, id, res.Created > before)
}

func (a *Admin) SubtopicGet(w http.ResponseWriter, r *http.Request) {
	a.getDoc(w, r, models.SubtopicsCollection)
}

func (a *Admin) SubtopicUpdate(w http.ResponseWriter, r *http.Request) {
	a.updateDoc(w, r, models.SubtopicsCollection)
}

func (a *Admin) SubtopicDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteDoc(w, r, models.SubtopicsCollection)
}

// --- Hierarchy tools ---

// Hierarchy answers with the full four-level snapshot, the per-level
// load warnings, and the referential integrity findings.
func (a *Admin) Hierarchy(w http.ResponseWriter, r *http.Request) {
	snap, err := hierarchy.Load(r.Context(), a.store)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "content store unavailable")
		return
	}

	features := make([]map[string]any, 0, len(snap.Features))
	for _, f := range snap.Features {
		features = append(features, nodeMap(f.ID, f))
	}
	categories := make([]map[string]any, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		categories = append(categories, nodeMap(c.ID, c))
	}
	topics := make([]map[string]any, 0, len(snap.Topics))
	for _, t := range snap.Topics {
		topics = append(topics, nodeMap(t.ID, t))
	}
	subtopics := make([]map[string]any, 0, len(snap.Subtopics))
	for _, s := range snap.Subtopics {
		subtopics = append(subtopics, nodeMap(s.ID, s))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"features":   features,
		"categories": categories,
		"topics":     topics,
		"subtopics":  subtopics,
		"warnings":   snap.Warnings,
		"issues":     snap.Issues(),
	})
}

// RefreshCounts recomputes the denormalized counters and answers with
// the number of nodes whose stored count had drifted.
func (a *Admin) RefreshCounts(w http.ResponseWriter, r *http.Request) {
	snap, err := hierarchy.Load(r.Context(), a.store)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "content store unavailable")
		return
	}
	updated, err := hierarchy.RefreshCounts(r.Context(), a.store, snap)
	if err != nil {
		respondInternal(w, "refresh counts failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

// Repair backfills categories that lost their feature reference,
// pointing them at the feature named in the request (by id or label),
// or the configured default when the body names neither.
func (a *Admin) Repair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FeatureID string `json:"featureId"`
		Feature   string `json:"feature"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	res := a.resolver(w, r)
	if res == nil {
		return
	}

	featureID := req.FeatureID
	if featureID == "" {
		name := req.Feature
		if name == "" {
			name = a.defaultFeature
		}
		var err error
		featureID, err = res.Feature(r.Context(), name)
		if err != nil {
			respondInternal(w, "resolve repair feature failed", err)
			return
		}
	}

	if res.Snapshot().FindFeature(featureID) == nil {
		respondError(w, http.StatusBadRequest, "unknown feature")
		return
	}

	repaired, err := hierarchy.RepairCategories(r.Context(), a.store, res.Snapshot(), featureID)
	if err != nil {
		respondInternal(w, "repair categories failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"repaired": repaired, "featureId": featureID})
}
