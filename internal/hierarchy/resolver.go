// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quizpress/internal/docstore"
	"quizpress/internal/models"
	"quizpress/internal/slug"
)

// Resolver implements get-or-create resolution of free-text hierarchy
// names. Created nodes are appended to the snapshot so repeated names
// within one import run reuse the same id instead of creating
// duplicates.
//
// Known race: two concurrent imports can both miss a name and both
// create it. Concurrent admin sessions are outside the assumed usage
// pattern; fixing it would need a unique constraint or CAS create at
// the store level.
type Resolver struct {
	store   docstore.Store
	snap    *Snapshot
	aliases map[string]string // canonical raw name -> target display name
	now     func() time.Time

	// Created counts nodes persisted by this resolver, mostly for
	// tests and import summaries.
	Created int
}

// NewResolver returns a resolver over the given snapshot. The alias
// map absorbs historical naming drift ("kids puzzles" → "Kids
// Learning") and is consulted before any generic match; keys are
// compared case-insensitively.
func NewResolver(store docstore.Store, snap *Snapshot, aliases map[string]string) *Resolver {
	canon := make(map[string]string, len(aliases))
	for k, v := range aliases {
		canon[canonical(k)] = v
	}
	return &Resolver{store: store, snap: snap, aliases: canon, now: time.Now}
}

// Snapshot returns the resolver's working snapshot, including nodes
// created during this run.
func (r *Resolver) Snapshot() *Snapshot {
	return r.snap
}

// canonical normalizes a name for comparison only; display labels keep
// the original casing.
func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// target applies the alias map and returns the display name to resolve.
func (r *Resolver) target(name string) string {
	if mapped, ok := r.aliases[canonical(name)]; ok {
		return mapped
	}
	return strings.TrimSpace(name)
}

// matches reports whether a node identified by its internal name and
// display label answers to the given input.
func matches(input, nodeName, nodeLabel string) bool {
	return slug.Generate(input) == nodeName || canonical(input) == canonical(nodeLabel)
}

// Feature resolves a feature by name, creating it when absent.
func (r *Resolver) Feature(ctx context.Context, name string) (string, error) {
	display := r.target(name)
	if display == "" {
		return "", fmt.Errorf("resolve feature: empty name")
	}

	for i := range r.snap.Features {
		f := &r.snap.Features[i]
		if matches(display, f.Name, f.Label) {
			return f.ID, nil
		}
	}

	key := slug.Generate(display)
	ftype := models.FeatureTypeCustom
	switch key {
	case "quiz":
		ftype = models.FeatureTypeQuiz
	case "puzzle":
		ftype = models.FeatureTypePuzzle
	}

	now := r.now().UTC()
	f := models.Feature{
		Name:        key,
		Label:       display,
		FeatureType: ftype,
		Enabled:     true,
		Order:       len(r.snap.Features) + 1,
		ShowInMenu:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := r.store.Add(ctx, models.FeaturesCollection, f)
	if err != nil {
		return "", fmt.Errorf("create feature %q: %w", display, err)
	}
	f.ID = id
	r.snap.Features = append(r.snap.Features, f)
	r.Created++
	slog.Info("created feature", "name", key, "id", id)
	return id, nil
}

// Category resolves a category by name within a feature, creating it
// when absent. An empty featureID does not block creation: the node is
// created without a parent reference and flagged for later repair by
// the integrity audit.
func (r *Resolver) Category(ctx context.Context, name, featureID string) (string, error) {
	display := r.target(name)
	if display == "" {
		return "", fmt.Errorf("resolve category: empty name")
	}

	for i := range r.snap.Categories {
		c := &r.snap.Categories[i]
		if featureID != "" && c.FeatureID != "" && c.FeatureID != featureID {
			continue
		}
		if matches(display, c.Name, c.Label) {
			return c.ID, nil
		}
	}

	if featureID == "" {
		slog.Warn("creating category without feature reference", "name", display)
	}

	now := r.now().UTC()
	c := models.Category{
		FeatureID:     featureID,
		Name:          slug.Generate(display),
		Label:         display,
		IsPublished:   true,
		DefaultUIMode: models.UIModePlayful,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := r.store.Add(ctx, models.CategoriesCollection, c)
	if err != nil {
		return "", fmt.Errorf("create category %q: %w", display, err)
	}
	c.ID = id
	r.snap.Categories = append(r.snap.Categories, c)
	r.Created++
	slog.Info("created category", "name", c.Name, "id", id, "featureId", featureID)
	return id, nil
}

// Topic resolves a topic by name within a category, creating it when
// absent. An empty name resolves to no topic.
func (r *Resolver) Topic(ctx context.Context, name, categoryID string) (string, error) {
	display := r.target(name)
	if display == "" {
		return "", nil
	}

	for i := range r.snap.Topics {
		t := &r.snap.Topics[i]
		if categoryID != "" && t.CategoryID != "" && t.CategoryID != categoryID {
			continue
		}
		if matches(display, t.Name, t.Label) {
			return t.ID, nil
		}
	}

	if categoryID == "" {
		slog.Warn("creating topic without category reference", "name", display)
	}

	now := r.now().UTC()
	t := models.Topic{
		CategoryID:  categoryID,
		Name:        slug.Generate(display),
		Label:       display,
		SortOrder:   len(r.snap.Topics) + 1,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := r.store.Add(ctx, models.TopicsCollection, t)
	if err != nil {
		return "", fmt.Errorf("create topic %q: %w", display, err)
	}
	t.ID = id
	r.snap.Topics = append(r.snap.Topics, t)
	r.Created++
	slog.Info("created topic", "name", t.Name, "id", id, "categoryId", categoryID)
	return id, nil
}

// Subtopic resolves a subtopic by name within a category, creating it
// when absent. An empty name resolves to no subtopic.
func (r *Resolver) Subtopic(ctx context.Context, name, categoryID, topicID string) (string, error) {
	display := r.target(name)
	if display == "" {
		return "", nil
	}

	for i := range r.snap.Subtopics {
		s := &r.snap.Subtopics[i]
		if categoryID != "" && s.CategoryID != "" && s.CategoryID != categoryID {
			continue
		}
		if matches(display, s.Name, s.Label) {
			return s.ID, nil
		}
	}

	if categoryID == "" {
		slog.Warn("creating subtopic without category reference", "name", display)
	}

	now := r.now().UTC()
	s := models.Subtopic{
		CategoryID:  categoryID,
		TopicID:     topicID,
		Name:        slug.Generate(display),
		Label:       display,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := r.store.Add(ctx, models.SubtopicsCollection, s)
	if err != nil {
		return "", fmt.Errorf("create subtopic %q: %w", display, err)
	}
	s.ID = id
	r.snap.Subtopics = append(r.snap.Subtopics, s)
	r.Created++
	slog.Info("created subtopic", "name", s.Name, "id", id, "categoryId", categoryID)
	return id, nil
}
