// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package hierarchy holds the in-memory view of the Feature → Category
// → Topic → Subtopic tree for one admin session, and the sync engine
// that resolves free-text names into canonical node ids. The remote
// store stays the system of record; the snapshot is session-local and
// last-write-wins on conflicts.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quizpress/internal/docstore"
	"quizpress/internal/models"
)

// ErrStoreUnavailable is returned by Load when every collection fetch
// fails. Individual collection failures only degrade to empty slices.
var ErrStoreUnavailable = errors.New("hierarchy: store unavailable")

// Snapshot is the loaded four-level hierarchy. A few hundred nodes at
// most, so lookups stay linear and unindexed.
type Snapshot struct {
	Features   []models.Feature
	Categories []models.Category
	Topics     []models.Topic
	Subtopics  []models.Subtopic

	// Warnings lists collections that failed to load and were
	// degraded to empty, so the caller can surface them.
	Warnings []string
}

// Load fetches all four hierarchy collections. A failing collection is
// degraded to an empty slice with a warning rather than blocking the
// others; only when every fetch fails does Load return
// ErrStoreUnavailable.
func Load(ctx context.Context, store docstore.Store) (*Snapshot, error) {
	snap := &Snapshot{}
	failed := 0

	if docs, err := store.Scan(ctx, models.FeaturesCollection); err != nil {
		snap.warn(models.FeaturesCollection, err)
		failed++
	} else {
		for _, d := range docs {
			var f models.Feature
			if err := d.Decode(&f); err != nil {
				return nil, fmt.Errorf("decode feature %s: %w", d.ID, err)
			}
			f.ID = d.ID
			snap.Features = append(snap.Features, f)
		}
	}

	if docs, err := store.Scan(ctx, models.CategoriesCollection); err != nil {
		snap.warn(models.CategoriesCollection, err)
		failed++
	} else {
		for _, d := range docs {
			var c models.Category
			if err := d.Decode(&c); err != nil {
				return nil, fmt.Errorf("decode category %s: %w", d.ID, err)
			}
			c.ID = d.ID
			snap.Categories = append(snap.Categories, c)
		}
	}

	if docs, err := store.Scan(ctx, models.TopicsCollection); err != nil {
		snap.warn(models.TopicsCollection, err)
		failed++
	} else {
		for _, d := range docs {
			var t models.Topic
			if err := d.Decode(&t); err != nil {
				return nil, fmt.Errorf("decode topic %s: %w", d.ID, err)
			}
			t.ID = d.ID
			snap.Topics = append(snap.Topics, t)
		}
	}

	if docs, err := store.Scan(ctx, models.SubtopicsCollection); err != nil {
		snap.warn(models.SubtopicsCollection, err)
		failed++
	} else {
		for _, d := range docs {
			var s models.Subtopic
			if err := d.Decode(&s); err != nil {
				return nil, fmt.Errorf("decode subtopic %s: %w", d.ID, err)
			}
			s.ID = d.ID
			snap.Subtopics = append(snap.Subtopics, s)
		}
	}

	if failed == 4 {
		return nil, ErrStoreUnavailable
	}
	return snap, nil
}

func (s *Snapshot) warn(collection string, err error) {
	slog.Warn("hierarchy collection failed to load, degrading to empty",
		"collection", collection,
		"error", err,
	)
	s.Warnings = append(s.Warnings, fmt.Sprintf("failed to load %s: %v", collection, err))
}

// FindFeature returns the feature with the given id, or nil.
func (s *Snapshot) FindFeature(id string) *models.Feature {
	for i := range s.Features {
		if s.Features[i].ID == id {
			return &s.Features[i]
		}
	}
	return nil
}

// FindCategory returns the category with the given id, or nil.
func (s *Snapshot) FindCategory(id string) *models.Category {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}

// FindTopic returns the topic with the given id, or nil.
func (s *Snapshot) FindTopic(id string) *models.Topic {
	for i := range s.Topics {
		if s.Topics[i].ID == id {
			return &s.Topics[i]
		}
	}
	return nil
}

// FindSubtopic returns the subtopic with the given id, or nil.
func (s *Snapshot) FindSubtopic(id string) *models.Subtopic {
	for i := range s.Subtopics {
		if s.Subtopics[i].ID == id {
			return &s.Subtopics[i]
		}
	}
	return nil
}

// Issues audits referential integrity across the snapshot and returns
// human-readable findings. Read-only; nothing is repaired here.
func (s *Snapshot) Issues() []string {
	var issues []string

	for _, c := range s.Categories {
		switch {
		case c.FeatureID == "":
			issues = append(issues, fmt.Sprintf("category %q (%s): missing featureId", c.Label, c.ID))
		case s.FindFeature(c.FeatureID) == nil:
			issues = append(issues, fmt.Sprintf("category %q (%s): featureId %q does not resolve", c.Label, c.ID, c.FeatureID))
		}
	}

	for _, t := range s.Topics {
		switch {
		case t.CategoryID == "":
			issues = append(issues, fmt.Sprintf("topic %q (%s): missing categoryId", t.Label, t.ID))
		case s.FindCategory(t.CategoryID) == nil:
			issues = append(issues, fmt.Sprintf("topic %q (%s): categoryId %q does not resolve", t.Label, t.ID, t.CategoryID))
		}
	}

	for _, sub := range s.Subtopics {
		switch {
		case sub.CategoryID == "":
			issues = append(issues, fmt.Sprintf("subtopic %q (%s): missing categoryId", sub.Label, sub.ID))
		case s.FindCategory(sub.CategoryID) == nil:
			issues = append(issues, fmt.Sprintf("subtopic %q (%s): categoryId %q does not resolve", sub.Label, sub.ID, sub.CategoryID))
		}
		if sub.TopicID != "" {
			t := s.FindTopic(sub.TopicID)
			if t == nil {
				issues = append(issues, fmt.Sprintf("subtopic %q (%s): topicId %q does not resolve", sub.Label, sub.ID, sub.TopicID))
			} else if sub.CategoryID != "" && t.CategoryID != sub.CategoryID {
				issues = append(issues, fmt.Sprintf("subtopic %q (%s): topic %q belongs to a different category", sub.Label, sub.ID, t.Label))
			}
		}
	}

	return issues
}
