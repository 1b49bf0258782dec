// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"fmt"
	"time"

	"quizpress/internal/docstore"
	"quizpress/internal/models"
)

// ContentCount runs a filtered count against a content collection,
// e.g. questions where category == node name. O(content size) per
// call, so it backs the explicit refresh-counts action only — loads
// display the stored denormalized counters instead.
func ContentCount(ctx context.Context, store docstore.Store, collection, field, value string) (int, error) {
	docs, err := store.Query(ctx, collection, map[string]any{field: value})
	if err != nil {
		return 0, fmt.Errorf("count %s by %s: %w", collection, field, err)
	}
	return len(docs), nil
}

// RefreshCounts recomputes every denormalized counter — quizCount per
// category and subtopic, subtopicCount per topic — and persists the
// ones that drifted. Returns the number of nodes updated. The counters
// are display caches: nothing correctness-sensitive reads them.
func RefreshCounts(ctx context.Context, store docstore.Store, snap *Snapshot) (int, error) {
	updated := 0
	now := time.Now().UTC()

	for i := range snap.Categories {
		c := &snap.Categories[i]
		n, err := ContentCount(ctx, store, models.QuestionsCollection, "category", c.Name)
		if err != nil {
			return updated, err
		}
		if n != c.QuizCount {
			err := store.Update(ctx, models.CategoriesCollection, c.ID, map[string]any{
				"quizCount": n,
				"updatedAt": now,
			})
			if err != nil {
				return updated, fmt.Errorf("refresh category %s: %w", c.ID, err)
			}
			c.QuizCount = n
			updated++
		}
	}

	for i := range snap.Subtopics {
		s := &snap.Subtopics[i]
		n, err := ContentCount(ctx, store, models.QuestionsCollection, "subtopic", s.Name)
		if err != nil {
			return updated, err
		}
		if n != s.QuizCount {
			err := store.Update(ctx, models.SubtopicsCollection, s.ID, map[string]any{
				"quizCount": n,
				"updatedAt": now,
			})
			if err != nil {
				return updated, fmt.Errorf("refresh subtopic %s: %w", s.ID, err)
			}
			s.QuizCount = n
			updated++
		}
	}

	for i := range snap.Topics {
		t := &snap.Topics[i]
		n, err := ContentCount(ctx, store, models.SubtopicsCollection, "topicId", t.ID)
		if err != nil {
			return updated, err
		}
		if n != t.SubtopicCount {
			err := store.Update(ctx, models.TopicsCollection, t.ID, map[string]any{
				"subtopicCount": n,
				"updatedAt":     now,
			})
			if err != nil {
				return updated, fmt.Errorf("refresh topic %s: %w", t.ID, err)
			}
			t.SubtopicCount = n
			updated++
		}
	}

	return updated, nil
}

// RepairCategories backfills categories that lost (or never had) a
// feature reference, pointing them at the given feature. This is the
// repair half of the integrity audit: Issues finds them, Repair fixes
// them.
func RepairCategories(ctx context.Context, store docstore.Store, snap *Snapshot, featureID string) (int, error) {
	if snap.FindFeature(featureID) == nil {
		return 0, fmt.Errorf("repair categories: feature %q not in snapshot", featureID)
	}

	repaired := 0
	now := time.Now().UTC()
	for i := range snap.Categories {
		c := &snap.Categories[i]
		if c.FeatureID != "" {
			continue
		}
		err := store.Update(ctx, models.CategoriesCollection, c.ID, map[string]any{
			"featureId": featureID,
			"updatedAt": now,
		})
		if err != nil {
			return repaired, fmt.Errorf("repair category %s: %w", c.ID, err)
		}
		c.FeatureID = featureID
		repaired++
	}
	return repaired, nil
}
