// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quizpress/internal/docstore"
	"quizpress/internal/models"
)

// Seed populates the store with the two default features when the
// features collection is empty. Categories and topics are created on
// demand by the sync engine, so only the top level needs seeding.
func Seed(ctx context.Context, store docstore.Store) error {
	docs, err := store.Scan(ctx, models.FeaturesCollection)
	if err != nil {
		return fmt.Errorf("seed check features: %w", err)
	}
	if len(docs) > 0 {
		slog.Info("store already seeded, skipping")
		return nil
	}

	now := time.Now().UTC()
	defaults := []models.Feature{
		{Name: "quiz", Label: "Quiz", FeatureType: models.FeatureTypeQuiz, Enabled: true, Order: 1, ShowInMenu: true, CreatedAt: now, UpdatedAt: now},
		{Name: "puzzle", Label: "Puzzle", FeatureType: models.FeatureTypePuzzle, Enabled: true, Order: 2, ShowInMenu: true, CreatedAt: now, UpdatedAt: now},
	}
	for _, f := range defaults {
		if _, err := store.Add(ctx, models.FeaturesCollection, f); err != nil {
			return fmt.Errorf("seed feature %s: %w", f.Name, err)
		}
	}

	slog.Info("store seeded with default features", "count", len(defaults))
	return nil
}
