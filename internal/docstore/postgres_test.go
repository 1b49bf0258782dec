// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Integration tests for the Postgres-backed store. Tests are skipped
// if PostgreSQL is not available. The external test package keeps
// internal/database importable here for migrations: database depends
// on docstore for seeding.
package docstore_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"quizpress/internal/database"
	"quizpress/internal/docstore"
)

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "quizpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "quizpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testStore opens the test database, runs migrations, and returns a
// Postgres store scoped to a collection name unique to the test so
// parallel runs do not interfere.
func testStore(t *testing.T) (*docstore.Postgres, string) {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	collection := "test_" + t.Name()
	t.Cleanup(func() {
		db.Exec("DELETE FROM documents WHERE collection = $1", collection)
		db.Close()
	})

	return docstore.NewPostgres(db), collection
}

type testQuestion struct {
	Question string   `json:"question"`
	Category string   `json:"category"`
	Options  []string `json:"options"`
}

func TestPostgresAddGet(t *testing.T) {
	store, coll := testStore(t)
	ctx := context.Background()

	id, err := store.Add(ctx, coll, testQuestion{Question: "q?", Category: "math", Options: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	doc, err := store.GetByID(ctx, coll, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	var q testQuestion
	if err := doc.Decode(&q); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if q.Question != "q?" || q.Category != "math" {
		t.Errorf("got %+v", q)
	}
}

func TestPostgresGetMissing(t *testing.T) {
	store, coll := testStore(t)

	_, err := store.GetByID(context.Background(), coll, "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestPostgresQueryContainment(t *testing.T) {
	store, coll := testStore(t)
	ctx := context.Background()

	store.Add(ctx, coll, testQuestion{Question: "a?", Category: "math"})
	store.Add(ctx, coll, testQuestion{Question: "b?", Category: "math"})
	store.Add(ctx, coll, testQuestion{Question: "c?", Category: "science"})

	docs, err := store.Query(ctx, coll, map[string]any{"category": "math"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("got %d docs, want 2", len(docs))
	}

	docs, err = store.Query(ctx, coll, map[string]any{"category": "math", "question": "a?"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("conjunction: got %d docs, want 1", len(docs))
	}
}

func TestPostgresUpdatePartial(t *testing.T) {
	store, coll := testStore(t)
	ctx := context.Background()

	id, _ := store.Add(ctx, coll, testQuestion{Question: "q?", Category: "math"})

	if err := store.Update(ctx, coll, id, map[string]any{"category": "science"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	doc, _ := store.GetByID(ctx, coll, id)
	var q testQuestion
	doc.Decode(&q)
	if q.Category != "science" || q.Question != "q?" {
		t.Errorf("got %+v, want category updated and question kept", q)
	}

	err := store.Update(ctx, coll, "00000000-0000-0000-0000-000000000000", map[string]any{"category": "x"})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("update missing: got %v, want ErrNotFound", err)
	}
}

func TestPostgresSetWithIDMerge(t *testing.T) {
	store, coll := testStore(t)
	ctx := context.Background()

	if err := store.SetWithID(ctx, coll, "fixed-id", testQuestion{Question: "q?", Category: "math"}, false); err != nil {
		t.Fatalf("SetWithID: %v", err)
	}

	// Merge keeps existing fields the overlay does not name.
	if err := store.SetWithID(ctx, coll, "fixed-id", map[string]any{"category": "science"}, true); err != nil {
		t.Fatalf("SetWithID merge: %v", err)
	}
	doc, _ := store.GetByID(ctx, coll, "fixed-id")
	var q testQuestion
	doc.Decode(&q)
	if q.Question != "q?" || q.Category != "science" {
		t.Errorf("merge: got %+v", q)
	}

	// Replace drops them.
	if err := store.SetWithID(ctx, coll, "fixed-id", map[string]any{"category": "art"}, false); err != nil {
		t.Fatalf("SetWithID replace: %v", err)
	}
	doc, _ = store.GetByID(ctx, coll, "fixed-id")
	q = testQuestion{}
	doc.Decode(&q)
	if q.Question != "" || q.Category != "art" {
		t.Errorf("replace: got %+v", q)
	}
}

func TestPostgresBatchDeleteAtomic(t *testing.T) {
	store, coll := testStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, _ := store.Add(ctx, coll, testQuestion{Question: "q?", Category: "math"})
		ids = append(ids, id)
	}

	batch := store.Batch()
	for _, id := range ids[:3] {
		batch.Delete(coll, id)
	}
	if err := batch.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	docs, _ := store.Scan(ctx, coll)
	if len(docs) != 2 {
		t.Errorf("got %d docs after batch delete, want 2", len(docs))
	}
}

func TestPostgresBatchTooLarge(t *testing.T) {
	store, coll := testStore(t)

	batch := store.Batch()
	for i := 0; i <= docstore.MaxBatchOps; i++ {
		batch.Delete(coll, "some-id")
	}
	if err := batch.Commit(context.Background()); !errors.Is(err, docstore.ErrBatchTooLarge) {
		t.Errorf("got %v, want ErrBatchTooLarge", err)
	}
}
