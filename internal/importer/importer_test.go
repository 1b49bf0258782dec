// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quizpress/internal/docstore"
	"quizpress/internal/models"
	"quizpress/internal/state"
)

func runImport(t *testing.T, store docstore.Store, pointer state.LastImport, csv string, opts Options) *Report {
	t.Helper()
	report, err := New(store, pointer).Run(context.Background(), strings.NewReader(csv), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.State != StateCompleted {
		t.Fatalf("state = %s, want completed", report.State)
	}
	return report
}

func TestImportIntraFileDuplicate(t *testing.T) {
	// The documented example scenario: second row duplicates the
	// first within the same file.
	csv := "question,category,options,correctAnswer,difficulty\n" +
		"What is 2+2?,math,3;4;5,4,easy\n" +
		"What is 2+2?,math,3;4;5,4,easy\n" +
		"What color is the sky?,science,blue;red;green,blue,easy\n"

	store := docstore.NewMemory()
	pointer := state.NewMemoryPointer()
	report := runImport(t, store, pointer, csv, Options{})

	if report.TotalRows != 3 || report.Inserted != 2 || report.Skipped != 1 || report.Errors != 0 {
		t.Errorf("report = total %d, inserted %d, skipped %d, errors %d; want 3/2/1/0",
			report.TotalRows, report.Inserted, report.Skipped, report.Errors)
	}
	if len(report.Issues) != 1 || report.Issues[0].Code != CodeDuplicateQuestionText || report.Issues[0].Row != 2 {
		t.Errorf("unexpected issues: %v", report.Issues)
	}

	docs, _ := store.Scan(context.Background(), models.QuestionsCollection)
	if len(docs) != 2 {
		t.Errorf("store holds %d questions, want 2", len(docs))
	}
}

func TestImportSkipsExistingQuestionText(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	store.Add(ctx, models.QuestionsCollection, models.Question{
		Question: "What is 2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4",
	})

	csv := "question,category,options,correctAnswer\n" +
		"What is 2+2?,math,3;4,4\n"
	report := runImport(t, store, state.NewMemoryPointer(), csv, Options{})

	if report.Inserted != 0 || report.Skipped != 1 {
		t.Errorf("inserted %d, skipped %d; want 0/1", report.Inserted, report.Skipped)
	}
	docs, _ := store.Scan(ctx, models.QuestionsCollection)
	if len(docs) != 1 {
		t.Errorf("a second copy was written: %d docs", len(docs))
	}
}

func TestImportSkipsByExternalID(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	store.Add(ctx, models.QuestionsCollection, models.Question{
		Question: "Old phrasing?", ExternalID: "ext-1",
		Options: []string{"a", "b"}, CorrectAnswer: "a",
	})

	// Same external id, different text: still a duplicate.
	csv := "id,question,category,options,correctAnswer\n" +
		"ext-1,New phrasing?,math,a;b,a\n"
	report := runImport(t, store, state.NewMemoryPointer(), csv, Options{})

	if report.Skipped != 1 || report.Inserted != 0 {
		t.Errorf("inserted %d, skipped %d; want 0/1", report.Inserted, report.Skipped)
	}
	if report.Issues[0].Code != CodeDuplicateExternalID {
		t.Errorf("code = %s, want DuplicateExternalId", report.Issues[0].Code)
	}
}

func TestImportValidationRules(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		opts Options
		code Code
	}{
		{
			name: "missing question",
			csv:  "question,category,options,correctAnswer\n,math,a;b,a\n",
			code: CodeMissingQuestion,
		},
		{
			name: "empty category column",
			csv:  "question,category,options,correctAnswer\nq?,,a;b,a\n",
			code: CodeMissingCategory,
		},
		{
			name: "no category anywhere",
			csv:  "question,options,correctAnswer\nq?,a;b,a\n",
			code: CodeNoCategoryProvided,
		},
		{
			name: "single option",
			csv:  "question,category,options,correctAnswer\nq?,math,only,only\n",
			code: CodeInsufficientOptions,
		},
		{
			name: "single option with other fields valid",
			csv:  "question,category,options,correctAnswer,difficulty\nValid question?,math,4,4,easy\n",
			code: CodeInsufficientOptions,
		},
		{
			name: "missing correct answer",
			csv:  "question,category,options,correctAnswer\nq?,math,a;b,\n",
			code: CodeMissingCorrectAnswer,
		},
		{
			name: "correct answer not in options",
			csv:  "question,category,options,correctAnswer\nq?,math,a;b,c\n",
			code: CodeCorrectAnswerNotInOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := docstore.NewMemory()
			report := runImport(t, store, state.NewMemoryPointer(), tt.csv, tt.opts)

			if report.Errors != 1 || report.Inserted != 0 {
				t.Fatalf("errors %d, inserted %d; want 1/0", report.Errors, report.Inserted)
			}
			if report.Issues[0].Code != tt.code {
				t.Errorf("code = %s, want %s", report.Issues[0].Code, tt.code)
			}

			docs, _ := store.Scan(context.Background(), models.QuestionsCollection)
			if len(docs) != 0 {
				t.Errorf("rejected row was written")
			}
		})
	}
}

func TestImportRowErrorsDoNotAbortBatch(t *testing.T) {
	csv := "question,category,options,correctAnswer\n" +
		"good one?,math,a;b,a\n" +
		",math,a;b,a\n" +
		"good two?,math,a;b,b\n"

	store := docstore.NewMemory()
	report := runImport(t, store, state.NewMemoryPointer(), csv, Options{})

	if report.Inserted != 2 || report.Errors != 1 {
		t.Errorf("inserted %d, errors %d; want 2/1", report.Inserted, report.Errors)
	}
}

func TestImportPreselectedCategory(t *testing.T) {
	csv := "question,options,correctAnswer\nq?,a;b,a\n"

	store := docstore.NewMemory()
	report := runImport(t, store, state.NewMemoryPointer(), csv, Options{Category: "Geography"})

	if report.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", report.Inserted)
	}

	ctx := context.Background()
	docs, _ := store.Scan(ctx, models.QuestionsCollection)
	var q models.Question
	docs[0].Decode(&q)
	if q.Category != "geography" {
		t.Errorf("category = %q, want geography", q.Category)
	}
	if q.CategoryID == "" {
		t.Error("categoryId should be set")
	}

	// The category node was auto-created under the default feature.
	cats, _ := store.Scan(ctx, models.CategoriesCollection)
	if len(cats) != 1 {
		t.Fatalf("got %d categories, want 1", len(cats))
	}
	var c models.Category
	cats[0].Decode(&c)
	if c.FeatureID == "" {
		t.Error("created category should reference the feature")
	}
}

func TestImportResolvesTopicAndSubtopicColumns(t *testing.T) {
	csv := "question,category,topic,subtopic,options,correctAnswer\n" +
		"q1?,math,Algebra,Equations,a;b,a\n" +
		"q2?,math,Algebra,Equations,a;b,b\n"

	store := docstore.NewMemory()
	report := runImport(t, store, state.NewMemoryPointer(), csv, Options{})
	if report.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2", report.Inserted)
	}

	ctx := context.Background()
	topics, _ := store.Scan(ctx, models.TopicsCollection)
	subs, _ := store.Scan(ctx, models.SubtopicsCollection)
	// Repeated names within one run reuse the created nodes.
	if len(topics) != 1 || len(subs) != 1 {
		t.Errorf("got %d topics and %d subtopics, want 1 and 1", len(topics), len(subs))
	}

	docs, _ := store.Scan(ctx, models.QuestionsCollection)
	var q models.Question
	docs[0].Decode(&q)
	if q.Topic != "algebra" || q.TopicID == "" {
		t.Errorf("topic = %q/%q, want algebra with id", q.Topic, q.TopicID)
	}
	if q.Subtopic != "equations" || q.SubtopicID == "" {
		t.Errorf("subtopic = %q/%q, want equations with id", q.Subtopic, q.SubtopicID)
	}
}

func TestImportWritesManifestAndPointer(t *testing.T) {
	csv := "question,category,options,correctAnswer\nq?,math,a;b,a\n"

	ctx := context.Background()
	store := docstore.NewMemory()
	pointer := state.NewMemoryPointer()
	report := runImport(t, store, pointer, csv, Options{})

	if report.ManifestID == "" {
		t.Fatal("manifest id not recorded")
	}
	ptr, _ := pointer.Get(ctx)
	if ptr != report.ManifestID {
		t.Errorf("pointer = %q, want %q", ptr, report.ManifestID)
	}

	doc, err := store.GetByID(ctx, models.ImportLogsCollection, report.ManifestID)
	if err != nil {
		t.Fatalf("manifest not persisted: %v", err)
	}
	var m models.ImportManifest
	doc.Decode(&m)
	if m.Count != 1 || len(m.InsertedIDs) != 1 {
		t.Errorf("manifest = count %d, ids %v", m.Count, m.InsertedIDs)
	}
	if m.Category != models.CategoryFromCSV {
		t.Errorf("manifest category = %q, want %q", m.Category, models.CategoryFromCSV)
	}
	if m.InsertedIDs[0] != report.InsertedIDs[0] {
		t.Error("manifest ids do not match report")
	}
}

func TestImportNothingInsertedLeavesPointerAlone(t *testing.T) {
	ctx := context.Background()
	pointer := state.NewMemoryPointer()
	pointer.Set(ctx, "previous-manifest")

	// Every row invalid: no manifest, pointer untouched.
	csv := "question,category,options,correctAnswer\n,math,a;b,a\n"
	store := docstore.NewMemory()
	runImport(t, store, pointer, csv, Options{})

	ptr, _ := pointer.Get(ctx)
	if ptr != "previous-manifest" {
		t.Errorf("pointer = %q, want previous-manifest", ptr)
	}
	logs, _ := store.Scan(ctx, models.ImportLogsCollection)
	if len(logs) != 0 {
		t.Errorf("manifest written for empty import")
	}
}

func TestImportUnparseableFileFails(t *testing.T) {
	csv := "question,category\n\"unterminated,math\n"
	report, err := New(docstore.NewMemory(), state.NewMemoryPointer()).
		Run(context.Background(), strings.NewReader(csv), Options{})
	if err == nil {
		t.Fatal("expected setup error")
	}
	if !errors.Is(err, ErrBadUpload) {
		t.Errorf("err = %v, want ErrBadUpload in the chain", err)
	}
	if report.State != StateFailed {
		t.Errorf("state = %s, want failed", report.State)
	}
}

// scanFailStore simulates a backing-store outage during the dedup load.
type scanFailStore struct {
	docstore.Store
}

func (s *scanFailStore) Scan(ctx context.Context, collection string) ([]docstore.Doc, error) {
	return nil, errors.New("store down")
}

func TestImportDedupLoadFailureIsNotBadUpload(t *testing.T) {
	csv := "question,category,options,correctAnswer\n"
	store := &scanFailStore{Store: docstore.NewMemory()}
	report, err := New(store, state.NewMemoryPointer()).
		Run(context.Background(), strings.NewReader(csv), Options{})
	if err == nil {
		t.Fatal("expected setup error")
	}
	if errors.Is(err, ErrBadUpload) {
		t.Errorf("err = %v, must not blame the upload for a store failure", err)
	}
	if report.State != StateFailed {
		t.Errorf("state = %s, want failed", report.State)
	}
}

func TestImportProgressStepOrdering(t *testing.T) {
	csv := "question,category,options,correctAnswer\n" +
		"q1?,math,a;b,a\nq2?,math,a;b,b\n"

	var steps []State
	opts := Options{Progress: func(step State, done, total int) {
		if len(steps) == 0 || steps[len(steps)-1] != step {
			steps = append(steps, step)
		}
	}}
	runImport(t, docstore.NewMemory(), state.NewMemoryPointer(), csv, opts)

	want := []State{StateParsing, StateValidating, StateDeduplicating, StateWriting}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
}

func TestReportSummary(t *testing.T) {
	r := &Report{Inserted: 12, Skipped: 3, Errors: 1}
	want := "Import completed: 12 added, 3 skipped, 1 error(s)."
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
