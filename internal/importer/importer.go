// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer converts an uploaded delimited file into validated,
// deduplicated question writes with a reversible manifest. The
// pipeline runs Parsing → Validating → Deduplicating → Writing →
// Completed; each step finishes fully before the next so progress can
// be reported accurately and dedup sees the complete row set. Only
// setup failures (unparseable file, unreadable existing content) abort
// the run; row-level findings are collected into the report.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"quizpress/internal/csvio"
	"quizpress/internal/docstore"
	"quizpress/internal/hierarchy"
	"quizpress/internal/models"
	"quizpress/internal/state"
)

// DefaultFeature is the feature questions import under when the caller
// does not name one.
const DefaultFeature = "Quiz"

// ErrBadUpload marks setup failures caused by the uploaded file itself,
// as opposed to the backing store. Callers translate it into a client
// error.
var ErrBadUpload = errors.New("cannot read upload")

// Options configures one import run.
type Options struct {
	// Category preselects a category for every row. When empty, each
	// row must carry a non-empty category column.
	Category string

	// Feature names the feature the categories hang off. Defaults to
	// DefaultFeature.
	Feature string

	// Aliases maps historical category/topic names to canonical ones;
	// consulted by the sync engine before any generic match.
	Aliases map[string]string

	// Progress, when set, is called after each row of each step with
	// the step name and completion counts.
	Progress func(step State, done, total int)
}

// Pipeline runs CSV imports against a document store, recording
// manifests and updating the durable last-import pointer.
type Pipeline struct {
	store   docstore.Store
	pointer state.LastImport
	now     func() time.Time
}

// New returns a Pipeline over the given store and pointer.
func New(store docstore.Store, pointer state.LastImport) *Pipeline {
	return &Pipeline{store: store, pointer: pointer, now: time.Now}
}

// row is one validated record ready for writing.
type row struct {
	num           int
	externalID    string
	question      string
	category      string
	topic         string
	subtopic      string
	options       []string
	correctAnswer string
	difficulty    string
}

// Run executes the full pipeline. The returned report is non-nil even
// on setup failure, with State set to Failed.
func (p *Pipeline) Run(ctx context.Context, file io.Reader, opts Options) (*Report, error) {
	report := &Report{State: StateIdle}
	progress := opts.Progress
	if progress == nil {
		progress = func(State, int, int) {}
	}
	if opts.Feature == "" {
		opts.Feature = DefaultFeature
	}

	// Parsing.
	report.State = StateParsing
	header, records, err := csvio.Parse(file)
	if err != nil {
		report.State = StateFailed
		return report, fmt.Errorf("%w: %w", ErrBadUpload, err)
	}
	report.TotalRows = len(records)
	progress(StateParsing, len(records), len(records))

	// Validating.
	report.State = StateValidating
	hasCategoryColumn := slices.Contains(header, "category")
	var valid []row
	for i, rec := range records {
		if r, issue := validateRecord(rec, hasCategoryColumn, opts.Category); issue != nil {
			report.Issues = append(report.Issues, *issue)
			report.Errors++
		} else {
			valid = append(valid, r)
		}
		progress(StateValidating, i+1, len(records))
	}

	// Deduplicating. The existing-content snapshot loads once, not per
	// row; the membership sets then grow with each accepted row so
	// intra-file duplicates are caught too.
	report.State = StateDeduplicating
	existingIDs, existingTexts, err := p.loadExisting(ctx)
	if err != nil {
		report.State = StateFailed
		return report, fmt.Errorf("load existing content for dedup: %w", err)
	}
	var accepted []row
	for i, r := range valid {
		switch {
		case r.externalID != "" && existingIDs[r.externalID]:
			report.Skipped++
			report.Issues = append(report.Issues, RowIssue{
				Row: r.num, Code: CodeDuplicateExternalID,
				Message: fmt.Sprintf("skipped, id %q already exists", r.externalID),
			})
		case existingTexts[r.question]:
			report.Skipped++
			report.Issues = append(report.Issues, RowIssue{
				Row: r.num, Code: CodeDuplicateQuestionText,
				Message: "skipped, duplicate question text",
			})
		default:
			if r.externalID != "" {
				existingIDs[r.externalID] = true
			}
			existingTexts[r.question] = true
			accepted = append(accepted, r)
		}
		progress(StateDeduplicating, i+1, len(valid))
	}

	// Writing. Rows are written one at a time to obtain individual
	// generated ids for the undo manifest; a failed row is recorded
	// and does not roll back rows already written.
	report.State = StateWriting
	if len(accepted) > 0 {
		snap, err := hierarchy.Load(ctx, p.store)
		if err != nil {
			report.State = StateFailed
			return report, fmt.Errorf("load hierarchy: %w", err)
		}
		resolver := hierarchy.NewResolver(p.store, snap, opts.Aliases)
		featureID, err := resolver.Feature(ctx, opts.Feature)
		if err != nil {
			report.State = StateFailed
			return report, fmt.Errorf("resolve feature: %w", err)
		}

		for i, r := range accepted {
			if err := p.writeRow(ctx, resolver, featureID, r, report); err != nil {
				report.Errors++
				report.Issues = append(report.Issues, RowIssue{
					Row: r.num, Code: CodeWriteFailed, Message: err.Error(),
				})
				slog.Warn("import row write failed", "row", r.num, "error", err)
			}
			progress(StateWriting, i+1, len(accepted))
		}
	}

	// Completion: persist the manifest and point the undo slot at it.
	if report.Inserted > 0 {
		manifestCategory := opts.Category
		if manifestCategory == "" {
			manifestCategory = models.CategoryFromCSV
		}
		manifest := models.ImportManifest{
			Count:       report.Inserted,
			InsertedIDs: report.InsertedIDs,
			Category:    manifestCategory,
			CreatedAt:   p.now().UTC(),
		}
		manifestID, err := p.store.Add(ctx, models.ImportLogsCollection, manifest)
		if err != nil {
			report.State = StateFailed
			return report, fmt.Errorf("persist import manifest: %w", err)
		}
		report.ManifestID = manifestID
		if err := p.pointer.Set(ctx, manifestID); err != nil {
			// The manifest exists, only the pointer write failed; the
			// import itself succeeded, so warn rather than fail.
			slog.Warn("failed to record last-import pointer", "manifest", manifestID, "error", err)
		}
	}

	report.State = StateCompleted
	slog.Info("import completed",
		"total", report.TotalRows,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"errors", report.Errors,
	)
	return report, nil
}

// validateRecord applies the per-row schema rules. It returns either a
// ready-to-write row or the first failing rule as a RowIssue.
func validateRecord(rec csvio.Record, hasCategoryColumn bool, preselected string) (row, *RowIssue) {
	r := row{
		num:           rec.Row,
		externalID:    rec.Get("id"),
		question:      rec.Get("question"),
		topic:         rec.Get("topic"),
		subtopic:      rec.Get("subtopic"),
		correctAnswer: rec.Get("correctAnswer"),
		difficulty:    rec.Get("difficulty"),
	}

	if r.question == "" {
		return row{}, &RowIssue{Row: rec.Row, Code: CodeMissingQuestion, Message: "question is required"}
	}

	switch {
	case hasCategoryColumn:
		r.category = rec.Get("category")
		if r.category == "" {
			return row{}, &RowIssue{Row: rec.Row, Code: CodeMissingCategory, Message: "category column is empty"}
		}
	case preselected != "":
		r.category = preselected
	default:
		return row{}, &RowIssue{Row: rec.Row, Code: CodeNoCategoryProvided, Message: "no category column and no preselected category"}
	}

	r.options = csvio.SplitList(rec.Get("options"))
	if len(r.options) < 2 {
		return row{}, &RowIssue{Row: rec.Row, Code: CodeInsufficientOptions, Message: "at least 2 options are required"}
	}

	if r.correctAnswer == "" {
		return row{}, &RowIssue{Row: rec.Row, Code: CodeMissingCorrectAnswer, Message: "correctAnswer is required"}
	}
	if !slices.Contains(r.options, r.correctAnswer) {
		return row{}, &RowIssue{Row: rec.Row, Code: CodeCorrectAnswerNotInOptions,
			Message: fmt.Sprintf("correctAnswer %q is not one of the options", r.correctAnswer)}
	}

	return r, nil
}

// loadExisting scans current content once and builds the two dedup
// membership sets: known ids (document ids plus imported external ids)
// and exact question texts.
func (p *Pipeline) loadExisting(ctx context.Context) (ids, texts map[string]bool, err error) {
	docs, err := p.store.Scan(ctx, models.QuestionsCollection)
	if err != nil {
		return nil, nil, err
	}

	ids = make(map[string]bool, len(docs))
	texts = make(map[string]bool, len(docs))
	for _, d := range docs {
		var q models.Question
		if err := d.Decode(&q); err != nil {
			return nil, nil, fmt.Errorf("decode question %s: %w", d.ID, err)
		}
		ids[d.ID] = true
		if q.ExternalID != "" {
			ids[q.ExternalID] = true
		}
		texts[q.Question] = true
	}
	return ids, texts, nil
}

// writeRow resolves the row's hierarchy references and persists the
// question, recording the generated id on success.
func (p *Pipeline) writeRow(ctx context.Context, resolver *hierarchy.Resolver, featureID string, r row, report *Report) error {
	categoryID, err := resolver.Category(ctx, r.category, featureID)
	if err != nil {
		return err
	}
	topicID, err := resolver.Topic(ctx, r.topic, categoryID)
	if err != nil {
		return err
	}
	subtopicID, err := resolver.Subtopic(ctx, r.subtopic, categoryID, topicID)
	if err != nil {
		return err
	}

	// Content items reference hierarchy nodes redundantly: canonical
	// name for older readers, id for newer ones.
	snap := resolver.Snapshot()
	now := p.now().UTC()
	q := models.Question{
		Question:      r.question,
		Options:       r.options,
		CorrectAnswer: r.correctAnswer,
		Difficulty:    r.difficulty,
		CategoryID:    categoryID,
		TopicID:       topicID,
		SubtopicID:    subtopicID,
		ExternalID:    r.externalID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c := snap.FindCategory(categoryID); c != nil {
		q.Category = c.Name
	}
	if t := snap.FindTopic(topicID); t != nil {
		q.Topic = t.Name
	}
	if s := snap.FindSubtopic(subtopicID); s != nil {
		q.Subtopic = s.Name
	}

	id, err := p.store.Add(ctx, models.QuestionsCollection, q)
	if err != nil {
		return err
	}
	report.Inserted++
	report.InsertedIDs = append(report.InsertedIDs, id)
	return nil
}
