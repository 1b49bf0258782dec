// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import "fmt"

// State names the pipeline step currently running. Steps run strictly
// in order; Failed is reachable from any of them.
type State string

const (
	StateIdle          State = "idle"
	StateParsing       State = "parsing"
	StateValidating    State = "validating"
	StateDeduplicating State = "deduplicating"
	StateWriting       State = "writing"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
)

// Code classifies a per-row finding. Validation codes mark rows
// excluded as errors; the two duplicate codes mark rows skipped, which
// is not an error.
type Code string

const (
	CodeMissingQuestion           Code = "MissingQuestion"
	CodeMissingCategory           Code = "MissingCategory"
	CodeNoCategoryProvided        Code = "NoCategoryProvided"
	CodeInsufficientOptions       Code = "InsufficientOptions"
	CodeMissingCorrectAnswer      Code = "MissingCorrectAnswer"
	CodeCorrectAnswerNotInOptions Code = "CorrectAnswerNotInOptions"
	CodeDuplicateExternalID       Code = "DuplicateExternalId"
	CodeDuplicateQuestionText     Code = "DuplicateQuestionText"
	CodeWriteFailed               Code = "WriteFailed"
)

// RowIssue is one per-row finding, keyed by the 1-based data row
// number of the uploaded file.
type RowIssue struct {
	Row     int    `json:"row"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (i RowIssue) String() string {
	return fmt.Sprintf("row %d: %s: %s", i.Row, i.Code, i.Message)
}

// Report summarizes one import run. Row-level findings never abort the
// batch; they accumulate here and are surfaced at the end.
type Report struct {
	State       State      `json:"state"`
	TotalRows   int        `json:"totalRows"`
	Inserted    int        `json:"inserted"`
	Skipped     int        `json:"skipped"`
	Errors      int        `json:"errors"`
	Issues      []RowIssue `json:"issues,omitempty"`
	InsertedIDs []string   `json:"insertedIds,omitempty"`
	ManifestID  string     `json:"manifestId,omitempty"`
}

// Summary renders the one-line status shown to the admin.
func (r *Report) Summary() string {
	return fmt.Sprintf("Import completed: %d added, %d skipped, %d error(s).",
		r.Inserted, r.Skipped, r.Errors)
}

// Messages returns the per-row findings as display strings.
func (r *Report) Messages() []string {
	msgs := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		msgs = append(msgs, i.String())
	}
	return msgs
}
