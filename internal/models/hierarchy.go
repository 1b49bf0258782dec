// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the content hierarchy entities stored in the
// document store. The hierarchy has four levels: Feature → Category →
// Topic → Subtopic, with questions as leaf content.
package models

import "time"

// Collection names in the document store.
const (
	FeaturesCollection   = "features"
	CategoriesCollection = "categories"
	TopicsCollection     = "topics"
	SubtopicsCollection  = "subtopics"
	QuestionsCollection  = "questions"
	ImportLogsCollection = "import_logs"
)

// FeatureType distinguishes the kinds of top-level content features.
type FeatureType string

const (
	FeatureTypeQuiz   FeatureType = "quiz"
	FeatureTypePuzzle FeatureType = "puzzle"
	FeatureTypeCustom FeatureType = "custom"
)

// UIMode is the default presentation mode for a category's player UI.
type UIMode string

const (
	UIModePlayful     UIMode = "playful"
	UIModeCalm        UIMode = "calm"
	UIModeCompetitive UIMode = "competitive"
)

// Feature is a top-level content type, e.g. "Quiz" or "Puzzle".
// The document id lives outside the stored fields, so ID carries a
// `json:"-"` tag and is populated from the document key after decode.
type Feature struct {
	ID          string      `json:"-"`
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Icon        string      `json:"icon,omitempty"`
	FeatureType FeatureType `json:"featureType"`
	Enabled     bool        `json:"enabled"`
	Order       int         `json:"order"`
	ShowInMenu  bool        `json:"showInMenu"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Category belongs to exactly one Feature. Name is the lowercase
// internal key; Label keeps the display casing. QuizCount is a
// denormalized counter refreshed on demand, never trusted for
// correctness-sensitive logic.
type Category struct {
	ID            string    `json:"-"`
	FeatureID     string    `json:"featureId,omitempty"`
	Name          string    `json:"name"`
	Label         string    `json:"label"`
	Icon          string    `json:"icon,omitempty"`
	Color         string    `json:"color,omitempty"`
	Description   string    `json:"description,omitempty"`
	IsPublished   bool      `json:"isPublished"`
	DefaultUIMode UIMode    `json:"defaultUiMode,omitempty"`
	QuizCount     int       `json:"quizCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Topic belongs to exactly one Category.
type Topic struct {
	ID            string    `json:"-"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Name          string    `json:"name"`
	Label         string    `json:"label"`
	Icon          string    `json:"icon,omitempty"`
	Description   string    `json:"description,omitempty"`
	SortOrder     int       `json:"sortOrder"`
	IsPublished   bool      `json:"isPublished"`
	SubtopicCount int       `json:"subtopicCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Subtopic belongs to a Category and optionally to a Topic within
// that Category. An empty TopicID means the subtopic hangs directly
// off the category.
type Subtopic struct {
	ID          string    `json:"-"`
	CategoryID  string    `json:"categoryId,omitempty"`
	TopicID     string    `json:"topicId,omitempty"`
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	IsPublished bool      `json:"isPublished"`
	QuizCount   int       `json:"quizCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
