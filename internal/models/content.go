// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Question is a leaf content item. Hierarchy references are stored
// redundantly by name and by id: older documents carry only names,
// newer ones both, and readers must tolerate either form.
type Question struct {
	ID            string    `json:"-"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correctAnswer"`
	Difficulty    string    `json:"difficulty,omitempty"`
	Category      string    `json:"category,omitempty"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Topic         string    `json:"topic,omitempty"`
	TopicID       string    `json:"topicId,omitempty"`
	Subtopic      string    `json:"subtopic,omitempty"`
	SubtopicID    string    `json:"subtopicId,omitempty"`

	// ExternalID preserves the id column of an imported CSV row so a
	// re-import of the same file can be recognized and skipped.
	ExternalID string `json:"externalId,omitempty"`

	// Data holds type-specific puzzle payloads (matching pairs,
	// ordering sequences, drag-and-drop targets). Opaque to the
	// import engine.
	Data map[string]any `json:"data,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
