// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CategoryFromCSV is recorded on a manifest when the import took its
// categories from the file's own category column rather than a
// preselected one.
const CategoryFromCSV = "from_csv"

// ImportManifest records one completed bulk import: the ordered set of
// inserted document ids that an undo must delete. Exactly one "last
// import" pointer references a manifest at a time; undo consumes and
// deletes it. Single-level undo only, not a history stack.
type ImportManifest struct {
	ID          string    `json:"-"`
	Count       int       `json:"count"`
	InsertedIDs []string  `json:"insertedIds"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}
