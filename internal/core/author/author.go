// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package author

import "time"

// Author is a catalog author (pen name). Books link to authors through the
// bookauthor junction; the book-create path finds-or-creates authors by
// normalized name, so writes here are mostly curator profile edits.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// NormalizedName is the lowercased, punctuation-stripped matching key
	// used by duplicate detection and find-or-create.
	NormalizedName string     `json:"-"`
	Bio            *string    `json:"bio,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"` // soft-delete tracker
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Case-insensitive match against name
}

// Global field names for validation
const (
	FieldName = "name"
	FieldBio  = "bio"
)
