// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package evidence manages the citation ledger behind high-stakes tags.

Evidence records are free-text citations (quotes, scene notes, external
links) attached to a book and optionally linked to specific tags or axis
slots. A tag flagged requires-evidence passes its publish gate only while at
least one evidence record is linked to it.
*/
package evidence

import (
	"time"

	"github.com/embershelf/embershelf/internal/core/taxonomy"
)

// # Domain Enums

// Kind classifies the citation form.
type Kind string

const (
	KindQuote        Kind = "quote"
	KindSceneNote    Kind = "scene-note"
	KindExternalLink Kind = "external-link"
)

// IsValid reports whether k is a recognised [Kind] value.
func (k Kind) IsValid() bool {
	switch k {
	case KindQuote, KindSceneNote, KindExternalLink:
		return true
	}
	return false
}

// # Core Entities

// Evidence is one citation attached to a book.
type Evidence struct {
	ID     string `json:"id"`
	BookID string `json:"book_id"`
	Kind   Kind   `json:"kind"`

	// Body is the quote text, the scene note, or the external URL.
	Body string `json:"body"`

	Location Location `json:"location"`
	Note     string   `json:"note,omitempty"`

	// Links name the tags and axes this citation substantiates.
	Links []Link `json:"links,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Location pins a citation in the source text. All fields optional.
type Location struct {
	Chapter        *int `json:"chapter,omitempty"`
	Page           *int `json:"page,omitempty"`
	KindleLocation *int `json:"kindle_location,omitempty"`
}

// Link ties an evidence record to a tag or an axis slot. Exactly one of
// TagID and Axis is set.
type Link struct {
	TagID *string        `json:"tag_id,omitempty"`
	Axis  *taxonomy.Axis `json:"axis,omitempty"`
}

// # Field Identifiers

const (
	FieldKind = "kind"
	FieldBody = "body"
	FieldLink = "links"
)
