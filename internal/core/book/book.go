// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package book defines the central catalog entity and its curation lifecycle.

A book enters the catalog as a draft (direct curator creation or an approved
intake), accumulates axis selections, tags, evidence, and a cover, and is
flipped to published by the publication engine once every gate passes.

Core Responsibility:

  - Identity: Duplicate detection over external identifiers and normalized
    titles, with an explicit audited override path.
  - Classification: Tag assignment with per-category caps and single-select
    replacement, plus the five-axis record every book carries.
  - Presentation: Cover assets (versioned) and standout quotes.
*/
package book

import (
	"time"

	"github.com/embershelf/embershelf/internal/core/taxonomy"
)

// # Domain Enums

// Status is the public lifecycle state of a book.
type Status string

const (
	// StatusDraft is the initial state; invisible to the public catalog.
	StatusDraft Status = "draft"

	// StatusPublished means a live publication snapshot exists.
	StatusPublished Status = "published"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished:
		return true
	}
	return false
}

// IdentifierKind classifies an external book identifier.
type IdentifierKind string

const (
	IdentifierASIN IdentifierKind = "asin"
	IdentifierISBN IdentifierKind = "isbn"
)

// CoverStatePending marks an uploaded cover still being prepared;
// CoverStateReady marks the cover that satisfies the publish gate.
const (
	CoverStatePending    = "pending"
	CoverStateReady      = "ready"
	CoverStateSuperseded = "superseded"
)

// # Core Entities

// Book is the central aggregate of the Embershelf catalog.
type Book struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"` // Immutable once set
	Status      Status  `json:"status"`
	Synopsis    string  `json:"synopsis,omitempty"`
	SeriesName  *string `json:"series_name,omitempty"`
	SeriesIndex *int    `json:"series_index,omitempty"`
	PublishYear *int    `json:"publish_year,omitempty"`

	// # Curated State
	Identifiers []Identifier    `json:"identifiers,omitempty"`
	Authors     []AuthorRef     `json:"authors,omitempty"`
	Axes        Axes            `json:"axes"`
	Tags        []taxonomy.Tag  `json:"tags,omitempty"`
	Cover       *CoverAsset     `json:"cover,omitempty"`
	Quotes      []StandoutQuote `json:"quotes,omitempty"`

	// # Publication Pointers
	LivePublicationID *string    `json:"live_publication_id,omitempty"`
	FirstPublishedAt  *time.Time `json:"first_published_at,omitempty"`
	LastPublishedAt   *time.Time `json:"last_published_at,omitempty"`

	NormalizedTitle string     `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// Identifier is one external identity record (ASIN/ISBN) for a book.
// Values are stored in normalized 10-character form.
type Identifier struct {
	ID        string         `json:"id"`
	BookID    string         `json:"book_id"`
	Kind      IdentifierKind `json:"kind"`
	Value     string         `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuthorRef is the book-side view of a linked author.
type AuthorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Axes is the per-book record of the five single-select axis slots.
// A nil slot means the axis has not been chosen yet. All five non-nil is a
// publish precondition.
type Axes struct {
	WorldFramework *taxonomy.Tag `json:"world_framework"`
	Pairing        *taxonomy.Tag `json:"pairing"`
	HeatLevel      *taxonomy.Tag `json:"heat_level"`
	SeriesStatus   *taxonomy.Tag `json:"series_status"`
	ConsentMode    *taxonomy.Tag `json:"consent_mode"`
}

// Get returns the tag selected for the given axis, or nil.
func (axes Axes) Get(axis taxonomy.Axis) *taxonomy.Tag {
	switch axis {
	case taxonomy.AxisWorldFramework:
		return axes.WorldFramework
	case taxonomy.AxisPairing:
		return axes.Pairing
	case taxonomy.AxisHeatLevel:
		return axes.HeatLevel
	case taxonomy.AxisSeriesStatus:
		return axes.SeriesStatus
	case taxonomy.AxisConsentMode:
		return axes.ConsentMode
	}
	return nil
}

// CoverAsset is one versioned cover image for a book. At most one per book
// is in the ready state at a time.
type CoverAsset struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Version   int       `json:"version"`
	State     string    `json:"state"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// StandoutQuote is one highlighted excerpt shown on the book page.
// A book carries at most two.
type StandoutQuote struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Quote     string    `json:"quote"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxStandoutQuotes is the per-book ceiling on standout quotes.
const MaxStandoutQuotes = 2

// # Creation Input

// CreateInput carries everything needed to create a draft book.
type CreateInput struct {
	Title       string  `json:"title"`
	AuthorName  string  `json:"author_name"`
	Synopsis    string  `json:"synopsis,omitempty"`
	SeriesName  *string `json:"series_name,omitempty"`
	SeriesIndex *int    `json:"series_index,omitempty"`
	PublishYear *int    `json:"publish_year,omitempty"`

	// Identifier is the raw external identifier (ASIN/ISBN-10); normalized
	// before any matching. Optional.
	IdentifierKind  IdentifierKind `json:"identifier_kind,omitempty"`
	IdentifierValue string         `json:"identifier_value,omitempty"`

	// Override acknowledges detected duplicates and proceeds anyway.
	// Justification is mandatory when a high-confidence duplicate is bypassed.
	Override      bool   `json:"override"`
	Justification string `json:"justification,omitempty"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered book list query.
type Filter struct {
	Status     []Status `json:"status,omitempty"`
	SeriesName string   `json:"series_name,omitempty"`
	Query      string   `json:"q,omitempty"`    // Title search term
	Sort       string   `json:"sort,omitempty"` // latest, az, za, published
	SortDir    string   `json:"sort_dir,omitempty"`
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldSlug          = "slug"
	FieldStatus        = "status"
	FieldSynopsis      = "synopsis"
	FieldAuthorName    = "author_name"
	FieldIdentifier    = "identifier_value"
	FieldJustification = "justification"
	FieldTagID         = "tag_id"
	FieldQuote         = "quote"
	FieldImageURL      = "image_url"
)
