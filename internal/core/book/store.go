// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package book

import (
	"context"

	"github.com/embershelf/embershelf/internal/core/taxonomy"
)

// # Storage Contracts

// AxesIDs is the storage shape of the five axis slots: raw tag ids, nil
// where the slot is empty.
type AxesIDs struct {
	WorldFrameworkID *string `json:"world_framework_id"`
	PairingID        *string `json:"pairing_id"`
	HeatLevelID      *string `json:"heat_level_id"`
	SeriesStatusID   *string `json:"series_status_id"`
	ConsentModeID    *string `json:"consent_mode_id"`
}

/// CreateBundle is the unit of work for a new draft book: the book row, its
// identifier, its author link, and its empty axes record are written in one
// transaction.
type CreateBundle struct {
	Book             *Book
	AuthorName       string
	NormalizedAuthor string

	// Identifier is nil when the book was submitted without one.
	Identifier *Identifier
}

// CreateOutcome reports side effects of the create transaction that the
// service needs for audit events.
type CreateOutcome struct {
	AuthorID      string
	AuthorCreated bool
}

/*
Repository is the persistence boundary for the book aggregate.

Description: Lookups return the fully hydrated aggregate (identifiers,
authors, axes, tags, ready cover, quotes). Mutations that must hold
invariants under concurrency (tag caps, quote ceiling, the create bundle)
run inside a transaction owned by the implementation.
*/
type Repository interface {

	// # Lookups

	FindByID(context context.Context, id string) (*Book, error)
	FindBySlug(context context.Context, slug string) (*Book, error)
	List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)
	SlugTaken(context context.Context, slug string) (bool, error)

	// # Duplicate Tier Lookups

	MatchByIdentifier(context context.Context, normalized string) ([]MatchHit, error)
	MatchByNormalizedTitleAuthor(context context.Context, normalizedTitle, normalizedAuthor string) ([]MatchHit, error)
	MatchByRawTitle(context context.Context, title string) ([]MatchHit, error)
	MatchByNormalizedTitle(context context.Context, normalizedTitle string) ([]MatchHit, error)

	// # Mutations

	Create(context context.Context, bundle CreateBundle) (*CreateOutcome, error)

	// AttachTag inserts a tag association, enforcing the category cap inside
	// the same transaction as the insert. A duplicate add reports added=false
	// with no error.
	AttachTag(context context.Context, bookID string, tag *taxonomy.Tag, addedBy string, ceiling int) (added bool, err error)

	DetachTag(context context.Context, bookID, tagID string) error
	SetAxes(context context.Context, bookID string, axes AxesIDs) error

	// AddCover inserts the next cover version. A ready cover supersedes any
	// previously ready one.
	AddCover(context context.Context, cover *CoverAsset) error

	// AddQuote inserts a standout quote, enforcing the per-book ceiling
	// inside the insert transaction.
	AddQuote(context context.Context, quote *StandoutQuote) error
}
