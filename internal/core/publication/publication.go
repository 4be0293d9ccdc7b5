// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package publication produces the immutable point-in-time snapshots that back
the public catalog.

A publish run re-validates the book authoritatively inside its transaction,
serializes the full curated state into a snapshot row, diffs it against the
previous publication, and flips the book to published — all atomically.
Snapshot rows are never mutated after creation.
*/
package publication

import (
	"time"

	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/evidence"
)

// # Core Entities

// Publication is one immutable snapshot of a book's published state.
type Publication struct {
	ID                    string    `json:"id"`
	BookID                string    `json:"book_id"`
	TaxonomyVersionID     string    `json:"taxonomy_version_id"`
	PreviousPublicationID *string   `json:"previous_publication_id,omitempty"`
	Snapshot              Snapshot  `json:"snapshot"`
	Diff                  *Diff     `json:"diff,omitempty"` // nil on first publish
	PublishedBy           string    `json:"published_by"`
	CreatedAt             time.Time `json:"created_at"`
}

// Snapshot is the full serialized curated state at the moment of publish.
type Snapshot struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Synopsis    string  `json:"synopsis,omitempty"`
	SeriesName  *string `json:"series_name,omitempty"`
	SeriesIndex *int    `json:"series_index,omitempty"`
	PublishYear *int    `json:"publish_year,omitempty"`

	Identifiers []book.Identifier `json:"identifiers,omitempty"`
	Authors     []book.AuthorRef  `json:"authors,omitempty"`

	// Axes records the five slots as tag ids.
	Axes book.AxesIDs `json:"axes"`

	// TagIDsByCategory records the multi-select tag ids per category key.
	TagIDsByCategory map[string][]string `json:"tag_ids_by_category,omitempty"`

	EvidenceIDs []string `json:"evidence_ids,omitempty"`

	CoverVersion  int                  `json:"cover_version"`
	CoverImageURL string               `json:"cover_image_url,omitempty"`
	Quotes        []book.StandoutQuote `json:"quotes,omitempty"`
}

// Diff summarizes what changed between two snapshots. Sets are compared by
// id-membership, never by ordering.
type Diff struct {
	TagsAdded       map[string][]string `json:"tags_added,omitempty"`   // category key -> tag ids
	TagsRemoved     map[string][]string `json:"tags_removed,omitempty"` // category key -> tag ids
	EvidenceAdded   []string            `json:"evidence_added,omitempty"`
	EvidenceRemoved []string            `json:"evidence_removed,omitempty"`
	CoverChanged    bool                `json:"cover_changed"`
	HasChanges      bool                `json:"has_changes"`
}

// # Operation Results

// PublishResult reports a completed publish.
type PublishResult struct {
	PublicationID string `json:"publication_id"`
	FirstPublish  bool   `json:"first_publish"`
	Diff          *Diff  `json:"diff,omitempty"`
}

// Preview is the dry-run view shown to curators before committing.
type Preview struct {
	Validation  curation.Result `json:"validation"`
	Publishable bool            `json:"publishable"`
	Diff        *Diff           `json:"diff,omitempty"`
}

// Rejection is the structured refusal when validation blocks a publish.
// It is data, not an error type; the HTTP layer wraps it.
type Rejection struct {
	FailingGates   []curation.GateResult   `json:"failing_gates,omitempty"`
	Contradictions []curation.Contradiction `json:"contradictions,omitempty"`
}

// snapshotFrom serializes the loaded aggregate and its evidence.
func snapshotFrom(entity *book.Book, records []*evidence.Evidence) Snapshot {
	snapshot := Snapshot{
		Title:       entity.Title,
		Slug:        entity.Slug,
		Synopsis:    entity.Synopsis,
		SeriesName:  entity.SeriesName,
		SeriesIndex: entity.SeriesIndex,
		PublishYear: entity.PublishYear,
		Identifiers: entity.Identifiers,
		Authors:     entity.Authors,
		Quotes:      entity.Quotes,
	}

	snapshot.Axes = axesIDs(entity)

	if len(entity.Tags) > 0 {
		snapshot.TagIDsByCategory = make(map[string][]string)
		for _, tag := range entity.Tags {
			snapshot.TagIDsByCategory[tag.CategoryKey] = append(snapshot.TagIDsByCategory[tag.CategoryKey], tag.ID)
		}
	}

	for _, record := range records {
		snapshot.EvidenceIDs = append(snapshot.EvidenceIDs, record.ID)
	}

	if entity.Cover != nil && entity.Cover.State == book.CoverStateReady {
		snapshot.CoverVersion = entity.Cover.Version
		snapshot.CoverImageURL = entity.Cover.ImageURL
	}

	return snapshot
}

func axesIDs(entity *book.Book) book.AxesIDs {
	ids := book.AxesIDs{}
	if entity.Axes.WorldFramework != nil {
		ids.WorldFrameworkID = &entity.Axes.WorldFramework.ID
	}
	if entity.Axes.Pairing != nil {
		ids.PairingID = &entity.Axes.Pairing.ID
	}
	if entity.Axes.HeatLevel != nil {
		ids.HeatLevelID = &entity.Axes.HeatLevel.ID
	}
	if entity.Axes.SeriesStatus != nil {
		ids.SeriesStatusID = &entity.Axes.SeriesStatus.ID
	}
	if entity.Axes.ConsentMode != nil {
		ids.ConsentModeID = &entity.Axes.ConsentMode.ID
	}
	return ids
}
