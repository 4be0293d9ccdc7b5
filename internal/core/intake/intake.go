// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package intake implements the author submission review workflow.

An intake is an author-submitted proposal for a new book's full metadata:
title, external identifier, all five axis selections, and optional tag
selections per category. Intakes move pending -> approved | rejected and
never transition again. Approval materializes (or links to) a catalog book;
it never publishes one.
*/
package intake

import (
	"time"

	"github.com/embershelf/embershelf/internal/core/book"
)

// # State Machine

// State is an intake's lifecycle state. Approved and rejected are terminal.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
)

func (state State) IsValid() bool {
	switch state {
	case StatePending, StateApproved, StateRejected:
		return true
	}
	return false
}

// Decision is the admin verdict on a pending intake.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (decision Decision) IsValid() bool {
	return decision == DecisionApprove || decision == DecisionReject
}

// # Core Entity

// Intake is one author-submitted book proposal.
type Intake struct {
	ID          string `json:"id"`
	SubmittedBy string `json:"submitted_by"`

	Title      string `json:"title"`
	AuthorName string `json:"author_name"`

	IdentifierKind book.IdentifierKind `json:"identifier_kind"`
	// IdentifierValue is stored normalized (uppercase, separators stripped).
	IdentifierValue string `json:"identifier_value"`

	SeriesName  *string `json:"series_name,omitempty"`
	SeriesIndex *int    `json:"series_index,omitempty"`
	PublishYear *int    `json:"publish_year,omitempty"`

	// Axes holds the five mandatory single-select tag ids.
	Axes book.AxesIDs `json:"axes"`

	// TagSelections holds the optional per-category tag id arrays.
	TagSelections map[string][]string `json:"tag_selections,omitempty"`

	Notes string `json:"notes,omitempty"`

	State         State      `json:"state"`
	DecisionNotes *string    `json:"decision_notes,omitempty"`
	DecidedBy     *string    `json:"decided_by,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`

	// CreatedBookID is set on approval to the materialized (or reused) book.
	CreatedBookID *string `json:"created_book_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Decided reports whether the intake has reached a terminal state.
func (intake *Intake) Decided() bool {
	return intake.State != StatePending
}

// tagIDUnion collects every tag id referenced anywhere in the payload:
// the five axis slots plus all optional selection arrays, deduplicated
// in first-seen order.
func (intake *Intake) tagIDUnion() []string {
	var union []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		union = append(union, id)
	}

	for _, slot := range []*string{
		intake.Axes.WorldFrameworkID,
		intake.Axes.PairingID,
		intake.Axes.HeatLevelID,
		intake.Axes.SeriesStatusID,
		intake.Axes.ConsentModeID,
	} {
		if slot != nil {
			add(*slot)
		}
	}
	for _, ids := range intake.TagSelections {
		for _, id := range ids {
			add(id)
		}
	}
	return union
}

// # Inputs

// SubmitInput is the author-facing submission payload.
type SubmitInput struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`

	IdentifierKind  book.IdentifierKind `json:"identifier_kind,omitempty"`
	IdentifierValue string              `json:"identifier_value"`

	SeriesName  *string `json:"series_name,omitempty"`
	SeriesIndex *int    `json:"series_index,omitempty"`
	PublishYear *int    `json:"publish_year,omitempty"`

	Axes          book.AxesIDs        `json:"axes"`
	TagSelections map[string][]string `json:"tag_selections,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

// DecideInput is the admin decision payload.
type DecideInput struct {
	Decision Decision `json:"decision"`
	Notes    string   `json:"notes,omitempty"`
}

// Filter narrows intake listings.
type Filter struct {
	State       State
	SubmittedBy string
}

// # Field Identifiers

const (
	FieldTitle           = "title"
	FieldAuthorName      = "author_name"
	FieldIdentifierValue = "identifier_value"
	FieldDecision        = "decision"
	FieldTagSelections   = "tag_selections"
)
