// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package audit records one structured event per state-changing catalog action.

Every mutation path (book creation, tag changes, evidence, publish, intake
decisions) emits an event with enough payload to reconstruct what changed and
why. Recording is best-effort: a failed audit write is logged and never fails
the action that triggered it.
*/
package audit

import (
	"context"
	"time"
)

// # Actions

const (
	ActionDuplicateDetected = "duplicate_detected"
	ActionBookCreated       = "book_created"
	ActionBookForceCreated  = "book_force_created"
	ActionAuthorCreated     = "author_created"
	ActionTagAdded          = "tag_added"
	ActionTagRemoved        = "tag_removed"
	ActionAxesUpdated       = "axes_updated"
	ActionEvidenceCreated   = "evidence_created"
	ActionEvidenceDeleted   = "evidence_deleted"
	ActionBookPublished     = "book_published"
	ActionIntakeSubmitted   = "intake_submitted"
	ActionIntakeDecided     = "intake_decided"
)

// # Entity Types

const (
	EntityBook     = "book"
	EntityAuthor   = "author"
	EntityEvidence = "evidence"
	EntityIntake   = "intake"
)

// Event is one recorded state change.
type Event struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Recorder persists audit events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(context context.Context, event Event) error
}

// NoopRecorder discards all events. Used in tests.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, Event) error { return nil }
