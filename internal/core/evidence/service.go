// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package evidence

import (
	"context"
	"log/slog"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/validate"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// # Service Layer

// Service orchestrates the evidence ledger.
type Service struct {
	repository Repository
	taxonomy   *taxonomy.Service
	recorder   audit.Recorder
	logger     *slog.Logger
}

// NewService constructs a new evidence [Service].
func NewService(repository Repository, taxonomyService *taxonomy.Service, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		taxonomy:   taxonomyService,
		recorder:   recorder,
		logger:     logger,
	}
}

// ListForBook returns all evidence records attached to a book.
func (service *Service) ListForBook(context context.Context, bookID string) ([]*Evidence, error) {
	return service.repository.ListByBook(context, bookID)
}

// Refs projects a book's evidence onto the validation engine's input shape.
func Refs(records []*Evidence) []curation.EvidenceRef {
	refs := make([]curation.EvidenceRef, 0, len(records))
	for _, record := range records {
		ref := curation.EvidenceRef{ID: record.ID}
		for _, link := range record.Links {
			if link.TagID != nil {
				ref.TagIDs = append(ref.TagIDs, *link.TagID)
			}
			if link.Axis != nil {
				ref.Axes = append(ref.Axes, *link.Axis)
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

/*
Create records a new citation with its tag/axis links.

Description: Validates the kind, requires a non-empty body, and checks every
linked tag id against the taxonomy and every linked axis against the closed
axis set. Each link must target exactly one of the two.

Parameters:
  - context: context.Context
  - record: *Evidence (ID and CreatedAt are assigned here)
  - actorID: string

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) Create(context context.Context, record *Evidence, actorID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldBody, record.Body).MaxLen(FieldBody, record.Body, 4000)
	validator.Required(FieldKind, string(record.Kind)).OneOf(FieldKind, string(record.Kind),
		string(KindQuote),
		string(KindSceneNote),
		string(KindExternalLink),
	)
	if err := validator.Err(); err != nil {
		return err
	}

	var linkedTagIDs []string
	for _, link := range record.Links {
		if (link.TagID == nil) == (link.Axis == nil) {
			return apperr.ValidationError("each evidence link targets exactly one tag or one axis",
				apperr.FieldError{Field: FieldLink, Message: "set tag_id or axis, not both or neither"})
		}
		if link.TagID != nil {
			linkedTagIDs = append(linkedTagIDs, *link.TagID)
		}
		if link.Axis != nil && !link.Axis.IsValid() {
			return apperr.ValidationError("unknown axis in evidence link",
				apperr.FieldError{Field: FieldLink, Message: "axis " + string(*link.Axis) + " is not recognised"})
		}
	}

	if len(linkedTagIDs) > 0 {
		missing, err := service.taxonomy.MissingTagIDs(context, linkedTagIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			details := make([]apperr.FieldError, len(missing))
			for i, id := range missing {
				details[i] = apperr.FieldError{Field: FieldLink, Message: "unknown tag id " + id}
			}
			return apperr.ValidationError("evidence links reference unknown tags", details...)
		}
	}

	record.ID = uuid.New()
	record.CreatedBy = actorID

	if err := service.repository.Create(context, record); err != nil {
		return err
	}

	service.record(context, audit.Event{
		ActorID:    actorID,
		Action:     audit.ActionEvidenceCreated,
		EntityType: audit.EntityEvidence,
		EntityID:   record.ID,
		Payload: map[string]any{
			"book_id": record.BookID,
			"kind":    record.Kind,
			"links":   record.Links,
		},
	})

	service.logger.Info("evidence_created",
		slog.String("evidence_id", record.ID),
		slog.String("book_id", record.BookID),
		slog.String("kind", string(record.Kind)),
	)

	return nil
}

// Delete removes a citation. The caller is expected to re-run validation on
// the book, since an evidence gate may have reopened.
func (service *Service) Delete(context context.Context, id, actorID string) error {
	record, err := service.repository.GetByID(context, id)
	if err != nil {
		return err
	}

	if err := service.repository.Delete(context, id); err != nil {
		return err
	}

	service.record(context, audit.Event{
		ActorID:    actorID,
		Action:     audit.ActionEvidenceDeleted,
		EntityType: audit.EntityEvidence,
		EntityID:   id,
		Payload:    map[string]any{"book_id": record.BookID},
	})

	return nil
}

// record persists an audit event best-effort.
func (service *Service) record(context context.Context, event audit.Event) {
	if err := service.recorder.Record(context, event); err != nil {
		service.logger.Error("audit_event_dropped", slog.String("action", event.Action))
	}
}
