// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/dberr"
	"github.com/embershelf/embershelf/internal/platform/validate"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// # Service

// Service implements the intake review workflow.
type Service struct {
	repository Repository
	books      *book.Service
	bookLookup book.Repository
	taxonomy   *taxonomy.Service
	recorder   audit.Recorder
	logger     *slog.Logger
}

func NewService(
	repository Repository,
	books *book.Service,
	bookLookup book.Repository,
	taxonomyService *taxonomy.Service,
	recorder audit.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository: repository,
		books:      books,
		bookLookup: bookLookup,
		taxonomy:   taxonomyService,
		recorder:   recorder,
		logger:     logger,
	}
}

// # Lookups

func (service *Service) GetIntake(context context.Context, id string) (*Intake, error) {
	return service.repository.GetByID(context, id)
}

// ListIntakes retrieves a paginated, filtered collection of intakes.
func (service *Service) ListIntakes(context context.Context, filter Filter, limit, offset int) ([]*Intake, int, error) {
	return service.repository.List(context, filter, limit, offset)
}

// # Submission

/*
Submit records a new pending intake for review.

Description: The identifier is normalized before storage so the per-author
uniqueness check and later catalog matching operate on canonical form. Every
tag id referenced anywhere in the payload must exist in the taxonomy; the
five axis slots must each reference a tag of the matching axis category.

Parameters:
  - input: SubmitInput (the author-facing payload)
  - submittedBy: the authenticated author's user id

Returns:
  - *Intake: the stored pending intake
  - error: a validation error naming missing fields, a malformed
    identifier, or every unknown tag id; a conflict when the author
    already has a pending or approved intake for the same identifier.
*/
func (service *Service) Submit(context context.Context, input SubmitInput, submittedBy string) (*Intake, error) {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 500)
	validator.Required(FieldAuthorName, input.AuthorName).MaxLen(FieldAuthorName, input.AuthorName, 200)
	validator.Required(FieldIdentifierValue, input.IdentifierValue)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	normalized, err := book.NormalizeIdentifier(input.IdentifierValue)
	if err != nil {
		return nil, err
	}

	kind := input.IdentifierKind
	if kind == "" {
		kind = book.IdentifierASIN
	}

	record := &Intake{
		ID:              uuid.New(),
		SubmittedBy:     submittedBy,
		Title:           input.Title,
		AuthorName:      input.AuthorName,
		IdentifierKind:  kind,
		IdentifierValue: normalized,
		SeriesName:      input.SeriesName,
		SeriesIndex:     input.SeriesIndex,
		PublishYear:     input.PublishYear,
		Axes:            input.Axes,
		TagSelections:   input.TagSelections,
		Notes:           input.Notes,
		State:           StatePending,
	}

	if err := service.validateTagReferences(context, record); err != nil {
		return nil, err
	}

	exists, err := service.repository.ActiveExists(context, submittedBy, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("an intake for this identifier is already pending or approved")
	}

	if err := service.repository.Create(context, record); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apperr.Conflict("an intake for this identifier is already pending or approved")
		}
		return nil, err
	}

	service.record(context, submittedBy, audit.ActionIntakeSubmitted, record.ID, map[string]any{
		"title":      record.Title,
		"identifier": record.IdentifierValue,
	})
	return record, nil
}

// validateTagReferences checks that every referenced tag id exists and that
// each axis slot carries a tag of its own axis category.
func (service *Service) validateTagReferences(context context.Context, record *Intake) error {
	union := record.tagIDUnion()
	missing, err := service.taxonomy.MissingTagIDs(context, union)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		details := make([]apperr.FieldError, 0, len(missing))
		for _, id := range missing {
			details = append(details, apperr.FieldError{
				Field:   FieldTagSelections,
				Message: fmt.Sprintf("unknown tag id %q", id),
			})
		}
		return apperr.ValidationError("intake references unknown tags", details...)
	}

	slots := []struct {
		axis taxonomy.Axis
		id   *string
	}{
		{taxonomy.AxisWorldFramework, record.Axes.WorldFrameworkID},
		{taxonomy.AxisPairing, record.Axes.PairingID},
		{taxonomy.AxisHeatLevel, record.Axes.HeatLevelID},
		{taxonomy.AxisSeriesStatus, record.Axes.SeriesStatusID},
		{taxonomy.AxisConsentMode, record.Axes.ConsentModeID},
	}
	for _, slot := range slots {
		if slot.id == nil {
			continue
		}
		tag, err := service.taxonomy.GetTag(context, *slot.id)
		if err != nil {
			return err
		}
		if tag.CategoryKey != string(slot.axis) {
			return apperr.ValidationError(
				fmt.Sprintf("tag %q does not belong to the %s axis", tag.Name, slot.axis),
			)
		}
	}
	return nil
}

// # Decision

/*
Decide moves a pending intake to its terminal state.

Description: Rejection stores the admin notes and touches nothing else.
Approval reuses the catalog book carrying the intake's identifier when one
exists, otherwise materializes a new draft book, then attaches the full
union of referenced tag ids; axis tags land in their single-select slots
and already-attached tags are left alone. Approval never publishes the
book. The state flip is conditional on the intake still being pending, so
a second concurrent decision loses cleanly.

Parameters:
  - id: the intake id
  - input: DecideInput (the verdict and optional admin notes)
  - decidedBy: the acting curator's user id

Returns:
  - *Intake: the intake in its terminal state
  - error: a not-found error for unknown intakes, a validation error for
    an unknown verdict, or a conflict when the intake was already decided.
*/
func (service *Service) Decide(context context.Context, id string, input DecideInput, decidedBy string) (*Intake, error) {
	if !input.Decision.IsValid() {
		return nil, apperr.ValidationError("decision must be approve or reject")
	}

	record, err := service.repository.GetByID(context, id)
	if err != nil {
		return nil, err
	}
	if record.Decided() {
		return nil, apperr.Conflict("this intake has already been decided")
	}

	if input.Decision == DecisionReject {
		updated, err := service.repository.MarkRejected(context, id, decidedBy, input.Notes)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, apperr.Conflict("this intake has already been decided")
		}
		service.record(context, decidedBy, audit.ActionIntakeDecided, id, map[string]any{
			"decision": string(DecisionReject),
		})
		return service.repository.GetByID(context, id)
	}

	bookID, err := service.materialize(context, record, decidedBy)
	if err != nil {
		return nil, err
	}

	updated, err := service.repository.MarkApproved(context, id, decidedBy, input.Notes, bookID)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperr.Conflict("this intake has already been decided")
	}

	service.record(context, decidedBy, audit.ActionIntakeDecided, id, map[string]any{
		"decision":        string(DecisionApprove),
		"created_book_id": bookID,
	})
	return service.repository.GetByID(context, id)
}

// materialize finds or creates the catalog book for an approved intake and
// applies the intake's tag selections to it.
func (service *Service) materialize(context context.Context, record *Intake, decidedBy string) (string, error) {
	hits, err := service.bookLookup.MatchByIdentifier(context, record.IdentifierValue)
	if err != nil {
		return "", err
	}

	var bookID string
	if len(hits) > 0 {
		bookID = hits[0].BookID
	} else {
		entity, _, err := service.books.CreateBook(context, book.CreateInput{
			Title:           record.Title,
			AuthorName:      record.AuthorName,
			SeriesName:      record.SeriesName,
			SeriesIndex:     record.SeriesIndex,
			PublishYear:     record.PublishYear,
			IdentifierKind:  record.IdentifierKind,
			IdentifierValue: record.IdentifierValue,
			Override:        true,
			Justification:   "approved author intake " + record.ID,
		}, decidedBy)
		if err != nil {
			return "", err
		}
		bookID = entity.ID
	}

	for _, tagID := range record.tagIDUnion() {
		if err := service.books.AddTag(context, bookID, tagID, decidedBy); err != nil {
			return "", err
		}
	}
	return bookID, nil
}

func (service *Service) record(context context.Context, actorID, action, entityID string, payload map[string]any) {
	err := service.recorder.Record(context, audit.Event{
		ActorID:    actorID,
		Action:     action,
		EntityType: audit.EntityIntake,
		EntityID:   entityID,
		Payload:    payload,
	})
	if err != nil {
		service.logger.Error("audit record failed", "action", action, "error", err)
	}
}
