// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package publication

import (
	"context"
	"log/slog"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/evidence"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// # Service

// Service runs the publish pipeline: load, validate, snapshot, diff, commit.
type Service struct {
	repository Repository
	books      book.Repository
	evidence   *evidence.Service
	taxonomy   *taxonomy.Service
	engine     *curation.Engine
	recorder   audit.Recorder
	logger     *slog.Logger
}

func NewService(
	repository Repository,
	books book.Repository,
	evidenceService *evidence.Service,
	taxonomyService *taxonomy.Service,
	engine *curation.Engine,
	recorder audit.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository: repository,
		books:      books,
		evidence:   evidenceService,
		taxonomy:   taxonomyService,
		engine:     engine,
		recorder:   recorder,
		logger:     logger,
	}
}

// # Read Operations

// GetPublication returns one snapshot by id.
func (service *Service) GetPublication(context context.Context, id string) (*Publication, error) {
	return service.repository.GetByID(context, id)
}

// History returns a book's publications, newest first.
func (service *Service) History(context context.Context, bookID string, limit, offset int) ([]*Publication, int, error) {
	if _, err := service.books.FindByID(context, bookID); err != nil {
		return nil, 0, err
	}
	return service.repository.ListByBook(context, bookID, limit, offset)
}

// PreviewPublish runs the full validation and diff without writing anything.
func (service *Service) PreviewPublish(context context.Context, bookID string) (*Preview, error) {
	state, err := service.loadState(context, bookID)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		Validation:  state.validation,
		Publishable: state.validation.Publishable(),
	}
	if state.previous != nil {
		preview.Diff = computeDiff(&state.previous.Snapshot, &state.snapshot)
	}
	return preview, nil
}

// # Curator Worklist

// WorklistEntry is one draft book annotated with the review queues it
// currently belongs to.
type WorklistEntry struct {
	BookID      string          `json:"book_id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Publishable bool            `json:"publishable"`
	Queues      curation.Queues `json:"queues"`
}

// Worklist pages through draft books and reports each one's validation
// queues. A draft outside every queue is ready to publish.
func (service *Service) Worklist(context context.Context, limit, offset int) ([]WorklistEntry, int, error) {
	drafts, total, err := service.books.List(context, book.Filter{Status: []book.Status{book.StatusDraft}}, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]WorklistEntry, 0, len(drafts))
	for _, draft := range drafts {
		// The listing returns base rows only; validation needs the full
		// aggregate and its evidence.
		entity, err := service.books.FindByID(context, draft.ID)
		if err != nil {
			return nil, 0, err
		}
		records, err := service.evidence.ListForBook(context, entity.ID)
		if err != nil {
			return nil, 0, err
		}

		input := book.ValidationInput(entity)
		input.Evidence = evidence.Refs(records)
		result := service.engine.Validate(input)

		entries = append(entries, WorklistEntry{
			BookID:      entity.ID,
			Title:       entity.Title,
			Slug:        entity.Slug,
			Publishable: result.Publishable(),
			Queues:      result.Queues,
		})
	}
	return entries, total, nil
}

// # Publish

/*
Publish validates the book and, when publishable, writes an immutable
snapshot and flips the book to published.

Parameters:
  - bookID: the book to publish.
  - publishedBy: the acting curator's user id.

Returns:
  - *PublishResult: the new publication id, whether this was the first
    publish, and the diff against the previous snapshot (nil on first).
  - error: a not-found error for unknown books, an unprocessable error
    carrying the failing gates and hard contradictions when validation
    blocks, a state-changed error when the book was modified between the
    validation read and the transactional re-check, or a wrapped database
    error. On any error no rows are written.
*/
func (service *Service) Publish(context context.Context, bookID, publishedBy string) (*PublishResult, error) {
	state, err := service.loadState(context, bookID)
	if err != nil {
		return nil, err
	}

	if !state.validation.Publishable() {
		return nil, publishRejected(state.validation)
	}

	record := &Publication{
		ID:                state.publicationID,
		BookID:            bookID,
		TaxonomyVersionID: state.taxonomyVersion.ID,
		Snapshot:          state.snapshot,
		PublishedBy:       publishedBy,
	}

	var diff *Diff
	if state.previous != nil {
		id := state.previous.ID
		record.PreviousPublicationID = &id
		diff = computeDiff(&state.previous.Snapshot, &state.snapshot)
		record.Diff = diff
	}

	err = service.repository.Publish(context, PublishRecord{
		Publication:          record,
		ExpectedCoverVersion: state.snapshot.CoverVersion,
	})
	if err != nil {
		return nil, err
	}

	firstPublish := state.previous == nil

	payload := map[string]any{
		"publication_id": record.ID,
		"first_publish":  firstPublish,
	}
	if diff != nil {
		payload["has_changes"] = diff.HasChanges
	}
	service.record(context, publishedBy, audit.ActionBookPublished, audit.EntityBook, bookID, payload)

	return &PublishResult{
		PublicationID: record.ID,
		FirstPublish:  firstPublish,
		Diff:          diff,
	}, nil
}

// # Internals

// publishState is everything one publish attempt needs, loaded up front.
type publishState struct {
	validation      curation.Result
	snapshot        Snapshot
	previous        *Publication
	taxonomyVersion *taxonomy.Version
	publicationID   string
}

func (service *Service) loadState(context context.Context, bookID string) (*publishState, error) {
	entity, err := service.books.FindByID(context, bookID)
	if err != nil {
		return nil, err
	}

	records, err := service.evidence.ListForBook(context, bookID)
	if err != nil {
		return nil, err
	}

	input := book.ValidationInput(entity)
	input.Evidence = evidence.Refs(records)
	validation := service.engine.Validate(input)

	version, err := service.taxonomy.ActiveVersion(context)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return nil, apperr.Unprocessable("no active taxonomy version; activate one before publishing")
		}
		return nil, err
	}

	previous, err := service.repository.Latest(context, bookID)
	if err != nil {
		if appError := apperr.As(err); appError == nil || appError.Code != "NOT_FOUND" {
			return nil, err
		}
		previous = nil
	}

	return &publishState{
		validation:      validation,
		snapshot:        snapshotFrom(entity, records),
		previous:        previous,
		taxonomyVersion: version,
		publicationID:   uuid.New(),
	}, nil
}

// publishRejected builds the structured refusal for a non-publishable book.
func publishRejected(validation curation.Result) error {
	rejection := Rejection{}
	for _, gate := range validation.Gates {
		if !gate.OK {
			rejection.FailingGates = append(rejection.FailingGates, gate)
		}
	}
	for _, contradiction := range validation.Contradictions {
		if contradiction.Severity == curation.SeverityHard {
			rejection.Contradictions = append(rejection.Contradictions, contradiction)
		}
	}

	appError := apperr.Unprocessable("the book does not pass publish validation")
	appError.Code = "PUBLISH_BLOCKED"
	for _, gate := range rejection.FailingGates {
		appError.Details = append(appError.Details, apperr.FieldError{
			Field:   string(gate.Gate),
			Message: gateMessage(gate),
		})
	}
	for _, contradiction := range rejection.Contradictions {
		appError.Details = append(appError.Details, apperr.FieldError{
			Field:   contradiction.RuleID,
			Message: contradiction.Message,
		})
	}
	return appError
}

func gateMessage(gate curation.GateResult) string {
	if len(gate.Missing) == 0 {
		return "gate failed"
	}
	message := "missing: "
	for i, item := range gate.Missing {
		if i > 0 {
			message += ", "
		}
		message += item
	}
	return message
}

func (service *Service) record(context context.Context, actorID, action, entityType, entityID string, payload map[string]any) {
	err := service.recorder.Record(context, audit.Event{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
	})
	if err != nil {
		service.logger.Error("audit record failed", "action", action, "error", err)
	}
}
