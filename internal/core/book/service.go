// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package book

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/dberr"
	"github.com/embershelf/embershelf/internal/platform/validate"
	"github.com/embershelf/embershelf/pkg/slug"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// maxSlugAttempts bounds slug disambiguation before creation fails.
const maxSlugAttempts = 25

// # Service Layer

// Service orchestrates the book curation lifecycle: duplicate-checked
// creation, tag/axis assignment, covers, quotes, and validation reports.
type Service struct {
	repository Repository
	taxonomy   *taxonomy.Service
	engine     *curation.Engine
	recorder   audit.Recorder
	logger     *slog.Logger
}

// NewService constructs a new [Service]. The engine supplies the category
// caps so add-time and validate-time enforcement share one configuration.
func NewService(repository Repository, taxonomyService *taxonomy.Service, engine *curation.Engine, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		taxonomy:   taxonomyService,
		engine:     engine,
		recorder:   recorder,
		logger:     logger,
	}
}

// # Book Lookups

// ListBooks retrieves a paginated and filtered collection of books.
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repository.List(context, filter, limit, offset)
}

/*
GetBook fetches a single book aggregate by UUID or SEO slug.

Description: The service determines the lookup strategy from the identifier
format: UUID-shaped input resolves by primary key, anything else by slug.

Parameters:
  - context: context.Context
  - identifier: string (UUID or slug)

Returns:
  - *Book: The hydrated aggregate (identifiers, authors, axes, tags, cover, quotes)
  - error: NotFound when no match exists
*/
func (service *Service) GetBook(context context.Context, identifier string) (*Book, error) {
	if isUUID(identifier) {
		return service.repository.FindByID(context, identifier)
	}
	return service.repository.FindBySlug(context, identifier)
}

// # Duplicate Detection

/*
DetectDuplicates runs all matching tiers for a proposed book.

Description: The raw identifier (if any) is normalized first; malformed input
is rejected before any matching. All four tiers are queried and merged so the
caller sees everything found, each existing book reported once under the
highest tier that matched it.

Parameters:
  - context: context.Context
  - title: string
  - authorName: string (optional)
  - rawIdentifier: string (optional ASIN/ISBN-10)

Returns:
  - []DuplicateCandidate: Ranked candidates, empty when the book looks new
  - string: The normalized identifier ("" when none was supplied)
  - error: Identifier validation or lookup errors
*/
func (service *Service) DetectDuplicates(context context.Context, title, authorName, rawIdentifier string) ([]DuplicateCandidate, string, error) {
	hitsByTier := make(map[string][]MatchHit, 4)

	normalizedIdentifier := ""
	if rawIdentifier != "" {
		normalized, err := NormalizeIdentifier(rawIdentifier)
		if err != nil {
			return nil, "", err
		}
		normalizedIdentifier = normalized

		hits, err := service.repository.MatchByIdentifier(context, normalizedIdentifier)
		if err != nil {
			return nil, "", err
		}
		hitsByTier[TierIdentifier] = hits
	}

	normalizedTitle := NormalizeTitle(title)

	if authorName != "" {
		hits, err := service.repository.MatchByNormalizedTitleAuthor(context, normalizedTitle, NormalizeAuthor(authorName))
		if err != nil {
			return nil, "", err
		}
		hitsByTier[TierTitleAuthor] = hits
	}

	rawHits, err := service.repository.MatchByRawTitle(context, title)
	if err != nil {
		return nil, "", err
	}
	hitsByTier[TierRawTitle] = rawHits

	normalizedHits, err := service.repository.MatchByNormalizedTitle(context, normalizedTitle)
	if err != nil {
		return nil, "", err
	}
	hitsByTier[TierNormalizedTitle] = normalizedHits

	return rankCandidates(hitsByTier), normalizedIdentifier, nil
}

// # Book Creation

/*
CreateBook creates a draft book after duplicate checks pass or are overridden.

Description: Runs the duplicate detector first. When candidates exist and no
override was requested, creation is refused with the full candidate list and
nothing is written (the refusal itself is audited). An override of a
high-confidence candidate requires a non-empty justification. Creation then
derives a slug from the title, disambiguating collisions with a numeric
suffix, and writes the book, identifier, author link, and empty axes record
as one transaction.

Parameters:
  - context: context.Context
  - input: CreateInput
  - actorID: string (curator performing the action)

Returns:
  - *Book: The created draft
  - []DuplicateCandidate: Non-nil when creation was refused over duplicates
  - error: Validation, duplicate, or persistence errors
*/
func (service *Service) CreateBook(context context.Context, input CreateInput, actorID string) (*Book, []DuplicateCandidate, error) {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 500)
	validator.Required(FieldAuthorName, input.AuthorName).MaxLen(FieldAuthorName, input.AuthorName, 200)
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	candidates, normalizedIdentifier, err := service.DetectDuplicates(context, input.Title, input.AuthorName, input.IdentifierValue)
	if err != nil {
		return nil, nil, err
	}

	if len(candidates) > 0 {
		if !input.Override {
			service.record(context, audit.Event{
				ActorID:    actorID,
				Action:     audit.ActionDuplicateDetected,
				EntityType: audit.EntityBook,
				Payload: map[string]any{
					"title":      input.Title,
					"candidates": candidates,
				},
			})
			return nil, candidates, duplicatesFound(len(candidates))
		}
		if hasHighConfidence(candidates) && input.Justification == "" {
			return nil, candidates, apperr.ValidationError(
				"overriding a high-confidence duplicate requires a justification",
				apperr.FieldError{Field: FieldJustification, Message: "must not be empty"},
			)
		}
	}

	bookSlug, err := service.availableSlug(context, input.Title)
	if err != nil {
		return nil, nil, err
	}

	entity := &Book{
		ID:              uuid.New(),
		Title:           input.Title,
		Slug:            bookSlug,
		Status:          StatusDraft,
		Synopsis:        input.Synopsis,
		SeriesName:      input.SeriesName,
		SeriesIndex:     input.SeriesIndex,
		PublishYear:     input.PublishYear,
		NormalizedTitle: NormalizeTitle(input.Title),
	}

	bundle := CreateBundle{
		Book:             entity,
		AuthorName:       input.AuthorName,
		NormalizedAuthor: NormalizeAuthor(input.AuthorName),
	}
	if normalizedIdentifier != "" {
		kind := input.IdentifierKind
		if kind == "" {
			kind = IdentifierASIN
		}
		bundle.Identifier = &Identifier{
			ID:     uuid.New(),
			BookID: entity.ID,
			Kind:   kind,
			Value:  normalizedIdentifier,
		}
	}

	outcome, err := service.repository.Create(context, bundle)
	if err != nil {
		// Two submissions can pass the duplicate read and race to insert;
		// the unique indexes are the backstop. Both the identifier index and
		// the slug index can fire here (slug availability is checked before
		// this transaction opens), so report the one that actually collided.
		switch dberr.UniqueConstraint(err) {
		case constraintBookSlug:
			return nil, nil, apperr.Conflict("a book with this slug appeared concurrently")
		case constraintBookIdentifier:
			return nil, nil, apperr.Conflict("a book with this identifier appeared concurrently")
		}
		if dberr.IsUniqueViolation(err) {
			return nil, nil, apperr.Conflict("a book with this identifier appeared concurrently")
		}
		return nil, nil, err
	}

	if outcome.AuthorCreated {
		service.record(context, audit.Event{
			ActorID:    actorID,
			Action:     audit.ActionAuthorCreated,
			EntityType: audit.EntityAuthor,
			EntityID:   outcome.AuthorID,
			Payload:    map[string]any{"name": input.AuthorName},
		})
	}

	action := audit.ActionBookCreated
	payload := map[string]any{"title": entity.Title, "slug": entity.Slug}
	if input.Override && len(candidates) > 0 {
		action = audit.ActionBookForceCreated
		payload["bypassed_duplicates"] = candidates
		payload["justification"] = input.Justification
	}
	service.record(context, audit.Event{
		ActorID:    actorID,
		Action:     action,
		EntityType: audit.EntityBook,
		EntityID:   entity.ID,
		Payload:    payload,
	})

	service.logger.Info("book_created",
		slog.String("book_id", entity.ID),
		slog.String("slug", entity.Slug),
		slog.Bool("override", input.Override),
	)

	return entity, nil, nil
}

// # Validation Report

/*
Validation computes the current gate/contradiction/cap report for a book.

Description: Loads the full aggregate and feeds it through the validation
engine. The report is advisory here; the publication engine repeats the
check authoritatively inside its transaction.

Parameters:
  - context: context.Context
  - bookID: string

Returns:
  - curation.Result: Gates, contradictions, caps, and derived queues
  - error: NotFound or storage errors
*/
func (service *Service) Validation(context context.Context, bookID string) (curation.Result, error) {
	entity, err := service.repository.FindByID(context, bookID)
	if err != nil {
		return curation.Result{}, err
	}
	return service.engine.Validate(ValidationInput(entity)), nil
}

// ValidationInput maps a book aggregate onto the validation engine's input.
func ValidationInput(entity *Book) curation.Input {
	input := curation.Input{
		Axes: curation.AxisSelection{
			WorldFramework: entity.Axes.WorldFramework,
			Pairing:        entity.Axes.Pairing,
			HeatLevel:      entity.Axes.HeatLevel,
			SeriesStatus:   entity.Axes.SeriesStatus,
			ConsentMode:    entity.Axes.ConsentMode,
		},
		TagsByCategory: make(map[string][]taxonomy.Tag),
	}

	for _, tag := range entity.Tags {
		input.TagsByCategory[tag.CategoryKey] = append(input.TagsByCategory[tag.CategoryKey], tag)
	}

	if entity.Cover != nil && entity.Cover.State == CoverStateReady {
		input.Cover = &curation.CoverState{Version: entity.Cover.Version, Ready: true}
	}

	return input
}

// # Covers & Quotes

// AddCover records the next cover version for a book. A ready cover
// supersedes the previous one and satisfies the cover gate.
func (service *Service) AddCover(context context.Context, bookID, imageURL string, ready bool, actorID string) (*CoverAsset, error) {
	validator := &validate.Validator{}
	validator.Required(FieldImageURL, imageURL).MaxLen(FieldImageURL, imageURL, 1000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	state := CoverStatePending
	if ready {
		state = CoverStateReady
	}

	cover := &CoverAsset{
		ID:       uuid.New(),
		BookID:   bookID,
		State:    state,
		ImageURL: imageURL,
	}
	if err := service.repository.AddCover(context, cover); err != nil {
		return nil, err
	}

	service.logger.Info("cover_added",
		slog.String("book_id", bookID),
		slog.Int("version", cover.Version),
		slog.String("state", cover.State),
	)

	return cover, nil
}

// AddQuote attaches a standout quote. Books carry at most two.
func (service *Service) AddQuote(context context.Context, bookID, text string, sortOrder int, actorID string) (*StandoutQuote, error) {
	validator := &validate.Validator{}
	validator.Required(FieldQuote, text).MaxLen(FieldQuote, text, 2000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	quote := &StandoutQuote{
		ID:        uuid.New(),
		BookID:    bookID,
		Quote:     text,
		SortOrder: sortOrder,
	}
	if err := service.repository.AddQuote(context, quote); err != nil {
		return nil, err
	}

	return quote, nil
}

// # Internal Helpers

// availableSlug derives a URL-safe slug from the title and disambiguates
// collisions with a numeric suffix, failing after a bounded retry count.
func (service *Service) availableSlug(context context.Context, title string) (string, error) {
	base := slug.From(title)

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		taken, err := service.repository.SlugTaken(context, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", apperr.Internal(fmt.Errorf("slug disambiguation exhausted after %d attempts for %q", maxSlugAttempts, base))
}

// record persists an audit event best-effort.
func (service *Service) record(context context.Context, event audit.Event) {
	if err := service.recorder.Record(context, event); err != nil {
		service.logger.Error("audit_event_dropped", slog.String("action", event.Action))
	}
}

// duplicatesFound builds the structured refusal for an un-overridden
// duplicate hit. The HTTP layer attaches the candidate list alongside.
func duplicatesFound(count int) *apperr.AppError {
	return &apperr.AppError{
		Code:       "DUPLICATES_FOUND",
		Message:    fmt.Sprintf("%d possible duplicate(s) found; review or resubmit with an override", count),
		HTTPStatus: http.StatusConflict,
	}
}

// isUUID returns true if the string matches the standard UUID length.
func isUUID(s string) bool {
	return len(s) == 36
}
