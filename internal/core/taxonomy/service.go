// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package taxonomy

import (
	"context"
	"log/slog"

	"github.com/embershelf/embershelf/internal/platform/validate"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// # Service Layer

// Service orchestrates reads and admin writes against the taxonomy store.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs a new taxonomy [Service].
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// # Catalog Reads

/*
Catalog returns every category with its child tags in display order.

Description: Reads through the Redis-backed cache. Sensitive tags are
excluded unless includeSensitive is set (admin and curator views).

Parameters:
  - context: context.Context
  - includeSensitive: bool

Returns:
  - []*Category: Categories with their Tags populated
  - error: Retrieval failures
*/
func (service *Service) Catalog(context context.Context, includeSensitive bool) ([]*Category, error) {
	if catalog, ok := service.cache.GetCatalog(context, includeSensitive); ok {
		return catalog, nil
	}

	catalog, err := service.repo.ListCatalog(context, includeSensitive)
	if err != nil {
		return nil, err
	}

	service.cache.SetCatalog(context, includeSensitive, catalog)
	return catalog, nil
}

// GetTag retrieves a single tag by id.
func (service *Service) GetTag(context context.Context, id string) (*Tag, error) {
	return service.repo.GetTagByID(context, id)
}

// GetTagBySlug resolves a (category, slug) pair to a tag.
func (service *Service) GetTagBySlug(context context.Context, categoryKey, slug string) (*Tag, error) {
	return service.repo.GetTagBySlug(context, categoryKey, slug)
}

/*
MissingTagIDs reports which of the given tag ids do not exist in the taxonomy.

Description: Used by the intake workflow to validate every referenced tag id
before a submission is accepted. An empty result means all ids resolve.

Parameters:
  - context: context.Context
  - ids: []string (candidate tag ids, duplicates tolerated)

Returns:
  - []string: The offending ids, in input order, deduplicated
  - error: Retrieval failures
*/
func (service *Service) MissingTagIDs(context context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := service.repo.GetTagsByIDs(context, ids)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(found))
	for _, tag := range found {
		known[tag.ID] = struct{}{}
	}

	var missing []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// ActiveVersion returns the active taxonomy version, or a not-found error
// when no version is marked active (a configuration fault).
func (service *Service) ActiveVersion(context context.Context) (*Version, error) {
	return service.repo.ActiveVersion(context)
}

// # Admin Writes

/*
CreateTag persists a new admin-defined tag and invalidates the catalog cache.

Parameters:
  - context: context.Context
  - tag: *Tag (CategoryKey, Name, Slug required; ID generated when empty)

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateTag(context context.Context, tag *Tag) error {
	validator := &validate.Validator{}
	validator.Required(FieldCategory, tag.CategoryKey)
	validator.Required(FieldName, tag.Name).MaxLen(FieldName, tag.Name, 120)
	validator.Required(FieldSlug, tag.Slug).Slug(FieldSlug, tag.Slug)
	if err := validator.Err(); err != nil {
		return err
	}

	if tag.ID == "" {
		tag.ID = uuid.New()
	}

	if err := service.repo.CreateTag(context, tag); err != nil {
		return err
	}

	service.cache.Invalidate(context)
	service.logger.Info("tag_created",
		slog.String("tag_id", tag.ID),
		slog.String("category", tag.CategoryKey),
		slog.String("slug", tag.Slug),
	)
	return nil
}

/*
UpdateTag persists display-metadata changes to an existing tag and
invalidates the catalog cache. Tag identity is immutable.
*/
func (service *Service) UpdateTag(context context.Context, tag *Tag) error {
	validator := &validate.Validator{}
	validator.Required(FieldID, tag.ID)
	validator.Required(FieldName, tag.Name).MaxLen(FieldName, tag.Name, 120)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateTag(context, tag); err != nil {
		return err
	}

	service.cache.Invalidate(context)
	return nil
}
