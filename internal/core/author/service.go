// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package author

import (
	"context"
	"log/slog"

	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/dberr"
	"github.com/embershelf/embershelf/internal/platform/validate"
	"github.com/embershelf/embershelf/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	return service.repo.ListAuthors(context, filter, limit, offset)
}

func (service *Service) GetAuthor(context context.Context, id string) (*Author, error) {
	return service.repo.GetAuthor(context, id)
}

// CreateAuthor registers a pen name ahead of any book. Two distinct names
// normalizing to the same key are the same author; the second create
// conflicts instead of splitting the catalog.
func (service *Service) CreateAuthor(context context.Context, author *Author) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, 200)
	if err := validator.Err(); err != nil {
		return err
	}

	author.ID = uuid.New()
	author.NormalizedName = book.NormalizeAuthor(author.Name)

	if err := service.repo.CreateAuthor(context, author); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("an author with this name already exists")
		}
		return err
	}

	service.logger.Info("author_created", slog.String("name", author.Name))
	return nil
}

func (service *Service) UpdateAuthor(context context.Context, id string, author *Author) error {
	author.ID = id
	validator := &validate.Validator{}
	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, 200)
	if err := validator.Err(); err != nil {
		return err
	}

	author.NormalizedName = book.NormalizeAuthor(author.Name)

	if err := service.repo.UpdateAuthor(context, author); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("an author with this name already exists")
		}
		return err
	}

	service.logger.Info("author_updated", slog.String("author_id", author.ID))
	return nil
}

func (service *Service) DeleteAuthor(context context.Context, id string) error {
	if err := service.repo.DeleteAuthor(context, id); err != nil {
		return err
	}

	service.logger.Warn("author_deleted", slog.String("author_id", id))
	return nil
}
