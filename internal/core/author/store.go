// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package author

import "context"

type Repository interface {
	ListAuthors(context context.Context, f Filter, limit, offset int) ([]*Author, int, error)
	GetAuthor(context context.Context, id string) (*Author, error)
	// FindByNormalizedName returns the author carrying the matching key, or
	// a not-found error.
	FindByNormalizedName(context context.Context, normalized string) (*Author, error)
	CreateAuthor(context context.Context, a *Author) error
	UpdateAuthor(context context.Context, a *Author) error
	DeleteAuthor(context context.Context, id string) error
}
