// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package publication

import "context"

// PublishRecord carries everything the store needs to write one publication
// atomically: the snapshot row plus the book-status flip.
type PublishRecord struct {
	Publication *Publication

	// ExpectedCoverVersion is the ready cover version the snapshot was
	// built from. The store re-checks it, and axis completeness, inside
	// the transaction and aborts when the book moved underneath.
	ExpectedCoverVersion int
}

/*
Repository abstracts publication persistence.

Operations:

	Publish writes the snapshot row and flips the book to published in one
	transaction. It re-verifies the five axes and the ready cover inside
	the transaction; a mismatch aborts with ErrStateChanged semantics and
	leaves no rows behind.

	Latest returns the most recent publication for a book, or a not-found
	error when the book has never been published.

	GetByID returns one publication.

	ListByBook returns a book's full publication history, newest first.
*/
type Repository interface {
	Publish(context context.Context, record PublishRecord) error
	Latest(context context.Context, bookID string) (*Publication, error)
	GetByID(context context.Context, id string) (*Publication, error)
	ListByBook(context context.Context, bookID string, limit, offset int) ([]*Publication, int, error)
}
