// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package evidence

import "context"

// Repository is the persistence boundary for the evidence ledger.
type Repository interface {

	// ListByBook returns all evidence on a book, links included, oldest first.
	ListByBook(context context.Context, bookID string) ([]*Evidence, error)

	GetByID(context context.Context, id string) (*Evidence, error)

	// Create writes the evidence row and its links in one transaction.
	Create(context context.Context, record *Evidence) error

	// Delete removes the record and its links. Deleting evidence can reopen
	// a book's evidence gate; callers re-validate afterwards.
	Delete(context context.Context, id string) error
}
