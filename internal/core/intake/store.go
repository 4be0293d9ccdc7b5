// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package intake

import "context"

/*
Repository is the persistence boundary for book intakes.

Operations:

	Create writes a new pending intake. The store carries a partial unique
	constraint on (submittedby, identifiervalue) over non-rejected rows;
	violations surface through dberr so the service can report the
	duplicate-submission conflict.

	GetByID returns one intake.

	List returns intakes matching the filter, newest first, with a total.

	ActiveExists reports whether the author already has a pending or
	approved intake for the normalized identifier.

	MarkApproved and MarkRejected move a pending intake to its terminal
	state. Both are conditional on state = pending and report updated=false
	when another decision won the race.
*/
type Repository interface {
	Create(context context.Context, record *Intake) error
	GetByID(context context.Context, id string) (*Intake, error)
	List(context context.Context, filter Filter, limit, offset int) ([]*Intake, int, error)
	ActiveExists(context context.Context, submittedBy, identifierValue string) (bool, error)
	MarkApproved(context context.Context, id, decidedBy, notes, createdBookID string) (updated bool, err error)
	MarkRejected(context context.Context, id, decidedBy, notes string) (updated bool, err error)
}
