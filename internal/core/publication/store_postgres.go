// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
PostgreSQL implementation of the publication store.

Publish runs in a single transaction that locks the book row, re-verifies
the axes and ready cover it is about to certify, inserts the snapshot, and
flips the book status. Any mismatch aborts the transaction whole.
*/
package publication

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/database/schema"
	"github.com/embershelf/embershelf/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// publicationSelect is the shared select list for publication rows.
func publicationSelect(where string) string {
	table := schema.CatalogPublication
	return fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s %s`,
		table.ID, table.BookID, table.TaxonomyVersionID, table.PreviousPublicationID,
		table.Snapshot, table.Diff, table.PublishedBy, table.CreatedAt,
		table.Table, where,
	)
}

func scanPublication(row pgx.Row) (*Publication, error) {
	record := &Publication{}
	var snapshotRaw []byte
	var diffRaw []byte
	err := row.Scan(
		&record.ID, &record.BookID, &record.TaxonomyVersionID, &record.PreviousPublicationID,
		&snapshotRaw, &diffRaw, &record.PublishedBy, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshotRaw, &record.Snapshot); err != nil {
		return nil, dberr.Wrap(err, "decoding publication snapshot")
	}
	if len(diffRaw) > 0 {
		record.Diff = &Diff{}
		if err := json.Unmarshal(diffRaw, record.Diff); err != nil {
			return nil, dberr.Wrap(err, "decoding publication diff")
		}
	}
	return record, nil
}

// # Lookups

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Publication, error) {
	table := schema.CatalogPublication
	query := publicationSelect(fmt.Sprintf("WHERE %s = $1", table.ID))

	record, err := scanPublication(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Publication")
		}
		return nil, dberr.Wrap(err, "finding publication")
	}
	return record, nil
}

func (repository *PostgresRepository) Latest(context context.Context, bookID string) (*Publication, error) {
	table := schema.CatalogPublication
	query := publicationSelect(fmt.Sprintf(
		"WHERE %s = $1 ORDER BY %s DESC LIMIT 1",
		table.BookID, table.CreatedAt,
	))

	record, err := scanPublication(repository.pool.QueryRow(context, query, bookID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Publication")
		}
		return nil, dberr.Wrap(err, "finding latest publication")
	}
	return record, nil
}

func (repository *PostgresRepository) ListByBook(context context.Context, bookID string, limit, offset int) ([]*Publication, int, error) {
	table := schema.CatalogPublication
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s, COUNT(*) OVER() AS total
		 FROM %s
		 WHERE %s = $1
		 ORDER BY %s DESC
		 LIMIT $2 OFFSET $3`,
		table.ID, table.BookID, table.TaxonomyVersionID, table.PreviousPublicationID,
		table.Snapshot, table.Diff, table.PublishedBy, table.CreatedAt,
		table.Table, table.BookID, table.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, bookID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "listing publications")
	}
	defer rows.Close()

	var records []*Publication
	var total int
	for rows.Next() {
		record := &Publication{}
		var snapshotRaw, diffRaw []byte
		err := rows.Scan(
			&record.ID, &record.BookID, &record.TaxonomyVersionID, &record.PreviousPublicationID,
			&snapshotRaw, &diffRaw, &record.PublishedBy, &record.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scanning publication")
		}
		if err := json.Unmarshal(snapshotRaw, &record.Snapshot); err != nil {
			return nil, 0, dberr.Wrap(err, "decoding publication snapshot")
		}
		if len(diffRaw) > 0 {
			record.Diff = &Diff{}
			if err := json.Unmarshal(diffRaw, record.Diff); err != nil {
				return nil, 0, dberr.Wrap(err, "decoding publication diff")
			}
		}
		records = append(records, record)
	}
	return records, total, dberr.Wrap(rows.Err(), "listing publications")
}

// # Publish

func (repository *PostgresRepository) Publish(context context.Context, record PublishRecord) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "beginning publish transaction")
	}
	defer transaction.Rollback(context)

	publication := record.Publication

	if err := lockBook(context, transaction, publication.BookID); err != nil {
		return err
	}
	if err := verifyAxesComplete(context, transaction, publication.BookID); err != nil {
		return err
	}
	if err := verifyReadyCover(context, transaction, publication.BookID, record.ExpectedCoverVersion); err != nil {
		return err
	}

	snapshotRaw, err := json.Marshal(publication.Snapshot)
	if err != nil {
		return dberr.Wrap(err, "encoding publication snapshot")
	}
	var diffRaw []byte
	if publication.Diff != nil {
		diffRaw, err = json.Marshal(publication.Diff)
		if err != nil {
			return dberr.Wrap(err, "encoding publication diff")
		}
	}

	table := schema.CatalogPublication
	insert := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING %s`,
		table.Table,
		table.ID, table.BookID, table.TaxonomyVersionID, table.PreviousPublicationID,
		table.Snapshot, table.Diff, table.PublishedBy,
		table.CreatedAt,
	)
	err = transaction.QueryRow(context, insert,
		publication.ID, publication.BookID, publication.TaxonomyVersionID,
		publication.PreviousPublicationID, snapshotRaw, diffRaw, publication.PublishedBy,
	).Scan(&publication.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "inserting publication")
	}

	books := schema.CatalogBook
	update := fmt.Sprintf(
		`UPDATE %s
		 SET %s = 'published',
		     %s = $2,
		     %s = COALESCE(%s, NOW()),
		     %s = NOW(),
		     %s = NOW()
		 WHERE %s = $1`,
		books.Table,
		books.Status,
		books.LivePublicationID,
		books.FirstPublishedAt, books.FirstPublishedAt,
		books.LastPublishedAt,
		books.UpdatedAt,
		books.ID,
	)
	if _, err := transaction.Exec(context, update, publication.BookID, publication.ID); err != nil {
		return dberr.Wrap(err, "updating book publish state")
	}

	return dberr.Wrap(transaction.Commit(context), "committing publish")
}

// lockBook takes the per-book row lock that serializes publishes against
// concurrent tag, axis, and cover mutations.
func lockBook(context context.Context, transaction pgx.Tx, bookID string) error {
	table := schema.CatalogBook
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL FOR UPDATE",
		table.ID, table.Table, table.ID, table.DeletedAt,
	)
	var id string
	if err := transaction.QueryRow(context, query, bookID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return apperr.NotFound("Book")
		}
		return dberr.Wrap(err, "locking book")
	}
	return nil
}

// verifyAxesComplete re-checks, under the row lock, that all five axis
// slots are still filled.
func verifyAxesComplete(context context.Context, transaction pgx.Tx, bookID string) error {
	table := schema.CatalogBookAxes
	query := fmt.Sprintf(
		`SELECT %s IS NOT NULL AND %s IS NOT NULL AND %s IS NOT NULL
		        AND %s IS NOT NULL AND %s IS NOT NULL
		 FROM %s WHERE %s = $1`,
		table.WorldFrameworkID, table.PairingID, table.HeatLevelID,
		table.SeriesStatusID, table.ConsentModeID,
		table.Table, table.BookID,
	)
	var complete bool
	if err := transaction.QueryRow(context, query, bookID).Scan(&complete); err != nil {
		if err == pgx.ErrNoRows {
			return apperr.StateChanged("the book's axes changed while publishing")
		}
		return dberr.Wrap(err, "verifying book axes")
	}
	if !complete {
		return apperr.StateChanged("the book's axes changed while publishing")
	}
	return nil
}

// verifyReadyCover re-checks, under the row lock, that the ready cover the
// snapshot certifies is still the ready cover.
func verifyReadyCover(context context.Context, transaction pgx.Tx, bookID string, expectedVersion int) error {
	table := schema.CatalogCoverAsset
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s = 'ready' ORDER BY %s DESC LIMIT 1",
		table.Version, table.Table, table.BookID, table.State, table.Version,
	)
	var version int
	if err := transaction.QueryRow(context, query, bookID).Scan(&version); err != nil {
		if err == pgx.ErrNoRows {
			return apperr.StateChanged("the book's cover changed while publishing")
		}
		return dberr.Wrap(err, "verifying book cover")
	}
	if version != expectedVersion {
		return apperr.StateChanged("the book's cover changed while publishing")
	}
	return nil
}
