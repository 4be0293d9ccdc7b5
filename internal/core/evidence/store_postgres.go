// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package evidence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embershelf/embershelf/internal/platform/database/schema"
	"github.com/embershelf/embershelf/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using a pgxpool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a fully wired postgres implementation.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// evidenceSelect is the shared select list for evidence rows.
func evidenceSelect(where string) string {
	return fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s
	`,
		schema.CatalogEvidence.ID, schema.CatalogEvidence.BookID, schema.CatalogEvidence.Kind,
		schema.CatalogEvidence.Body, schema.CatalogEvidence.Chapter, schema.CatalogEvidence.Page,
		schema.CatalogEvidence.KindleLocation, schema.CatalogEvidence.Note,
		schema.CatalogEvidence.CreatedBy, schema.CatalogEvidence.CreatedAt,
		schema.CatalogEvidence.Table, where,
	)
}

func (repository *PostgresRepository) ListByBook(context context.Context, bookID string) ([]*Evidence, error) {
	query := evidenceSelect(schema.CatalogEvidence.BookID+" = $1") +
		fmt.Sprintf(" ORDER BY %s ASC", schema.CatalogEvidence.CreatedAt)

	rows, err := repository.db.Query(context, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_evidence")
	}
	defer rows.Close()

	var records []*Evidence
	byID := make(map[string]*Evidence)

	for rows.Next() {
		record := &Evidence{}
		err := rows.Scan(
			&record.ID, &record.BookID, &record.Kind, &record.Body,
			&record.Location.Chapter, &record.Location.Page, &record.Location.KindleLocation,
			&record.Note, &record.CreatedBy, &record.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_evidence")
		}
		records = append(records, record)
		byID[record.ID] = record
	}
	rows.Close()

	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}

	linkQuery := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = ANY($1)
	`,
		schema.CatalogEvidenceLink.EvidenceID, schema.CatalogEvidenceLink.TagID, schema.CatalogEvidenceLink.Axis,
		schema.CatalogEvidenceLink.Table, schema.CatalogEvidenceLink.EvidenceID,
	)

	linkRows, err := repository.db.Query(context, linkQuery, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "list_evidence_links")
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var evidenceID string
		var link Link
		if err := linkRows.Scan(&evidenceID, &link.TagID, &link.Axis); err != nil {
			return nil, dberr.Wrap(err, "scan_evidence_link")
		}
		if record, ok := byID[evidenceID]; ok {
			record.Links = append(record.Links, link)
		}
	}

	return records, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Evidence, error) {
	query := evidenceSelect(schema.CatalogEvidence.ID + " = $1")

	record := &Evidence{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&record.ID, &record.BookID, &record.Kind, &record.Body,
		&record.Location.Chapter, &record.Location.Page, &record.Location.KindleLocation,
		&record.Note, &record.CreatedBy, &record.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_evidence")
	}

	linkQuery := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.CatalogEvidenceLink.TagID, schema.CatalogEvidenceLink.Axis,
		schema.CatalogEvidenceLink.Table, schema.CatalogEvidenceLink.EvidenceID,
	)

	rows, err := repository.db.Query(context, linkQuery, id)
	if err != nil {
		return nil, dberr.Wrap(err, "get_evidence_links")
	}
	defer rows.Close()

	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.TagID, &link.Axis); err != nil {
			return nil, dberr.Wrap(err, "scan_evidence_link")
		}
		record.Links = append(record.Links, link)
	}

	return record, nil
}

// Create writes the evidence row and its links in one transaction.
func (repository *PostgresRepository) Create(context context.Context, record *Evidence) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_evidence")
	}
	defer transaction.Rollback(context)

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING %s
	`,
		schema.CatalogEvidence.Table,
		schema.CatalogEvidence.ID, schema.CatalogEvidence.BookID, schema.CatalogEvidence.Kind,
		schema.CatalogEvidence.Body, schema.CatalogEvidence.Chapter, schema.CatalogEvidence.Page,
		schema.CatalogEvidence.KindleLocation, schema.CatalogEvidence.Note, schema.CatalogEvidence.CreatedBy,
		schema.CatalogEvidence.CreatedAt, schema.CatalogEvidence.CreatedAt,
	)
	err = transaction.QueryRow(context, insert,
		record.ID, record.BookID, record.Kind, record.Body,
		record.Location.Chapter, record.Location.Page, record.Location.KindleLocation,
		record.Note, record.CreatedBy,
	).Scan(&record.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_evidence")
	}

	linkInsert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		schema.CatalogEvidenceLink.Table,
		schema.CatalogEvidenceLink.EvidenceID, schema.CatalogEvidenceLink.TagID, schema.CatalogEvidenceLink.Axis,
	)
	for _, link := range record.Links {
		if _, err := transaction.Exec(context, linkInsert, record.ID, link.TagID, link.Axis); err != nil {
			return dberr.Wrap(err, "insert_evidence_link")
		}
	}

	return dberr.Wrap(transaction.Commit(context), "commit_create_evidence")
}

// Delete removes the record; links follow via the foreign key cascade.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogEvidence.Table, schema.CatalogEvidence.ID)

	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "delete_evidence")
}
