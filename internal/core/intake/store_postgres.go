// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

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

func intakeColumns() string {
	table := schema.IntakeBookIntake
	return strings.Join(table.Columns(), ", ")
}

func scanIntake(row pgx.Row) (*Intake, error) {
	record := &Intake{}
	var selectionsRaw []byte
	err := row.Scan(
		&record.ID, &record.SubmittedBy, &record.Title, &record.AuthorName,
		&record.IdentifierKind, &record.IdentifierValue,
		&record.SeriesName, &record.SeriesIndex, &record.PublishYear,
		&record.Axes.WorldFrameworkID, &record.Axes.PairingID, &record.Axes.HeatLevelID,
		&record.Axes.SeriesStatusID, &record.Axes.ConsentModeID,
		&selectionsRaw, &record.Notes, &record.State,
		&record.DecisionNotes, &record.DecidedBy, &record.DecidedAt,
		&record.CreatedBookID, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(selectionsRaw) > 0 {
		if err := json.Unmarshal(selectionsRaw, &record.TagSelections); err != nil {
			return nil, dberr.Wrap(err, "decoding intake tag selections")
		}
	}
	return record, nil
}

// # Lookups

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Intake, error) {
	table := schema.IntakeBookIntake
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		intakeColumns(), table.Table, table.ID,
	)

	record, err := scanIntake(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Intake")
		}
		return nil, dberr.Wrap(err, "finding intake")
	}
	return record, nil
}

func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Intake, int, error) {
	table := schema.IntakeBookIntake

	conditions := []string{"TRUE"}
	arguments := []any{}
	argument := 1

	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.State, argument))
		arguments = append(arguments, string(filter.State))
		argument++
	}
	if filter.SubmittedBy != "" {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.SubmittedBy, argument))
		arguments = append(arguments, filter.SubmittedBy)
		argument++
	}

	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) OVER() AS total
		 FROM %s
		 WHERE %s
		 ORDER BY %s DESC
		 LIMIT $%d OFFSET $%d`,
		intakeColumns(), table.Table, strings.Join(conditions, " AND "),
		table.CreatedAt, argument, argument+1,
	)
	arguments = append(arguments, limit, offset)

	rows, err := repository.pool.Query(context, query, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "listing intakes")
	}
	defer rows.Close()

	var records []*Intake
	var total int
	for rows.Next() {
		record := &Intake{}
		var selectionsRaw []byte
		err := rows.Scan(
			&record.ID, &record.SubmittedBy, &record.Title, &record.AuthorName,
			&record.IdentifierKind, &record.IdentifierValue,
			&record.SeriesName, &record.SeriesIndex, &record.PublishYear,
			&record.Axes.WorldFrameworkID, &record.Axes.PairingID, &record.Axes.HeatLevelID,
			&record.Axes.SeriesStatusID, &record.Axes.ConsentModeID,
			&selectionsRaw, &record.Notes, &record.State,
			&record.DecisionNotes, &record.DecidedBy, &record.DecidedAt,
			&record.CreatedBookID, &record.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scanning intake")
		}
		if len(selectionsRaw) > 0 {
			if err := json.Unmarshal(selectionsRaw, &record.TagSelections); err != nil {
				return nil, 0, dberr.Wrap(err, "decoding intake tag selections")
			}
		}
		records = append(records, record)
	}
	return records, total, dberr.Wrap(rows.Err(), "listing intakes")
}

func (repository *PostgresRepository) ActiveExists(context context.Context, submittedBy, identifierValue string) (bool, error) {
	table := schema.IntakeBookIntake
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s IN ('pending', 'approved'))",
		table.Table, table.SubmittedBy, table.IdentifierValue, table.State,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, submittedBy, identifierValue).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "checking intake uniqueness")
	}
	return exists, nil
}

// # Mutations

func (repository *PostgresRepository) Create(context context.Context, record *Intake) error {
	table := schema.IntakeBookIntake

	var selectionsRaw []byte
	if len(record.TagSelections) > 0 {
		encoded, err := json.Marshal(record.TagSelections)
		if err != nil {
			return dberr.Wrap(err, "encoding intake tag selections")
		}
		selectionsRaw = encoded
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING %s`,
		table.Table,
		table.ID, table.SubmittedBy, table.Title, table.AuthorName,
		table.IdentifierKind, table.IdentifierValue,
		table.SeriesName, table.SeriesIndex, table.PublishYear,
		table.WorldFrameworkID, table.PairingID, table.HeatLevelID,
		table.SeriesStatusID, table.ConsentModeID,
		table.TagSelections, table.Notes, table.State,
		table.CreatedAt,
	)
	err := repository.pool.QueryRow(context, query,
		record.ID, record.SubmittedBy, record.Title, record.AuthorName,
		string(record.IdentifierKind), record.IdentifierValue,
		record.SeriesName, record.SeriesIndex, record.PublishYear,
		record.Axes.WorldFrameworkID, record.Axes.PairingID, record.Axes.HeatLevelID,
		record.Axes.SeriesStatusID, record.Axes.ConsentModeID,
		selectionsRaw, record.Notes, string(record.State),
	).Scan(&record.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "creating intake")
	}
	return nil
}

func (repository *PostgresRepository) MarkApproved(context context.Context, id, decidedBy, notes, createdBookID string) (bool, error) {
	table := schema.IntakeBookIntake
	query := fmt.Sprintf(
		`UPDATE %s
		 SET %s = 'approved', %s = $2, %s = $3, %s = $4, %s = NOW()
		 WHERE %s = $1 AND %s = 'pending'`,
		table.Table,
		table.State, table.DecidedBy, table.DecisionNotes, table.CreatedBookID, table.DecidedAt,
		table.ID, table.State,
	)

	tag, err := repository.pool.Exec(context, query, id, decidedBy, notes, createdBookID)
	if err != nil {
		return false, dberr.Wrap(err, "approving intake")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) MarkRejected(context context.Context, id, decidedBy, notes string) (bool, error) {
	table := schema.IntakeBookIntake
	query := fmt.Sprintf(
		`UPDATE %s
		 SET %s = 'rejected', %s = $2, %s = $3, %s = NOW()
		 WHERE %s = $1 AND %s = 'pending'`,
		table.Table,
		table.State, table.DecidedBy, table.DecisionNotes, table.DecidedAt,
		table.ID, table.State,
	)

	tag, err := repository.pool.Exec(context, query, id, decidedBy, notes)
	if err != nil {
		return false, dberr.Wrap(err, "rejecting intake")
	}
	return tag.RowsAffected() == 1, nil
}
