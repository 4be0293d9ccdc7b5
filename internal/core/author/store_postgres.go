// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package author

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/database/schema"
	"github.com/embershelf/embershelf/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListAuthors(context context.Context, f Filter, limit, offset int) ([]*Author, int, error) {
	table := schema.CatalogAuthor

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, COUNT(*) OVER() AS total
		FROM %s
		WHERE %s IS NULL
	`,
		table.ID, table.Name, table.NormalizedName, table.Bio,
		table.CreatedAt, table.UpdatedAt,
		table.Table, table.DeletedAt,
	)

	args := []any{}
	if f.Query != "" {
		query += fmt.Sprintf(" AND %s ILIKE $1", table.Name)
		args = append(args, "%"+f.Query+"%")
	}
	query += fmt.Sprintf(" ORDER BY %s ASC LIMIT $%d OFFSET $%d", table.Name, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "listing authors")
	}
	defer rows.Close()

	var authors []*Author
	var total int
	for rows.Next() {
		a := &Author{}
		if err := rows.Scan(&a.ID, &a.Name, &a.NormalizedName, &a.Bio, &a.CreatedAt, &a.UpdatedAt, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "scanning author")
		}
		authors = append(authors, a)
	}

	return authors, total, dberr.Wrap(rows.Err(), "listing authors")
}

func (repository *PostgresRepository) GetAuthor(context context.Context, id string) (*Author, error) {
	return repository.findOne(context, schema.CatalogAuthor.ID, id)
}

func (repository *PostgresRepository) FindByNormalizedName(context context.Context, normalized string) (*Author, error) {
	return repository.findOne(context, schema.CatalogAuthor.NormalizedName, normalized)
}

func (repository *PostgresRepository) findOne(context context.Context, column, value string) (*Author, error) {
	table := schema.CatalogAuthor
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`,
		table.ID, table.Name, table.NormalizedName, table.Bio,
		table.CreatedAt, table.UpdatedAt,
		table.Table, column, table.DeletedAt,
	)

	a := &Author{}
	err := repository.db.QueryRow(context, query, value).Scan(
		&a.ID, &a.Name, &a.NormalizedName, &a.Bio, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Author")
		}
		return nil, dberr.Wrap(err, "finding author")
	}
	return a, nil
}

func (repository *PostgresRepository) CreateAuthor(context context.Context, a *Author) error {
	table := schema.CatalogAuthor
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s
	`,
		table.Table, table.ID, table.Name, table.NormalizedName, table.Bio,
		table.CreatedAt, table.UpdatedAt,
		table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.NormalizedName, a.Bio).Scan(&a.CreatedAt, &a.UpdatedAt)
	return dberr.Wrap(err, "creating author")
}

func (repository *PostgresRepository) UpdateAuthor(context context.Context, a *Author) error {
	table := schema.CatalogAuthor
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		table.Table, table.Name, table.NormalizedName, table.Bio, table.UpdatedAt,
		table.ID, table.DeletedAt,
		table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.NormalizedName, a.Bio).Scan(&a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return apperr.NotFound("Author")
	}
	return dberr.Wrap(err, "updating author")
}

func (repository *PostgresRepository) DeleteAuthor(context context.Context, id string) error {
	table := schema.CatalogAuthor
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		table.Table, table.DeletedAt, table.ID, table.DeletedAt,
	)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "deleting author")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Author")
	}
	return nil
}
