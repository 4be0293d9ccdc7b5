// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package taxonomy

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

/*
ListCatalog retrieves every category with its child tags.

Description: Two ordered queries (categories, then tags) stitched together
in memory. The taxonomy is small (hundreds of rows), so grouping in Go is
cheaper than JSON aggregation here.

Parameters:
  - context: context.Context
  - includeSensitive: bool

Returns:
  - []*Category: Hierarchical catalog in display order
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) ListCatalog(context context.Context, includeSensitive bool) ([]*Category, error) {
	categories, err := repository.ListCategories(context)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
	`,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Name,
		schema.TaxonomyTag.Slug, schema.TaxonomyTag.ParentTagID, schema.TaxonomyTag.Sensitive,
		schema.TaxonomyTag.RequiresEvidence, schema.TaxonomyTag.Premium, schema.TaxonomyTag.SortOrder,
		schema.TaxonomyTag.CreatedAt, schema.TaxonomyTag.UpdatedAt,
		schema.TaxonomyTag.Table,
	)
	if !includeSensitive {
		query += fmt.Sprintf(" WHERE %s = FALSE", schema.TaxonomyTag.Sensitive)
	}
	query += fmt.Sprintf(" ORDER BY %s, %s, %s", schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.SortOrder, schema.TaxonomyTag.Name)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	byKey := make(map[string]*Category, len(categories))
	for _, category := range categories {
		byKey[category.Key] = category
	}

	for rows.Next() {
		var tag Tag
		if err := rows.Scan(
			&tag.ID, &tag.CategoryKey, &tag.Name, &tag.Slug, &tag.ParentTagID,
			&tag.Sensitive, &tag.RequiresEvidence, &tag.Premium, &tag.SortOrder,
			&tag.CreatedAt, &tag.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		if category, ok := byKey[tag.CategoryKey]; ok {
			category.Tags = append(category.Tags, tag)
		}
	}

	return categories, nil
}

// ListCategories returns the bare category records in display order.
func (repository *PostgresRepository) ListCategories(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s ASC
	`,
		schema.TaxonomyCategory.Key, schema.TaxonomyCategory.Label, schema.TaxonomyCategory.SingleSelect,
		schema.TaxonomyCategory.Premium, schema.TaxonomyCategory.SortOrder,
		schema.TaxonomyCategory.Table, schema.TaxonomyCategory.SortOrder,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category := &Category{}
		if err := rows.Scan(&category.Key, &category.Label, &category.SingleSelect, &category.Premium, &category.SortOrder); err != nil {
			return nil, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, category)
	}

	return categories, nil
}

// GetTagByID returns the tag with the given ID.
func (repository *PostgresRepository) GetTagByID(context context.Context, id string) (*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Name,
		schema.TaxonomyTag.Slug, schema.TaxonomyTag.ParentTagID, schema.TaxonomyTag.Sensitive,
		schema.TaxonomyTag.RequiresEvidence, schema.TaxonomyTag.Premium, schema.TaxonomyTag.SortOrder,
		schema.TaxonomyTag.CreatedAt, schema.TaxonomyTag.UpdatedAt,
		schema.TaxonomyTag.Table, schema.TaxonomyTag.ID,
	)

	tag := &Tag{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&tag.ID, &tag.CategoryKey, &tag.Name, &tag.Slug, &tag.ParentTagID,
		&tag.Sensitive, &tag.RequiresEvidence, &tag.Premium, &tag.SortOrder,
		&tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag")
	}
	return tag, nil
}

// GetTagsByIDs returns the subset of the given ids that exist.
func (repository *PostgresRepository) GetTagsByIDs(context context.Context, ids []string) ([]*Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = ANY($1)
	`,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Name,
		schema.TaxonomyTag.Slug, schema.TaxonomyTag.ParentTagID, schema.TaxonomyTag.Sensitive,
		schema.TaxonomyTag.RequiresEvidence, schema.TaxonomyTag.Premium, schema.TaxonomyTag.SortOrder,
		schema.TaxonomyTag.CreatedAt, schema.TaxonomyTag.UpdatedAt,
		schema.TaxonomyTag.Table, schema.TaxonomyTag.ID,
	)

	rows, err := repository.db.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tags_by_ids")
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag := &Tag{}
		if err := rows.Scan(
			&tag.ID, &tag.CategoryKey, &tag.Name, &tag.Slug, &tag.ParentTagID,
			&tag.Sensitive, &tag.RequiresEvidence, &tag.Premium, &tag.SortOrder,
			&tag.CreatedAt, &tag.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// GetTagBySlug resolves a (category, slug) pair to a tag.
func (repository *PostgresRepository) GetTagBySlug(context context.Context, categoryKey, slug string) (*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Name,
		schema.TaxonomyTag.Slug, schema.TaxonomyTag.ParentTagID, schema.TaxonomyTag.Sensitive,
		schema.TaxonomyTag.RequiresEvidence, schema.TaxonomyTag.Premium, schema.TaxonomyTag.SortOrder,
		schema.TaxonomyTag.CreatedAt, schema.TaxonomyTag.UpdatedAt,
		schema.TaxonomyTag.Table, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Slug,
	)

	tag := &Tag{}
	err := repository.db.QueryRow(context, query, categoryKey, slug).Scan(
		&tag.ID, &tag.CategoryKey, &tag.Name, &tag.Slug, &tag.ParentTagID,
		&tag.Sensitive, &tag.RequiresEvidence, &tag.Premium, &tag.SortOrder,
		&tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_slug")
	}
	return tag, nil
}

// CreateTag persists a new tag definition.
func (repository *PostgresRepository) CreateTag(context context.Context, tag *Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.TaxonomyTag.Table,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Name,
		schema.TaxonomyTag.Slug, schema.TaxonomyTag.ParentTagID, schema.TaxonomyTag.Sensitive,
		schema.TaxonomyTag.RequiresEvidence, schema.TaxonomyTag.Premium, schema.TaxonomyTag.SortOrder,
		schema.TaxonomyTag.CreatedAt, schema.TaxonomyTag.UpdatedAt,
		schema.TaxonomyTag.CreatedAt, schema.TaxonomyTag.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		tag.ID, tag.CategoryKey, tag.Name, tag.Slug, tag.ParentTagID,
		tag.Sensitive, tag.RequiresEvidence, tag.Premium, tag.SortOrder,
	).Scan(&tag.CreatedAt, &tag.UpdatedAt)
	return dberr.Wrap(err, "create_tag")
}

// UpdateTag persists display-metadata changes. Identity columns are untouched.
func (repository *PostgresRepository) UpdateTag(context context.Context, tag *Tag) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.TaxonomyTag.Table,
		schema.TaxonomyTag.Name, schema.TaxonomyTag.Sensitive, schema.TaxonomyTag.RequiresEvidence,
		schema.TaxonomyTag.Premium, schema.TaxonomyTag.SortOrder, schema.TaxonomyTag.UpdatedAt,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		tag.ID, tag.Name, tag.Sensitive, tag.RequiresEvidence, tag.Premium, tag.SortOrder,
	).Scan(&tag.UpdatedAt)
	return dberr.Wrap(err, "update_tag")
}

// ActiveVersion returns the single active taxonomy version.
func (repository *PostgresRepository) ActiveVersion(context context.Context) (*Version, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = TRUE
	`,
		schema.TaxonomyVersion.ID, schema.TaxonomyVersion.Label, schema.TaxonomyVersion.Active,
		schema.TaxonomyVersion.CreatedAt, schema.TaxonomyVersion.Table, schema.TaxonomyVersion.Active,
	)

	version := &Version{}
	err := repository.db.QueryRow(context, query).Scan(
		&version.ID, &version.Label, &version.Active, &version.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "active_taxonomy_version")
	}
	return version, nil
}
