/*
Package book provides the PostgreSQL implementation for the catalog's data access.

The repository follows an "Aggregate" pattern: lookups hydrate the full book
(identifiers, authors, axes, tags, cover, quotes) so the validation engine
and the HTTP layer always see one consistent shape. Mutations that carry
invariants (tag caps, the quote ceiling, the create bundle) run inside
transactions that lock the book row first, so concurrent writers serialize
per book rather than per table.
*/
package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/database/schema"
	"github.com/embershelf/embershelf/internal/platform/dberr"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// # PostgreSQL Repository

// Unique indexes the create transaction can trip over. The names match
// data/migrations and tell callers which race they lost.
const (
	constraintBookSlug       = "book_slug_unique"
	constraintBookIdentifier = "bookidentifier_kind_value_unique"
)

// bookRepository implements the [Repository] interface using pgx.
type bookRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed book store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &bookRepository{pool: pool}
}

// bookColumns is the shared select list for the base book row.
func bookColumns(alias string) string {
	table := schema.CatalogBook
	columns := []string{
		table.ID, table.Title, table.Slug, table.Status, table.Synopsis,
		table.SeriesName, table.SeriesIndex, table.PublishYear,
		table.LivePublicationID, table.FirstPublishedAt, table.LastPublishedAt,
		table.NormalizedTitle, table.CreatedAt, table.UpdatedAt,
	}
	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}

// scanBook hydrates the base row from a shared select list.
func scanBook(row pgx.Row) (*Book, error) {
	entity := &Book{}
	err := row.Scan(
		&entity.ID, &entity.Title, &entity.Slug, &entity.Status, &entity.Synopsis,
		&entity.SeriesName, &entity.SeriesIndex, &entity.PublishYear,
		&entity.LivePublicationID, &entity.FirstPublishedAt, &entity.LastPublishedAt,
		&entity.NormalizedTitle, &entity.CreatedAt, &entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// # Lookups

func (repository *bookRepository) FindByID(context context.Context, id string) (*Book, error) {
	return repository.findOne(context, schema.CatalogBook.ID, id)
}

func (repository *bookRepository) FindBySlug(context context.Context, slug string) (*Book, error) {
	return repository.findOne(context, schema.CatalogBook.Slug, slug)
}

// findOne loads and hydrates a single aggregate by one indexed column.
func (repository *bookRepository) findOne(context context.Context, column, value string) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s b
		WHERE b.%s = $1 AND b.%s IS NULL
	`, bookColumns("b"), schema.CatalogBook.Table, column, schema.CatalogBook.DeletedAt)

	entity, err := scanBook(repository.pool.QueryRow(context, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, "find_book")
	}

	if err := repository.hydrate(context, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// hydrate attaches identifiers, authors, axes, tags, the cover, and quotes.
func (repository *bookRepository) hydrate(context context.Context, entity *Book) error {
	if err := repository.loadIdentifiers(context, entity); err != nil {
		return err
	}
	if err := repository.loadAuthors(context, entity); err != nil {
		return err
	}
	if err := repository.loadAxes(context, entity); err != nil {
		return err
	}
	if err := repository.loadTags(context, entity); err != nil {
		return err
	}
	if err := repository.loadCover(context, entity); err != nil {
		return err
	}
	return repository.loadQuotes(context, entity)
}

func (repository *bookRepository) loadIdentifiers(context context.Context, entity *Book) error {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.CatalogBookIdentifier.ID, schema.CatalogBookIdentifier.BookID,
		schema.CatalogBookIdentifier.Kind, schema.CatalogBookIdentifier.Value,
		schema.CatalogBookIdentifier.CreatedAt,
		schema.CatalogBookIdentifier.Table, schema.CatalogBookIdentifier.BookID,
	)

	rows, err := repository.pool.Query(context, query, entity.ID)
	if err != nil {
		return dberr.Wrap(err, "load_identifiers")
	}
	defer rows.Close()

	for rows.Next() {
		var identifier Identifier
		if err := rows.Scan(&identifier.ID, &identifier.BookID, &identifier.Kind, &identifier.Value, &identifier.CreatedAt); err != nil {
			return dberr.Wrap(err, "scan_identifier")
		}
		entity.Identifiers = append(entity.Identifiers, identifier)
	}
	return nil
}

func (repository *bookRepository) loadAuthors(context context.Context, entity *Book) error {
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s
		FROM %s a
		JOIN %s ba ON ba.%s = a.%s
		WHERE ba.%s = $1
		ORDER BY a.%s
	`,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Name,
		schema.CatalogAuthor.Table,
		schema.CatalogBookAuthor.Table, schema.CatalogBookAuthor.AuthorID, schema.CatalogAuthor.ID,
		schema.CatalogBookAuthor.BookID, schema.CatalogAuthor.Name,
	)

	rows, err := repository.pool.Query(context, query, entity.ID)
	if err != nil {
		return dberr.Wrap(err, "load_authors")
	}
	defer rows.Close()

	for rows.Next() {
		var ref AuthorRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return dberr.Wrap(err, "scan_author")
		}
		entity.Authors = append(entity.Authors, ref)
	}
	return nil
}

func (repository *bookRepository) loadAxes(context context.Context, entity *Book) error {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.CatalogBookAxes.WorldFrameworkID, schema.CatalogBookAxes.PairingID,
		schema.CatalogBookAxes.HeatLevelID, schema.CatalogBookAxes.SeriesStatusID,
		schema.CatalogBookAxes.ConsentModeID,
		schema.CatalogBookAxes.Table, schema.CatalogBookAxes.BookID,
	)

	var ids AxesIDs
	err := repository.pool.QueryRow(context, query, entity.ID).Scan(
		&ids.WorldFrameworkID, &ids.PairingID, &ids.HeatLevelID, &ids.SeriesStatusID, &ids.ConsentModeID,
	)
	if err != nil {
		// The axes row is created with the book; absence means a legacy or
		// partially-imported record and is treated as all-empty.
		if err == pgx.ErrNoRows {
			return nil
		}
		return dberr.Wrap(err, "load_axes")
	}

	slotIDs := make([]string, 0, 5)
	for _, id := range []*string{ids.WorldFrameworkID, ids.PairingID, ids.HeatLevelID, ids.SeriesStatusID, ids.ConsentModeID} {
		if id != nil {
			slotIDs = append(slotIDs, *id)
		}
	}
	if len(slotIDs) == 0 {
		return nil
	}

	tags, err := repository.fetchTaxonomyTags(context, slotIDs)
	if err != nil {
		return err
	}

	assign := func(id *string) *taxonomy.Tag {
		if id == nil {
			return nil
		}
		return tags[*id]
	}
	entity.Axes = Axes{
		WorldFramework: assign(ids.WorldFrameworkID),
		Pairing:        assign(ids.PairingID),
		HeatLevel:      assign(ids.HeatLevelID),
		SeriesStatus:   assign(ids.SeriesStatusID),
		ConsentMode:    assign(ids.ConsentModeID),
	}
	return nil
}

func (repository *bookRepository) loadTags(context context.Context, entity *Book) error {
	query := fmt.Sprintf(`
		SELECT t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s
		FROM %s t
		JOIN %s bt ON bt.%s = t.%s
		WHERE bt.%s = $1
		ORDER BY t.%s, t.%s
	`,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Name,
		schema.TaxonomyTag.Slug, schema.TaxonomyTag.Sensitive, schema.TaxonomyTag.RequiresEvidence,
		schema.TaxonomyTag.Premium,
		schema.TaxonomyTag.Table,
		schema.CatalogBookTag.Table, schema.CatalogBookTag.TagID, schema.TaxonomyTag.ID,
		schema.CatalogBookTag.BookID,
		schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.SortOrder,
	)

	rows, err := repository.pool.Query(context, query, entity.ID)
	if err != nil {
		return dberr.Wrap(err, "load_tags")
	}
	defer rows.Close()

	for rows.Next() {
		var tag taxonomy.Tag
		if err := rows.Scan(&tag.ID, &tag.CategoryKey, &tag.Name, &tag.Slug, &tag.Sensitive, &tag.RequiresEvidence, &tag.Premium); err != nil {
			return dberr.Wrap(err, "scan_tag")
		}
		entity.Tags = append(entity.Tags, tag)
	}
	return nil
}

func (repository *bookRepository) loadCover(context context.Context, entity *Book) error {
	// Prefer the ready cover; fall back to the newest pending one.
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY (%s = '%s') DESC, %s DESC
		LIMIT 1
	`,
		schema.CatalogCoverAsset.ID, schema.CatalogCoverAsset.BookID, schema.CatalogCoverAsset.Version,
		schema.CatalogCoverAsset.State, schema.CatalogCoverAsset.ImageURL, schema.CatalogCoverAsset.CreatedAt,
		schema.CatalogCoverAsset.Table, schema.CatalogCoverAsset.BookID,
		schema.CatalogCoverAsset.State, CoverStateReady, schema.CatalogCoverAsset.Version,
	)

	cover := &CoverAsset{}
	err := repository.pool.QueryRow(context, query, entity.ID).Scan(
		&cover.ID, &cover.BookID, &cover.Version, &cover.State, &cover.ImageURL, &cover.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return dberr.Wrap(err, "load_cover")
	}
	entity.Cover = cover
	return nil
}

func (repository *bookRepository) loadQuotes(context context.Context, entity *Book) error {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		schema.CatalogStandoutQuote.ID, schema.CatalogStandoutQuote.BookID, schema.CatalogStandoutQuote.Quote,
		schema.CatalogStandoutQuote.SortOrder, schema.CatalogStandoutQuote.CreatedAt,
		schema.CatalogStandoutQuote.Table, schema.CatalogStandoutQuote.BookID,
		schema.CatalogStandoutQuote.SortOrder,
	)

	rows, err := repository.pool.Query(context, query, entity.ID)
	if err != nil {
		return dberr.Wrap(err, "load_quotes")
	}
	defer rows.Close()

	for rows.Next() {
		var quote StandoutQuote
		if err := rows.Scan(&quote.ID, &quote.BookID, &quote.Quote, &quote.SortOrder, &quote.CreatedAt); err != nil {
			return dberr.Wrap(err, "scan_quote")
		}
		entity.Quotes = append(entity.Quotes, quote)
	}
	return nil
}

// fetchTaxonomyTags resolves tag ids to hydrated tags, keyed by id.
func (repository *bookRepository) fetchTaxonomyTags(context context.Context, ids []string) (map[string]*taxonomy.Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = ANY($1)
	`,
		schema.TaxonomyTag.ID, schema.TaxonomyTag.CategoryKey, schema.TaxonomyTag.Name,
		schema.TaxonomyTag.Slug, schema.TaxonomyTag.Sensitive, schema.TaxonomyTag.RequiresEvidence,
		schema.TaxonomyTag.Premium,
		schema.TaxonomyTag.Table, schema.TaxonomyTag.ID,
	)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "fetch_axis_tags")
	}
	defer rows.Close()

	tags := make(map[string]*taxonomy.Tag, len(ids))
	for rows.Next() {
		tag := &taxonomy.Tag{}
		if err := rows.Scan(&tag.ID, &tag.CategoryKey, &tag.Name, &tag.Slug, &tag.Sensitive, &tag.RequiresEvidence, &tag.Premium); err != nil {
			return nil, dberr.Wrap(err, "scan_axis_tag")
		}
		tags[tag.ID] = tag
	}
	return tags, nil
}

/*
List returns a filtered, paginated slice of books and the total count.

Description: Uses COUNT(*) OVER() to retrieve the total without a second
query. List rows are the base entity only; callers needing the full
aggregate follow up with FindByID.

Parameters:
  - context: context.Context
  - filter: Filter (status, series, search, sorting)
  - limit: int
  - offset: int

Returns:
  - []*Book: Slice of base book records
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *bookRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s b
		WHERE b.%s IS NULL
	`, bookColumns("b"), schema.CatalogBook.Table, schema.CatalogBook.DeletedAt))

	if len(filter.Status) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = ANY($%d)", schema.CatalogBook.Status, argID))
		args = append(args, filter.Status)
		argID++
	}

	if filter.SeriesName != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CatalogBook.SeriesName, argID))
		args = append(args, filter.SeriesName)
		argID++
	}

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s LIKE '%%' || $%d || '%%'", schema.CatalogBook.NormalizedTitle, argID))
		args = append(args, NormalizeTitle(filter.Query))
		argID++
	}

	sort := fmt.Sprintf("b.%s", schema.CatalogBook.CreatedAt)
	switch filter.Sort {
	case "az", "za":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.Title)
	case "published":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.LastPublishedAt)
	case "latest":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.CreatedAt)
	}

	sortDir := "DESC"
	if strings.ToLower(filter.SortDir) == "asc" || filter.Sort == "az" {
		sortDir = "ASC"
	}
	if filter.Sort == "za" {
		sortDir = "DESC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s NULLS LAST, b.%s DESC", sort, sortDir, schema.CatalogBook.ID))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	var books []*Book
	var totalCount int

	for rows.Next() {
		entity := &Book{}
		err := rows.Scan(
			&entity.ID, &entity.Title, &entity.Slug, &entity.Status, &entity.Synopsis,
			&entity.SeriesName, &entity.SeriesIndex, &entity.PublishYear,
			&entity.LivePublicationID, &entity.FirstPublishedAt, &entity.LastPublishedAt,
			&entity.NormalizedTitle, &entity.CreatedAt, &entity.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, entity)
	}

	return books, totalCount, nil
}

func (repository *bookRepository) SlugTaken(context context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)`,
		schema.CatalogBook.Table, schema.CatalogBook.Slug)

	var taken bool
	if err := repository.pool.QueryRow(context, query, slug).Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "slug_taken")
	}
	return taken, nil
}

// # Duplicate Tier Lookups

func (repository *bookRepository) MatchByIdentifier(context context.Context, normalized string) ([]MatchHit, error) {
	query := fmt.Sprintf(`
		SELECT b.%s, b.%s, b.%s
		FROM %s b
		JOIN %s i ON i.%s = b.%s
		WHERE i.%s = $1 AND b.%s IS NULL
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Slug,
		schema.CatalogBook.Table,
		schema.CatalogBookIdentifier.Table, schema.CatalogBookIdentifier.BookID, schema.CatalogBook.ID,
		schema.CatalogBookIdentifier.Value, schema.CatalogBook.DeletedAt,
	)
	return repository.matchQuery(context, query, normalized)
}

func (repository *bookRepository) MatchByNormalizedTitleAuthor(context context.Context, normalizedTitle, normalizedAuthor string) ([]MatchHit, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT b.%s, b.%s, b.%s
		FROM %s b
		JOIN %s ba ON ba.%s = b.%s
		JOIN %s a ON a.%s = ba.%s
		WHERE b.%s = $1 AND a.%s = $2 AND b.%s IS NULL
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Slug,
		schema.CatalogBook.Table,
		schema.CatalogBookAuthor.Table, schema.CatalogBookAuthor.BookID, schema.CatalogBook.ID,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogBookAuthor.AuthorID,
		schema.CatalogBook.NormalizedTitle, schema.CatalogAuthor.NormalizedName, schema.CatalogBook.DeletedAt,
	)
	return repository.matchQuery(context, query, normalizedTitle, normalizedAuthor)
}

func (repository *bookRepository) MatchByRawTitle(context context.Context, title string) ([]MatchHit, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE LOWER(%s) = LOWER($1) AND %s IS NULL
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Slug,
		schema.CatalogBook.Table,
		schema.CatalogBook.Title, schema.CatalogBook.DeletedAt,
	)
	return repository.matchQuery(context, query, title)
}

func (repository *bookRepository) MatchByNormalizedTitle(context context.Context, normalizedTitle string) ([]MatchHit, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Slug,
		schema.CatalogBook.Table,
		schema.CatalogBook.NormalizedTitle, schema.CatalogBook.DeletedAt,
	)
	return repository.matchQuery(context, query, normalizedTitle)
}

func (repository *bookRepository) matchQuery(context context.Context, query string, args ...any) ([]MatchHit, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "duplicate_match")
	}
	defer rows.Close()

	var hits []MatchHit
	for rows.Next() {
		var hit MatchHit
		if err := rows.Scan(&hit.BookID, &hit.Title, &hit.Slug); err != nil {
			return nil, dberr.Wrap(err, "scan_match")
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// # Mutations

/*
Create writes the full draft bundle in one transaction.

Description: Inserts the book row, resolves the author by normalized name
(creating one when absent), links it, inserts the identifier (when present),
and seeds the empty axes record. Any failure rolls the whole bundle back so
a slug is never reserved without a retrievable book.

Parameters:
  - context: context.Context
  - bundle: CreateBundle

Returns:
  - *CreateOutcome: Author id and whether it was newly created
  - error: Constraint violations (identifier/slug uniqueness) or execution errors
*/
func (repository *bookRepository) Create(context context.Context, bundle CreateBundle) (*CreateOutcome, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_create")
	}
	defer transaction.Rollback(context)

	entity := bundle.Book
	insertBook := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Slug,
		schema.CatalogBook.Status, schema.CatalogBook.Synopsis, schema.CatalogBook.SeriesName,
		schema.CatalogBook.SeriesIndex, schema.CatalogBook.PublishYear, schema.CatalogBook.NormalizedTitle,
		schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
	)
	err = transaction.QueryRow(context, insertBook,
		entity.ID, entity.Title, entity.Slug, entity.Status, entity.Synopsis,
		entity.SeriesName, entity.SeriesIndex, entity.PublishYear, entity.NormalizedTitle,
	).Scan(&entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "insert_book")
	}

	// Author resolution by normalized name.
	outcome := &CreateOutcome{}
	findAuthor := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Table,
		schema.CatalogAuthor.NormalizedName, schema.CatalogAuthor.DeletedAt)

	err = transaction.QueryRow(context, findAuthor, bundle.NormalizedAuthor).Scan(&outcome.AuthorID)
	if err == pgx.ErrNoRows {
		outcome.AuthorID = uuid.New()
		outcome.AuthorCreated = true

		insertAuthor := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, NOW(), NOW())
		`,
			schema.CatalogAuthor.Table,
			schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.NormalizedName,
			schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		)
		if _, err := transaction.Exec(context, insertAuthor, outcome.AuthorID, bundle.AuthorName, bundle.NormalizedAuthor); err != nil {
			return nil, dberr.Wrap(err, "insert_author")
		}
	} else if err != nil {
		return nil, dberr.Wrap(err, "find_author")
	}

	linkAuthor := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		schema.CatalogBookAuthor.Table, schema.CatalogBookAuthor.BookID, schema.CatalogBookAuthor.AuthorID)
	if _, err := transaction.Exec(context, linkAuthor, entity.ID, outcome.AuthorID); err != nil {
		return nil, dberr.Wrap(err, "link_author")
	}
	entity.Authors = []AuthorRef{{ID: outcome.AuthorID, Name: bundle.AuthorName}}

	if bundle.Identifier != nil {
		insertIdentifier := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, NOW())
		`,
			schema.CatalogBookIdentifier.Table,
			schema.CatalogBookIdentifier.ID, schema.CatalogBookIdentifier.BookID,
			schema.CatalogBookIdentifier.Kind, schema.CatalogBookIdentifier.Value,
			schema.CatalogBookIdentifier.CreatedAt,
		)
		_, err := transaction.Exec(context, insertIdentifier,
			bundle.Identifier.ID, entity.ID, bundle.Identifier.Kind, bundle.Identifier.Value)
		if err != nil {
			return nil, dberr.Wrap(err, "insert_identifier")
		}
		entity.Identifiers = []Identifier{*bundle.Identifier}
	}

	// Empty axes placeholder; slots are filled later by curation.
	insertAxes := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, NOW())`,
		schema.CatalogBookAxes.Table, schema.CatalogBookAxes.BookID, schema.CatalogBookAxes.UpdatedAt)
	if _, err := transaction.Exec(context, insertAxes, entity.ID); err != nil {
		return nil, dberr.Wrap(err, "insert_axes")
	}

	if err := transaction.Commit(context); err != nil {
		return nil, dberr.Wrap(err, "commit_create")
	}
	return outcome, nil
}

/*
AttachTag inserts a tag association with the category cap held in-transaction.

Description: Locks the book row to serialize concurrent tag writes on the
same book, treats an existing association as a no-op, then counts the
category's current associations before inserting. The count and the insert
share the transaction, so the cap cannot be bypassed by racing adds.

Parameters:
  - context: context.Context
  - bookID: string
  - tag: *taxonomy.Tag
  - addedBy: string
  - ceiling: int (-1 means uncapped)

Returns:
  - bool: Whether a new association was inserted
  - error: Unprocessable when the cap is already reached
*/
func (repository *bookRepository) AttachTag(context context.Context, bookID string, tag *taxonomy.Tag, addedBy string, ceiling int) (bool, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return false, dberr.Wrap(err, "begin_attach_tag")
	}
	defer transaction.Rollback(context)

	if err := lockBook(context, transaction, bookID); err != nil {
		return false, err
	}

	existsQuery := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.CatalogBookTag.Table, schema.CatalogBookTag.BookID, schema.CatalogBookTag.TagID)

	var attached bool
	if err := transaction.QueryRow(context, existsQuery, bookID, tag.ID).Scan(&attached); err != nil {
		return false, dberr.Wrap(err, "check_attached")
	}
	if attached {
		return false, transaction.Commit(context)
	}

	if ceiling >= 0 {
		countQuery := fmt.Sprintf(`
			SELECT COUNT(*)
			FROM %s bt
			JOIN %s t ON t.%s = bt.%s
			WHERE bt.%s = $1 AND t.%s = $2
		`,
			schema.CatalogBookTag.Table,
			schema.TaxonomyTag.Table, schema.TaxonomyTag.ID, schema.CatalogBookTag.TagID,
			schema.CatalogBookTag.BookID, schema.TaxonomyTag.CategoryKey,
		)

		var count int
		if err := transaction.QueryRow(context, countQuery, bookID, tag.CategoryKey).Scan(&count); err != nil {
			return false, dberr.Wrap(err, "count_category_tags")
		}
		if count >= ceiling {
			return false, apperr.Unprocessable(
				fmt.Sprintf("category %q already holds the maximum of %d tags", tag.CategoryKey, ceiling))
		}
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW())
	`,
		schema.CatalogBookTag.Table,
		schema.CatalogBookTag.BookID, schema.CatalogBookTag.TagID,
		schema.CatalogBookTag.AddedBy, schema.CatalogBookTag.CreatedAt,
	)
	if _, err := transaction.Exec(context, insert, bookID, tag.ID, addedBy); err != nil {
		return false, dberr.Wrap(err, "attach_tag")
	}

	if err := transaction.Commit(context); err != nil {
		return false, dberr.Wrap(err, "commit_attach_tag")
	}
	return true, nil
}

func (repository *bookRepository) DetachTag(context context.Context, bookID, tagID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CatalogBookTag.Table, schema.CatalogBookTag.BookID, schema.CatalogBookTag.TagID)

	_, err := repository.pool.Exec(context, query, bookID, tagID)
	return dberr.Wrap(err, "detach_tag")
}

func (repository *bookRepository) SetAxes(context context.Context, bookID string, axes AxesIDs) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogBookAxes.Table,
		schema.CatalogBookAxes.WorldFrameworkID, schema.CatalogBookAxes.PairingID,
		schema.CatalogBookAxes.HeatLevelID, schema.CatalogBookAxes.SeriesStatusID,
		schema.CatalogBookAxes.ConsentModeID, schema.CatalogBookAxes.UpdatedAt,
		schema.CatalogBookAxes.BookID, schema.CatalogBookAxes.BookID,
	)

	var returned string
	err := repository.pool.QueryRow(context, query, bookID,
		axes.WorldFrameworkID, axes.PairingID, axes.HeatLevelID, axes.SeriesStatusID, axes.ConsentModeID,
	).Scan(&returned)
	return dberr.Wrap(err, "set_axes")
}

/*
AddCover inserts the next cover version for a book.

Description: Locks the book row, computes version as max+1, and, when the
new cover is ready, demotes any previously ready cover to superseded so at
most one ready cover exists per book.
*/
func (repository *bookRepository) AddCover(context context.Context, cover *CoverAsset) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_cover")
	}
	defer transaction.Rollback(context)

	if err := lockBook(context, transaction, cover.BookID); err != nil {
		return err
	}

	versionQuery := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1`,
		schema.CatalogCoverAsset.Version, schema.CatalogCoverAsset.Table, schema.CatalogCoverAsset.BookID)
	if err := transaction.QueryRow(context, versionQuery, cover.BookID).Scan(&cover.Version); err != nil {
		return dberr.Wrap(err, "next_cover_version")
	}

	if cover.State == CoverStateReady {
		demote := fmt.Sprintf(`UPDATE %s SET %s = '%s' WHERE %s = $1 AND %s = '%s'`,
			schema.CatalogCoverAsset.Table, schema.CatalogCoverAsset.State, CoverStateSuperseded,
			schema.CatalogCoverAsset.BookID, schema.CatalogCoverAsset.State, CoverStateReady)
		if _, err := transaction.Exec(context, demote, cover.BookID); err != nil {
			return dberr.Wrap(err, "demote_cover")
		}
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING %s
	`,
		schema.CatalogCoverAsset.Table,
		schema.CatalogCoverAsset.ID, schema.CatalogCoverAsset.BookID, schema.CatalogCoverAsset.Version,
		schema.CatalogCoverAsset.State, schema.CatalogCoverAsset.ImageURL, schema.CatalogCoverAsset.CreatedAt,
		schema.CatalogCoverAsset.CreatedAt,
	)
	err = transaction.QueryRow(context, insert,
		cover.ID, cover.BookID, cover.Version, cover.State, cover.ImageURL,
	).Scan(&cover.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_cover")
	}

	return dberr.Wrap(transaction.Commit(context), "commit_add_cover")
}

// AddQuote inserts a standout quote, holding the per-book ceiling inside
// the transaction.
func (repository *bookRepository) AddQuote(context context.Context, quote *StandoutQuote) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_quote")
	}
	defer transaction.Rollback(context)

	if err := lockBook(context, transaction, quote.BookID); err != nil {
		return err
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.CatalogStandoutQuote.Table, schema.CatalogStandoutQuote.BookID)

	var count int
	if err := transaction.QueryRow(context, countQuery, quote.BookID).Scan(&count); err != nil {
		return dberr.Wrap(err, "count_quotes")
	}
	if count >= MaxStandoutQuotes {
		return apperr.Unprocessable(fmt.Sprintf("a book holds at most %d standout quotes", MaxStandoutQuotes))
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING %s
	`,
		schema.CatalogStandoutQuote.Table,
		schema.CatalogStandoutQuote.ID, schema.CatalogStandoutQuote.BookID,
		schema.CatalogStandoutQuote.Quote, schema.CatalogStandoutQuote.SortOrder,
		schema.CatalogStandoutQuote.CreatedAt, schema.CatalogStandoutQuote.CreatedAt,
	)
	err = transaction.QueryRow(context, insert,
		quote.ID, quote.BookID, quote.Quote, quote.SortOrder,
	).Scan(&quote.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_quote")
	}

	return dberr.Wrap(transaction.Commit(context), "commit_add_quote")
}

// lockBook takes a row lock on the book, confirming it exists and is active.
func lockBook(context context.Context, transaction pgx.Tx, bookID string) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL FOR UPDATE`,
		schema.CatalogBook.ID, schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.CatalogBook.DeletedAt)

	var id string
	if err := transaction.QueryRow(context, query, bookID).Scan(&id); err != nil {
		return dberr.Wrap(err, "lock_book")
	}
	return nil
}
