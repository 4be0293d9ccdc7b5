// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package book

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
)

// fakeRepository is an in-memory [Repository] for service tests.
type fakeRepository struct {
	books        map[string]*Book
	takenSlugs   map[string]struct{}
	hitsByTier   map[string][]MatchHit
	created      []CreateBundle
	createErr    error
	attachCalls  []string
	attachLimits []int
	axesCalls    []AxesIDs
	authorID     string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		books:      make(map[string]*Book),
		takenSlugs: make(map[string]struct{}),
		hitsByTier: make(map[string][]MatchHit),
		authorID:   "author-1",
	}
}

func (fake *fakeRepository) FindByID(_ context.Context, id string) (*Book, error) {
	entity, ok := fake.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	return entity, nil
}

func (fake *fakeRepository) FindBySlug(_ context.Context, slug string) (*Book, error) {
	for _, entity := range fake.books {
		if entity.Slug == slug {
			return entity, nil
		}
	}
	return nil, apperr.NotFound("Book")
}

func (fake *fakeRepository) List(context.Context, Filter, int, int) ([]*Book, int, error) {
	return nil, 0, nil
}

func (fake *fakeRepository) SlugTaken(_ context.Context, slug string) (bool, error) {
	_, taken := fake.takenSlugs[slug]
	return taken, nil
}

func (fake *fakeRepository) MatchByIdentifier(context.Context, string) ([]MatchHit, error) {
	return fake.hitsByTier[TierIdentifier], nil
}

func (fake *fakeRepository) MatchByNormalizedTitleAuthor(context.Context, string, string) ([]MatchHit, error) {
	return fake.hitsByTier[TierTitleAuthor], nil
}

func (fake *fakeRepository) MatchByRawTitle(context.Context, string) ([]MatchHit, error) {
	return fake.hitsByTier[TierRawTitle], nil
}

func (fake *fakeRepository) MatchByNormalizedTitle(context.Context, string) ([]MatchHit, error) {
	return fake.hitsByTier[TierNormalizedTitle], nil
}

func (fake *fakeRepository) Create(_ context.Context, bundle CreateBundle) (*CreateOutcome, error) {
	if fake.createErr != nil {
		return nil, fake.createErr
	}
	fake.created = append(fake.created, bundle)
	fake.books[bundle.Book.ID] = bundle.Book
	return &CreateOutcome{AuthorID: fake.authorID, AuthorCreated: true}, nil
}

func (fake *fakeRepository) AttachTag(_ context.Context, bookID string, tag *taxonomy.Tag, _ string, ceiling int) (bool, error) {
	fake.attachCalls = append(fake.attachCalls, tag.ID)
	fake.attachLimits = append(fake.attachLimits, ceiling)
	return true, nil
}

func (fake *fakeRepository) DetachTag(context.Context, string, string) error { return nil }

func (fake *fakeRepository) SetAxes(_ context.Context, _ string, axes AxesIDs) error {
	fake.axesCalls = append(fake.axesCalls, axes)
	return nil
}

func (fake *fakeRepository) AddCover(context.Context, *CoverAsset) error    { return nil }
func (fake *fakeRepository) AddQuote(context.Context, *StandoutQuote) error { return nil }

// fakeTaxonomyRepo serves a fixed tag set through the taxonomy service.
type fakeTaxonomyRepo struct {
	tags map[string]*taxonomy.Tag
}

func (fake *fakeTaxonomyRepo) ListCatalog(context.Context, bool) ([]*taxonomy.Category, error) {
	return nil, nil
}
func (fake *fakeTaxonomyRepo) ListCategories(context.Context) ([]*taxonomy.Category, error) {
	return nil, nil
}
func (fake *fakeTaxonomyRepo) GetTagByID(_ context.Context, id string) (*taxonomy.Tag, error) {
	tag, ok := fake.tags[id]
	if !ok {
		return nil, apperr.NotFound("Tag")
	}
	return tag, nil
}
func (fake *fakeTaxonomyRepo) GetTagsByIDs(_ context.Context, ids []string) ([]*taxonomy.Tag, error) {
	var found []*taxonomy.Tag
	for _, id := range ids {
		if tag, ok := fake.tags[id]; ok {
			found = append(found, tag)
		}
	}
	return found, nil
}
func (fake *fakeTaxonomyRepo) GetTagBySlug(context.Context, string, string) (*taxonomy.Tag, error) {
	return nil, apperr.NotFound("Tag")
}
func (fake *fakeTaxonomyRepo) CreateTag(context.Context, *taxonomy.Tag) error { return nil }
func (fake *fakeTaxonomyRepo) UpdateTag(context.Context, *taxonomy.Tag) error { return nil }
func (fake *fakeTaxonomyRepo) ActiveVersion(context.Context) (*taxonomy.Version, error) {
	return &taxonomy.Version{ID: "txv-1", Active: true}, nil
}

func newTestService(repo *fakeRepository, tags map[string]*taxonomy.Tag) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taxonomyService := taxonomy.NewService(&fakeTaxonomyRepo{tags: tags}, taxonomy.NewNoopCache(), logger)
	return NewService(repo, taxonomyService, curation.DefaultEngine(), audit.NoopRecorder{}, logger)
}

/*
TestCreateBook_RefusedOnDuplicates asserts that detected duplicates without
an override refuse creation, return the candidates, and write nothing.
*/
func TestCreateBook_RefusedOnDuplicates(t *testing.T) {
	repo := newFakeRepository()
	repo.hitsByTier[TierNormalizedTitle] = []MatchHit{{BookID: "existing", Title: "Dark Tide", Slug: "dark-tide"}}
	service := newTestService(repo, nil)

	entity, candidates, err := service.CreateBook(context.Background(), CreateInput{
		Title:      "The Dark Tide",
		AuthorName: "Tessa Dare",
	}, "curator-1")

	require.Error(t, err)
	assert.Nil(t, entity)
	require.Len(t, candidates, 1)
	assert.Equal(t, ConfidenceLow, candidates[0].Confidence)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "DUPLICATES_FOUND", appError.Code)

	assert.Empty(t, repo.created, "nothing may be written on refusal")
}

func TestCreateBook_HighConfidenceOverrideRequiresJustification(t *testing.T) {
	repo := newFakeRepository()
	repo.hitsByTier[TierIdentifier] = []MatchHit{{BookID: "existing", Title: "Dark Tide", Slug: "dark-tide"}}
	service := newTestService(repo, nil)

	_, _, err := service.CreateBook(context.Background(), CreateInput{
		Title:           "Dark Tide",
		AuthorName:      "Tessa Dare",
		IdentifierValue: "B0ABCDEFGH",
		Override:        true,
	}, "curator-1")

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Empty(t, repo.created)
}

func TestCreateBook_OverrideWithJustificationProceeds(t *testing.T) {
	repo := newFakeRepository()
	repo.hitsByTier[TierIdentifier] = []MatchHit{{BookID: "existing", Title: "Dark Tide", Slug: "dark-tide"}}
	service := newTestService(repo, nil)

	entity, candidates, err := service.CreateBook(context.Background(), CreateInput{
		Title:           "Dark Tide",
		AuthorName:      "Tessa Dare",
		IdentifierValue: "b0abcdefgh",
		Override:        true,
		Justification:   "different book, shared reprint ASIN",
	}, "curator-1")

	require.NoError(t, err)
	assert.Nil(t, candidates)
	require.NotNil(t, entity)
	assert.Equal(t, StatusDraft, entity.Status)
	assert.Equal(t, "dark-tide", entity.Slug)

	require.Len(t, repo.created, 1)
	bundle := repo.created[0]
	require.NotNil(t, bundle.Identifier)
	assert.Equal(t, "B0ABCDEFGH", bundle.Identifier.Value, "identifier is stored normalized")
	assert.Equal(t, "tessa dare", bundle.NormalizedAuthor)
}

func TestCreateBook_SlugDisambiguation(t *testing.T) {
	repo := newFakeRepository()
	repo.takenSlugs["dark-tide"] = struct{}{}
	repo.takenSlugs["dark-tide-2"] = struct{}{}
	service := newTestService(repo, nil)

	entity, _, err := service.CreateBook(context.Background(), CreateInput{
		Title:      "Dark Tide",
		AuthorName: "Tessa Dare",
	}, "curator-1")

	require.NoError(t, err)
	assert.Equal(t, "dark-tide-3", entity.Slug)
}

/*
TestCreateBook_RacedInsertReportsCollidedConstraint asserts that a unique
violation from the create transaction names the identity that actually
collided: slug availability is checked before the insert, so a concurrent
creator can take the slug as well as the identifier.
*/
func TestCreateBook_RacedInsertReportsCollidedConstraint(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		wantWord   string
	}{
		{name: "slug_race", constraint: "book_slug_unique", wantWord: "slug"},
		{name: "identifier_race", constraint: "bookidentifier_kind_value_unique", wantWord: "identifier"},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			repo := newFakeRepository()
			repo.createErr = &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: testCase.constraint,
			}
			service := newTestService(repo, nil)

			_, _, err := service.CreateBook(context.Background(), CreateInput{
				Title:      "Dark Tide",
				AuthorName: "Tessa Dare",
			}, "curator-1")

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "CONFLICT", appError.Code)
			assert.Contains(t, appError.Message, testCase.wantWord)
		})
	}
}

func TestCreateBook_InvalidIdentifierRejected(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil)

	_, _, err := service.CreateBook(context.Background(), CreateInput{
		Title:           "Dark Tide",
		AuthorName:      "Tessa Dare",
		IdentifierValue: "not-an-asin!",
	}, "curator-1")

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
}

/*
TestAddTag covers the split between multi-select categories (attached with
the cap carried into the store call) and axis categories (routed to the
matching axis slot).
*/
func TestAddTag(t *testing.T) {
	tags := map[string]*taxonomy.Tag{
		"tag-trope": {ID: "tag-trope", CategoryKey: taxonomy.CategoryTrope, Name: "Enemies to Lovers", Slug: "enemies-to-lovers"},
		"tag-heat":  {ID: "tag-heat", CategoryKey: string(taxonomy.AxisHeatLevel), Name: "Open Door", Slug: "open-door"},
	}

	t.Run("multi_select_carries_cap", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo, tags)

		err := service.AddTag(context.Background(), "book-1", "tag-trope", "curator-1")
		require.NoError(t, err)

		require.Len(t, repo.attachCalls, 1)
		assert.Equal(t, "tag-trope", repo.attachCalls[0])
		assert.Equal(t, 8, repo.attachLimits[0])
	})

	t.Run("axis_tag_routes_to_axis_slot", func(t *testing.T) {
		repo := newFakeRepository()
		repo.books["book-1"] = &Book{ID: "book-1", Status: StatusDraft}
		service := newTestService(repo, tags)

		err := service.AddTag(context.Background(), "book-1", "tag-heat", "curator-1")
		require.NoError(t, err)

		assert.Empty(t, repo.attachCalls, "axis tags never land in the tag associations")
		require.Len(t, repo.axesCalls, 1)
		require.NotNil(t, repo.axesCalls[0].HeatLevelID)
		assert.Equal(t, "tag-heat", *repo.axesCalls[0].HeatLevelID)
		assert.Nil(t, repo.axesCalls[0].PairingID)
	})

	t.Run("unknown_tag_rejected", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo, tags)

		err := service.AddTag(context.Background(), "book-1", "tag-missing", "curator-1")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestSetAxes_CategoryMismatchRejected(t *testing.T) {
	tags := map[string]*taxonomy.Tag{
		"tag-trope": {ID: "tag-trope", CategoryKey: taxonomy.CategoryTrope, Name: "Enemies to Lovers", Slug: "enemies-to-lovers"},
	}
	repo := newFakeRepository()
	service := newTestService(repo, tags)

	tagID := "tag-trope"
	err := service.SetAxes(context.Background(), "book-1", AxesIDs{PairingID: &tagID}, "curator-1")

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, repo.axesCalls)
}

/*
TestValidationInput checks the aggregate-to-engine mapping, including that
only a ready cover satisfies the cover gate.
*/
func TestValidationInput(t *testing.T) {
	heat := &taxonomy.Tag{ID: "t-heat", CategoryKey: string(taxonomy.AxisHeatLevel)}
	trope := taxonomy.Tag{ID: "t-trope", CategoryKey: taxonomy.CategoryTrope}

	entity := &Book{
		ID:   "book-1",
		Axes: Axes{HeatLevel: heat},
		Tags: []taxonomy.Tag{trope},
		Cover: &CoverAsset{
			Version: 2,
			State:   CoverStatePending,
		},
	}

	input := ValidationInput(entity)

	assert.Equal(t, heat, input.Axes.HeatLevel)
	assert.Nil(t, input.Axes.Pairing)
	assert.Len(t, input.TagsByCategory[taxonomy.CategoryTrope], 1)
	assert.Nil(t, input.Cover, "a pending cover does not satisfy the gate")

	entity.Cover.State = CoverStateReady
	input = ValidationInput(entity)
	require.NotNil(t, input.Cover)
	assert.Equal(t, 2, input.Cover.Version)
}
