// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package publication

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/evidence"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
)

// # Fakes

// fakePublicationRepo records publish calls and serves a configurable
// latest publication.
type fakePublicationRepo struct {
	latest    *Publication
	published []PublishRecord
}

func (fake *fakePublicationRepo) Publish(_ context.Context, record PublishRecord) error {
	fake.published = append(fake.published, record)
	return nil
}

func (fake *fakePublicationRepo) Latest(_ context.Context, bookID string) (*Publication, error) {
	if fake.latest == nil || fake.latest.BookID != bookID {
		return nil, apperr.NotFound("Publication")
	}
	return fake.latest, nil
}

func (fake *fakePublicationRepo) GetByID(_ context.Context, id string) (*Publication, error) {
	if fake.latest != nil && fake.latest.ID == id {
		return fake.latest, nil
	}
	return nil, apperr.NotFound("Publication")
}

func (fake *fakePublicationRepo) ListByBook(context.Context, string, int, int) ([]*Publication, int, error) {
	return nil, 0, nil
}

// fakeBookRepo serves one book by id; mutations are unreachable from the
// publish pipeline and panic if called.
type fakeBookRepo struct {
	entity *book.Book
}

func (fake *fakeBookRepo) FindByID(_ context.Context, id string) (*book.Book, error) {
	if fake.entity == nil || fake.entity.ID != id {
		return nil, apperr.NotFound("Book")
	}
	return fake.entity, nil
}

func (fake *fakeBookRepo) FindBySlug(context.Context, string) (*book.Book, error) {
	return nil, apperr.NotFound("Book")
}
func (fake *fakeBookRepo) List(context.Context, book.Filter, int, int) ([]*book.Book, int, error) {
	if fake.entity == nil {
		return nil, 0, nil
	}
	return []*book.Book{fake.entity}, 1, nil
}
func (fake *fakeBookRepo) SlugTaken(context.Context, string) (bool, error) { return false, nil }
func (fake *fakeBookRepo) MatchByIdentifier(context.Context, string) ([]book.MatchHit, error) {
	return nil, nil
}
func (fake *fakeBookRepo) MatchByNormalizedTitleAuthor(context.Context, string, string) ([]book.MatchHit, error) {
	return nil, nil
}
func (fake *fakeBookRepo) MatchByRawTitle(context.Context, string) ([]book.MatchHit, error) {
	return nil, nil
}
func (fake *fakeBookRepo) MatchByNormalizedTitle(context.Context, string) ([]book.MatchHit, error) {
	return nil, nil
}
func (fake *fakeBookRepo) Create(context.Context, book.CreateBundle) (*book.CreateOutcome, error) {
	panic("not used")
}
func (fake *fakeBookRepo) AttachTag(context.Context, string, *taxonomy.Tag, string, int) (bool, error) {
	panic("not used")
}
func (fake *fakeBookRepo) DetachTag(context.Context, string, string) error { panic("not used") }
func (fake *fakeBookRepo) SetAxes(context.Context, string, book.AxesIDs) error {
	panic("not used")
}
func (fake *fakeBookRepo) AddCover(context.Context, *book.CoverAsset) error { panic("not used") }
func (fake *fakeBookRepo) AddQuote(context.Context, *book.StandoutQuote) error {
	panic("not used")
}

type fakeEvidenceRepo struct {
	records []*evidence.Evidence
}

func (fake *fakeEvidenceRepo) ListByBook(context.Context, string) ([]*evidence.Evidence, error) {
	return fake.records, nil
}
func (fake *fakeEvidenceRepo) GetByID(context.Context, string) (*evidence.Evidence, error) {
	return nil, apperr.NotFound("Evidence")
}
func (fake *fakeEvidenceRepo) Create(context.Context, *evidence.Evidence) error {
	panic("not used")
}
func (fake *fakeEvidenceRepo) Delete(context.Context, string) error { panic("not used") }

// fakeTaxonomyRepo only needs to answer ActiveVersion for these tests.
type fakeTaxonomyRepo struct {
	version *taxonomy.Version
}

func (fake *fakeTaxonomyRepo) ListCatalog(context.Context, bool) ([]*taxonomy.Category, error) {
	return nil, nil
}
func (fake *fakeTaxonomyRepo) ListCategories(context.Context) ([]*taxonomy.Category, error) {
	return nil, nil
}
func (fake *fakeTaxonomyRepo) GetTagByID(context.Context, string) (*taxonomy.Tag, error) {
	return nil, apperr.NotFound("Tag")
}
func (fake *fakeTaxonomyRepo) GetTagsByIDs(context.Context, []string) ([]*taxonomy.Tag, error) {
	return nil, nil
}
func (fake *fakeTaxonomyRepo) GetTagBySlug(context.Context, string, string) (*taxonomy.Tag, error) {
	return nil, apperr.NotFound("Tag")
}
func (fake *fakeTaxonomyRepo) CreateTag(context.Context, *taxonomy.Tag) error { return nil }
func (fake *fakeTaxonomyRepo) UpdateTag(context.Context, *taxonomy.Tag) error { return nil }
func (fake *fakeTaxonomyRepo) ActiveVersion(context.Context) (*taxonomy.Version, error) {
	if fake.version == nil {
		return nil, apperr.NotFound("Taxonomy version")
	}
	return fake.version, nil
}

// # Fixtures

func axisTag(axis taxonomy.Axis, id string) *taxonomy.Tag {
	return &taxonomy.Tag{ID: id, CategoryKey: string(axis), Name: id, Slug: id}
}

// publishableBook returns a draft that passes every gate: all five axes
// filled and a ready cover.
func publishableBook() *book.Book {
	return &book.Book{
		ID:     "book-1",
		Title:  "Dark Tide",
		Slug:   "dark-tide",
		Status: book.StatusDraft,
		Axes: book.Axes{
			WorldFramework: axisTag(taxonomy.AxisWorldFramework, "axis-wf"),
			Pairing:        axisTag(taxonomy.AxisPairing, "axis-pair"),
			HeatLevel:      axisTag(taxonomy.AxisHeatLevel, "axis-heat"),
			SeriesStatus:   axisTag(taxonomy.AxisSeriesStatus, "axis-series"),
			ConsentMode:    axisTag(taxonomy.AxisConsentMode, "axis-consent"),
		},
		Tags: []taxonomy.Tag{
			{ID: "tag-grumpy-sunshine", CategoryKey: "trope", Name: "Grumpy/Sunshine"},
		},
		Cover: &book.CoverAsset{ID: "cover-1", BookID: "book-1", Version: 1, State: book.CoverStateReady},
	}
}

func newTestService(publications *fakePublicationRepo, books *fakeBookRepo, evidenceRepo *fakeEvidenceRepo, version *taxonomy.Version) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taxonomyService := taxonomy.NewService(&fakeTaxonomyRepo{version: version}, taxonomy.NewNoopCache(), logger)
	evidenceService := evidence.NewService(evidenceRepo, taxonomyService, audit.NoopRecorder{}, logger)
	return NewService(publications, books, evidenceService, taxonomyService, curation.DefaultEngine(), audit.NoopRecorder{}, logger)
}

// # Tests

func TestPublish_FirstPublish(t *testing.T) {
	publications := &fakePublicationRepo{}
	books := &fakeBookRepo{entity: publishableBook()}
	service := newTestService(publications, books, &fakeEvidenceRepo{}, &taxonomy.Version{ID: "txv-1", Active: true})

	result, err := service.Publish(context.Background(), "book-1", "curator-1")
	require.NoError(t, err)

	assert.True(t, result.FirstPublish)
	assert.Nil(t, result.Diff)
	assert.NotEmpty(t, result.PublicationID)

	require.Len(t, publications.published, 1)
	record := publications.published[0].Publication
	assert.Equal(t, "txv-1", record.TaxonomyVersionID)
	assert.Nil(t, record.PreviousPublicationID)
	assert.Nil(t, record.Diff)
	assert.Equal(t, "curator-1", record.PublishedBy)
	assert.Equal(t, 1, record.Snapshot.CoverVersion)
	assert.Equal(t, []string{"tag-grumpy-sunshine"}, record.Snapshot.TagIDsByCategory["trope"])
	require.NotNil(t, record.Snapshot.Axes.ConsentModeID)
	assert.Equal(t, "axis-consent", *record.Snapshot.Axes.ConsentModeID)
}

func TestPublish_RepublishCarriesDiffAndPreviousLink(t *testing.T) {
	entity := publishableBook()
	entity.Cover.Version = 2
	entity.Tags = append(entity.Tags, taxonomy.Tag{ID: "tag-enemies-to-lovers", CategoryKey: "trope"})

	previousSnapshot := baselineFromBook(publishableBook())
	publications := &fakePublicationRepo{
		latest: &Publication{ID: "pub-1", BookID: "book-1", Snapshot: previousSnapshot},
	}
	books := &fakeBookRepo{entity: entity}
	service := newTestService(publications, books, &fakeEvidenceRepo{}, &taxonomy.Version{ID: "txv-1", Active: true})

	result, err := service.Publish(context.Background(), "book-1", "curator-1")
	require.NoError(t, err)

	assert.False(t, result.FirstPublish)
	require.NotNil(t, result.Diff)
	assert.True(t, result.Diff.HasChanges)
	assert.True(t, result.Diff.CoverChanged)
	assert.Equal(t, []string{"tag-enemies-to-lovers"}, result.Diff.TagsAdded["trope"])
	assert.Empty(t, result.Diff.TagsRemoved)

	require.Len(t, publications.published, 1)
	record := publications.published[0].Publication
	require.NotNil(t, record.PreviousPublicationID)
	assert.Equal(t, "pub-1", *record.PreviousPublicationID)
	assert.Equal(t, 2, publications.published[0].ExpectedCoverVersion)
}

func TestPublish_BlockedByFailingGates(t *testing.T) {
	entity := publishableBook()
	entity.Axes.ConsentMode = nil
	entity.Cover = nil

	publications := &fakePublicationRepo{}
	books := &fakeBookRepo{entity: entity}
	service := newTestService(publications, books, &fakeEvidenceRepo{}, &taxonomy.Version{ID: "txv-1", Active: true})

	result, err := service.Publish(context.Background(), "book-1", "curator-1")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, publications.published)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "PUBLISH_BLOCKED", appError.Code)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.Contains(t, fields, string(curation.GateRequiredAxes))
	assert.Contains(t, fields, string(curation.GateRequiredCover))
}

func TestPublish_RequiresActiveTaxonomyVersion(t *testing.T) {
	publications := &fakePublicationRepo{}
	books := &fakeBookRepo{entity: publishableBook()}
	service := newTestService(publications, books, &fakeEvidenceRepo{}, nil)

	result, err := service.Publish(context.Background(), "book-1", "curator-1")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, publications.published)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNPROCESSABLE", appError.Code)
}

func TestPublish_UnsubstantiatedEvidenceTagBlocks(t *testing.T) {
	entity := publishableBook()
	entity.Tags = append(entity.Tags, taxonomy.Tag{
		ID: "tag-noncon", CategoryKey: "content_warning", Name: "Non-Consent", RequiresEvidence: true,
	})

	publications := &fakePublicationRepo{}
	books := &fakeBookRepo{entity: entity}
	service := newTestService(publications, books, &fakeEvidenceRepo{}, &taxonomy.Version{ID: "txv-1", Active: true})

	_, err := service.Publish(context.Background(), "book-1", "curator-1")
	require.Error(t, err)
	assert.Empty(t, publications.published)

	// The same book publishes once evidence links the flagged tag.
	tagID := "tag-noncon"
	evidenceRepo := &fakeEvidenceRepo{records: []*evidence.Evidence{
		{ID: "ev-1", BookID: "book-1", Kind: evidence.KindQuote, Body: "page 212", Links: []evidence.Link{{TagID: &tagID}}},
	}}
	service = newTestService(publications, books, evidenceRepo, &taxonomy.Version{ID: "txv-1", Active: true})

	result, err := service.Publish(context.Background(), "book-1", "curator-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-1"}, publications.published[0].Publication.Snapshot.EvidenceIDs)
	assert.True(t, result.FirstPublish)
}

func TestPreviewPublish_WritesNothing(t *testing.T) {
	entity := publishableBook()
	entity.Cover = nil

	publications := &fakePublicationRepo{}
	books := &fakeBookRepo{entity: entity}
	service := newTestService(publications, books, &fakeEvidenceRepo{}, &taxonomy.Version{ID: "txv-1", Active: true})

	preview, err := service.PreviewPublish(context.Background(), "book-1")
	require.NoError(t, err)
	assert.False(t, preview.Publishable)
	assert.Nil(t, preview.Diff)
	assert.Empty(t, publications.published)
}

func TestWorklist_AnnotatesDrafts(t *testing.T) {
	entity := publishableBook()
	books := &fakeBookRepo{entity: entity}
	service := newTestService(&fakePublicationRepo{}, books, &fakeEvidenceRepo{}, &taxonomy.Version{ID: "txv-1", Active: true})

	entries, total, err := service.Worklist(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.ID, entries[0].BookID)
	assert.True(t, entries[0].Publishable)
	assert.False(t, entries[0].Queues.Unfinished)

	// Dropping the cover moves the draft into the unfinished queue.
	entity.Cover = nil
	entries, _, err = service.Worklist(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Publishable)
	assert.True(t, entries[0].Queues.Unfinished)
}

// baselineFromBook builds the snapshot a previous publish of the given
// state would have stored.
func baselineFromBook(entity *book.Book) Snapshot {
	return snapshotFrom(entity, nil)
}
