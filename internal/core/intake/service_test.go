// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package intake

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
)

// # Fakes

// fakeIntakeRepo is an in-memory [Repository] honoring the conditional
// state transitions.
type fakeIntakeRepo struct {
	intakes map[string]*Intake
}

func newFakeIntakeRepo() *fakeIntakeRepo {
	return &fakeIntakeRepo{intakes: make(map[string]*Intake)}
}

func (fake *fakeIntakeRepo) Create(_ context.Context, record *Intake) error {
	record.CreatedAt = time.Now()
	fake.intakes[record.ID] = record
	return nil
}

func (fake *fakeIntakeRepo) GetByID(_ context.Context, id string) (*Intake, error) {
	record, ok := fake.intakes[id]
	if !ok {
		return nil, apperr.NotFound("Intake")
	}
	return record, nil
}

func (fake *fakeIntakeRepo) List(context.Context, Filter, int, int) ([]*Intake, int, error) {
	return nil, 0, nil
}

func (fake *fakeIntakeRepo) ActiveExists(_ context.Context, submittedBy, identifierValue string) (bool, error) {
	for _, record := range fake.intakes {
		if record.SubmittedBy == submittedBy && record.IdentifierValue == identifierValue && record.State != StateRejected {
			return true, nil
		}
	}
	return false, nil
}

func (fake *fakeIntakeRepo) MarkApproved(_ context.Context, id, decidedBy, notes, createdBookID string) (bool, error) {
	record, ok := fake.intakes[id]
	if !ok || record.State != StatePending {
		return false, nil
	}
	record.State = StateApproved
	record.DecidedBy = &decidedBy
	record.DecisionNotes = &notes
	record.CreatedBookID = &createdBookID
	now := time.Now()
	record.DecidedAt = &now
	return true, nil
}

func (fake *fakeIntakeRepo) MarkRejected(_ context.Context, id, decidedBy, notes string) (bool, error) {
	record, ok := fake.intakes[id]
	if !ok || record.State != StatePending {
		return false, nil
	}
	record.State = StateRejected
	record.DecidedBy = &decidedBy
	record.DecisionNotes = &notes
	now := time.Now()
	record.DecidedAt = &now
	return true, nil
}

// fakeBookRepo backs the real book service with in-memory state so the
// materialization path runs end to end.
type fakeBookRepo struct {
	books       map[string]*book.Book
	byExternal  map[string][]book.MatchHit
	attachCalls []string
	axesCalls   []book.AxesIDs
	created     []book.CreateBundle
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		books:      make(map[string]*book.Book),
		byExternal: make(map[string][]book.MatchHit),
	}
}

func (fake *fakeBookRepo) FindByID(_ context.Context, id string) (*book.Book, error) {
	entity, ok := fake.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	return entity, nil
}

func (fake *fakeBookRepo) FindBySlug(context.Context, string) (*book.Book, error) {
	return nil, apperr.NotFound("Book")
}
func (fake *fakeBookRepo) List(context.Context, book.Filter, int, int) ([]*book.Book, int, error) {
	return nil, 0, nil
}
func (fake *fakeBookRepo) SlugTaken(context.Context, string) (bool, error) { return false, nil }

func (fake *fakeBookRepo) MatchByIdentifier(_ context.Context, normalized string) ([]book.MatchHit, error) {
	return fake.byExternal[normalized], nil
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

func (fake *fakeBookRepo) Create(_ context.Context, bundle book.CreateBundle) (*book.CreateOutcome, error) {
	fake.created = append(fake.created, bundle)
	fake.books[bundle.Book.ID] = bundle.Book
	return &book.CreateOutcome{AuthorID: "author-1", AuthorCreated: true}, nil
}

func (fake *fakeBookRepo) AttachTag(_ context.Context, _ string, tag *taxonomy.Tag, _ string, _ int) (bool, error) {
	fake.attachCalls = append(fake.attachCalls, tag.ID)
	return true, nil
}

func (fake *fakeBookRepo) DetachTag(context.Context, string, string) error { return nil }

func (fake *fakeBookRepo) SetAxes(_ context.Context, _ string, axes book.AxesIDs) error {
	fake.axesCalls = append(fake.axesCalls, axes)
	return nil
}

func (fake *fakeBookRepo) AddCover(context.Context, *book.CoverAsset) error    { return nil }
func (fake *fakeBookRepo) AddQuote(context.Context, *book.StandoutQuote) error { return nil }

// fakeTaxonomyRepo serves a fixed tag set.
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

// # Fixtures

func fixtureTags() map[string]*taxonomy.Tag {
	tags := map[string]*taxonomy.Tag{
		"tag-grumpy":    {ID: "tag-grumpy", CategoryKey: "trope", Name: "Grumpy/Sunshine"},
		"tag-proximity": {ID: "tag-proximity", CategoryKey: "trope", Name: "Forced Proximity"},
	}
	for _, axis := range taxonomy.AllAxes() {
		id := "axis-" + string(axis)
		tags[id] = &taxonomy.Tag{ID: id, CategoryKey: string(axis), Name: id}
	}
	return tags
}

func fullAxes() book.AxesIDs {
	id := func(axis taxonomy.Axis) *string {
		value := "axis-" + string(axis)
		return &value
	}
	return book.AxesIDs{
		WorldFrameworkID: id(taxonomy.AxisWorldFramework),
		PairingID:        id(taxonomy.AxisPairing),
		HeatLevelID:      id(taxonomy.AxisHeatLevel),
		SeriesStatusID:   id(taxonomy.AxisSeriesStatus),
		ConsentModeID:    id(taxonomy.AxisConsentMode),
	}
}

func validSubmitInput() SubmitInput {
	return SubmitInput{
		Title:           "The Dark Tide",
		AuthorName:      "Tessa Dare",
		IdentifierValue: "b0-abcdefgh",
		Axes:            fullAxes(),
		TagSelections: map[string][]string{
			"trope": {"tag-grumpy", "tag-proximity"},
		},
	}
}

func newTestService(intakes *fakeIntakeRepo, books *fakeBookRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taxonomyService := taxonomy.NewService(&fakeTaxonomyRepo{tags: fixtureTags()}, taxonomy.NewNoopCache(), logger)
	bookService := book.NewService(books, taxonomyService, curation.DefaultEngine(), audit.NoopRecorder{}, logger)
	return NewService(intakes, bookService, books, taxonomyService, audit.NoopRecorder{}, logger)
}

// # Tests

func TestSubmit_StoresNormalizedPendingIntake(t *testing.T) {
	intakes := newFakeIntakeRepo()
	service := newTestService(intakes, newFakeBookRepo())

	record, err := service.Submit(context.Background(), validSubmitInput(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, StatePending, record.State)
	assert.Equal(t, "B0ABCDEFGH", record.IdentifierValue)
	assert.Equal(t, book.IdentifierASIN, record.IdentifierKind)
	assert.Equal(t, "user-1", record.SubmittedBy)
	assert.Len(t, intakes.intakes, 1)
}

func TestSubmit_UnknownTagIDsRejectedWithOffendingList(t *testing.T) {
	service := newTestService(newFakeIntakeRepo(), newFakeBookRepo())

	input := validSubmitInput()
	input.TagSelections["trope"] = append(input.TagSelections["trope"], "tag-ghost", "tag-phantom")

	_, err := service.Submit(context.Background(), input, "user-1")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 2)
	assert.Contains(t, appError.Details[0].Message, "tag-ghost")
	assert.Contains(t, appError.Details[1].Message, "tag-phantom")
}

func TestSubmit_AxisSlotMustMatchAxisCategory(t *testing.T) {
	service := newTestService(newFakeIntakeRepo(), newFakeBookRepo())

	input := validSubmitInput()
	wrong := "tag-grumpy" // a trope, not a heat level
	input.Axes.HeatLevelID = &wrong

	_, err := service.Submit(context.Background(), input, "user-1")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Contains(t, appError.Message, "heat_level")
}

func TestSubmit_DuplicatePerAuthorIdentifierConflicts(t *testing.T) {
	intakes := newFakeIntakeRepo()
	service := newTestService(intakes, newFakeBookRepo())

	_, err := service.Submit(context.Background(), validSubmitInput(), "user-1")
	require.NoError(t, err)

	// Same author, same identifier in different raw form.
	input := validSubmitInput()
	input.IdentifierValue = "B0ABCDEFGH"
	_, err = service.Submit(context.Background(), input, "user-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// Another author may propose the same identifier.
	_, err = service.Submit(context.Background(), validSubmitInput(), "user-2")
	require.NoError(t, err)
}

func TestDecide_ApproveMaterializesBookWithTags(t *testing.T) {
	intakes := newFakeIntakeRepo()
	books := newFakeBookRepo()
	service := newTestService(intakes, books)

	record, err := service.Submit(context.Background(), validSubmitInput(), "user-1")
	require.NoError(t, err)

	decided, err := service.Decide(context.Background(), record.ID, DecideInput{Decision: DecisionApprove}, "curator-1")
	require.NoError(t, err)

	assert.Equal(t, StateApproved, decided.State)
	require.NotNil(t, decided.CreatedBookID)
	require.Len(t, books.created, 1)
	assert.Equal(t, *decided.CreatedBookID, books.created[0].Book.ID)

	// The two trope selections attach as multi-select tags.
	assert.ElementsMatch(t, []string{"tag-grumpy", "tag-proximity"}, books.attachCalls)
	// Each of the five axis tags routes into its single-select slot.
	assert.Len(t, books.axesCalls, 5)
	final := books.axesCalls[len(books.axesCalls)-1]
	require.NotNil(t, final.ConsentModeID)
	assert.Equal(t, "axis-consent_mode", *final.ConsentModeID)

	// Approval never publishes.
	assert.Equal(t, book.StatusDraft, books.created[0].Book.Status)
}

func TestDecide_ApproveReusesBookWithSameIdentifier(t *testing.T) {
	intakes := newFakeIntakeRepo()
	books := newFakeBookRepo()
	books.books["book-existing"] = &book.Book{ID: "book-existing", Title: "Dark Tide", Status: book.StatusDraft}
	books.byExternal["B0ABCDEFGH"] = []book.MatchHit{{BookID: "book-existing", Title: "Dark Tide", Slug: "dark-tide"}}
	service := newTestService(intakes, books)

	record, err := service.Submit(context.Background(), validSubmitInput(), "user-1")
	require.NoError(t, err)

	decided, err := service.Decide(context.Background(), record.ID, DecideInput{Decision: DecisionApprove}, "curator-1")
	require.NoError(t, err)

	assert.Empty(t, books.created)
	require.NotNil(t, decided.CreatedBookID)
	assert.Equal(t, "book-existing", *decided.CreatedBookID)
}

func TestDecide_RejectIsTerminalAndLeavesCatalogAlone(t *testing.T) {
	intakes := newFakeIntakeRepo()
	books := newFakeBookRepo()
	service := newTestService(intakes, books)

	record, err := service.Submit(context.Background(), validSubmitInput(), "user-1")
	require.NoError(t, err)

	decided, err := service.Decide(context.Background(), record.ID, DecideInput{Decision: DecisionReject, Notes: "no evidence provided"}, "curator-1")
	require.NoError(t, err)

	assert.Equal(t, StateRejected, decided.State)
	require.NotNil(t, decided.DecisionNotes)
	assert.Equal(t, "no evidence provided", *decided.DecisionNotes)
	assert.Empty(t, books.created)
	assert.Empty(t, books.attachCalls)

	// No further transitions.
	_, err = service.Decide(context.Background(), record.ID, DecideInput{Decision: DecisionApprove}, "curator-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestDecide_SecondApprovalRejected(t *testing.T) {
	intakes := newFakeIntakeRepo()
	service := newTestService(intakes, newFakeBookRepo())

	record, err := service.Submit(context.Background(), validSubmitInput(), "user-1")
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), record.ID, DecideInput{Decision: DecisionApprove}, "curator-1")
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), record.ID, DecideInput{Decision: DecisionApprove}, "curator-2")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestDecide_UnknownVerdictRejected(t *testing.T) {
	service := newTestService(newFakeIntakeRepo(), newFakeBookRepo())

	_, err := service.Decide(context.Background(), "intake-1", DecideInput{Decision: "escalate"}, "curator-1")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
