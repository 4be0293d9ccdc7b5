// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package evidence

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
)

// fakeRepository is an in-memory [Repository] for service tests.
type fakeRepository struct {
	records map[string]*Evidence
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string]*Evidence)}
}

func (fake *fakeRepository) ListByBook(_ context.Context, bookID string) ([]*Evidence, error) {
	var found []*Evidence
	for _, record := range fake.records {
		if record.BookID == bookID {
			found = append(found, record)
		}
	}
	return found, nil
}

func (fake *fakeRepository) GetByID(_ context.Context, id string) (*Evidence, error) {
	record, ok := fake.records[id]
	if !ok {
		return nil, apperr.NotFound("Evidence")
	}
	return record, nil
}

func (fake *fakeRepository) Create(_ context.Context, record *Evidence) error {
	fake.records[record.ID] = record
	return nil
}

func (fake *fakeRepository) Delete(_ context.Context, id string) error {
	delete(fake.records, id)
	return nil
}

// fakeTaxonomyRepo knows a fixed tag set.
type fakeTaxonomyRepo struct {
	known map[string]struct{}
}

func (fake *fakeTaxonomyRepo) ListCatalog(context.Context, bool) ([]*taxonomy.Category, error) {
	return nil, nil
}
func (fake *fakeTaxonomyRepo) ListCategories(context.Context) ([]*taxonomy.Category, error) {
	return nil, nil
}
func (fake *fakeTaxonomyRepo) GetTagByID(_ context.Context, id string) (*taxonomy.Tag, error) {
	if _, ok := fake.known[id]; !ok {
		return nil, apperr.NotFound("Tag")
	}
	return &taxonomy.Tag{ID: id}, nil
}
func (fake *fakeTaxonomyRepo) GetTagsByIDs(_ context.Context, ids []string) ([]*taxonomy.Tag, error) {
	var found []*taxonomy.Tag
	for _, id := range ids {
		if _, ok := fake.known[id]; ok {
			found = append(found, &taxonomy.Tag{ID: id})
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

func newTestService(repo *fakeRepository, knownTags ...string) *Service {
	known := make(map[string]struct{}, len(knownTags))
	for _, id := range knownTags {
		known[id] = struct{}{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taxonomyService := taxonomy.NewService(&fakeTaxonomyRepo{known: known}, taxonomy.NewNoopCache(), logger)
	return NewService(repo, taxonomyService, audit.NoopRecorder{}, logger)
}

func TestCreate_ValidQuoteWithTagLink(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, "tag-noncon")

	tagID := "tag-noncon"
	record := &Evidence{
		BookID: "book-1",
		Kind:   KindQuote,
		Body:   "He asked, and waited for her answer.",
		Links:  []Link{{TagID: &tagID}},
	}

	err := service.Create(context.Background(), record, "curator-1")
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "curator-1", record.CreatedBy)
	assert.Len(t, repo.records, 1)
}

func TestCreate_Rejections(t *testing.T) {
	axis := taxonomy.AxisConsentMode
	badAxis := taxonomy.Axis("mood")
	tagID := "tag-known"

	tests := []struct {
		name   string
		record Evidence
	}{
		{
			name:   "unknown_kind",
			record: Evidence{BookID: "book-1", Kind: "annotation", Body: "text"},
		},
		{
			name:   "empty_body",
			record: Evidence{BookID: "book-1", Kind: KindSceneNote},
		},
		{
			name: "link_with_both_targets",
			record: Evidence{
				BookID: "book-1", Kind: KindQuote, Body: "text",
				Links: []Link{{TagID: &tagID, Axis: &axis}},
			},
		},
		{
			name: "link_with_no_target",
			record: Evidence{
				BookID: "book-1", Kind: KindQuote, Body: "text",
				Links: []Link{{}},
			},
		},
		{
			name: "link_to_unknown_axis",
			record: Evidence{
				BookID: "book-1", Kind: KindQuote, Body: "text",
				Links: []Link{{Axis: &badAxis}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			service := newTestService(repo, "tag-known")

			err := service.Create(context.Background(), &tt.record, "curator-1")
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			assert.Empty(t, repo.records)
		})
	}
}

func TestCreate_UnknownLinkedTagRejected(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo) // no known tags

	tagID := "tag-ghost"
	record := &Evidence{
		BookID: "book-1", Kind: KindQuote, Body: "text",
		Links: []Link{{TagID: &tagID}},
	}

	err := service.Create(context.Background(), record, "curator-1")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	require.Len(t, appError.Details, 1)
	assert.Contains(t, appError.Details[0].Message, "tag-ghost")
}

func TestRefs_ProjectsLinks(t *testing.T) {
	tagID := "tag-1"
	axis := taxonomy.AxisHeatLevel

	refs := Refs([]*Evidence{
		{ID: "ev-1", Links: []Link{{TagID: &tagID}, {Axis: &axis}}},
		{ID: "ev-2"},
	})

	require.Len(t, refs, 2)
	assert.Equal(t, []string{"tag-1"}, refs[0].TagIDs)
	assert.Equal(t, []taxonomy.Axis{taxonomy.AxisHeatLevel}, refs[0].Axes)
	assert.Empty(t, refs[1].TagIDs)
}
