// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preferenceCatalog() []*Category {
	return []*Category{
		{
			Key: string(AxisHeatLevel),
			Tags: []Tag{
				{ID: "heat-1", Slug: "slow-burn", SortOrder: 1},
				{ID: "heat-2", Slug: "open-door", SortOrder: 2},
				{ID: "heat-3", Slug: "explicit", SortOrder: 3},
			},
		},
		{
			Key: CategoryTrope,
			Tags: []Tag{
				{ID: "trope-1", Slug: "enemies-to-lovers"},
				{ID: "trope-2", Slug: "secret-baby"},
			},
		},
	}
}

/*
TestPersonalizeCatalog covers the member-preference shaping of catalog reads:
muted tags disappear, heat levels above the cap disappear, and the shared
cached catalog is never mutated in place.
*/
func TestPersonalizeCatalog(t *testing.T) {
	t.Run("no_preferences_passes_through", func(t *testing.T) {
		catalog := preferenceCatalog()
		shaped := personalizeCatalog(catalog, nil, "")
		assert.Same(t, catalog[0], shaped[0], "nothing to filter, no copy")
	})

	t.Run("muted_tags_dropped", func(t *testing.T) {
		catalog := preferenceCatalog()
		shaped := personalizeCatalog(catalog, []string{"trope-2"}, "")

		require.Len(t, shaped, 2)
		require.Len(t, shaped[1].Tags, 1)
		assert.Equal(t, "enemies-to-lovers", shaped[1].Tags[0].Slug)
	})

	t.Run("heat_cap_drops_hotter_levels", func(t *testing.T) {
		catalog := preferenceCatalog()
		shaped := personalizeCatalog(catalog, nil, "open-door")

		require.Len(t, shaped[0].Tags, 2)
		assert.Equal(t, "slow-burn", shaped[0].Tags[0].Slug)
		assert.Equal(t, "open-door", shaped[0].Tags[1].Slug)

		// Non-heat categories are untouched by the cap.
		assert.Len(t, shaped[1].Tags, 2)
	})

	t.Run("unknown_cap_slug_means_no_cap", func(t *testing.T) {
		catalog := preferenceCatalog()
		shaped := personalizeCatalog(catalog, []string{"trope-1"}, "does-not-exist")
		assert.Len(t, shaped[0].Tags, 3)
	})

	t.Run("cached_catalog_not_mutated", func(t *testing.T) {
		catalog := preferenceCatalog()
		_ = personalizeCatalog(catalog, []string{"trope-1", "heat-3"}, "open-door")

		assert.Len(t, catalog[0].Tags, 3, "the cached slice keeps every heat level")
		assert.Len(t, catalog[1].Tags, 2, "the cached slice keeps muted tags")
	})
}
