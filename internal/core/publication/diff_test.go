// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/core/book"
)

func stringPointer(value string) *string { return &value }

func baselineSnapshot() Snapshot {
	return Snapshot{
		Title: "Dark Tide",
		Slug:  "dark-tide",
		Axes: book.AxesIDs{
			WorldFrameworkID: stringPointer("axis-wf"),
			PairingID:        stringPointer("axis-pair"),
			HeatLevelID:      stringPointer("axis-heat"),
			SeriesStatusID:   stringPointer("axis-series"),
			ConsentModeID:    stringPointer("axis-consent"),
		},
		TagIDsByCategory: map[string][]string{
			"trope":       {"tag-grumpy-sunshine", "tag-forced-proximity"},
			"plot_engine": {"tag-second-chance"},
		},
		EvidenceIDs:  []string{"ev-1", "ev-2"},
		CoverVersion: 1,
	}
}

func TestComputeDiff_FirstPublishHasNoDiff(t *testing.T) {
	current := baselineSnapshot()
	assert.Nil(t, computeDiff(nil, &current))
}

func TestComputeDiff_NoChanges(t *testing.T) {
	previous := baselineSnapshot()
	current := baselineSnapshot()

	diff := computeDiff(&previous, &current)
	require.NotNil(t, diff)
	assert.False(t, diff.HasChanges)
	assert.False(t, diff.CoverChanged)
	assert.Empty(t, diff.TagsAdded)
	assert.Empty(t, diff.TagsRemoved)
	assert.Empty(t, diff.EvidenceAdded)
	assert.Empty(t, diff.EvidenceRemoved)
}

func TestComputeDiff_OrderingDoesNotCount(t *testing.T) {
	previous := baselineSnapshot()
	current := baselineSnapshot()
	current.TagIDsByCategory["trope"] = []string{"tag-forced-proximity", "tag-grumpy-sunshine"}
	current.EvidenceIDs = []string{"ev-2", "ev-1"}

	diff := computeDiff(&previous, &current)
	require.NotNil(t, diff)
	assert.False(t, diff.HasChanges)
}

func TestComputeDiff_TagAndEvidenceDeltas(t *testing.T) {
	previous := baselineSnapshot()
	current := baselineSnapshot()
	current.TagIDsByCategory = map[string][]string{
		"trope":           {"tag-grumpy-sunshine", "tag-enemies-to-lovers"},
		"setting_wrapper": {"tag-small-town"},
	}
	current.EvidenceIDs = []string{"ev-2", "ev-3"}

	diff := computeDiff(&previous, &current)
	require.NotNil(t, diff)
	assert.True(t, diff.HasChanges)

	assert.Equal(t, []string{"tag-enemies-to-lovers"}, diff.TagsAdded["trope"])
	assert.Equal(t, []string{"tag-small-town"}, diff.TagsAdded["setting_wrapper"])
	assert.Equal(t, []string{"tag-forced-proximity"}, diff.TagsRemoved["trope"])
	assert.Equal(t, []string{"tag-second-chance"}, diff.TagsRemoved["plot_engine"])

	assert.Equal(t, []string{"ev-3"}, diff.EvidenceAdded)
	assert.Equal(t, []string{"ev-1"}, diff.EvidenceRemoved)
	assert.False(t, diff.CoverChanged)
}

func TestComputeDiff_CoverVersionBump(t *testing.T) {
	previous := baselineSnapshot()
	current := baselineSnapshot()
	current.CoverVersion = 2

	diff := computeDiff(&previous, &current)
	require.NotNil(t, diff)
	assert.True(t, diff.CoverChanged)
	assert.True(t, diff.HasChanges)
	assert.Empty(t, diff.TagsAdded)
	assert.Empty(t, diff.EvidenceAdded)
}

func TestComputeDiff_AxisSwapAloneCounts(t *testing.T) {
	previous := baselineSnapshot()
	current := baselineSnapshot()
	current.Axes.HeatLevelID = stringPointer("axis-heat-higher")

	diff := computeDiff(&previous, &current)
	require.NotNil(t, diff)
	assert.True(t, diff.HasChanges)
	assert.Empty(t, diff.TagsAdded)
	assert.Empty(t, diff.TagsRemoved)
	assert.False(t, diff.CoverChanged)
}
