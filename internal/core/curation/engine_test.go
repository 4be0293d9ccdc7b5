// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package curation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
)

// axisTag builds a minimal tag for an axis category.
func axisTag(axis taxonomy.Axis, slug string) *taxonomy.Tag {
	return &taxonomy.Tag{ID: "tag-" + slug, CategoryKey: string(axis), Name: slug, Slug: slug}
}

// fullAxes returns a complete axis selection with neutral slugs.
func fullAxes() curation.AxisSelection {
	return curation.AxisSelection{
		WorldFramework: axisTag(taxonomy.AxisWorldFramework, "contemporary"),
		Pairing:        axisTag(taxonomy.AxisPairing, "mf"),
		HeatLevel:      axisTag(taxonomy.AxisHeatLevel, "open-door"),
		SeriesStatus:   axisTag(taxonomy.AxisSeriesStatus, "standalone"),
		ConsentMode:    axisTag(taxonomy.AxisConsentMode, "clear-explicit"),
	}
}

func readyCover() *curation.CoverState {
	return &curation.CoverState{Version: 1, Ready: true}
}

// gateByID extracts one gate result from a validation result.
func gateByID(t *testing.T, result curation.Result, id curation.GateID) curation.GateResult {
	t.Helper()
	for _, gate := range result.Gates {
		if gate.Gate == id {
			return gate
		}
	}
	t.Fatalf("gate %s not reported", id)
	return curation.GateResult{}
}

/*
TestEngine_GateCompleteness walks the axes/cover/evidence combination grid
and asserts exactly the expected gates fail with the right missing lists.
*/
func TestEngine_GateCompleteness(t *testing.T) {
	highStakes := taxonomy.Tag{
		ID: "tag-noncon", CategoryKey: taxonomy.CategoryContentWarning,
		Name: "Non-Consent", Slug: "non-consent", RequiresEvidence: true,
	}

	tests := []struct {
		name          string
		axes          curation.AxisSelection
		cover         *curation.CoverState
		tags          map[string][]taxonomy.Tag
		evidence      []curation.EvidenceRef
		wantAxesOK    bool
		wantCoverOK   bool
		wantEvOK      bool
		wantAxMissing []string
		wantEvMissing []string
	}{
		{
			name:        "all_satisfied",
			axes:        fullAxes(),
			cover:       readyCover(),
			wantAxesOK:  true,
			wantCoverOK: true,
			wantEvOK:    true,
		},
		{
			name:          "missing_two_axes",
			axes:          curation.AxisSelection{HeatLevel: axisTag(taxonomy.AxisHeatLevel, "open-door"), SeriesStatus: axisTag(taxonomy.AxisSeriesStatus, "standalone"), ConsentMode: axisTag(taxonomy.AxisConsentMode, "negotiated")},
			cover:         readyCover(),
			wantAxesOK:    false,
			wantCoverOK:   true,
			wantEvOK:      true,
			wantAxMissing: []string{"world_framework", "pairing"},
		},
		{
			name:        "cover_absent",
			axes:        fullAxes(),
			cover:       nil,
			wantAxesOK:  true,
			wantCoverOK: false,
			wantEvOK:    true,
		},
		{
			name:        "cover_not_ready",
			axes:        fullAxes(),
			cover:       &curation.CoverState{Version: 3, Ready: false},
			wantAxesOK:  true,
			wantCoverOK: false,
			wantEvOK:    true,
		},
		{
			name:          "high_stakes_tag_without_evidence",
			axes:          fullAxes(),
			cover:         readyCover(),
			tags:          map[string][]taxonomy.Tag{taxonomy.CategoryContentWarning: {highStakes}},
			wantAxesOK:    true,
			wantCoverOK:   true,
			wantEvOK:      false,
			wantEvMissing: []string{"Non-Consent"},
		},
		{
			name:        "high_stakes_tag_with_linked_evidence",
			axes:        fullAxes(),
			cover:       readyCover(),
			tags:        map[string][]taxonomy.Tag{taxonomy.CategoryContentWarning: {highStakes}},
			evidence:    []curation.EvidenceRef{{ID: "ev-1", TagIDs: []string{"tag-noncon"}}},
			wantAxesOK:  true,
			wantCoverOK: true,
			wantEvOK:    true,
		},
		{
			name:        "evidence_linked_to_other_tag_does_not_count",
			axes:        fullAxes(),
			cover:       readyCover(),
			tags:        map[string][]taxonomy.Tag{taxonomy.CategoryContentWarning: {highStakes}},
			evidence:    []curation.EvidenceRef{{ID: "ev-1", TagIDs: []string{"tag-other"}}},
			wantAxesOK:  true,
			wantCoverOK: true,
			wantEvOK:    false,
		},
	}

	engine := curation.DefaultEngine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Validate(curation.Input{
				Axes:           tt.axes,
				TagsByCategory: tt.tags,
				Evidence:       tt.evidence,
				Cover:          tt.cover,
			})

			axes := gateByID(t, result, curation.GateRequiredAxes)
			cover := gateByID(t, result, curation.GateRequiredCover)
			evidence := gateByID(t, result, curation.GateRequiredEvidence)

			assert.Equal(t, tt.wantAxesOK, axes.OK)
			assert.Equal(t, tt.wantCoverOK, cover.OK)
			assert.Equal(t, tt.wantEvOK, evidence.OK)

			if len(tt.wantAxMissing) > 0 {
				assert.Equal(t, tt.wantAxMissing, axes.Missing)
			}
			if len(tt.wantEvMissing) > 0 {
				assert.Equal(t, tt.wantEvMissing, evidence.Missing)
			}
		})
	}
}

/*
TestEngine_ConsentWarningMismatch asserts the shipped contradiction rule
fires exactly once for a consenting consent-mode plus a non-consent warning,
and clears when either side is removed.
*/
func TestEngine_ConsentWarningMismatch(t *testing.T) {
	engine := curation.DefaultEngine()

	nonConsent := taxonomy.Tag{
		ID: "tag-noncon", CategoryKey: taxonomy.CategoryContentWarning,
		Name: "Non-Consent", Slug: "non-consent",
	}

	t.Run("fires_for_clear_explicit_plus_noncon_warning", func(t *testing.T) {
		result := engine.Validate(curation.Input{
			Axes:           fullAxes(), // consent mode: clear-explicit
			TagsByCategory: map[string][]taxonomy.Tag{taxonomy.CategoryContentWarning: {nonConsent}},
			Cover:          readyCover(),
		})

		require.Len(t, result.Contradictions, 1)
		assert.Equal(t, "CONSENT_WARNING_MISMATCH", result.Contradictions[0].RuleID)
		assert.Equal(t, curation.SeverityHard, result.Contradictions[0].Severity)
		assert.True(t, result.Queues.Contradiction)
		assert.False(t, result.Publishable())
	})

	t.Run("fires_for_negotiated_consent_mode", func(t *testing.T) {
		axes := fullAxes()
		axes.ConsentMode = axisTag(taxonomy.AxisConsentMode, "negotiated")

		result := engine.Validate(curation.Input{
			Axes:           axes,
			TagsByCategory: map[string][]taxonomy.Tag{taxonomy.CategoryContentWarning: {nonConsent}},
			Cover:          readyCover(),
		})
		require.Len(t, result.Contradictions, 1)
	})

	t.Run("clears_when_warning_removed", func(t *testing.T) {
		result := engine.Validate(curation.Input{
			Axes:  fullAxes(),
			Cover: readyCover(),
		})
		assert.Empty(t, result.Contradictions)
		assert.False(t, result.Queues.Contradiction)
		assert.True(t, result.Publishable())
	})

	t.Run("clears_when_consent_mode_is_dark", func(t *testing.T) {
		axes := fullAxes()
		axes.ConsentMode = axisTag(taxonomy.AxisConsentMode, "dark-noncon")

		result := engine.Validate(curation.Input{
			Axes:           axes,
			TagsByCategory: map[string][]taxonomy.Tag{taxonomy.CategoryContentWarning: {nonConsent}},
			Cover:          readyCover(),
		})
		assert.Empty(t, result.Contradictions)
	})
}

/*
TestEngine_CapStatuses confirms the configured ceilings are reported per
category with a correct over/under verdict.
*/
func TestEngine_CapStatuses(t *testing.T) {
	engine := curation.DefaultEngine()

	tropes := make([]taxonomy.Tag, 9)
	for i := range tropes {
		tropes[i] = taxonomy.Tag{ID: string(rune('a' + i)), CategoryKey: taxonomy.CategoryTrope}
	}

	result := engine.Validate(curation.Input{
		Axes:  fullAxes(),
		Cover: readyCover(),
		TagsByCategory: map[string][]taxonomy.Tag{
			taxonomy.CategoryTrope:      tropes,
			taxonomy.CategoryPlotEngine: {{ID: "pe1", CategoryKey: taxonomy.CategoryPlotEngine}},
		},
	})

	byCategory := make(map[string]curation.CapStatus)
	for _, status := range result.Caps {
		byCategory[status.Category] = status
	}

	trope := byCategory[taxonomy.CategoryTrope]
	assert.Equal(t, 9, trope.Count)
	assert.Equal(t, 8, trope.Max)
	assert.False(t, trope.OK)

	plotEngine := byCategory[taxonomy.CategoryPlotEngine]
	assert.Equal(t, 1, plotEngine.Count)
	assert.True(t, plotEngine.OK)

	// All configured categories are reported, even at count zero.
	assert.Contains(t, byCategory, taxonomy.CategorySettingWrapper)
	assert.Contains(t, byCategory, taxonomy.CategorySeasonal)

	// A cap overrun alone does not block publish.
	assert.True(t, result.Publishable())
}

/*
TestEngine_Queues checks the derived worklist flags against gate outcomes.
*/
func TestEngine_Queues(t *testing.T) {
	engine := curation.DefaultEngine()

	t.Run("unfinished_when_cover_missing", func(t *testing.T) {
		result := engine.Validate(curation.Input{Axes: fullAxes()})
		assert.True(t, result.Queues.Unfinished)
		assert.False(t, result.Queues.NeedsEvidence)
	})

	t.Run("needs_evidence_when_high_stakes_unsubstantiated", func(t *testing.T) {
		result := engine.Validate(curation.Input{
			Axes:  fullAxes(),
			Cover: readyCover(),
			TagsByCategory: map[string][]taxonomy.Tag{
				taxonomy.CategoryContentWarning: {{ID: "t1", Name: "CW", Slug: "cw", RequiresEvidence: true}},
			},
		})
		assert.False(t, result.Queues.Unfinished)
		assert.True(t, result.Queues.NeedsEvidence)
	})
}
