// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestNormalizeIdentifier checks canonicalization and rejection of malformed
external identifiers.
*/
func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "asin_lowercase", input: "b0abcdefgh", want: "B0ABCDEFGH"},
		{name: "isbn_with_hyphens", input: "0-7475-3269-9", want: "0747532699"},
		{name: "surrounding_whitespace", input: "  B0ABCDEFGH ", want: "B0ABCDEFGH"},
		{name: "inner_spaces", input: "B0 ABC DEFGH", want: "B0ABCDEFGH"},
		{name: "too_short", input: "B0ABCDEF", wantErr: true},
		{name: "too_long", input: "B0ABCDEFGH1", wantErr: true},
		{name: "invalid_characters", input: "B0ABCDEF!H", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeIdentifier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestNormalizeTitle checks the title reduction used for tiers 2 and 4.
*/
func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Dark Tide", want: "dark tide"},
		{name: "strips_leading_the", input: "The Dark Tide", want: "dark tide"},
		{name: "strips_leading_a", input: "A Court of Embers", want: "court of embers"},
		{name: "strips_leading_an", input: "An Heir of Ash", want: "heir of ash"},
		{name: "only_leading_article", input: "The Taming of the Duke", want: "taming of the duke"},
		{name: "strips_parenthetical", input: "Dark Tide (Tidewater Book 1)", want: "dark tide"},
		{name: "strips_bracketed", input: "Dark Tide [Special Edition]", want: "dark tide"},
		{name: "strips_punctuation", input: "Duke, Actually!", want: "duke actually"},
		{name: "collapses_whitespace", input: "  Dark   Tide  ", want: "dark tide"},
		{name: "article_after_strip", input: "(Bonus) The Dark Tide", want: "dark tide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.input))
		})
	}
}

func TestNormalizeAuthor(t *testing.T) {
	assert.Equal(t, "j r ward", NormalizeAuthor("J. R. Ward"))
	assert.Equal(t, "tessa dare", NormalizeAuthor("  Tessa   DARE "))
	assert.Equal(t, "anne o brien", NormalizeAuthor("Anne O'Brien"))
}

/*
TestRankCandidates verifies tier ordering and that a book found by several
tiers is reported once, under the highest one.
*/
func TestRankCandidates(t *testing.T) {
	hitA := MatchHit{BookID: "book-a", Title: "Dark Tide", Slug: "dark-tide"}
	hitB := MatchHit{BookID: "book-b", Title: "The Dark Tide", Slug: "the-dark-tide"}

	candidates := rankCandidates(map[string][]MatchHit{
		TierIdentifier:      {hitA},
		TierTitleAuthor:     {hitA, hitB}, // hitA already claimed above
		TierNormalizedTitle: {hitA, hitB}, // both already claimed
	})

	require.Len(t, candidates, 2)

	assert.Equal(t, "book-a", candidates[0].BookID)
	assert.Equal(t, ConfidenceHigh, candidates[0].Confidence)
	assert.Equal(t, "same external identifier", candidates[0].Reason)

	assert.Equal(t, "book-b", candidates[1].BookID)
	assert.Equal(t, ConfidenceMedium, candidates[1].Confidence)
}

func TestRankCandidates_NormalizedTitleAloneIsLow(t *testing.T) {
	candidates := rankCandidates(map[string][]MatchHit{
		TierNormalizedTitle: {{BookID: "book-c", Title: "Dark Tide", Slug: "dark-tide"}},
	})

	require.Len(t, candidates, 1)
	assert.Equal(t, ConfidenceLow, candidates[0].Confidence)
	assert.False(t, hasHighConfidence(candidates))
}
