// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package book

import (
	"regexp"
	"strings"

	"github.com/embershelf/embershelf/internal/platform/apperr"
)

// # Duplicate Detection

// Confidence ranks how likely a candidate is the same book.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Match tiers, in priority order. Each tier only reports books not already
// claimed by a higher tier.
const (
	TierIdentifier      = "identifier_exact"
	TierTitleAuthor     = "normalized_title_author"
	TierRawTitle        = "raw_title_case_insensitive"
	TierNormalizedTitle = "normalized_title"
)

// DuplicateCandidate is one suspected existing copy of a proposed book.
type DuplicateCandidate struct {
	BookID     string     `json:"book_id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

// candidateReasons maps each tier to its user-facing explanation.
var candidateReasons = map[string]string{
	TierIdentifier:      "same external identifier",
	TierTitleAuthor:     "same normalized title and author",
	TierRawTitle:        "identical title (case-insensitive)",
	TierNormalizedTitle: "same normalized title",
}

// tierConfidence maps each tier to its confidence rank.
var tierConfidence = map[string]Confidence{
	TierIdentifier:      ConfidenceHigh,
	TierTitleAuthor:     ConfidenceMedium,
	TierRawTitle:        ConfidenceMedium,
	TierNormalizedTitle: ConfidenceLow,
}

// # Normalization

var (
	identifierStripPattern = regexp.MustCompile(`[\s-]+`)
	identifierValidPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	bracketedPattern       = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	punctuationPattern     = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespacePattern      = regexp.MustCompile(`\s+`)
)

/*
NormalizeIdentifier canonicalizes an ASIN/ISBN-10 to its stored form.

Description: Uppercases the input and strips whitespace and hyphens. The
result must be exactly ten alphanumeric characters; anything else is
rejected before matching is attempted.

Parameters:
  - raw: string (identifier as submitted)

Returns:
  - string: Canonical 10-character identifier
  - error: Validation error naming the field when the input is malformed
*/
func NormalizeIdentifier(raw string) (string, error) {
	cleaned := identifierStripPattern.ReplaceAllString(strings.ToUpper(strings.TrimSpace(raw)), "")
	if !identifierValidPattern.MatchString(cleaned) {
		return "", apperr.ValidationError("identifier must normalize to 10 alphanumeric characters",
			apperr.FieldError{Field: FieldIdentifier, Message: "expected a 10-character ASIN or ISBN-10"})
	}
	return cleaned, nil
}

// NormalizeTitle reduces a title to its matching form: lower-cased, leading
// article dropped, bracketed/parenthetical segments removed, punctuation
// stripped, whitespace collapsed.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = bracketedPattern.ReplaceAllString(normalized, " ")
	normalized = punctuationPattern.ReplaceAllString(normalized, " ")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)

	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(normalized, article) {
			normalized = strings.TrimSpace(strings.TrimPrefix(normalized, article))
			break
		}
	}
	return normalized
}

// NormalizeAuthor reduces an author name to its matching form: lower-cased,
// punctuation stripped, whitespace collapsed.
func NormalizeAuthor(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = punctuationPattern.ReplaceAllString(normalized, " ")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// # Tier Assembly

// MatchHit is one raw match row returned by a repository tier lookup.
type MatchHit struct {
	BookID string
	Title  string
	Slug   string
}

// rankCandidates folds per-tier hits into the final candidate list.
// Tiers are processed in priority order and every book is reported at most
// once, under the highest tier that found it.
func rankCandidates(hitsByTier map[string][]MatchHit) []DuplicateCandidate {
	var candidates []DuplicateCandidate
	seen := make(map[string]struct{})

	for _, tier := range []string{TierIdentifier, TierTitleAuthor, TierRawTitle, TierNormalizedTitle} {
		for _, hit := range hitsByTier[tier] {
			if _, claimed := seen[hit.BookID]; claimed {
				continue
			}
			seen[hit.BookID] = struct{}{}
			candidates = append(candidates, DuplicateCandidate{
				BookID:     hit.BookID,
				Title:      hit.Title,
				Slug:       hit.Slug,
				Confidence: tierConfidence[tier],
				Reason:     candidateReasons[tier],
			})
		}
	}
	return candidates
}

// hasHighConfidence reports whether any candidate was an identifier match.
func hasHighConfidence(candidates []DuplicateCandidate) bool {
	for _, candidate := range candidates {
		if candidate.Confidence == ConfidenceHigh {
			return true
		}
	}
	return false
}
