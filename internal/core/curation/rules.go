// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package curation

import "github.com/embershelf/embershelf/internal/core/taxonomy"

// Rule is one pluggable cross-field consistency check. Evaluate returns nil
// when the rule does not fire.
type Rule interface {
	ID() string
	Evaluate(input Input) *Contradiction
}

// DefaultRules returns the shipped rule set.
func DefaultRules() []Rule {
	return []Rule{ConsentWarningMismatchRule{}}
}

// # Shipped Rules

// RuleConsentWarningMismatch fires when the consent-mode axis declares clear
// or negotiated consent while a non-consent/dubious-consent/SA content
// warning is attached.
const RuleConsentWarningMismatch = "CONSENT_WARNING_MISMATCH"

// consentModesClaimingConsent are the consent-mode slugs incompatible with
// non-consent warnings.
var consentModesClaimingConsent = map[string]struct{}{
	"clear-explicit": {},
	"negotiated":     {},
}

// nonConsentWarningSlugs are the content-warning slugs that contradict a
// consenting consent mode.
var nonConsentWarningSlugs = map[string]struct{}{
	"non-consent":     {},
	"noncon":          {},
	"dubious-consent": {},
	"dubcon":          {},
	"sexual-assault":  {},
}

// ConsentWarningMismatchRule implements [Rule] for the shipped check.
type ConsentWarningMismatchRule struct{}

func (ConsentWarningMismatchRule) ID() string { return RuleConsentWarningMismatch }

func (ConsentWarningMismatchRule) Evaluate(input Input) *Contradiction {
	consentMode := input.Axes.ConsentMode
	if consentMode == nil {
		return nil
	}
	if _, claims := consentModesClaimingConsent[consentMode.Slug]; !claims {
		return nil
	}

	for _, warning := range input.TagsByCategory[taxonomy.CategoryContentWarning] {
		if _, conflict := nonConsentWarningSlugs[warning.Slug]; conflict {
			return &Contradiction{
				RuleID:   RuleConsentWarningMismatch,
				Severity: SeverityHard,
				Message:  "Consent Mode conflicts with Non-Consent/Dubious Consent/SA warnings",
			}
		}
	}
	return nil
}
