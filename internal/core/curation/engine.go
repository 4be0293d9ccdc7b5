// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package curation

import (
	"sort"

	"github.com/embershelf/embershelf/internal/core/taxonomy"
)

// # Validation Engine

// Engine evaluates gates, contradiction rules, and caps for one book state.
//
// # Concurrency
//
// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	caps  CapConfig
	rules []Rule
}

// NewEngine constructs an [Engine] with explicit cap configuration and rules.
func NewEngine(caps CapConfig, rules ...Rule) *Engine {
	return &Engine{caps: caps, rules: rules}
}

// DefaultEngine returns an [Engine] with the shipped caps and rule set.
func DefaultEngine() *Engine {
	return NewEngine(DefaultCaps(), DefaultRules()...)
}

// Caps exposes the engine's cap configuration so the tag-assignment path
// enforces the exact same ceilings.
func (engine *Engine) Caps() CapConfig {
	return engine.caps
}

/*
Validate computes the full gate/contradiction/cap/queue result for one book.

Description: Pure function over the supplied input; no storage access, no
side effects, and no failure mode. Callers branch on the structured result.

Parameters:
  - input: Input (current axes, tags grouped by category, evidence, cover)

Returns:
  - Result: Gates in fixed order, fired contradictions, cap statuses sorted
    by category key, and the derived admin queues.
*/
func (engine *Engine) Validate(input Input) Result {
	result := Result{
		Gates: []GateResult{
			engine.requiredAxesGate(input),
			engine.requiredCoverGate(input),
			engine.requiredEvidenceGate(input),
		},
		Caps: engine.capStatuses(input),
	}

	for _, rule := range engine.rules {
		if contradiction := rule.Evaluate(input); contradiction != nil {
			result.Contradictions = append(result.Contradictions, *contradiction)
		}
	}

	result.Queues = deriveQueues(result)
	return result
}

// # Gates

// requiredAxesGate fails when any of the five axis slots is empty,
// naming the missing axes.
func (engine *Engine) requiredAxesGate(input Input) GateResult {
	missing := input.Axes.Missing()
	gate := GateResult{Gate: GateRequiredAxes, OK: len(missing) == 0}
	for _, axis := range missing {
		gate.Missing = append(gate.Missing, string(axis))
	}
	return gate
}

// requiredCoverGate fails unless a ready cover asset exists.
func (engine *Engine) requiredCoverGate(input Input) GateResult {
	ok := input.Cover != nil && input.Cover.Ready
	return GateResult{Gate: GateRequiredCover, OK: ok}
}

// requiredEvidenceGate fails when any tag flagged requires_evidence has no
// evidence record linked to it, naming the offending tags.
func (engine *Engine) requiredEvidenceGate(input Input) GateResult {
	substantiated := make(map[string]struct{})
	for _, evidence := range input.Evidence {
		for _, tagID := range evidence.TagIDs {
			substantiated[tagID] = struct{}{}
		}
	}

	gate := GateResult{Gate: GateRequiredEvidence, OK: true}
	for _, category := range sortedCategoryKeys(input.TagsByCategory) {
		for _, tag := range input.TagsByCategory[category] {
			if !tag.RequiresEvidence {
				continue
			}
			if _, ok := substantiated[tag.ID]; !ok {
				gate.OK = false
				gate.Missing = append(gate.Missing, tag.Name)
			}
		}
	}
	return gate
}

// # Caps

// capStatuses reports every configured category's count against its ceiling,
// sorted by category key for stable output.
func (engine *Engine) capStatuses(input Input) []CapStatus {
	keys := make([]string, 0, len(engine.caps))
	for key := range engine.caps {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	statuses := make([]CapStatus, 0, len(keys))
	for _, key := range keys {
		max := engine.caps[key]
		count := len(input.TagsByCategory[key])
		statuses = append(statuses, CapStatus{
			Category: key,
			Count:    count,
			Max:      max,
			OK:       count <= max,
		})
	}
	return statuses
}

// # Queues

func deriveQueues(result Result) Queues {
	var queues Queues
	for _, gate := range result.Gates {
		switch gate.Gate {
		case GateRequiredAxes, GateRequiredCover:
			if !gate.OK {
				queues.Unfinished = true
			}
		case GateRequiredEvidence:
			if !gate.OK {
				queues.NeedsEvidence = true
			}
		}
	}
	for _, contradiction := range result.Contradictions {
		if contradiction.Severity == SeverityHard {
			queues.Contradiction = true
		}
	}
	return queues
}

// sortedCategoryKeys keeps evidence-gate output deterministic across runs.
func sortedCategoryKeys(tagsByCategory map[string][]taxonomy.Tag) []string {
	keys := make([]string, 0, len(tagsByCategory))
	for key := range tagsByCategory {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
