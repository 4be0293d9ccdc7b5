// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package curation implements the validation engine that decides whether a
book's curated state is publishable.

It is a pure computation layer: given a book's axis selections, tag map,
evidence list, and cover state, it reports which publish gates pass, which
contradiction rules fire, and how each per-category tag cap stands. It never
touches storage and never fails — "not satisfied" is data, not an error.

Callers (tag assignment, the admin worklist, and the publication engine) are
responsible for fetching current state and re-running validation whenever
tags, axes, evidence, or the cover change.
*/
package curation

import (
	"github.com/embershelf/embershelf/internal/core/taxonomy"
)

// # Engine Input

// AxisSelection is the closed set of five single-select axis slots.
// A nil slot means the axis has not been chosen yet.
type AxisSelection struct {
	WorldFramework *taxonomy.Tag `json:"world_framework"`
	Pairing        *taxonomy.Tag `json:"pairing"`
	HeatLevel      *taxonomy.Tag `json:"heat_level"`
	SeriesStatus   *taxonomy.Tag `json:"series_status"`
	ConsentMode    *taxonomy.Tag `json:"consent_mode"`
}

// Get returns the tag selected for the given axis, or nil.
func (selection AxisSelection) Get(axis taxonomy.Axis) *taxonomy.Tag {
	switch axis {
	case taxonomy.AxisWorldFramework:
		return selection.WorldFramework
	case taxonomy.AxisPairing:
		return selection.Pairing
	case taxonomy.AxisHeatLevel:
		return selection.HeatLevel
	case taxonomy.AxisSeriesStatus:
		return selection.SeriesStatus
	case taxonomy.AxisConsentMode:
		return selection.ConsentMode
	}
	return nil
}

// Missing returns the axes that have no tag selected, in display order.
func (selection AxisSelection) Missing() []taxonomy.Axis {
	var missing []taxonomy.Axis
	for _, axis := range taxonomy.AllAxes() {
		if selection.Get(axis) == nil {
			missing = append(missing, axis)
		}
	}
	return missing
}

// EvidenceRef is the engine's view of one evidence record: its identity and
// the tags/axes it substantiates. Citation bodies are irrelevant to gating.
type EvidenceRef struct {
	ID     string          `json:"id"`
	TagIDs []string        `json:"tag_ids,omitempty"`
	Axes   []taxonomy.Axis `json:"axes,omitempty"`
}

// CoverState is the engine's read model of the book's cover asset.
type CoverState struct {
	Version int  `json:"version"`
	Ready   bool `json:"ready"`
}

// Input carries everything the engine needs for one validation pass.
type Input struct {
	Axes AxisSelection

	// TagsByCategory groups the book's attached tags by category key.
	// Axis tags are carried in Axes, not here.
	TagsByCategory map[string][]taxonomy.Tag

	Evidence []EvidenceRef
	Cover    *CoverState
}

// # Engine Output

// GateID identifies one binary publish precondition.
type GateID string

const (
	GateRequiredAxes     GateID = "REQUIRED_AXES"
	GateRequiredCover    GateID = "REQUIRED_COVER"
	GateRequiredEvidence GateID = "REQUIRED_EVIDENCE"
)

// GateResult reports one gate's outcome. Missing names the absent items
// (axis names, tag names) when the gate fails.
type GateResult struct {
	Gate    GateID   `json:"gate"`
	OK      bool     `json:"ok"`
	Missing []string `json:"missing,omitempty"`
}

// Severity classifies a contradiction. Hard blocks publish; soft is advisory.
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// Contradiction is one fired cross-field consistency rule.
type Contradiction struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// CapStatus reports a per-category tag count against its declared ceiling.
type CapStatus struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Max      int    `json:"max"`
	OK       bool   `json:"ok"`
}

// Queues derives the admin worklists a book belongs in given its result.
type Queues struct {
	// Unfinished: a required axis or the cover is missing.
	Unfinished bool `json:"unfinished"`
	// NeedsEvidence: a high-stakes tag lacks a linked evidence record.
	NeedsEvidence bool `json:"needs_evidence"`
	// Contradiction: at least one hard contradiction is present.
	Contradiction bool `json:"contradiction"`
}

// Result is the full outcome of one validation pass.
type Result struct {
	Gates          []GateResult    `json:"gates"`
	Contradictions []Contradiction `json:"contradictions"`
	Caps           []CapStatus     `json:"caps"`
	Queues         Queues          `json:"queues"`
}

// Publishable reports whether every gate passes and no hard contradiction
// is present. Cap overruns do not block publish on their own; they surface
// through [Result.Caps] and the curator queue.
func (result Result) Publishable() bool {
	for _, gate := range result.Gates {
		if !gate.OK {
			return false
		}
	}
	for _, contradiction := range result.Contradictions {
		if contradiction.Severity == SeverityHard {
			return false
		}
	}
	return true
}

// FailingGates returns the subset of gates that did not pass.
func (result Result) FailingGates() []GateResult {
	var failing []GateResult
	for _, gate := range result.Gates {
		if !gate.OK {
			failing = append(failing, gate)
		}
	}
	return failing
}

// HardContradictions returns the contradictions that block publish.
func (result Result) HardContradictions() []Contradiction {
	var hard []Contradiction
	for _, contradiction := range result.Contradictions {
		if contradiction.Severity == SeverityHard {
			hard = append(hard, contradiction)
		}
	}
	return hard
}

// # Cap Configuration

// CapConfig declares the per-category tag ceilings. It is loaded once at
// startup and passed to both enforcement points (tag add, validation) so the
// two can never drift.
type CapConfig map[string]int

// DefaultCaps returns the shipped per-category ceilings.
func DefaultCaps() CapConfig {
	return CapConfig{
		taxonomy.CategoryTrope:          8,
		taxonomy.CategoryPlotEngine:     2,
		taxonomy.CategorySettingWrapper: 2,
		taxonomy.CategorySeasonal:       1,
	}
}

// Max returns the declared ceiling for a category and whether one exists.
func (caps CapConfig) Max(categoryKey string) (int, bool) {
	max, ok := caps[categoryKey]
	return max, ok
}
