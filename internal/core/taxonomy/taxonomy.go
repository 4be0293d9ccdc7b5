// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package taxonomy defines the tag/category reference data for the Embershelf catalogue.

It is the single source of truth the curation engine reads from: categories
govern select cardinality (single vs multi), tags carry the sensitivity,
evidence-requirement, and premium flags that drive publish gating.

Core Responsibility:

  - Categories: Select cardinality, premium visibility, display ordering.
  - Tags: Identity ((category, slug) unique), kink bundle/detail nesting via parent refs.
  - Versions: Named taxonomy revisions; publications are pinned to the active one.

Taxonomy rows are read-mostly: they are mutated only through admin or
community-approved writes, never by the curation workflow itself.
*/
package taxonomy

import "time"

// # Axis Categories

// Axis names one of the five single-select category slots every published
// book must have set. Axis values double as category keys.
type Axis string

const (
	AxisWorldFramework Axis = "world_framework"
	AxisPairing        Axis = "pairing"
	AxisHeatLevel      Axis = "heat_level"
	AxisSeriesStatus   Axis = "series_status"
	AxisConsentMode    Axis = "consent_mode"
)

// AllAxes returns the five axis categories in display order.
func AllAxes() []Axis {
	return []Axis{AxisWorldFramework, AxisPairing, AxisHeatLevel, AxisSeriesStatus, AxisConsentMode}
}

// IsValid reports whether a is a recognised [Axis] value.
func (a Axis) IsValid() bool {
	switch a {
	case AxisWorldFramework, AxisPairing, AxisHeatLevel, AxisSeriesStatus, AxisConsentMode:
		return true
	}
	return false
}

// # Optional Categories

// Well-known multi-select category keys. The set is open: new categories can
// be introduced by migration without code changes, but these are referenced
// by the shipped cap configuration and contradiction rule.
const (
	CategoryTrope          = "trope"
	CategoryPlotEngine     = "plot_engine"
	CategorySettingWrapper = "setting_wrapper"
	CategorySeasonal       = "seasonal_wrapper"
	CategoryContentWarning = "content_warning"
	CategoryKinkBundle     = "kink_bundle"
	CategoryKinkDetail     = "kink_detail"
)

// # Core Entities

// Category governs how many tags of its kind a book may carry and whether
// the category is visible to non-premium members.
type Category struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	SingleSelect bool   `json:"single_select"`
	Premium      bool   `json:"premium"`
	SortOrder    int    `json:"sort_order"`

	// Tags contains the child tags for this category, populated in catalog queries.
	Tags []Tag `json:"tags,omitempty"`
}

// Tag is a taxonomy leaf attached to books.
type Tag struct {
	ID          string    `json:"id"`
	CategoryKey string    `json:"category"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	// ParentTagID is set only for kink-detail tags nested under a kink bundle.
	ParentTagID *string `json:"parent_tag_id,omitempty"`
	// Sensitive tags are excluded from public-facing default views.
	Sensitive bool `json:"sensitive"`
	// RequiresEvidence marks a high-stakes tag that must be substantiated by
	// at least one linked evidence record before a book can publish.
	RequiresEvidence bool      `json:"requires_evidence"`
	Premium          bool      `json:"premium"`
	SortOrder        int       `json:"sort_order"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// Version is a named taxonomy revision. Exactly one version is active at a
// time; the publication engine refuses to publish when none is.
type Version struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID               = "id"
	FieldCategory         = "category"
	FieldName             = "name"
	FieldSlug             = "slug"
	FieldParentTagID      = "parent_tag_id"
	FieldSensitive        = "sensitive"
	FieldRequiresEvidence = "requires_evidence"
	FieldPremium          = "premium"
	FieldSortOrder        = "sort_order"
)
