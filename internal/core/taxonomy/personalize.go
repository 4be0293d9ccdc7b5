// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package taxonomy

/*
personalizeCatalog shapes a catalog read for one member: muted tags are
dropped, and heat-level tags above the member's cap are dropped. The cap is a
heat-level slug; tags rank by their sort order within the category, so "open
door" hides everything sorted after it.

The input comes straight from the shared cache, so categories and tag slices
are copied, never mutated in place.

Parameters:
  - catalog: []*Category (Cached catalog, display order)
  - mutedTagIDs: []string
  - maxHeatLevel: string (heat-level tag slug, empty for no cap)

Returns:
  - []*Category: A filtered copy, or the input untouched when there is
    nothing to filter
*/
func personalizeCatalog(catalog []*Category, mutedTagIDs []string, maxHeatLevel string) []*Category {
	if len(mutedTagIDs) == 0 && maxHeatLevel == "" {
		return catalog
	}

	heatCeiling := heatCeilingFor(catalog, maxHeatLevel)
	muted := make(map[string]struct{}, len(mutedTagIDs))
	for _, id := range mutedTagIDs {
		muted[id] = struct{}{}
	}

	shaped := make([]*Category, 0, len(catalog))
	for _, category := range catalog {
		kept := make([]Tag, 0, len(category.Tags))
		for _, tag := range category.Tags {
			if _, isMuted := muted[tag.ID]; isMuted {
				continue
			}
			if category.Key == string(AxisHeatLevel) && heatCeiling >= 0 && tag.SortOrder > heatCeiling {
				continue
			}
			kept = append(kept, tag)
		}

		copied := *category
		copied.Tags = kept
		shaped = append(shaped, &copied)
	}
	return shaped
}

// heatCeilingFor resolves the sort order of the capped heat-level slug.
// Returns -1 when no cap applies, including when the slug is unknown.
func heatCeilingFor(catalog []*Category, maxHeatLevel string) int {
	if maxHeatLevel == "" {
		return -1
	}
	for _, category := range catalog {
		if category.Key != string(AxisHeatLevel) {
			continue
		}
		for _, tag := range category.Tags {
			if tag.Slug == maxHeatLevel {
				return tag.SortOrder
			}
		}
	}
	return -1
}
