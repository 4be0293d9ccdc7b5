// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package publication

import "github.com/embershelf/embershelf/internal/core/book"

/*
computeDiff compares two snapshots by id membership.

Parameters:
  - previous: the snapshot of the baseline publication, nil on first publish.
  - current: the snapshot about to be written.

Returns:
  - *Diff: nil when previous is nil; otherwise the per-category tag delta,
    the evidence delta, and whether the ready cover version differs.
*/
func computeDiff(previous, current *Snapshot) *Diff {
	if previous == nil {
		return nil
	}

	diff := &Diff{}

	for _, category := range categoryKeys(previous.TagIDsByCategory, current.TagIDsByCategory) {
		added := missingFrom(current.TagIDsByCategory[category], previous.TagIDsByCategory[category])
		removed := missingFrom(previous.TagIDsByCategory[category], current.TagIDsByCategory[category])
		if len(added) > 0 {
			if diff.TagsAdded == nil {
				diff.TagsAdded = make(map[string][]string)
			}
			diff.TagsAdded[category] = added
		}
		if len(removed) > 0 {
			if diff.TagsRemoved == nil {
				diff.TagsRemoved = make(map[string][]string)
			}
			diff.TagsRemoved[category] = removed
		}
	}

	diff.EvidenceAdded = missingFrom(current.EvidenceIDs, previous.EvidenceIDs)
	diff.EvidenceRemoved = missingFrom(previous.EvidenceIDs, current.EvidenceIDs)

	diff.CoverChanged = previous.CoverVersion != current.CoverVersion

	diff.HasChanges = len(diff.TagsAdded) > 0 ||
		len(diff.TagsRemoved) > 0 ||
		len(diff.EvidenceAdded) > 0 ||
		len(diff.EvidenceRemoved) > 0 ||
		diff.CoverChanged ||
		axesChanged(previous.Axes, current.Axes)

	return diff
}

// missingFrom returns the members of candidates absent from baseline,
// preserving candidate order.
func missingFrom(candidates, baseline []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(baseline))
	for _, id := range baseline {
		seen[id] = struct{}{}
	}
	var missing []string
	for _, id := range candidates {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// categoryKeys merges the key sets of both maps, previous first.
func categoryKeys(previous, current map[string][]string) []string {
	var keys []string
	seen := make(map[string]struct{}, len(previous)+len(current))
	for key := range previous {
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for key := range current {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func axesChanged(previous, current book.AxesIDs) bool {
	return !sameID(previous.WorldFrameworkID, current.WorldFrameworkID) ||
		!sameID(previous.PairingID, current.PairingID) ||
		!sameID(previous.HeatLevelID, current.HeatLevelID) ||
		!sameID(previous.SeriesStatusID, current.SeriesStatusID) ||
		!sameID(previous.ConsentModeID, current.ConsentModeID)
}

func sameID(left, right *string) bool {
	if left == nil || right == nil {
		return left == right
	}
	return *left == *right
}
