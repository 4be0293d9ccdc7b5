// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package book

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/apperr"
)

// # Tag Assignment

/*
AddTag attaches a taxonomy tag to a book.

Description: Axis-category tags are single-select and route to the matching
axis slot, silently replacing any previous selection. Other categories are
multi-select: the insert is idempotent (adding an attached tag is a no-op)
and the category cap is enforced inside the insert transaction, so add-time
enforcement can never drift from validate-time enforcement.

Parameters:
  - context: context.Context
  - bookID: string
  - tagID: string
  - actorID: string

Returns:
  - error: NotFound for an unknown tag, Unprocessable when the cap is hit
*/
func (service *Service) AddTag(context context.Context, bookID, tagID, actorID string) error {
	tag, err := service.taxonomy.GetTag(context, tagID)
	if err != nil {
		return err
	}

	// Axis categories are the single-select set; the tag lands in the
	// book's axis slot instead of the tag associations.
	if axis := taxonomy.Axis(tag.CategoryKey); axis.IsValid() {
		return service.setAxisSlot(context, bookID, axis, tag, actorID)
	}

	ceiling, capped := service.engine.Caps().Max(tag.CategoryKey)
	if !capped {
		ceiling = -1 // uncapped category
	}

	added, err := service.repository.AttachTag(context, bookID, tag, actorID, ceiling)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	service.record(context, audit.Event{
		ActorID:    actorID,
		Action:     audit.ActionTagAdded,
		EntityType: audit.EntityBook,
		EntityID:   bookID,
		Payload:    map[string]any{"tag_id": tag.ID, "category": tag.CategoryKey},
	})

	service.logger.Info("tag_added",
		slog.String("book_id", bookID),
		slog.String("tag_id", tag.ID),
		slog.String("category", tag.CategoryKey),
	)

	return nil
}

// RemoveTag deletes a tag association unconditionally. Removal can never
// violate a cap, so it is always allowed.
func (service *Service) RemoveTag(context context.Context, bookID, tagID, actorID string) error {
	if err := service.repository.DetachTag(context, bookID, tagID); err != nil {
		return err
	}

	service.record(context, audit.Event{
		ActorID:    actorID,
		Action:     audit.ActionTagRemoved,
		EntityType: audit.EntityBook,
		EntityID:   bookID,
		Payload:    map[string]any{"tag_id": tagID},
	})

	return nil
}

// # Axis Assignment

/*
SetAxes replaces the book's full axis record.

Description: Every non-nil slot is validated to reference an existing tag in
that axis's category. Nil slots clear the selection; publishing later
requires all five filled, but drafts may hold any subset.

Parameters:
  - context: context.Context
  - bookID: string
  - axes: AxesIDs (raw tag ids per slot)
  - actorID: string

Returns:
  - error: Validation errors naming the offending axis, or storage errors
*/
func (service *Service) SetAxes(context context.Context, bookID string, axes AxesIDs, actorID string) error {
	slots := []struct {
		axis  taxonomy.Axis
		tagID *string
	}{
		{taxonomy.AxisWorldFramework, axes.WorldFrameworkID},
		{taxonomy.AxisPairing, axes.PairingID},
		{taxonomy.AxisHeatLevel, axes.HeatLevelID},
		{taxonomy.AxisSeriesStatus, axes.SeriesStatusID},
		{taxonomy.AxisConsentMode, axes.ConsentModeID},
	}

	for _, slot := range slots {
		if slot.tagID == nil {
			continue
		}
		tag, err := service.taxonomy.GetTag(context, *slot.tagID)
		if err != nil {
			return err
		}
		if tag.CategoryKey != string(slot.axis) {
			return apperr.ValidationError(
				fmt.Sprintf("tag %q does not belong to the %s axis", tag.Slug, slot.axis),
				apperr.FieldError{Field: string(slot.axis), Message: "tag category mismatch"},
			)
		}
	}

	if err := service.repository.SetAxes(context, bookID, axes); err != nil {
		return err
	}

	service.record(context, audit.Event{
		ActorID:    actorID,
		Action:     audit.ActionAxesUpdated,
		EntityType: audit.EntityBook,
		EntityID:   bookID,
		Payload:    map[string]any{"axes": axes},
	})

	return nil
}

// setAxisSlot replaces one axis slot, leaving the other four untouched.
func (service *Service) setAxisSlot(context context.Context, bookID string, axis taxonomy.Axis, tag *taxonomy.Tag, actorID string) error {
	entity, err := service.repository.FindByID(context, bookID)
	if err != nil {
		return err
	}

	axes := axesIDsFrom(entity.Axes)
	switch axis {
	case taxonomy.AxisWorldFramework:
		axes.WorldFrameworkID = &tag.ID
	case taxonomy.AxisPairing:
		axes.PairingID = &tag.ID
	case taxonomy.AxisHeatLevel:
		axes.HeatLevelID = &tag.ID
	case taxonomy.AxisSeriesStatus:
		axes.SeriesStatusID = &tag.ID
	case taxonomy.AxisConsentMode:
		axes.ConsentModeID = &tag.ID
	}

	if err := service.repository.SetAxes(context, bookID, axes); err != nil {
		return err
	}

	service.record(context, audit.Event{
		ActorID:    actorID,
		Action:     audit.ActionAxesUpdated,
		EntityType: audit.EntityBook,
		EntityID:   bookID,
		Payload:    map[string]any{"axis": string(axis), "tag_id": tag.ID},
	})

	return nil
}

// axesIDsFrom projects hydrated axes back to their raw id form.
func axesIDsFrom(axes Axes) AxesIDs {
	ids := AxesIDs{}
	if axes.WorldFramework != nil {
		ids.WorldFrameworkID = &axes.WorldFramework.ID
	}
	if axes.Pairing != nil {
		ids.PairingID = &axes.Pairing.ID
	}
	if axes.HeatLevel != nil {
		ids.HeatLevelID = &axes.HeatLevel.ID
	}
	if axes.SeriesStatus != nil {
		ids.SeriesStatusID = &axes.SeriesStatus.ID
	}
	if axes.ConsentMode != nil {
		ids.ConsentModeID = &axes.ConsentMode.ID
	}
	return ids
}
