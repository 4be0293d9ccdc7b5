// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package taxonomy

import "context"

// Repository defines the data access contract for the taxonomy reference data.
type Repository interface {

	/*
		ListCatalog returns every category with its child tags, both in display order.

		Parameters:
		  - context: context.Context
		  - includeSensitive: bool (false for public-facing views)

		Returns:
		  - []*Category: Categories with their Tags slices populated
		  - error: Database retrieval failures
	*/
	ListCatalog(context context.Context, includeSensitive bool) ([]*Category, error)

	/*
		ListCategories returns the bare category records in display order.
	*/
	ListCategories(context context.Context) ([]*Category, error)

	/*
		GetTagByID returns the tag with the given ID.

		Returns:
		  - *Tag: The hydrated tag
		  - error: ErrNotFound if missing
	*/
	GetTagByID(context context.Context, id string) (*Tag, error)

	/*
		GetTagsByIDs returns the subset of the given tag ids that exist.
		Order is unspecified; missing ids are simply absent from the result.
	*/
	GetTagsByIDs(context context.Context, ids []string) ([]*Tag, error)

	/*
		GetTagBySlug resolves a (category, slug) pair to a tag.
	*/
	GetTagBySlug(context context.Context, categoryKey, slug string) (*Tag, error)

	/*
		CreateTag persists a new tag definition (admin/community-approved writes only).
	*/
	CreateTag(context context.Context, tag *Tag) error

	/*
		UpdateTag persists changes to a tag's mutable display metadata.
		Tag identity (id, category, slug) is immutable after creation.
	*/
	UpdateTag(context context.Context, tag *Tag) error

	/*
		ActiveVersion returns the currently active taxonomy version.

		Returns:
		  - *Version: The active revision
		  - error: ErrNotFound when no version is marked active
	*/
	ActiveVersion(context context.Context) (*Version, error)
}
